// Package imports holds tree-sitter queries that resolve imported bindings
// to their module source.
package imports

// JSQueries matches ES module import bindings.
//
// Captures:
//   - @import.source - module specifier text
//   - @import.default - default binding
//   - @import.named / @import.alias - named binding and its local alias
//   - @import.namespace - namespace binding
const JSQueries = `
(import_statement
  (import_clause (identifier) @import.default)
  source: (string (string_fragment) @import.source))

(import_statement
  (import_clause
    (named_imports
      (import_specifier
        name: (identifier) @import.named
        alias: (identifier)? @import.alias)))
  source: (string (string_fragment) @import.source))

(import_statement
  (import_clause (namespace_import (identifier) @import.namespace))
  source: (string (string_fragment) @import.source))
`

// TSQueries is identical to JSQueries; the TypeScript grammar shares the
// ES module import node kinds.
const TSQueries = JSQueries
