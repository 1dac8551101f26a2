// Package types holds tree-sitter queries for named type declarations used
// to resolve component props declared as interfaces or type aliases.
package types

// TSQueries matches interface and type alias declarations, exported or not.
//
// Captures:
//   - @type.name - declared type name
//   - @type.body - interface body or aliased type
const TSQueries = `
(interface_declaration
  name: (type_identifier) @type.name
  body: (_) @type.body)

(type_alias_declaration
  name: (type_identifier) @type.name
  value: (_) @type.body)
`
