// Package statics holds tree-sitter queries for static member assignments
// such as Button.propTypes = {...} or Button.displayName = 'Button'.
package statics

// Queries matches top-level static member assignments. The object may be a
// plain identifier or a member expression (Baz.Foo.propTypes).
//
// Captures:
//   - @static.object - assigned-to object
//   - @static.property - static member name
//   - @static.value - assigned value
const Queries = `
(program
  (expression_statement
    (assignment_expression
      left: (member_expression
        object: [(identifier) (member_expression)] @static.object
        property: (property_identifier) @static.property)
      right: (_) @static.value)))
`
