// Package flatten decomposes a composite GraphQL query document into the
// minimal set of standalone queries, one per leaf field.
//
// Each standalone query preserves the full path context of its leaf: the
// operation header (name, variable definitions, directives), every
// intermediate field with its alias, arguments and directives, and any
// fragment boundaries crossed on the way down. Fragment spreads are
// resolved against the document's fragment definitions and inlined as
// type-conditioned inline fragments.
//
// Every produced query is re-parsed and re-printed through the GraphQL
// grammar, so callers can rely on the output being syntactically valid.
package flatten
