package flatten

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// renderOperationHeader renders the root path segment for an operation:
// the query keyword, the operation name if present, its variable
// definitions, and its directives. Variable definitions appear only
// here; they are not re-declared per leaf query.
func renderOperationHeader(op *ast.OperationDefinition) string {
	var b strings.Builder
	b.WriteString("query")
	if op.Name != "" {
		b.WriteString(" ")
		b.WriteString(op.Name)
	}
	if len(op.VariableDefinitions) > 0 {
		b.WriteString("(")
		for i, def := range op.VariableDefinitions {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("$")
			b.WriteString(def.Variable)
			b.WriteString(": ")
			b.WriteString(def.Type.String())
			if def.DefaultValue != nil {
				b.WriteString(" = ")
				b.WriteString(def.DefaultValue.String())
			}
		}
		b.WriteString(")")
	}
	writeDirectives(&b, op.Directives)
	return b.String()
}

// renderField renders a field path segment: [alias: ]name[(args)] [@dir ...].
func renderField(field *ast.Field) string {
	var b strings.Builder
	if field.Alias != "" && field.Alias != field.Name {
		b.WriteString(field.Alias)
		b.WriteString(": ")
	}
	b.WriteString(field.Name)
	if len(field.Arguments) > 0 {
		b.WriteString("(")
		for i, arg := range field.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.Name)
			b.WriteString(": ")
			b.WriteString(arg.Value.String())
		}
		b.WriteString(")")
	}
	writeDirectives(&b, field.Directives)
	return b.String()
}

// renderTypeCondition renders a fragment boundary segment. The type
// condition is omitted for inline fragments that have none.
func renderTypeCondition(typeCondition string, directives ast.DirectiveList) string {
	var b strings.Builder
	b.WriteString("...")
	if typeCondition != "" {
		b.WriteString(" on ")
		b.WriteString(typeCondition)
	}
	writeDirectives(&b, directives)
	return b.String()
}

func writeDirectives(b *strings.Builder, directives ast.DirectiveList) {
	for _, directive := range directives {
		b.WriteString(" @")
		b.WriteString(directive.Name)
		if len(directive.Arguments) > 0 {
			b.WriteString("(")
			for i, arg := range directive.Arguments {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(arg.Name)
				b.WriteString(": ")
				b.WriteString(arg.Value.String())
			}
			b.WriteString(")")
		}
	}
}
