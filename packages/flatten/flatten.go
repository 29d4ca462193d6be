package flatten

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// FragmentNotFoundError reports a fragment spread with no matching
// fragment definition in the document.
type FragmentNotFoundError struct {
	Name string
}

func (e *FragmentNotFoundError) Error() string {
	return fmt.Sprintf("cannot find fragment with name %s", e.Name)
}

// ParseDocument parses a GraphQL query document from source text.
func ParseDocument(source string) (*ast.QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, fmt.Errorf("parsing query document: %w", err)
	}
	return doc, nil
}

// Flatten walks every query operation in the document depth-first and
// returns one standalone query string per leaf field, in the document's
// left-to-right order. Mutations and subscriptions are skipped.
func Flatten(doc *ast.QueryDocument) ([]string, error) {
	fragments, err := fragmentTable(doc)
	if err != nil {
		return nil, err
	}

	w := &walker{fragments: fragments}
	for _, op := range doc.Operations {
		if op.Operation != ast.Query {
			continue
		}
		if err := w.selectionSet([]string{renderOperationHeader(op)}, op.SelectionSet); err != nil {
			return nil, err
		}
	}

	return w.queries, nil
}

// fragmentTable indexes the document's fragment definitions by name.
// Duplicate names are rejected rather than silently shadowed: a spread
// of an ambiguous name could otherwise flatten to the wrong selection.
func fragmentTable(doc *ast.QueryDocument) (map[string]*ast.FragmentDefinition, error) {
	table := make(map[string]*ast.FragmentDefinition, len(doc.Fragments))
	for _, frag := range doc.Fragments {
		if _, ok := table[frag.Name]; ok {
			return nil, fmt.Errorf("duplicate fragment definition %q", frag.Name)
		}
		table[frag.Name] = frag
	}
	return table, nil
}

type walker struct {
	fragments map[string]*ast.FragmentDefinition
	queries   []string
}

func (w *walker) selectionSet(path []string, ss ast.SelectionSet) error {
	for _, selection := range ss {
		var err error
		switch sel := selection.(type) {
		case *ast.Field:
			err = w.field(path, sel)
		case *ast.FragmentSpread:
			err = w.fragmentSpread(path, sel)
		case *ast.InlineFragment:
			err = w.inlineFragment(path, sel)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) field(path []string, field *ast.Field) error {
	path = extend(path, renderField(field))
	if len(field.SelectionSet) == 0 {
		// Leaf field: the accumulated path is a complete query.
		query, err := pathToQuery(path)
		if err != nil {
			return err
		}
		w.queries = append(w.queries, query)
		return nil
	}
	return w.selectionSet(path, field.SelectionSet)
}

// fragmentSpread resolves the named fragment and recurses into its
// selection set as if it had been written inline at the spread site.
// Resolution happens afresh on every occurrence, so a fragment spread
// from several locations contributes an independent path branch each
// time.
func (w *walker) fragmentSpread(path []string, spread *ast.FragmentSpread) error {
	fragment, ok := w.fragments[spread.Name]
	if !ok {
		return &FragmentNotFoundError{Name: spread.Name}
	}
	path = extend(path, renderTypeCondition(fragment.TypeCondition, fragment.Directives))
	return w.selectionSet(path, fragment.SelectionSet)
}

func (w *walker) inlineFragment(path []string, fragment *ast.InlineFragment) error {
	path = extend(path, renderTypeCondition(fragment.TypeCondition, fragment.Directives))
	return w.selectionSet(path, fragment.SelectionSet)
}

// extend copies the path before appending so sibling branches never
// share backing storage.
func extend(path []string, segment string) []string {
	next := make([]string, len(path), len(path)+1)
	copy(next, path)
	return append(next, segment)
}

// pathToQuery serializes a root-to-leaf path into a standalone query:
// segments joined with " { ", closed with one brace per nesting level,
// then re-parsed and re-printed to obtain a canonical, known-valid
// string. A reparse failure means the walk produced something the
// grammar rejects, which should never happen for well-formed input.
func pathToQuery(path []string) (string, error) {
	raw := strings.Join(path, " { ") + strings.Repeat(" }", len(path)-1)

	doc, err := parser.ParseQuery(&ast.Source{Input: raw})
	if err != nil {
		return "", fmt.Errorf("reconstructed query %q does not parse: %w", raw, err)
	}

	var buf strings.Builder
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return strings.TrimSpace(buf.String()), nil
}
