package export

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrManifestUnreadable is returned when an index holds re-exports but
// none of them has the generated shape. Incremental updates must not guess
// in that case; a full build rebuilds the index from the icon directories.
var ErrManifestUnreadable = errors.New("manifest index is unreadable; run a full build")

var (
	safeNamePattern   = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// ParseIndex recovers manifest entries from a previously generated index
// module. Only statements of the exact generated shape
//
//	export { Component } from '<importPrefix>/<name>';
//
// are accepted; anything else is skipped. Recovered entries carry no type
// or source.
func ParseIndex(ctx context.Context, content []byte, importPrefix string) ([]Entry, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	var (
		entries   []Entry
		reexports int
	)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "export_statement" {
			continue
		}
		if node.ChildByFieldName("source") == nil {
			// export {} placeholder or a local export.
			continue
		}
		reexports++

		entry, ok := generatedExport(node, content, importPrefix)
		if ok {
			entries = append(entries, entry)
		}
	}

	if reexports > 0 && len(entries) == 0 {
		return nil, ErrManifestUnreadable
	}
	return entries, nil
}

// generatedExport matches a single re-export statement against the
// generated shape.
func generatedExport(node *sitter.Node, content []byte, importPrefix string) (Entry, bool) {
	if node.HasError() {
		return Entry{}, false
	}

	source := strings.Trim(node.ChildByFieldName("source").Content(content), `'"`)
	name, ok := strings.CutPrefix(source, importPrefix+"/")
	if !ok || !safeNamePattern.MatchString(name) {
		return Entry{}, false
	}

	var clause *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "export_clause" {
			clause = child
			break
		}
	}
	if clause == nil || clause.NamedChildCount() != 1 {
		return Entry{}, false
	}

	spec := clause.NamedChild(0)
	if spec.Type() != "export_specifier" || spec.ChildByFieldName("alias") != nil {
		return Entry{}, false
	}
	nameNode := spec.ChildByFieldName("name")
	if nameNode == nil {
		return Entry{}, false
	}
	componentID := nameNode.Content(content)
	if !identifierPattern.MatchString(componentID) {
		return Entry{}, false
	}

	return Entry{ComponentID: componentID, Name: name}, true
}
