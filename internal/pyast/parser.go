// Package pyast parses Python source files and extracts the import
// bindings each file introduces into scope.
package pyast

import (
	"context"
	"errors"
	"fmt"
	"os"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// ErrParse marks a file the parser could not turn into a syntax tree.
var ErrParse = errors.New("parse failure")

// File is the parsed syntax tree of one Python source file.
// Callers must Close it to release the underlying tree.
type File struct {
	Path   string
	source []byte
	tree   *sitter.Tree
}

// ParseFile reads and parses one Python source file.
func ParseFile(ctx context.Context, path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(ctx, path, source)
}

// Parse parses already-read Python source. The path is only used for
// reporting.
func Parse(ctx context.Context, path string, source []byte) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	lang := sitter.NewLanguage(python.Language())
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, path)
	}

	return &File{Path: path, source: source, tree: tree}, nil
}

// Root returns the root node of the parsed tree.
func (f *File) Root() *sitter.Node {
	return f.tree.RootNode()
}

// Close releases the parse tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// nodeText extracts the source text covered by a node.
func (f *File) nodeText(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(f.source[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a syntax tree and calls the visitor for each
// node. Returning false from the visitor prunes the node's subtree.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}
