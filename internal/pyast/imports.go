package pyast

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"pysymbols/internal/diag"
)

// FromImport records one "from M import X [as Y]" binding.
type FromImport struct {
	Module string
	Name   string
}

// Imports holds every name a file binds through import statements.
//
// Plain maps the bound name of an "import X [as Y]" statement to the dotted
// module path X. From maps the bound name of a "from M import X [as Y]"
// statement to its origin. Within each kind the earliest binding wins;
// rebinding is reported through the sink and otherwise ignored.
type Imports struct {
	Plain map[string]string
	From  map[string]FromImport
}

// BoundNames returns every bound name from both kinds, unordered.
func (im Imports) BoundNames() []string {
	names := make([]string, 0, len(im.Plain)+len(im.From))
	for name := range im.Plain {
		names = append(names, name)
	}
	for name := range im.From {
		names = append(names, name)
	}
	return names
}

// CollectImports walks the file's full syntax tree and returns the import
// bindings it introduces.
//
// Wildcard imports ("from M import *") bind no individual names and are
// skipped. The traversal does not descend into import statements themselves,
// but does visit imports nested in functions, classes, and try blocks.
func CollectImports(f *File, sink *diag.Sink) Imports {
	result := Imports{
		Plain: make(map[string]string),
		From:  make(map[string]FromImport),
	}

	walkTree(f.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			f.collectPlainImport(n, &result, sink)
			return false
		case "import_from_statement":
			f.collectFromImport(n, &result, sink)
			return false
		}
		return true
	})

	return result
}

// collectPlainImport handles "import X" and "import X as Y".
// An import_statement holds dotted_name children (no alias) and
// aliased_import children (dotted_name + identifier).
func (f *File) collectPlainImport(node *sitter.Node, result *Imports, sink *diag.Sink) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "dotted_name":
			module := f.nodeText(child)
			f.bindPlain(result, module, module, sink)
		case "aliased_import":
			module := f.nodeText(child.ChildByFieldName("name"))
			alias := f.nodeText(child.ChildByFieldName("alias"))
			if module == "" {
				continue
			}
			bound := alias
			if bound == "" {
				bound = module
			}
			f.bindPlain(result, bound, module, sink)
		}
	}
}

// collectFromImport handles "from M import X" and "from M import X as Y".
func (f *File) collectFromImport(node *sitter.Node, result *Imports, sink *diag.Sink) {
	module := f.nodeText(node.ChildByFieldName("module_name"))

	sawImport := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "import":
			sawImport = true
		case "wildcard_import":
			// "from M import *" binds no names the visitor can track.
		case "dotted_name":
			if !sawImport {
				// The module path before the "import" keyword.
				continue
			}
			name := f.nodeText(child)
			f.bindFrom(result, name, FromImport{Module: module, Name: name}, sink)
		case "aliased_import":
			name := f.nodeText(child.ChildByFieldName("name"))
			alias := f.nodeText(child.ChildByFieldName("alias"))
			if name == "" {
				continue
			}
			bound := alias
			if bound == "" {
				bound = name
			}
			f.bindFrom(result, bound, FromImport{Module: module, Name: name}, sink)
		}
	}
}

func (f *File) bindPlain(result *Imports, bound, module string, sink *diag.Sink) {
	if existing, ok := result.Plain[bound]; ok {
		sink.Warning("duplicate bound name for import", diag.Fields{
			"file":      f.Path,
			"name":      bound,
			"kept":      existing,
			"discarded": module,
		})
		return
	}
	result.Plain[bound] = module
}

func (f *File) bindFrom(result *Imports, bound string, imp FromImport, sink *diag.Sink) {
	if existing, ok := result.From[bound]; ok {
		sink.Warning("duplicate bound name for from-import", diag.Fields{
			"file":      f.Path,
			"name":      bound,
			"kept":      existing.Module + "." + existing.Name,
			"discarded": imp.Module + "." + imp.Name,
		})
		return
	}
	result.From[bound] = imp
}
