package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PHPExtractor collects the namespace, use imports, class-like declarations
// and doc-block annotation tags of a PHP file.
type PHPExtractor struct{}

func (e *PHPExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "php",
		ParsedAt: time.Now(),
	}
	w := phpWalker{source: source, file: file}
	w.walkStatements(root, "")
	return file, nil
}

type phpWalker struct {
	source []byte
	file   *File
}

// walkStatements visits the children of a statement list. An unbraced
// namespace declaration applies to the statements that follow it.
func (w *phpWalker) walkStatements(node *sitter.Node, namespace string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "namespace_definition" {
			ns := w.namespaceName(child)
			if w.file.Namespace == "" {
				w.file.Namespace = ns
			}
			if body := findChildByKind(child, "compound_statement"); body != nil {
				w.walkStatements(body, ns)
				continue
			}
			namespace = ns
			continue
		}
		w.walk(child, namespace)
	}
}

func (w *phpWalker) walk(node *sitter.Node, namespace string) {
	switch node.Kind() {
	case "namespace_use_declaration":
		for _, imp := range parseUseDeclaration(node.Utf8Text(w.source), w.location(node)) {
			imp.Namespace = namespace
			w.file.Imports = append(w.file.Imports, imp)
		}
		return
	case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
		w.addClass(node, namespace)
	case "comment":
		w.addDocTags(node, namespace)
		return
	case "compound_statement", "program":
		w.walkStatements(node, namespace)
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			w.walk(child, namespace)
		}
	}
}

func (w *phpWalker) namespaceName(node *sitter.Node) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = findChildByKind(node, "namespace_name")
	}
	if nameNode == nil {
		return ""
	}
	return strings.Trim(normalizeName(nameNode.Utf8Text(w.source)), `\`)
}

func (w *phpWalker) addClass(node *sitter.Node, namespace string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = findChildByKind(node, "name")
	}
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(w.source)
	full := name
	if namespace != "" {
		full = namespace + `\` + name
	}

	kind := KindClass
	switch node.Kind() {
	case "interface_declaration":
		kind = KindInterface
	case "trait_declaration":
		kind = KindTrait
	case "enum_declaration":
		kind = KindEnum
	}

	w.file.Classes = append(w.file.Classes, ClassDecl{
		Name:     name,
		FullName: full,
		Kind:     kind,
		Location: w.location(nameNode),
	})
}

func (w *phpWalker) addDocTags(node *sitter.Node, namespace string) {
	text := node.Utf8Text(w.source)
	if !strings.HasPrefix(text, "/**") {
		return
	}
	start := node.StartPosition()
	for _, tag := range docTagsFromComment(w.file.Path, text, int(node.StartByte()), int(start.Row), int(start.Column)) {
		tag.Namespace = namespace
		w.file.DocTags = append(w.file.DocTags, tag)
	}
}

func (w *phpWalker) location(node *sitter.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()
	return Location{
		File:      w.file.Path,
		Line:      int(start.Row) + 1,
		Column:    int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndColumn: int(end.Column) + 1,
		Offset:    int(node.StartByte()),
		Length:    int(node.EndByte() - node.StartByte()),
	}
}

func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// parseUseDeclaration reads a PHP use statement from its source text:
//
//	use Foo\Bar;
//	use Foo\Bar as Baz, Foo\Qux;
//	use function Foo\helper;
//	use Foo\{Bar, Baz as B, function helper};
func parseUseDeclaration(text string, loc Location) []Import {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ";")
	if len(text) >= 3 && strings.EqualFold(text[:3], "use") {
		text = strings.TrimSpace(text[3:])
	}

	kind, text := splitImportKind(text, ImportClass)

	prefix := ""
	items := text
	if open := strings.Index(text, "{"); open >= 0 {
		prefix = strings.Trim(normalizeName(text[:open]), `\`)
		items = strings.TrimSuffix(strings.TrimSpace(text[open+1:]), "}")
	}

	var imports []Import
	for _, item := range splitAndTrim(items, ",") {
		itemKind, rest := splitImportKind(item, kind)
		module, alias := splitAlias(rest)
		module = strings.Trim(normalizeName(module), `\`)
		if module == "" {
			continue
		}
		if prefix != "" {
			module = prefix + `\` + module
		}
		if alias == "" {
			alias = lastSegment(module)
		}
		imports = append(imports, Import{
			Module:   module,
			Alias:    alias,
			Kind:     itemKind,
			Location: loc,
		})
	}
	return imports
}

func splitImportKind(text string, fallback ImportKind) (ImportKind, string) {
	fields := strings.Fields(text)
	if len(fields) > 1 {
		switch strings.ToLower(fields[0]) {
		case "function":
			return ImportFunction, strings.TrimSpace(text[len(fields[0]):])
		case "const":
			return ImportConst, strings.TrimSpace(text[len(fields[0]):])
		}
	}
	return fallback, text
}

func splitAlias(text string) (string, string) {
	fields := strings.Fields(text)
	for i, f := range fields {
		if strings.EqualFold(f, "as") && i+1 < len(fields) {
			return strings.Join(fields[:i], ""), fields[i+1]
		}
	}
	return strings.Join(fields, ""), ""
}

func lastSegment(name string) string {
	if idx := strings.LastIndex(name, `\`); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
