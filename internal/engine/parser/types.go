package parser

import (
	"time"
)

type File struct {
	Path      string
	Language  string
	Namespace string // First namespace declared in the file, without leading '\'
	Imports   []Import
	Classes   []ClassDecl
	DocTags   []DocTag
	ParsedAt  time.Time
}

type ImportKind string

const (
	ImportClass    ImportKind = "class"
	ImportFunction ImportKind = "function"
	ImportConst    ImportKind = "const"
)

type Import struct {
	Module    string // Fully qualified name, without leading '\'
	Alias     string // Explicit alias, or the last segment of Module
	Kind      ImportKind
	Namespace string // Enclosing namespace block, "" for global code
	Location  Location
}

type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindTrait
	KindEnum
)

func (k ClassKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	case KindEnum:
		return "enum"
	default:
		return "class"
	}
}

type ClassDecl struct {
	Name     string
	FullName string // Namespace-qualified, without leading '\'
	Kind     ClassKind
	Location Location
}

// DocTag is an annotation tag found inside a /** */ block. Location spans the
// tag name token only ("@ORM\Entity"), never the argument list.
type DocTag struct {
	Name      string
	Namespace string // Enclosing namespace block, "" for global code
	Location  Location
}

// Location is 1-based for Line/Column. Offset and Length are byte based and
// relative to the start of the file.
type Location struct {
	File      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
	Offset    int
	Length    int
}

// ImportMap builds the alias -> fully qualified name mapping of the class
// imports declared in the given namespace block. A use statement only applies
// to the block it appears in. When an alias is declared twice the later
// declaration wins.
func (f *File) ImportMap(namespace string) map[string]string {
	out := make(map[string]string)
	for _, imp := range f.Imports {
		if imp.Kind != ImportClass || imp.Alias == "" || imp.Module == "" || imp.Namespace != namespace {
			continue
		}
		out[imp.Alias] = imp.Module
	}
	return out
}
