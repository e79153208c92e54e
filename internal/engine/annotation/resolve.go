// Package annotation decides whether a doc-block annotation tag points at a
// class that cannot be found.
//
// Resolution only considers tags that are absolute (@\Foo\Bar) or that go
// through a use import (@ORM\Entity with "use Doctrine\ORM\Mapping as ORM").
// Every other tag is outside the scope of the check.
package annotation

import "strings"

const namespaceSeparator = `\`

// ResolveTagName maps a raw tag name to the fully qualified class name it
// refers to. imports maps use-import aliases to fully qualified names.
//
// The boolean is false when no class name can be derived: the first segment
// is not an imported alias, or the name is empty. Absolute names are
// returned unchanged without consulting imports.
func ResolveTagName(tagName string, imports map[string]string) (string, bool) {
	name := strings.TrimPrefix(tagName, "@")
	if name == "" || name == namespaceSeparator {
		return "", false
	}

	if strings.HasPrefix(name, namespaceSeparator) {
		return name, true
	}

	segments := strings.Split(name, namespaceSeparator)
	base, ok := imports[segments[0]]
	if !ok {
		return "", false
	}

	if len(segments) > 1 {
		base += namespaceSeparator + strings.Join(segments[1:], namespaceSeparator)
	}
	return base, true
}
