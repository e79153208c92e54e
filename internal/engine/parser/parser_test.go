package parser

import (
	"testing"

	"annotcheck/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entitySource = `<?php
namespace App\Entity;

use Doctrine\ORM\Mapping as ORM;
use App\Validator\{UniqueEmail, Constraint as Assert};
use function App\helper;

/**
 * @ORM\Entity(repositoryClass="App\Repository\UserRepository")
 * @ORM\Table(name="users")
 * @param string $x contact me@example.com
 */
class User
{
    /**
     * @ORM\Column(type="string")
     * @UniqueEmail
     */
    private $email;
}

interface Named {}
`

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	require.NoError(t, err)
	p := NewParser(loader)
	require.NoError(t, p.RegisterDefaultExtractors())
	return p
}

func TestPHPExtraction_ImportsClassesAndTags(t *testing.T) {
	p := newTestParser(t)

	file, err := p.ParseFile("src/Entity/User.php", []byte(entitySource))
	require.NoError(t, err)

	assert.Equal(t, "php", file.Language)
	assert.Equal(t, `App\Entity`, file.Namespace)

	assert.Equal(t, map[string]string{
		"ORM":         `Doctrine\ORM\Mapping`,
		"UniqueEmail": `App\Validator\UniqueEmail`,
		"Assert":      `App\Validator\Constraint`,
	}, file.ImportMap(`App\Entity`))
	assert.Empty(t, file.ImportMap(""))

	var functionImports int
	for _, imp := range file.Imports {
		if imp.Kind == ImportFunction {
			functionImports++
			assert.Equal(t, `App\helper`, imp.Module)
			assert.Equal(t, 6, imp.Location.Line)
		}
	}
	assert.Equal(t, 1, functionImports)

	classes := make(map[string]ClassKind)
	for _, c := range file.Classes {
		classes[c.FullName] = c.Kind
	}
	assert.Equal(t, map[string]ClassKind{
		`App\Entity\User`:  KindClass,
		`App\Entity\Named`: KindInterface,
	}, classes)

	names := make([]string, 0, len(file.DocTags))
	for _, tag := range file.DocTags {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{`@ORM\Entity`, `@ORM\Table`, "@param", `@ORM\Column`, "@UniqueEmail"}, names)

	first := file.DocTags[0].Location
	assert.Equal(t, 9, first.Line)
	assert.Equal(t, 4, first.Column)
	assert.Equal(t, 4+len(`@ORM\Entity`), first.EndColumn)
	assert.Equal(t, `@ORM\Entity`, entitySource[first.Offset:first.Offset+first.Length])
}

func TestPHPExtraction_BracedNamespaces(t *testing.T) {
	p := newTestParser(t)
	src := `<?php
namespace Acme\One {
    class Alpha {}
}
namespace Acme\Two {
    trait Beta {}
    enum Gamma {}
}
`
	file, err := p.ParseFile("multi.php", []byte(src))
	require.NoError(t, err)

	got := make(map[string]ClassKind)
	for _, c := range file.Classes {
		got[c.FullName] = c.Kind
	}
	assert.Equal(t, map[string]ClassKind{
		`Acme\One\Alpha`: KindClass,
		`Acme\Two\Beta`:  KindTrait,
		`Acme\Two\Gamma`: KindEnum,
	}, got)
	assert.Equal(t, `Acme\One`, file.Namespace)
}

func TestPHPExtraction_ImportsAreScopedToTheirNamespace(t *testing.T) {
	p := newTestParser(t)
	src := `<?php
/** @Header */
namespace Acme\One;

use Doctrine\ORM\Mapping as ORM;

/** @ORM\Entity */
class Alpha {}

namespace Acme\Two;

use Symfony\Component\Validator\Constraints as ORM;

/** @ORM\NotBlank */
class Beta {}
`
	file, err := p.ParseFile("multi.php", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"ORM": `Doctrine\ORM\Mapping`}, file.ImportMap(`Acme\One`))
	assert.Equal(t, map[string]string{"ORM": `Symfony\Component\Validator\Constraints`}, file.ImportMap(`Acme\Two`))

	scopes := make(map[string]string, len(file.DocTags))
	for _, tag := range file.DocTags {
		scopes[tag.Name] = tag.Namespace
	}
	assert.Equal(t, map[string]string{
		"@Header":       "",
		`@ORM\Entity`:   `Acme\One`,
		`@ORM\NotBlank`: `Acme\Two`,
	}, scopes)
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	p := newTestParser(t)

	_, err := p.ParseFile("README.md", []byte("# hi"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
	assert.False(t, p.IsSupportedPath("README.md"))
	assert.True(t, p.IsSupportedPath("templates/view.PHTML"))
}

func TestParseUseDeclaration(t *testing.T) {
	loc := Location{File: "x.php", Line: 3}
	tests := []struct {
		text string
		want []Import
	}{
		{
			text: `use Foo\Bar;`,
			want: []Import{{Module: `Foo\Bar`, Alias: "Bar", Kind: ImportClass, Location: loc}},
		},
		{
			text: `use \Foo\Bar AS Baz, Qux;`,
			want: []Import{
				{Module: `Foo\Bar`, Alias: "Baz", Kind: ImportClass, Location: loc},
				{Module: "Qux", Alias: "Qux", Kind: ImportClass, Location: loc},
			},
		},
		{
			text: `use const Foo\LIMIT;`,
			want: []Import{{Module: `Foo\LIMIT`, Alias: "LIMIT", Kind: ImportConst, Location: loc}},
		},
		{
			text: "use Foo\\{\n  Bar,\n  function baz,\n};",
			want: []Import{
				{Module: `Foo\Bar`, Alias: "Bar", Kind: ImportClass, Location: loc},
				{Module: `Foo\baz`, Alias: "baz", Kind: ImportFunction, Location: loc},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, parseUseDeclaration(tt.text, loc))
		})
	}
}

func TestImportMap_LaterAliasWins(t *testing.T) {
	f := &File{Imports: []Import{
		{Module: `A\Foo`, Alias: "Foo", Kind: ImportClass},
		{Module: `B\Foo`, Alias: "Foo", Kind: ImportClass},
		{Module: `C\foo`, Alias: "foo", Kind: ImportFunction},
	}}
	assert.Equal(t, map[string]string{"Foo": `B\Foo`}, f.ImportMap(""))
}
