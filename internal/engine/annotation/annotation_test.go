package annotation

import (
	"testing"

	"annotcheck/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTagName(t *testing.T) {
	imports := map[string]string{
		"Foo": `App\Bar\Foo`,
		"ORM": `Doctrine\ORM\Mapping`,
	}

	tests := []struct {
		name   string
		tag    string
		want   string
		wantOK bool
	}{
		{"imported alias", "@Foo", `App\Bar\Foo`, true},
		{"imported alias without at", "Foo", `App\Bar\Foo`, true},
		{"nested segments", `@Foo\Sub\Thing`, `App\Bar\Foo\Sub\Thing`, true},
		{"aliased namespace", `@ORM\Entity`, `Doctrine\ORM\Mapping\Entity`, true},
		{"absolute", `@\Foobar\Baz`, `\Foobar\Baz`, true},
		{"absolute shadowing an import", `@\Foo`, `\Foo`, true},
		{"not imported", "@Foobar", "", false},
		{"not imported nested", `@Other\Thing`, "", false},
		{"alias lookup is case sensitive", "@foo", "", false},
		{"empty", "@", "", false},
		{"lone separator", `@\`, "", false},
		{"empty string", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveTagName(tt.tag, imports)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTagName_AbsoluteIgnoresImports(t *testing.T) {
	for _, imports := range []map[string]string{nil, {}, {`\Foo`: "X"}, {"Foo": "Y"}} {
		got, ok := ResolveTagName(`@\Foo\Bar`, imports)
		assert.True(t, ok)
		assert.Equal(t, `\Foo\Bar`, got)
	}
}

func TestResolveTagName_Idempotent(t *testing.T) {
	imports := map[string]string{"Foo": `App\Bar\Foo`}
	a, aok := ResolveTagName(`@Foo\X`, imports)
	b, bok := ResolveTagName(`@Foo\X`, imports)
	assert.Equal(t, a, b)
	assert.Equal(t, aok, bok)
	assert.Equal(t, map[string]string{"Foo": `App\Bar\Foo`}, imports)
}

func TestCheck_MissingClassProducesDiagnostic(t *testing.T) {
	at := parser.Location{File: "User.php", Line: 4, Column: 4, EndLine: 4, EndColumn: 8}

	d, ok := Check(`App\Bar\Foo`, true, at, func(string) bool { return false })
	require.True(t, ok)
	assert.Equal(t, MessageClassNotFound, d.Message)
	assert.Equal(t, "Class not found", d.Message)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, RuleClassNotFound, d.Rule)
	assert.Equal(t, at, d.Location)
	assert.Equal(t, `App\Bar\Foo`, d.ClassName)
}

func TestCheck_ExistingClassProducesNothing(t *testing.T) {
	calls := 0
	_, ok := Check(`App\Bar\Foo`, true, parser.Location{}, func(name string) bool {
		calls++
		assert.Equal(t, `App\Bar\Foo`, name)
		return true
	})
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestCheck_AbsentNeverCallsOracle(t *testing.T) {
	_, ok := Check("", false, parser.Location{}, func(string) bool {
		t.Fatal("oracle must not be called for unresolved tags")
		return false
	})
	assert.False(t, ok)
}

func TestResolveThenCheck_UnimportedTagNeverReported(t *testing.T) {
	resolved, ok := ResolveTagName("@Unknown", map[string]string{"Foo": "A\\Foo"})
	_, report := Check(resolved, ok, parser.Location{}, func(string) bool { return false })
	assert.False(t, report)
}

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity(" Error ")
	require.NoError(t, err)
	assert.Equal(t, SeverityError, s)

	_, err = ParseSeverity("fatal")
	assert.Error(t, err)
}
