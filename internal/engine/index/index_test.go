package index

import (
	"fmt"
	"sync"
	"testing"

	"annotcheck/internal/engine/parser"

	"github.com/stretchr/testify/assert"
)

func decl(full string, kind parser.ClassKind, line int) parser.ClassDecl {
	return parser.ClassDecl{FullName: full, Kind: kind, Location: parser.Location{Line: line}}
}

func TestClassIndex_ExistsIsCaseInsensitiveAndIgnoresLeadingSeparator(t *testing.T) {
	ix := New(nil, nil)
	ix.ReplaceFile("src/User.php", []parser.ClassDecl{decl(`App\Entity\User`, parser.KindClass, 3)})

	assert.True(t, ix.Exists(`App\Entity\User`))
	assert.True(t, ix.Exists(`\App\Entity\User`))
	assert.True(t, ix.Exists(`app\entity\USER`))
	assert.False(t, ix.Exists(`App\Entity\Group`))
	assert.False(t, ix.Exists(""))
	assert.False(t, ix.Exists(`\`))
}

func TestClassIndex_ReplaceAndRemoveFile(t *testing.T) {
	ix := New(nil, nil)
	ix.ReplaceFile("a.php", []parser.ClassDecl{decl(`A\Foo`, parser.KindClass, 1), decl(`A\Bar`, parser.KindInterface, 5)})
	ix.ReplaceFile("b.php", []parser.ClassDecl{decl(`A\Foo`, parser.KindClass, 2)})
	assert.Equal(t, 2, ix.Len())

	ix.ReplaceFile("a.php", []parser.ClassDecl{decl(`A\Baz`, parser.KindTrait, 1)})
	assert.False(t, ix.Exists(`A\Bar`))
	assert.True(t, ix.Exists(`A\Foo`), "b.php still declares A\\Foo")
	assert.True(t, ix.Exists(`A\Baz`))

	records := ix.Lookup(`a\foo`)
	if assert.Len(t, records, 1) {
		assert.Equal(t, "b.php", records[0].File)
	}

	ix.RemoveFile("b.php")
	assert.False(t, ix.Exists(`A\Foo`))
	assert.Equal(t, 1, ix.Len())
}

func TestClassIndex_KnownClassesAndNamespaces(t *testing.T) {
	ix := New([]string{`\Symfony\Component\Routing\Annotation\Route`}, []string{`Doctrine\ORM\Mapping`})

	assert.True(t, ix.Exists(`Symfony\Component\Routing\Annotation\Route`))
	assert.True(t, ix.Exists(`\Doctrine\ORM\Mapping\Entity`))
	assert.True(t, ix.Exists(`doctrine\orm\mapping\Sub\Column`))
	assert.False(t, ix.Exists(`Doctrine\ORM\MappingExtra\Entity`))
	assert.False(t, ix.Exists(`Doctrine\ORM\Mapping`))
}

func TestClassIndex_ConcurrentAccess(t *testing.T) {
	ix := New(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("f%d.php", i)
			ix.ReplaceFile(path, []parser.ClassDecl{decl(fmt.Sprintf(`N\C%d`, i), parser.KindClass, 1)})
			_ = ix.Exists(fmt.Sprintf(`N\C%d`, (i+1)%16))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, ix.Len())
}
