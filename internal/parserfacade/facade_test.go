package parserfacade

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCpp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.cpp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleSource = `#include <vector>
#include "local.h"

namespace ns {

class Widget {
public:
    void spin();
};

} // namespace ns

void ns::Widget::spin() {
    int count = 0;
    count += 1;
}
`

func TestParseAndTopLevelIncludes(t *testing.T) {
	facade, err := New(8)
	require.NoError(t, err)

	path := writeTempCpp(t, sampleSource)
	tunit, err := facade.Parse(path, "sample.cpp")
	require.NoError(t, err)
	require.NotNil(t, tunit)

	includes := facade.TopLevelIncludes(tunit)
	require.Len(t, includes, 2)
	assert.Equal(t, "vector", includes[0].Filename)
	assert.Equal(t, "local.h", includes[1].Filename)
}

func TestParseIsCached(t *testing.T) {
	facade, err := New(8)
	require.NoError(t, err)

	path := writeTempCpp(t, sampleSource)
	first, err := facade.Parse(path, "sample.cpp")
	require.NoError(t, err)
	second, err := facade.Parse(path, "sample.cpp")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestCursorAtClassDeclaration(t *testing.T) {
	facade, err := New(0)
	require.NoError(t, err)

	path := writeTempCpp(t, sampleSource)
	tunit, err := facade.Parse(path, "sample.cpp")
	require.NoError(t, err)

	cursor, ok := facade.CursorAt(tunit, 6, 7) // "Widget" on the class_specifier line
	require.True(t, ok)
	assert.NotNil(t, cursor.Node)
}

func TestDiagnosticsOfCleanFileIsEmpty(t *testing.T) {
	facade, err := New(0)
	require.NoError(t, err)

	path := writeTempCpp(t, sampleSource)
	tunit, err := facade.Parse(path, "sample.cpp")
	require.NoError(t, err)

	assert.Empty(t, facade.DiagnosticsOf(tunit))
}

func TestDiagnosticsOfBrokenFileIsNotEmpty(t *testing.T) {
	facade, err := New(0)
	require.NoError(t, err)

	path := writeTempCpp(t, "class {{{ broken")
	tunit, err := facade.Parse(path, "broken.cpp")
	require.NoError(t, err)

	assert.NotEmpty(t, facade.DiagnosticsOf(tunit))
}

func TestTraverseVisitsFunctionDefinition(t *testing.T) {
	facade, err := New(0)
	require.NoError(t, err)

	path := writeTempCpp(t, sampleSource)
	tunit, err := facade.Parse(path, "sample.cpp")
	require.NoError(t, err)

	root := &Cursor{Node: tunit.Tree.RootNode(), Tunit: tunit}
	var sawFunction bool
	facade.Traverse(root, nil, func(cursor, parent *Cursor, state any) VisitResult {
		if facade.ASTNodeID(cursor) == KindFunction {
			sawFunction = true
			return Break
		}
		return Recurse
	})
	assert.True(t, sawFunction)
}

func TestTunitCacheEvictsOldestAtCapacity(t *testing.T) {
	cache := NewTunitCache(1)
	cache.Put("a.cpp", []byte("a"), &Tunit{Spelling: "a.cpp"})
	cache.Put("b.cpp", []byte("b"), &Tunit{Spelling: "b.cpp"})

	_, ok := cache.Get("a.cpp", []byte("a"))
	assert.False(t, ok)

	_, ok = cache.Get("b.cpp", []byte("b"))
	assert.True(t, ok)
}

func TestTunitCacheUnboundedWhenCapacityZero(t *testing.T) {
	cache := NewTunitCache(0)
	for i := 0; i < 50; i++ {
		content := []byte{byte(i)}
		cache.Put("f.cpp", content, &Tunit{Spelling: "f.cpp"})
	}
	assert.Equal(t, 50, cache.Len())
}
