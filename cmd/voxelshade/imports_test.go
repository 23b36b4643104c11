package main

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/Carmen-Shannon/oxy-voxel"

// moduleImports walks the non-test imports of dir and every package of this module it reaches,
// returning each import path with the package that first imported it.
func moduleImports(t *testing.T, root, dir string) map[string]string {
	t.Helper()
	seen := map[string]bool{}
	found := map[string]string{}
	var walk func(pkg, dir string)
	walk = func(pkg, dir string) {
		if seen[dir] {
			return
		}
		seen[dir] = true
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
				continue
			}
			f, err := parser.ParseFile(token.NewFileSet(), filepath.Join(dir, name), nil, parser.ImportsOnly)
			require.NoError(t, err)
			for _, spec := range f.Imports {
				path, err := strconv.Unquote(spec.Path.Value)
				require.NoError(t, err)
				if _, ok := found[path]; !ok {
					found[path] = pkg
				}
				if rel, ok := strings.CutPrefix(path, modulePath+"/"); ok {
					walk(path, filepath.Join(root, filepath.FromSlash(rel)))
				}
			}
		}
	}
	walk(modulePath+"/cmd/voxelshade", dir)
	return found
}

func TestHeadlessImports(t *testing.T) {
	imports := moduleImports(t, filepath.Join("..", ".."), ".")
	require.Contains(t, imports, modulePath+"/engine/shading")

	for _, banned := range []string{
		"github.com/go-gl/glfw/v3.3/glfw",
		"github.com/cogentcore/webgpu/wgpuglfw",
		modulePath + "/engine/window",
		modulePath + "/engine/scene",
	} {
		by, ok := imports[banned]
		assert.False(t, ok, "%s is imported by %s", banned, by)
	}
}
