package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Exclude(t *testing.T) {
	f := Default()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"git internals", "/project/.git/objects/ab/cdef", true},
		{"hidden file", "/home/user/.bashrc", true},
		{"pycache", "/project/__pycache__/mod.cpython-312.pyc", true},
		{"compiled python", "/project/pkg/mod.pyc", true},
		{"node_modules", "/app/node_modules/left-pad/index.js", true},
		{"venv", "/project/venv/lib/python3.12/site.py", true},
		{"editor dir", "/project/.vscode/settings.json", true},
		{"regular source file", "/project/pkg/main.go", false},
		{"regular document", "/home/user/docs/report.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Exclude(tt.path))
		})
	}
}

func TestFilter_CustomPatterns(t *testing.T) {
	f := New("**/*.log", "**/tmp/**")

	assert.True(t, f.Exclude("/var/app/server.log"))
	assert.True(t, f.Exclude("/var/app/tmp/cache.dat"))
	assert.False(t, f.Exclude("/var/app/server.txt"))
}

func TestFilter_StarCrossesSeparators(t *testing.T) {
	// fnmatch semantics: "*" is not stopped by "/".
	f := New("*.secret")
	assert.True(t, f.Exclude("/deep/nested/dir/key.secret"))
}

func TestFilter_InvalidPatternSkipped(t *testing.T) {
	f := New("[", "**/*.log")

	assert.Equal(t, []string{"**/*.log"}, f.Patterns())
	assert.True(t, f.Exclude("/var/server.log"))
}

func TestFilter_EmptyFilterExcludesNothing(t *testing.T) {
	f := New()
	assert.False(t, f.Exclude("/any/path/at/all"))
}
