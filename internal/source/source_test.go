package source

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rustDemo = `// demo.rs

/// This is a doc comment for the main function
/// @Main function implementation, main_demo, impl, [REQ_001]
fn main() {
    println!("Hello from Rust!");
    process_data();
}

// @Data processing function, process_func, impl, [REQ_002]
fn process_data() {
    let data = vec![1, 2, 3];
    for item in data {
        println!("Processing: {}", item);
    }
}

/* Block comment with marker
   @User data structure, struct_def, impl, [REQ_003]
*/
struct User {
    name: String,
    age: u32,
}

impl User {
    // @User constructor method, new_user, impl, [REQ_004]
    fn new(name: String, age: u32) -> Self {
        User { name, age }
    }
}
`

func trimmed(c Comment) string {
	return strings.TrimRight(c.Text, "\n")
}

func TestRustParser_Comments(t *testing.T) {
	comments, err := NewRustParser().Comments(context.Background(), []byte(rustDemo))
	require.NoError(t, err)
	require.Len(t, comments, 6)

	tests := []struct {
		prefix   string
		kind     Kind
		startRow int
		endRow   int
		scope    string
	}{
		{"// demo.rs", KindLine, 0, 0, "main"},
		{"/// This is a doc comment", KindDoc, 2, 2, "main"},
		{"/// @Main function implementation", KindDoc, 3, 3, "main"},
		{"// @Data processing function", KindLine, 9, 9, "process_data"},
		{"/* Block comment with marker", KindBlock, 17, 19, "User"},
		{"// @User constructor method", KindLine, 26, 26, "new"},
	}
	for i, tt := range tests {
		c := comments[i]
		assert.True(t, strings.HasPrefix(trimmed(c), tt.prefix), "comment %d: %q", i, c.Text)
		assert.Equal(t, tt.kind, c.Kind, "comment %d", i)
		assert.Equal(t, tt.startRow, c.StartRow, "comment %d", i)
		assert.Equal(t, tt.endRow, c.EndRow, "comment %d", i)
		assert.Equal(t, tt.scope, c.Scope, "comment %d", i)
	}
	assert.Equal(t, 4, comments[5].StartColumn)
}

func TestGoParser_Comments(t *testing.T) {
	src := `package sample

// Run greets.
func Run() {}

/* Config is configuration. */
type Config struct{}

func (c *Config) Load() {
	// inside the method
	_ = c
}
`
	comments, err := NewGoParser().Comments(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.Equal(t, "// Run greets.", comments[0].Text)
	assert.Equal(t, KindLine, comments[0].Kind)
	assert.Equal(t, "Run", comments[0].Scope)

	assert.Equal(t, KindBlock, comments[1].Kind)
	assert.Equal(t, "Config", comments[1].Scope)

	assert.Equal(t, "// inside the method", comments[2].Text)
	assert.Equal(t, "Load", comments[2].Scope)
}

func TestPythonParser_Docstrings(t *testing.T) {
	src := `"""Module docstring."""

# helper comment
def helper():
    """Helper docstring."""
    return 1


class Thing:
    """Thing docstring."""
`
	comments, err := NewPythonParser().Comments(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, comments, 4)

	assert.Equal(t, KindDocstring, comments[0].Kind)
	assert.Equal(t, "", comments[0].Scope)

	assert.Equal(t, "# helper comment", comments[1].Text)
	assert.Equal(t, KindLine, comments[1].Kind)
	assert.Equal(t, "helper", comments[1].Scope)

	assert.Equal(t, KindDocstring, comments[2].Kind)
	assert.Equal(t, "helper", comments[2].Scope)

	assert.Equal(t, KindDocstring, comments[3].Kind)
	assert.Equal(t, "Thing", comments[3].Scope)
}

func TestPythonParser_ModuleDocstringAfterShebang(t *testing.T) {
	src := `#!/usr/bin/env python
"""@Module doc, MOD_1"""

# note
def run():
    """@Run doc, RUN_1"""
    return 1
`
	comments, err := NewPythonParser().Comments(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, comments, 4)

	assert.Equal(t, KindLine, comments[0].Kind)
	assert.Equal(t, "#!/usr/bin/env python", comments[0].Text)

	assert.Equal(t, KindDocstring, comments[1].Kind)
	assert.Equal(t, `"""@Module doc, MOD_1"""`, comments[1].Text)
	assert.Equal(t, 1, comments[1].StartRow)
	assert.Equal(t, "", comments[1].Scope)

	assert.Equal(t, "# note", comments[2].Text)
	assert.Equal(t, KindDocstring, comments[3].Kind)
	assert.Equal(t, "run", comments[3].Scope)
}

func TestPythonParser_StringStatementsOutsideBodies(t *testing.T) {
	src := `if True:
    """not a docstring"""
x = "assigned"
`
	comments, err := NewPythonParser().Comments(context.Background(), []byte(src))
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCParser_FunctionScope(t *testing.T) {
	src := "// [[IMPL_1, Function Foo]]\nvoid foo() {}\n"
	comments, err := NewCParser().Comments(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "foo", comments[0].Scope)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, "rs", r.Parser("src/demo.RS").Language())
	assert.Equal(t, "cpp", r.Parser("a/b.hpp").Language())
	assert.Nil(t, r.Parser("README.md"))
	assert.Contains(t, r.Extensions(), ".py")

	_, err := r.Comments(context.Background(), "notes.txt", []byte("text"))
	assert.Error(t, err)

	only, err := r.Restrict([]string{"rs", ".c"})
	require.NoError(t, err)
	assert.Equal(t, []string{".c", ".rs"}, only.Extensions())

	_, err = r.Restrict([]string{"cobol"})
	assert.Error(t, err)
}

func TestRegistry_NormalizesCRLF(t *testing.T) {
	src := "// @Title, ID_1\r\nfn main() {}\r\n"
	comments, err := DefaultRegistry().Comments(context.Background(), "main.rs", []byte(src))
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.NotContains(t, comments[0].Text, "\r")
}

func TestIsText(t *testing.T) {
	assert.True(t, IsText([]byte("fn main() {}\n")))
	assert.True(t, IsText([]byte("héllo")))
	assert.False(t, IsText([]byte{'a', 0, 'b'}))
	assert.False(t, IsText([]byte{0xff, 0xfe, 0xfd}))

	long := []byte(strings.Repeat("a", textSampleSize-1) + "é")
	assert.True(t, IsText(long))
}

func TestNormalizeExtension(t *testing.T) {
	assert.Equal(t, ".rs", NormalizeExtension("RS"))
	assert.Equal(t, ".go", NormalizeExtension(".go"))
	assert.Equal(t, "", NormalizeExtension(""))
}
