package config

import (
	"os"
	"path/filepath"
	"testing"

	"codelinks/internal/marker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "codelinks", cfg.Project)
	assert.Equal(t, ".", cfg.Source.SrcDir)
	assert.True(t, cfg.Source.Gitignore)
	assert.True(t, cfg.Analyse.GetOnelineNeeds)
	assert.True(t, cfg.Analyse.GetNeedIDRefs)
	assert.Equal(t, []string{"@need-ids:"}, cfg.Analyse.NeedIDRefMarkers)
	assert.Equal(t, "@", cfg.Analyse.OnelineStyle.StartSequence)
	assert.GreaterOrEqual(t, cfg.Analyse.Workers, 4)
	assert.Equal(t, "output", cfg.Output.Dir)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("CODELINKS_OUTDIR", "")
	t.Setenv("CODELINKS_WORKERS", "")

	path := filepath.Join(t.TempDir(), "nested", "codelinks.yaml")

	cfg := DefaultConfig()
	cfg.Source.SrcDir = "src"
	cfg.Source.Exclude = []string{"vendor/**"}
	cfg.Analyse.Workers = 2
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "src"), loaded.Source.SrcDir)
	assert.Equal(t, []string{"vendor/**"}, loaded.Source.Exclude)
	assert.Equal(t, 2, loaded.Analyse.Workers)
	require.NoError(t, loaded.Validate())

	need, w := marker.Parse("@Title, ID_1\n", loaded.Analyse.OnelineStyle)
	require.Nil(t, w)
	assert.Equal(t, "impl", need.Fields["type"])
	assert.Equal(t, []string{}, need.Links())
}

func TestLoad_SrcDirRelativeToConfigFile(t *testing.T) {
	t.Setenv("CODELINKS_SRC_DIR", "")
	dir := t.TempDir()

	rel := filepath.Join(dir, "conf", "rel.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(rel), 0755))
	require.NoError(t, os.WriteFile(rel, []byte("source:\n  src_dir: ../src\n"), 0644))
	cfg, err := Load(rel)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.Source.SrcDir)

	abs := filepath.Join(dir, "abs.yaml")
	require.NoError(t, os.WriteFile(abs, []byte("source:\n  src_dir: "+filepath.ToSlash(filepath.Join(dir, "elsewhere"))+"\n"), 0644))
	cfg, err = Load(abs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "elsewhere"), cfg.Source.SrcDir)

	noKey := filepath.Join(dir, "conf", "empty.yaml")
	require.NoError(t, os.WriteFile(noKey, []byte("project: demo\n"), 0644))
	cfg, err = Load(noKey)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conf"), cfg.Source.SrcDir)

	t.Setenv("CODELINKS_SRC_DIR", "from-env")
	cfg, err = Load(rel)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Source.SrcDir)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Output, cfg.Output)
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codelinks.yaml")
	content := `
source:
  src_dir: ./tests/data
  languages: [rs]
analyse:
  get_need_id_refs: false
  oneline_comment_style:
    start_sequence: "[["
    end_sequence: "]]"
    field_split_char: ","
    needs_fields:
      - name: id
      - name: title
      - name: type
        default: impl
      - name: links
        type: list[str]
        default: []
logging:
  level: debug
  categories:
    watch: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(filepath.Dir(path), "tests", "data"), cfg.Source.SrcDir)
	assert.True(t, cfg.Source.Gitignore, "unset keys keep their defaults")
	assert.Equal(t, []string{"rs"}, cfg.Source.Languages)
	assert.False(t, cfg.Analyse.GetNeedIDRefs)
	assert.True(t, cfg.Analyse.GetOnelineNeeds)
	assert.Equal(t, "[[", cfg.Analyse.OnelineStyle.StartSequence)
	assert.False(t, cfg.Logging.IsCategoryEnabled("watch"))
	assert.True(t, cfg.Logging.IsCategoryEnabled("analyse"))

	need, w := marker.Parse("// [[IMPL_1, Function Foo]]", cfg.Analyse.OnelineStyle)
	require.Nil(t, w)
	assert.Equal(t, "IMPL_1", need.ID())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codelinks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unterminated"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CODELINKS_SRC_DIR", "/srv/src")
	t.Setenv("CODELINKS_OUTDIR", "/srv/out")
	t.Setenv("CODELINKS_SQLITE", "/srv/out/marks.db")
	t.Setenv("CODELINKS_LOG_LEVEL", "debug")
	t.Setenv("CODELINKS_WORKERS", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/src", cfg.Source.SrcDir)
	assert.Equal(t, "/srv/out", cfg.Output.Dir)
	assert.Equal(t, "/srv/out/marks.db", cfg.Output.SQLitePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Analyse.Workers)

	t.Setenv("CODELINKS_WORKERS", "many")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty src dir", func(c *Config) { c.Source.SrcDir = "" }},
		{"empty out dir", func(c *Config) { c.Output.Dir = "" }},
		{"zero workers", func(c *Config) { c.Analyse.Workers = 0 }},
		{"nothing to extract", func(c *Config) {
			c.Analyse.GetOnelineNeeds = false
			c.Analyse.GetNeedIDRefs = false
		}},
		{"marker clashes with start sequence", func(c *Config) { c.Analyse.NeedIDRefMarkers = []string{"@"} }},
		{"duplicate marker", func(c *Config) { c.Analyse.NeedIDRefMarkers = []string{"@ids:", "@ids:"} }},
		{"bad style", func(c *Config) { c.Analyse.OnelineStyle.EndSequence = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }},
		{"rst sequences equal", func(c *Config) {
			c.Analyse.GetRst = true
			c.Analyse.MarkedRst.EndSequence = c.Analyse.MarkedRst.StartSequence
		}},
		{"rst marker clashes with need-id marker", func(c *Config) {
			c.Analyse.GetRst = true
			c.Analyse.MarkedRst.StartSequence = "@need-ids:"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_MarkedRst(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Analyse.GetRst)
	cfg.Analyse.GetOnelineNeeds = false
	cfg.Analyse.GetNeedIDRefs = false
	cfg.Analyse.GetRst = true
	require.NoError(t, cfg.Validate(), "rst alone is enough to analyse")

	// a disabled extraction does not claim its markers
	cfg.Analyse.MarkedRst.StartSequence = "@need-ids:"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MarkedRst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codelinks.yaml")
	content := "analyse:\n  get_rst: true\n  marked_rst:\n    start_sequence: \"@begin-rst\"\n    end_sequence: \"@end-rst\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Analyse.GetRst)
	assert.Equal(t, "@begin-rst", cfg.Analyse.MarkedRst.StartSequence)
	assert.Equal(t, "@end-rst", cfg.Analyse.MarkedRst.EndSequence)
	assert.Equal(t, []string{"*"}, cfg.Analyse.MarkedRst.StripLeadingSequences, "unset keys keep their defaults")
}

func TestLoggingOptions(t *testing.T) {
	c := LoggingConfig{Level: "warn", JSON: true, Categories: map[string]bool{"git": false}}
	opts := c.Options()
	assert.Equal(t, "warn", opts.Level)
	assert.True(t, opts.JSON)
	assert.Equal(t, map[string]bool{"git": false}, opts.Categories)
}
