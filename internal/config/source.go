package config

// SourceConfig controls which files are analysed.
type SourceConfig struct {
	// SrcDir is the root of the source tree.
	SrcDir string `yaml:"src_dir" json:"src_dir,omitempty"`
	// Include globs win over Gitignore and Exclude.
	Include []string `yaml:"include" json:"include,omitempty"`
	// Exclude globs skip matching files (relative to SrcDir).
	Exclude []string `yaml:"exclude" json:"exclude,omitempty"`
	// Gitignore honours .gitignore files below SrcDir.
	Gitignore bool `yaml:"gitignore" json:"gitignore"`
	// Languages restricts analysis to these languages or extensions
	// (e.g. "rs", "cpp", ".h"). Empty means every supported language.
	Languages []string `yaml:"languages" json:"languages,omitempty"`
}

// DefaultSourceConfig returns defaults for source discovery.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		SrcDir:    ".",
		Gitignore: true,
	}
}
