// Package config loads the YAML run file that describes one recombination
// run: the templates, the reference table, the directories and file names
// used for each stage, and the settings of the external programs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/apps/clustalo"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/apps/modeller"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/numbering"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/recombine"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/vcab"
)

// Aligners.
const (
	// AlignFiles reads CLUSTAL files prepared beforehand.
	AlignFiles = "files"
	// AlignClustalo runs Clustal Omega on the FASTA files.
	AlignClustalo = "clustalo"
	// AlignBuiltin aligns in process.
	AlignBuiltin = "builtin"
)

// Stages a run can stop after. An empty stage runs everything.
const (
	StopFasta     = "fasta"
	StopAlignment = "alignment"
	StopPIR       = "pir"
	StopBuild     = "build"
)

// DefaultFile is the run file name looked for when none is given.
const DefaultFile = "abmodel.yaml"

// Templates names the PDB codes of the two templates.
type Templates struct {
	Variable string `yaml:"variable"`
	Constant string `yaml:"constant"`
}

// Dirs are the directories of each stage. They must exist.
type Dirs struct {
	Fasta      string `yaml:"fasta"`
	Alignments string `yaml:"alignments"`
	PIR        string `yaml:"pir"`
	Atoms      string `yaml:"atoms"`
	Models     string `yaml:"models"`
	Records    string `yaml:"records"`
}

// Files are the output file names, relative to their stage's directory.
type Files struct {
	FastaHeavy   string `yaml:"fasta_heavy"`
	FastaLight   string `yaml:"fasta_light"`
	ClustalHeavy string `yaml:"clustal_heavy"`
	ClustalLight string `yaml:"clustal_light"`
	PIR          string `yaml:"pir"`
}

// Options are switches for optional behaviour.
type Options struct {
	AppendTimestamp bool `yaml:"append_timestamp_to_outputs"`
	CreatePIR       bool `yaml:"create_pir_file"`
	StoreRunRecord  bool `yaml:"store_run_record"`
}

// Config is a complete run description.
type Config struct {
	Templates Templates `yaml:"templates"`

	// Target is the code of the model target. When empty it is
	// "target_<isotype>" with the constant template's isotype.
	Target string `yaml:"target"`

	// VCAb is the path of the VCAb table (CSV).
	VCAb   string      `yaml:"vcab"`
	Filter vcab.Filter `yaml:"filter"`

	Boundaries numbering.Boundaries `yaml:"boundaries"`
	Motifs     recombine.Motifs     `yaml:"boundary_motifs"`

	Dirs  Dirs  `yaml:"dirs"`
	Files Files `yaml:"files"`

	Aligner  string          `yaml:"aligner"`
	Clustalo clustalo.Config `yaml:"clustalo"`
	Modeller modeller.Config `yaml:"modeller"`

	Options Options `yaml:"options"`

	// Stop, when set, ends the run after the named stage.
	Stop string `yaml:"stop"`
}

// Default returns a configuration with every setting but the templates and
// the VCAb table filled in. Directories are relative to the working
// directory.
func Default() *Config {
	mod := modeller.DefaultConfig
	mod.AtomDirs = nil
	mod.OutputDir = ""
	mod.Assess = append([]string{}, modeller.DefaultConfig.Assess...)
	return &Config{
		Filter:     vcab.DefaultFilter,
		Boundaries: numbering.DefaultBoundaries,
		Dirs: Dirs{
			Fasta:      "fasta_sequences",
			Alignments: "alignments",
			PIR:        "pir_files",
			Atoms:      "atom_files",
			Models:     "models",
			Records:    "run_records",
		},
		Files: Files{
			FastaHeavy:   "heavy_chain.fasta",
			FastaLight:   "light_chain.fasta",
			ClustalHeavy: "heavy_chain.clustal",
			ClustalLight: "light_chain.clustal",
			PIR:          "alignment.pir",
		},
		Aligner:  AlignBuiltin,
		Clustalo: clustalo.Default,
		Modeller: mod,
		Options: Options{
			AppendTimestamp: false,
			CreatePIR:       true,
			StoreRunRecord:  true,
		},
	}
}

// Read reads the run file at path over the defaults. Relative paths are
// resolved against the directory of the run file. The result is not
// validated, so that settings missing from the file can still be supplied
// (e.g., by command line flags) before Validate is called.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %s does not exist: %w", path, err)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.normalize(filepath.Dir(path))
	return cfg, nil
}

// Load is Read followed by Validate.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve makes every relative path absolute with respect to base.
func (c *Config) Resolve(base string) {
	c.normalize(base)
}

func (c *Config) normalize(base string) {
	c.Templates.Variable = strings.ToLower(strings.TrimSpace(c.Templates.Variable))
	c.Templates.Constant = strings.ToLower(strings.TrimSpace(c.Templates.Constant))
	c.Target = strings.TrimSpace(c.Target)
	c.Aligner = strings.ToLower(strings.TrimSpace(c.Aligner))
	c.Stop = strings.ToLower(strings.TrimSpace(c.Stop))

	c.VCAb = resolvePath(base, c.VCAb)
	for _, dir := range []*string{
		&c.Dirs.Fasta, &c.Dirs.Alignments, &c.Dirs.PIR,
		&c.Dirs.Atoms, &c.Dirs.Models, &c.Dirs.Records,
		&c.Modeller.OutputDir,
	} {
		*dir = resolvePath(base, *dir)
	}
	for i := range c.Modeller.AtomDirs {
		c.Modeller.AtomDirs[i] = resolvePath(base, c.Modeller.AtomDirs[i])
	}

	// Bare program names are looked up in PATH.
	for _, exec := range []*string{&c.Clustalo.Exec, &c.Modeller.Exec} {
		if strings.ContainsRune(*exec, '/') ||
			strings.ContainsRune(*exec, filepath.Separator) {
			*exec = resolvePath(base, *exec)
		}
	}
}

// RequiredDirs returns the directories a run reads from or writes to, up to
// the stage it stops after.
func (c *Config) RequiredDirs() []string {
	dirs := []string{c.Dirs.Atoms, c.Dirs.Fasta}
	if c.Stop != StopFasta {
		dirs = append(dirs, c.Dirs.Alignments)
		if c.Options.CreatePIR && c.Stop != StopAlignment {
			dirs = append(dirs, c.Dirs.PIR)
		}
	}
	if c.Builds() {
		dirs = append(dirs, c.BuildDirs()...)
	} else if c.Options.StoreRunRecord {
		dirs = append(dirs, c.Dirs.Records)
	}
	return distinct(dirs)
}

// BuildDirs returns the directories of the build stage alone: the template
// coordinate directories, the model directory and, when run records are kept,
// the record directory.
func (c *Config) BuildDirs() []string {
	dirs := append([]string{}, c.Modeller.AtomDirs...)
	if len(dirs) == 0 {
		dirs = append(dirs, c.Dirs.Atoms)
	}
	if len(c.Modeller.OutputDir) > 0 {
		dirs = append(dirs, c.Modeller.OutputDir)
	} else {
		dirs = append(dirs, c.Dirs.Models)
	}
	if c.Options.StoreRunRecord {
		dirs = append(dirs, c.Dirs.Records)
	}
	return distinct(dirs)
}

// CheckDirs returns an error naming the first of dirs that does not exist or
// is not a directory. Directories are never created.
func CheckDirs(dirs []string) error {
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("directory '%s' is not accessible: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("'%s' is not a directory", dir)
		}
	}
	return nil
}

func distinct(dirs []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, dir := range dirs {
		if len(dir) == 0 || seen[dir] {
			continue
		}
		seen[dir] = true
		out = append(out, dir)
	}
	return out
}

// Validate checks that the run is fully described. It does not look at the
// file system.
func (c *Config) Validate() error {
	if c.Templates.Variable == "" || c.Templates.Constant == "" {
		return fmt.Errorf("templates.variable and templates.constant are required")
	}
	if c.Templates.Variable == c.Templates.Constant {
		return fmt.Errorf("templates.variable and templates.constant are "+
			"both '%s'; MODELLER needs distinct template codes",
			c.Templates.Variable)
	}
	if c.VCAb == "" {
		return fmt.Errorf("vcab is required")
	}
	if strings.ContainsAny(c.Target, " \t:/") {
		return fmt.Errorf("target '%s' may not contain whitespace, ':' or '/'",
			c.Target)
	}
	for name, file := range map[string]string{
		"files.fasta_heavy":   c.Files.FastaHeavy,
		"files.fasta_light":   c.Files.FastaLight,
		"files.clustal_heavy": c.Files.ClustalHeavy,
		"files.clustal_light": c.Files.ClustalLight,
		"files.pir":           c.Files.PIR,
	} {
		if file == "" {
			return fmt.Errorf("%s is required", name)
		}
		if filepath.Base(file) != file {
			return fmt.Errorf("%s must be a file name, not '%s'", name, file)
		}
	}

	switch c.Aligner {
	case AlignFiles, AlignBuiltin:
	case AlignClustalo:
		if c.Clustalo.Exec == "" {
			return fmt.Errorf("clustalo.exec is required with the clustalo aligner")
		}
	default:
		return fmt.Errorf("aligner must be '%s', '%s' or '%s', not '%s'",
			AlignFiles, AlignClustalo, AlignBuiltin, c.Aligner)
	}

	switch c.Stop {
	case "", StopBuild:
		if !c.Options.CreatePIR {
			return fmt.Errorf("models cannot be built without creating the " +
				"PIR file (options.create_pir_file)")
		}
		if err := c.Modeller.Validate(); err != nil {
			return err
		}
	case StopFasta, StopAlignment, StopPIR:
	default:
		return fmt.Errorf("stop must be one of %s, %s, %s or %s, not '%s'",
			StopFasta, StopAlignment, StopPIR, StopBuild, c.Stop)
	}
	return nil
}

// Builds reports whether the run goes on to build models.
func (c *Config) Builds() bool {
	return c.Stop == "" || c.Stop == StopBuild
}

// Write saves the configuration as YAML.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
