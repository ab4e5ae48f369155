package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/cmd/util"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/config"
)

// A run file may leave the templates to the command line.
func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFile)
	text := "vcab: VCAb.csv\naligner: clustalo\nstop: fasta\n"
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	saved := util.FlagConfig
	util.FlagConfig = path
	t.Cleanup(func() { util.FlagConfig = saved })

	cmd := &cobra.Command{Use: "test"}
	addOverrideFlags(cmd)
	t.Cleanup(func() {
		flagVariable, flagConstant, flagTarget, flagAligner = "", "", "", ""
	})
	for name, value := range map[string]string{
		"variable": "1N8Z",
		"constant": "3m8o",
		"aligner":  "Builtin",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatal(err)
		}
	}

	cfg := loadConfig(cmd, "PIR")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("overridden run file does not validate: %s", err)
	}
	if cfg.Templates.Variable != "1n8z" || cfg.Templates.Constant != "3m8o" {
		t.Fatalf("templates are %+v", cfg.Templates)
	}
	if cfg.Aligner != config.AlignBuiltin {
		t.Fatalf("aligner is %s, want %s", cfg.Aligner, config.AlignBuiltin)
	}
	if cfg.Stop != config.StopPIR {
		t.Fatalf("stop is %s, want %s", cfg.Stop, config.StopPIR)
	}
	if cfg.Target != "" {
		t.Fatalf("target was set without --target: %s", cfg.Target)
	}
	if cfg.VCAb != filepath.Join(dir, "VCAb.csv") {
		t.Fatalf("vcab path is %s", cfg.VCAb)
	}

	// Without --stop the run file's stage is kept.
	if cfg := loadConfig(cmd, ""); cfg.Stop != config.StopFasta {
		t.Fatalf("stop is %s, want %s", cfg.Stop, config.StopFasta)
	}
}
