package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/cmd/util"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/config"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pipeline"
)

// Values of the override flags shared by run, recombine and pir.
var (
	flagVariable = ""
	flagConstant = ""
	flagTarget   = ""
	flagAligner  = ""
	flagStop     = ""
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage from template selection to ranked models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, flagStop)
	},
}

var recombineCmd = &cobra.Command{
	Use:   "recombine",
	Short: "Build the hybrid chains and write the per-chain FASTA files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, config.StopFasta)
	},
}

var pirCmd = &cobra.Command{
	Use:   "pir",
	Short: "Run up to and including the PIR alignment file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, config.StopPIR)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, recombineCmd, pirCmd} {
		addOverrideFlags(cmd)
		rootCmd.AddCommand(cmd)
	}
	runCmd.Flags().StringVar(&flagStop, "stop", flagStop,
		fmt.Sprintf("Stop after %s, %s, %s or %s.", config.StopFasta,
			config.StopAlignment, config.StopPIR, config.StopBuild))
}

// addOverrideFlags adds the flags that replace run file settings.
func addOverrideFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&flagVariable, "variable", flagVariable,
		"PDB code of the variable region template.")
	fs.StringVar(&flagConstant, "constant", flagConstant,
		"PDB code of the constant region template.")
	fs.StringVar(&flagTarget, "target", flagTarget,
		"Name of the modelled sequence (default: target_<isotype>).")
	fs.StringVar(&flagAligner, "aligner", flagAligner,
		fmt.Sprintf("One of %s, %s or %s.",
			config.AlignFiles, config.AlignClustalo, config.AlignBuiltin))
}

// loadConfig reads the run file and applies the flags that were given on
// the command line. A non-empty stop replaces the run file's stage.
func loadConfig(cmd *cobra.Command, stop string) *config.Config {
	cfg := util.ConfigRead(util.FlagConfig)
	fs := cmd.Flags()
	if fs.Changed("variable") {
		cfg.Templates.Variable = flagVariable
	}
	if fs.Changed("constant") {
		cfg.Templates.Constant = flagConstant
	}
	if fs.Changed("target") {
		cfg.Target = flagTarget
	}
	if fs.Changed("aligner") {
		cfg.Aligner = flagAligner
	}
	if len(stop) > 0 {
		cfg.Stop = stop
	}
	// Paths were resolved by ConfigRead; this only normalizes the overrides.
	cfg.Resolve(".")
	return cfg
}

func runStages(cmd *cobra.Command, stop string) error {
	cfg := loadConfig(cmd, stop)
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, dir := range cfg.RequiredDirs() {
		util.AssertIsDir(dir)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	p := &pipeline.Pipeline{Log: util.Logger()}
	report, err := p.Run(ctx, cfg)
	if report != nil {
		warnFailed(report)
		printReport(os.Stdout, report)
	}
	return err
}

// warnFailed warns about every model that could not be built.
func warnFailed(r *pipeline.Report) {
	for _, m := range r.Models {
		if !m.OK() {
			util.Warning(errors.New(m.Failure), "Model '%s' failed", m.Name)
		}
	}
}
