package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/cmd/util"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build pir-file [pir-file ...]",
	Short: "Build and rank models from existing PIR alignment files",
	Long: `Builds models from each PIR file given, using the modeller settings of
the run file. Several files are built at the same time (see --cpu). Each PIR
file must hold exactly one sequence entry, and no two files may model the
same target.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := util.ConfigRead(util.FlagConfig)
		for _, dir := range cfg.BuildDirs() {
			util.AssertIsDir(dir)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		p := &pipeline.Pipeline{Log: util.Logger()}
		reports, errs := p.BuildAll(ctx, cfg, args)

		failed := 0
		for i, r := range reports {
			if len(args) > 1 && r != nil {
				fmt.Fprintf(os.Stdout, "# %s\n", args[i])
			}
			if r != nil {
				warnFailed(r)
				printReport(os.Stdout, r)
			}
			if util.Warning(errs[i], "Could not build '%s'", args[i]) {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d build(s) failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
