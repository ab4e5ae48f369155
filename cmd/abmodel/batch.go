package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/cmd/util"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/config"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pipeline"
)

var flagJobs = 1

var batchCmd = &cobra.Command{
	Use:   "batch run-file [run-file ...]",
	Short: "Run several run files, a few at a time",
	Long: `Runs the pipeline for every run file given. Each run goes as far as its
own 'stop' setting, and its directories must already exist. Runs are
independent: one failing does not stop the others, but the command exits
with an error when any of them failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		jobs := make(chan int)
		reports := make([]*pipeline.Report, len(args))

		if flagJobs < 1 {
			flagJobs = 1
		}
		progress := util.NewProgress(len(args))
		wg := new(sync.WaitGroup)
		for i := 0; i < flagJobs; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					r, err := runFile(ctx, args[i])
					reports[i] = r
					progress.Done(args[i], err)
				}
			}()
		}
		for i := range args {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		failed := progress.Close()

		for i, r := range reports {
			if r == nil {
				continue
			}
			fmt.Fprintf(os.Stdout, "# %s\n", args[i])
			printReport(os.Stdout, r)
		}
		return failed
	},
}

func init() {
	batchCmd.Flags().IntVarP(&flagJobs, "jobs", "j", flagJobs,
		"The number of runs to do at the same time.")
	rootCmd.AddCommand(batchCmd)
}

func runFile(ctx context.Context, path string) (*pipeline.Report, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	lg := util.Logger()
	lg.SetPrefix(path + ": ")
	return (&pipeline.Pipeline{Log: lg}).Run(ctx, cfg)
}
