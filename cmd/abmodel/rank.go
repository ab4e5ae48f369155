package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/cmd/util"
)

var rankCmd = &cobra.Command{
	Use:   "rank record-file [record-file ...]",
	Short: "Show the models of saved runs ranked by DOPE score",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, path := range args {
			printReport(os.Stdout, util.RecordRead(path))
		}
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
}
