package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/cmd/util"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/vcab"
)

var flagAll = false

var templatesCmd = &cobra.Command{
	Use:   "templates [pdb-code ...]",
	Short: "List the VCAb entries that pass the run file's filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := util.ConfigRead(util.FlagConfig)
		table, err := vcab.ReadFile(cfg.VCAb, util.Logger())
		if err != nil {
			return err
		}
		entries := table
		if !flagAll {
			entries = vcab.Refine(table, cfg.Filter)
		}
		if len(args) > 0 {
			var found []vcab.Entry
			for _, code := range args {
				matches := vcab.Find(entries, code)
				if len(matches) == 0 {
					util.Warnf("No entry for '%s'.", code)
				}
				found = append(found, matches...)
			}
			entries = found
		}
		util.Verbosef("%d of %d entries listed.", len(entries), len(table))

		rows := make([][]string, len(entries))
		for i, e := range entries {
			res := ""
			if e.Resolution > 0 {
				res = fmt.Sprintf("%.2f", e.Resolution)
			}
			rows[i] = []string{e.PDB, e.HChain, e.LChain,
				e.HIsotype, e.LIsotype, e.HCSpecies, res}
		}
		fmt.Fprintln(os.Stdout, renderTable(
			[]string{"PDB", "H", "L", "Isotype", "Light", "Species", "Resolution"},
			rows))
		return nil
	},
}

func init() {
	templatesCmd.Flags().BoolVar(&flagAll, "all", flagAll,
		"When set, the species and light chain filter is not applied.")
	rootCmd.AddCommand(templatesCmd)
}
