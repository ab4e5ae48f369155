package main

import (
	"os"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"
	"github.com/spf13/cobra"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/cmd/util"
)

var flagChain = ""

var chainsCmd = &cobra.Command{
	Use:   "chains structure-file [fasta-file]",
	Short: "Write the chain sequences of a PDB or mmCIF file as FASTA",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		entry := util.StructureRead(args[0])

		var seqs []seq.Sequence
		for _, chain := range entry.Chains {
			if len(flagChain) > 0 && chain.ID != flagChain {
				continue
			}
			if chain.Len() == 0 {
				continue
			}
			name := entry.IdCode + "|" + chain.ID
			util.Verbosef("%s: %d residues, %s to %s", name, chain.Len(),
				chain.First(), chain.Last())
			seqs = append(seqs, chain.Sequence(name))
		}
		if len(seqs) == 0 {
			util.Fatalf("Could not find any chains with amino acids.")
		}

		out := os.Stdout
		if len(args) == 2 {
			out = util.CreateFile(args[1])
		}
		util.Assert(fasta.NewWriter(out).WriteAll(seqs),
			"Could not write FASTA")
		util.Assert(out.Close(), "Could not close '%s'", out.Name())
	},
}

func init() {
	chainsCmd.Flags().StringVar(&flagChain, "chain", flagChain,
		"Only write this chain.")
	rootCmd.AddCommand(chainsCmd)
}
