// abmodel builds antibody models whose variable region comes from one VCAb
// template and whose constant region comes from another.
//
// A run is described by a YAML run file (abmodel.yaml by default):
//
//	templates:
//	  variable: 1n8z
//	  constant: 3m8o
//	vcab: VCAb.csv
//	boundaries:
//	  heavy: "113"
//	  light: "107"
//	modeller:
//	  exec: mod10.6
//
// 'abmodel run' goes from the table to ranked models. The 'recombine' and
// 'pir' commands stop after the FASTA files and the PIR file, and 'build'
// picks up from an existing PIR file.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/cmd/util"
)

var rootCmd = &cobra.Command{
	Use:          "abmodel",
	Short:        "Recombine antibody variable and constant regions and model them",
	SilenceUsage: true,
}

func init() {
	util.CommonFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
