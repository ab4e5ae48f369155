package util

import (
	"io/ioutil"
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/config"
)

var (
	FlagCpu     = runtime.NumCPU()
	FlagVerbose = false
	FlagConfig  = config.DefaultFile
)

func init() {
	log.SetFlags(0)
}

// CommonFlags registers the flags every subcommand accepts on root and sets
// GOMAXPROCS once they are parsed.
func CommonFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.IntVar(&FlagCpu, "cpu", FlagCpu,
		"The max number of CPUs to use.")
	pf.BoolVarP(&FlagVerbose, "verbose", "v", FlagVerbose,
		"When set, progress is logged to stderr.")
	pf.StringVarP(&FlagConfig, "config", "c", FlagConfig,
		"The YAML run file.")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		runtime.GOMAXPROCS(FlagCpu)
	}
}

// Logger returns the logger handed to library packages. It is silent unless
// --verbose is set.
func Logger() *log.Logger {
	if FlagVerbose {
		return log.New(os.Stderr, "", 0)
	}
	return log.New(ioutil.Discard, "", 0)
}
