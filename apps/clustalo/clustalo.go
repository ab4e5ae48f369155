package clustalo

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/TuftsBCB/seq"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/clustal"
)

type Config struct {
	Exec    string `yaml:"exec"`
	Threads int    `yaml:"threads"`

	// When true, the command line is echoed to stderr and the 'clustalo'
	// stdout and stderr will be mapped to the current processes' stdout and
	// stderr.
	Verbose bool `yaml:"verbose"`
}

var Default = Config{
	Exec:    "clustalo",
	Threads: runtime.NumCPU(),
	Verbose: false,
}

// Run aligns the sequences in the FASTA file at input and returns the
// alignment. The CLUSTAL output is written to a temporary file that is
// removed afterwards.
func (conf Config) Run(ctx context.Context, input string) (seq.MSA, error) {
	out, err := ioutil.TempFile("", "abmodel-clustal")
	if err != nil {
		return seq.MSA{}, err
	}
	out.Close()
	defer os.Remove(out.Name())

	return conf.RunTo(ctx, input, out.Name())
}

// RunTo is like Run, but keeps the CLUSTAL output at the path given.
// An existing file at output is overwritten.
func (conf Config) RunTo(ctx context.Context, input, output string) (seq.MSA, error) {
	args := []string{
		"-i", input,
		"-o", output,
		"--outfmt=clu",
		"--force",
	}
	if conf.Threads > 0 {
		args = append(args, fmt.Sprintf("--threads=%d", conf.Threads))
	}

	c := exec.CommandContext(ctx, conf.Exec, args...)
	var err error
	var vomit []byte
	if conf.Verbose {
		fmt.Fprintf(os.Stderr, "\n%s %s\n", conf.Exec, strings.Join(args, " "))
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		err = c.Run()
	} else {
		vomit, err = c.CombinedOutput()
	}
	if err != nil {
		return seq.MSA{}, fmt.Errorf("clustalo on '%s': %s\n%s",
			input, err, strings.TrimSpace(string(vomit)))
	}

	f, err := os.Open(output)
	if err != nil {
		return seq.MSA{}, err
	}
	defer f.Close()

	msa, err := clustal.Read(f)
	if err != nil {
		return seq.MSA{}, fmt.Errorf("reading clustalo output '%s': %w",
			output, err)
	}
	return msa, nil
}
