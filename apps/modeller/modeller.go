package modeller

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Output model formats.
const (
	MMCIF = "MMCIF"
	PDB   = "PDB"
)

// DefaultConfig builds five models in mmCIF format assessed with DOPE and
// GA341, superposing the templates first. For example:
//
//	results, err := modeller.DefaultConfig.Run(ctx, job)
var DefaultConfig = Config{
	Exec:            "mod10.6",
	AtomDirs:        []string{"."},
	OutputDir:       ".",
	StartingModel:   1,
	EndingModel:     5,
	OutputFormat:    MMCIF,
	InitialMalign3D: true,
	Assess:          []string{"DOPE", "GA341"},
	Verbose:         true,
	Vomit:           false,
}

// Config is used to specify how MODELLER is executed and how the models of
// a job are built. It also controls the level of vomit echoed to stderr.
type Config struct {
	// Exec runs a MODELLER Python script given as its only argument. This is
	// either MODELLER's own wrapper (e.g., 'mod10.6') or a Python
	// interpreter that can import modeller.
	Exec string `yaml:"exec" json:"exec"`

	// AtomDirs are searched for the coordinate files of the templates.
	AtomDirs []string `yaml:"atom_dirs" json:"atom_dirs"`

	// OutputDir is where models are written. It must exist.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Models StartingModel through EndingModel (inclusive) are built.
	StartingModel int `yaml:"starting_model" json:"starting_model"`
	EndingModel   int `yaml:"ending_model" json:"ending_model"`

	// OutputFormat is MMCIF or PDB.
	OutputFormat string `yaml:"output_format" json:"output_format"`

	// Name, when set, replaces the target code as the prefix of model file
	// names.
	Name string `yaml:"name" json:"name,omitempty"`

	// When InitialMalign3D is true, the templates are superposed before
	// modelling.
	InitialMalign3D bool `yaml:"initial_malign3d" json:"initial_malign3d"`

	// Assess lists the assessment methods: DOPE, DOPEHR and GA341. DOPE is
	// required since models are ranked by it.
	Assess []string `yaml:"assess" json:"assess"`

	Restraints Restraints `yaml:"restraints" json:"restraints"`

	// Verbose controls whether all commands executed are printed to stderr.
	Verbose bool `yaml:"verbose" json:"-"`

	// When Vomit is true, MODELLER logs verbosely and all of its output is
	// also printed to stderr.
	Vomit bool `yaml:"vomit" json:"-"`
}

// Validate checks the configuration without touching the file system.
func (conf Config) Validate() error {
	if len(conf.Exec) == 0 {
		return fmt.Errorf("modeller: no executable set")
	}
	if conf.StartingModel < 1 || conf.EndingModel < conf.StartingModel {
		return fmt.Errorf("modeller: bad model range %d-%d",
			conf.StartingModel, conf.EndingModel)
	}
	switch conf.OutputFormat {
	case MMCIF, PDB:
	default:
		return fmt.Errorf("modeller: output format must be %s or %s, not '%s'",
			MMCIF, PDB, conf.OutputFormat)
	}
	dope := false
	for _, name := range conf.Assess {
		if _, ok := assessMethods[strings.ToUpper(name)]; !ok {
			return fmt.Errorf("modeller: unknown assessment method '%s'", name)
		}
		if strings.ToUpper(name) == "DOPE" {
			dope = true
		}
	}
	if !dope {
		return fmt.Errorf("modeller: DOPE assessment is required to rank models")
	}
	if strings.ContainsAny(conf.Name, "/\\") {
		return fmt.Errorf("modeller: name '%s' contains a path separator",
			conf.Name)
	}
	if err := conf.Restraints.Validate(); err != nil {
		return fmt.Errorf("modeller: %w", err)
	}
	return nil
}

// Job is a single modelling task: an alignment file, the codes of the
// templates in it and the code of the target.
type Job struct {
	Alignment string   `json:"alignment"`
	Knowns    []string `json:"knowns"`
	Sequence  string   `json:"sequence"`
}

// Run builds the models of a job. The driver script and the JSON file it
// reports to live in a temporary directory that is removed afterwards.
// MODELLER runs with OutputDir as its working directory.
func (conf Config) Run(ctx context.Context, job Job) (Results, error) {
	if err := conf.Validate(); err != nil {
		return Results{}, err
	}
	if len(job.Knowns) == 0 || len(job.Sequence) == 0 ||
		len(job.Alignment) == 0 {
		return Results{}, fmt.Errorf("modeller: a job needs an alignment, "+
			"templates and a target")
	}
	if err := absolute(&conf, &job); err != nil {
		return Results{}, err
	}
	if info, err := os.Stat(conf.OutputDir); err != nil {
		return Results{}, fmt.Errorf("modeller: output directory: %w", err)
	} else if !info.IsDir() {
		return Results{}, fmt.Errorf("modeller: output directory '%s' is "+
			"not a directory", conf.OutputDir)
	}

	tempDir, err := ioutil.TempDir("", "abmodel-modeller")
	if err != nil {
		return Results{}, err
	}
	defer os.RemoveAll(tempDir)

	outputs := filepath.Join(tempDir, "outputs.json")
	script, err := conf.script(job, outputs)
	if err != nil {
		return Results{}, err
	}
	scriptPath := filepath.Join(tempDir, "build_models.py")
	if err := ioutil.WriteFile(scriptPath, script, 0644); err != nil {
		return Results{}, err
	}

	if conf.Verbose {
		fmt.Fprintf(os.Stderr, "(cd %s && %s %s)\n",
			conf.OutputDir, conf.Exec, scriptPath)
	}
	c := exec.CommandContext(ctx, conf.Exec, scriptPath)
	c.Dir = conf.OutputDir
	out, err := c.CombinedOutput()

	if conf.Vomit {
		fmt.Fprintf(os.Stderr, "%s\n", string(out))
	}
	if err != nil {
		return Results{}, fmt.Errorf("%s\n%s", tail(out, 20), err)
	}
	return newResults(job, conf.OutputDir, outputs)
}

// RunAll will execute MODELLER in parallel over all jobs given. The order
// and length of BOTH of the return values []Results and []error is
// precisely equivalent to the order and length of the input jobs.
//
// Namely, for all i, either the i'th error is nil and the i'th Results is
// set, or the i'th error is not nil.
//
// If any particular job fails, its error is recorded, but does not stop the
// other jobs. At most GOMAXPROCS jobs run at once. Jobs that share a target
// code and a Name overwrite each other's models.
func (conf Config) RunAll(ctx context.Context, jobs []Job) ([]Results, []error) {
	queue := make(chan int, len(jobs))
	results := make([]Results, len(jobs))
	errors := make([]error, len(jobs))
	wg := new(sync.WaitGroup)
	for i := 0; i < runtime.GOMAXPROCS(0); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for job := range queue {
				res, err := conf.Run(ctx, jobs[job])
				if err != nil {
					errors[job] = err
				} else {
					results[job] = res
				}
			}
		}()
	}
	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results, errors
}

// absolute makes every path the driver script sees absolute, since MODELLER
// runs in the output directory.
func absolute(conf *Config, job *Job) error {
	var err error
	abs := func(p string) string {
		if err != nil {
			return p
		}
		var a string
		a, err = filepath.Abs(p)
		return a
	}
	conf.OutputDir = abs(conf.OutputDir)
	dirs := make([]string, len(conf.AtomDirs))
	for i, dir := range conf.AtomDirs {
		dirs[i] = abs(dir)
	}
	conf.AtomDirs = dirs
	job.Alignment = abs(job.Alignment)
	return err
}

// tail returns the last n lines of output.
func tail(out []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
