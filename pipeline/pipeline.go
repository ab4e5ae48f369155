// Package pipeline runs a whole recombination: template selection,
// recombination, per-chain FASTA files, alignment, the PIR file, the
// MODELLER build and the run record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/apps/modeller"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/assemble"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/config"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/numbering"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pir"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/recombine"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/vcab"
)

// Files are the paths of everything a run wrote or read.
type Files struct {
	FastaHeavy   string `json:"fasta_heavy,omitempty"`
	FastaLight   string `json:"fasta_light,omitempty"`
	ClustalHeavy string `json:"clustal_heavy,omitempty"`
	ClustalLight string `json:"clustal_light,omitempty"`
	PIR          string `json:"pir,omitempty"`
	Record       string `json:"record,omitempty"`
}

// Report describes a finished run. It is also the run record.
type Report struct {
	Started time.Time `json:"started"`

	Variable string `json:"variable_template"`
	Constant string `json:"constant_template"`
	Isotype  string `json:"isotype"`
	Target   string `json:"target"`

	VariableBoundaries numbering.Boundaries `json:"variable_boundaries"`
	ConstantBoundaries numbering.Boundaries `json:"constant_boundaries"`

	Files Files `json:"files"`

	// Stopped is the stage the run stopped after, if it stopped early.
	Stopped string `json:"stopped,omitempty"`

	// Models are all models in build order and Ranked the successful ones,
	// best first.
	Models []modeller.Model `json:"models,omitempty"`
	Ranked []modeller.Model `json:"ranked,omitempty"`
}

// Best returns the best model, if any was built.
func (r *Report) Best() (modeller.Model, bool) {
	if len(r.Ranked) == 0 {
		return modeller.Model{}, false
	}
	return r.Ranked[0], true
}

// Pipeline carries what a run needs besides its configuration.
type Pipeline struct {
	// Log receives progress lines. It may be nil.
	Log *log.Logger

	// Now is the clock used for the run's start time. It defaults to
	// time.Now.
	Now func() time.Time
}

// Run runs the pipeline with the default Pipeline settings.
func Run(ctx context.Context, cfg *config.Config, lg *log.Logger) (*Report, error) {
	return (&Pipeline{Log: lg}).Run(ctx, cfg)
}

// Run runs every stage up to cfg.Stop. The run record is written last, also
// when the run stops early.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := config.CheckDirs(cfg.RequiredDirs()); err != nil {
		return nil, err
	}
	lg := p.logger()
	r := &Report{Started: p.now()}
	stamp := func(name string) string {
		if !cfg.Options.AppendTimestamp {
			return name
		}
		return timestamped(name, r.Started)
	}

	hybrid, err := p.recombine(cfg, r, lg)
	if err != nil {
		return nil, err
	}

	r.Files.FastaHeavy, r.Files.FastaLight, err = hybrid.WriteFastaFiles(
		cfg.Dirs.Fasta, stamp(cfg.Files.FastaHeavy), stamp(cfg.Files.FastaLight))
	if err != nil {
		return nil, err
	}
	lg.Printf("Wrote FASTA files '%s' and '%s'.",
		r.Files.FastaHeavy, r.Files.FastaLight)
	if cfg.Stop == config.StopFasta {
		return p.finish(cfg, r, config.StopFasta, lg)
	}

	alns, err := alignChains(ctx, cfg, hybrid, r, stamp, lg)
	if err != nil {
		return nil, err
	}
	if cfg.Stop == config.StopAlignment {
		return p.finish(cfg, r, config.StopAlignment, lg)
	}

	if !cfg.Options.CreatePIR {
		return p.finish(cfg, r, config.StopAlignment, lg)
	}
	entries, err := assemble.Hybrid(hybrid, alns, r.Target)
	if err != nil {
		return nil, err
	}
	r.Files.PIR = filepath.Join(cfg.Dirs.PIR, stamp(cfg.Files.PIR))
	if err := assemble.WriteFile(r.Files.PIR, entries); err != nil {
		return nil, err
	}
	lg.Printf("Wrote PIR file '%s'.", r.Files.PIR)
	if cfg.Stop == config.StopPIR {
		return p.finish(cfg, r, config.StopPIR, lg)
	}

	return p.finishBuild(cfg, r, build(ctx, cfg, r, entries, lg), lg)
}

// Build runs only the build stage on an existing PIR file. The target is the
// file's sequence entry and the templates are its other entries.
func (p *Pipeline) Build(ctx context.Context, cfg *config.Config, path string) (*Report, error) {
	reports, errs := p.BuildAll(ctx, cfg, []string{path})
	return reports[0], errs[0]
}

// BuildAll runs the build stage on several PIR files, building at most
// GOMAXPROCS of them at once. The order and length of both return values
// match paths. A file whose models all failed has both a report (also
// written as a run record) and an error wrapping modeller.ErrNoModels.
//
// Two files modelling the same target are rejected, since their models would
// overwrite each other.
func (p *Pipeline) BuildAll(
	ctx context.Context,
	cfg *config.Config,
	paths []string,
) ([]*Report, []error) {
	reports := make([]*Report, len(paths))
	errs := make([]error, len(paths))
	fail := func(err error) ([]*Report, []error) {
		for i := range errs {
			errs[i] = err
		}
		return reports, errs
	}
	if err := cfg.Modeller.Validate(); err != nil {
		return fail(err)
	}
	if err := config.CheckDirs(cfg.BuildDirs()); err != nil {
		return fail(err)
	}
	lg := p.logger()
	conf := modellerConfig(cfg)

	var jobs []modeller.Job
	var index []int
	targets := make(map[string]string)
	for i, path := range paths {
		r, entries, err := readBuild(path)
		if err != nil {
			errs[i] = err
			continue
		}
		prefix := r.Target
		if len(conf.Name) > 0 {
			prefix = conf.Name
		}
		if other, ok := targets[prefix]; ok {
			errs[i] = fmt.Errorf("%s: models named '%s' are already built "+
				"from '%s'", path, prefix, other)
			continue
		}
		targets[prefix] = path
		r.Started = p.now()
		reports[i] = r

		job := buildJob(r, entries)
		lg.Printf("Building models %d-%d of '%s' from %s.",
			conf.StartingModel, conf.EndingModel, job.Sequence,
			strings.Join(job.Knowns, ", "))
		jobs = append(jobs, job)
		index = append(index, i)
	}

	results, runErrs := conf.RunAll(ctx, jobs)
	for j, i := range index {
		err := runErrs[j]
		if err != nil {
			err = fmt.Errorf("%s: building models: %w", paths[i], err)
		} else {
			err = rank(reports[i], results[j], lg)
		}
		reports[i], errs[i] = p.finishBuild(cfg, reports[i], err, lg)
	}
	return reports, errs
}

// readBuild reads and checks a PIR file for the build stage.
func readBuild(path string) (*Report, []pir.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	entries, err := pir.Read(f)
	f.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := pir.Validate(entries); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	r := &Report{}
	for _, e := range entries {
		if e.Type == pir.Sequence {
			if len(r.Target) > 0 {
				return nil, nil, fmt.Errorf("%s: more than one sequence "+
					"entry ('%s' and '%s')", path, r.Target, e.Code)
			}
			r.Target = e.Code
		}
	}
	if len(r.Target) == 0 {
		return nil, nil, fmt.Errorf("%s: no sequence entry to model", path)
	}
	codes := knowns(entries)
	switch len(codes) {
	case 0:
		return nil, nil, fmt.Errorf("%s: no template entries", path)
	case 1:
		r.Variable, r.Constant = codes[0], codes[0]
	default:
		r.Variable, r.Constant = codes[0], codes[1]
	}
	r.Files.PIR = path
	return r, entries, nil
}

// recombine selects and loads the templates and builds the hybrid.
func (p *Pipeline) recombine(
	cfg *config.Config,
	r *Report,
	lg *log.Logger,
) (*recombine.Hybrid, error) {
	table, err := vcab.ReadFile(cfg.VCAb, lg)
	if err != nil {
		return nil, err
	}
	refined := vcab.Refine(table, cfg.Filter)
	lg.Printf("VCAb: %d of %d entries pass the filter (species '%s', "+
		"light chain '%s').", len(refined), len(table),
		cfg.Filter.Species, cfg.Filter.LightIsotype)

	pair, err := vcab.Select(refined,
		cfg.Templates.Variable, cfg.Templates.Constant, lg)
	if err != nil {
		return nil, err
	}
	r.Variable, r.Constant = pair.Variable.PDB, pair.Constant.PDB
	r.Isotype = pair.IsotypeLabel()
	r.Target = cfg.Target
	if len(r.Target) == 0 {
		r.Target = "target_" + r.Isotype
	}
	lg.Printf("Constant region template is %s.", r.Isotype)

	v, err := recombine.Load(pair.Variable, cfg.Dirs.Atoms)
	if err != nil {
		return nil, err
	}
	c, err := recombine.Load(pair.Constant, cfg.Dirs.Atoms)
	if err != nil {
		return nil, err
	}

	r.VariableBoundaries, err = v.Boundaries(cfg.Boundaries, cfg.Motifs)
	if err != nil {
		return nil, err
	}
	r.ConstantBoundaries, err = c.Boundaries(cfg.Boundaries, cfg.Motifs)
	if err != nil {
		return nil, err
	}
	hybrid, err := recombine.BuildEach(v, c,
		r.VariableBoundaries, r.ConstantBoundaries)
	if err != nil {
		return nil, err
	}
	lg.Printf("Hybrid heavy chain: %d residues, light chain: %d residues.",
		hybrid.Heavy.Hybrid.Len(), hybrid.Light.Hybrid.Len())
	return hybrid, nil
}

// build runs MODELLER on the PIR file and ranks the models.
func build(
	ctx context.Context,
	cfg *config.Config,
	r *Report,
	entries []pir.Entry,
	lg *log.Logger,
) error {
	conf := modellerConfig(cfg)
	job := buildJob(r, entries)
	lg.Printf("Building models %d-%d of '%s' from %s.",
		conf.StartingModel, conf.EndingModel, job.Sequence,
		strings.Join(job.Knowns, ", "))

	res, err := conf.Run(ctx, job)
	if err != nil {
		return fmt.Errorf("building models: %w", err)
	}
	return rank(r, res, lg)
}

// modellerConfig fills in the engine directories that the run file leaves to
// the run's own directories.
func modellerConfig(cfg *config.Config) modeller.Config {
	conf := cfg.Modeller
	if len(conf.AtomDirs) == 0 {
		conf.AtomDirs = []string{cfg.Dirs.Atoms}
	}
	if len(conf.OutputDir) == 0 {
		conf.OutputDir = cfg.Dirs.Models
	}
	return conf
}

func buildJob(r *Report, entries []pir.Entry) modeller.Job {
	return modeller.Job{
		Alignment: r.Files.PIR,
		Knowns:    knowns(entries),
		Sequence:  r.Target,
	}
}

// rank stores the models of a build in r. It fails with modeller.ErrNoModels
// when none was built.
func rank(r *Report, res modeller.Results, lg *log.Logger) error {
	r.Models = res.Models
	r.Ranked = res.Ranked()
	for _, m := range res.Failed() {
		lg.Printf("Model %s failed: %s", m.Name, m.Failure)
	}
	best, err := res.Best()
	if err != nil {
		return err
	}
	lg.Printf("Top model: %s", best)
	return nil
}

// knowns returns the distinct codes of the template entries.
func knowns(entries []pir.Entry) []string {
	var codes []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.Type == pir.Sequence || seen[e.Code] {
			continue
		}
		seen[e.Code] = true
		codes = append(codes, e.Code)
	}
	return codes
}

func (p *Pipeline) finish(
	cfg *config.Config,
	r *Report,
	stopped string,
	lg *log.Logger,
) (*Report, error) {
	r.Stopped = stopped
	if stopped != "" {
		lg.Printf("Stopping after the %s stage.", stopped)
	}
	if !cfg.Options.StoreRunRecord {
		return r, nil
	}
	if err := writeRecord(cfg.Dirs.Records, r); err != nil {
		return nil, err
	}
	lg.Printf("Wrote run record '%s'.", r.Files.Record)
	return r, nil
}

// finishBuild ends a run after its build stage. When no model could be built
// the run record is still written, and the report is returned with the error.
func (p *Pipeline) finishBuild(
	cfg *config.Config,
	r *Report,
	err error,
	lg *log.Logger,
) (*Report, error) {
	if err != nil && !errors.Is(err, modeller.ErrNoModels) {
		return nil, err
	}
	if _, ferr := p.finish(cfg, r, "", lg); ferr != nil {
		return nil, ferr
	}
	return r, err
}

func (p *Pipeline) logger() *log.Logger {
	if p.Log == nil {
		return log.New(ioutil.Discard, "", 0)
	}
	return p.Log
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// timestamped inserts the time before the extension of name.
func timestamped(name string, t time.Time) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%s%s",
		strings.TrimSuffix(name, ext), t.Format("20060102-150405"), ext)
}
