package util

import (
	"os"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/config"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pdb"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pipeline"
)

// ConfigRead reads a run file without validating it, so that command line
// flags can still fill in what it lacks.
func ConfigRead(path string) *config.Config {
	cfg, err := config.Read(path)
	Assert(err, "Could not load run file '%s'", path)
	return cfg
}

func StructureRead(path string) *pdb.Entry {
	entry, err := pdb.Read(path)
	Assert(err, "Could not open structure file '%s'", path)
	return entry
}

func RecordRead(path string) *pipeline.Report {
	r, err := pipeline.ReadRecord(path)
	Assert(err, "Could not read run record '%s'", path)
	return r
}

func CreateFile(path string) *os.File {
	f, err := os.Create(path)
	Assert(err, "Could not create file '%s'", path)
	return f
}
