package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// RecordName is the name of the n'th run record of a template pair and
// target.
func RecordName(variable, constant, target string, n int) string {
	return fmt.Sprintf("model_outputs_%s_%s_%s%d.json",
		variable, constant, target, n)
}

// writeRecord saves the report as JSON in dir under the first unused
// RecordName, counting up from 0.
func writeRecord(dir string, r *Report) error {
	for n := 0; ; n++ {
		path := filepath.Join(dir, RecordName(r.Variable, r.Constant, r.Target, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		} else if err != nil {
			return fmt.Errorf("run record: %w", err)
		}

		r.Files.Record = path
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			f.Close()
			return fmt.Errorf("run record '%s': %w", path, err)
		}
		return f.Close()
	}
}

// ReadRecord reads a run record written by Run.
func ReadRecord(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("run record '%s': %w", path, err)
	}
	return &r, nil
}
