package modeller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"
)

// ErrNoModels is returned by Best when no model was built successfully.
var ErrNoModels = errors.New("no model was built successfully")

// Model is the outcome of building one model. Scores are nil when MODELLER
// did not report them, which is always the case for failed models.
type Model struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Failure string   `json:"failure,omitempty"`
	DOPE    *float64 `json:"dope,omitempty"`
	DOPEHR  *float64 `json:"dopehr,omitempty"`
	GA341   *float64 `json:"ga341,omitempty"`
}

// OK reports whether the model was built.
func (m Model) OK() bool {
	return len(m.Failure) == 0
}

func (m Model) String() string {
	if !m.OK() {
		return fmt.Sprintf("%s (failed: %s)", m.Name, m.Failure)
	}
	if m.DOPE == nil {
		return fmt.Sprintf("%s (no DOPE score)", m.Name)
	}
	return fmt.Sprintf("%s (DOPE score %.3f)", m.Name, *m.DOPE)
}

// Results corresponds to the outputs of one MODELLER job, in the order the
// models were built.
type Results struct {
	Job    Job     `json:"job"`
	Dir    string  `json:"dir"`
	Models []Model `json:"models"`
}

// Ranked returns the successfully built models that have a DOPE score,
// sorted by DOPE score with the best (lowest) first. Ties keep build order.
func (res Results) Ranked() []Model {
	var ok []Model
	for _, m := range res.Models {
		if m.OK() && m.DOPE != nil {
			ok = append(ok, m)
		}
	}
	sort.SliceStable(ok, func(i, j int) bool {
		return *ok[i].DOPE < *ok[j].DOPE
	})
	return ok
}

// Best returns the model with the lowest DOPE score.
func (res Results) Best() (Model, error) {
	ranked := res.Ranked()
	if len(ranked) == 0 {
		return Model{}, fmt.Errorf("%s: %w", res.Job.Sequence, ErrNoModels)
	}
	return ranked[0], nil
}

// Failed returns the models MODELLER could not build.
func (res Results) Failed() []Model {
	var failed []Model
	for _, m := range res.Models {
		if !m.OK() {
			failed = append(failed, m)
		}
	}
	return failed
}

// newResults reads the JSON file written by the driver script.
func newResults(job Job, dir, outputs string) (Results, error) {
	res := Results{Job: job, Dir: dir}

	raw, err := ioutil.ReadFile(outputs)
	if err != nil {
		return res, fmt.Errorf("Could not read MODELLER's outputs file '%s' "+
			"because: %s.", outputs, err)
	}
	var models []struct {
		Name    *string  `json:"name"`
		Failure *string  `json:"failure"`
		DOPE    *float64 `json:"dope"`
		DOPEHR  *float64 `json:"dopehr"`
		GA341   *float64 `json:"ga341"`
	}
	if err := json.Unmarshal(raw, &models); err != nil {
		return res, fmt.Errorf("Could not process MODELLER's outputs file "+
			"'%s' because: %s.", outputs, err)
	}
	for i, m := range models {
		model := Model{DOPE: m.DOPE, DOPEHR: m.DOPEHR, GA341: m.GA341}
		if m.Name != nil {
			model.Name = *m.Name
			model.Path = filepath.Join(dir, model.Name)
		} else {
			model.Name = fmt.Sprintf("model %d", i+1)
		}
		if m.Failure != nil {
			model.Failure = *m.Failure
			if len(model.Failure) == 0 {
				model.Failure = "unknown failure"
			}
		}
		res.Models = append(res.Models, model)
	}
	return res, nil
}
