// Package vcab reads the VCAb structural antibody table and selects the
// variable and constant region templates for a recombination run.
package vcab

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Roles of a selected template.
const (
	RoleVariable = "v_template"
	RoleConstant = "c_template"
	RoleTarget   = "target"
)

// Entry is a single row of the VCAb table, restricted to the columns the
// pipeline uses. An entry describes one heavy/light chain pair of a PDB
// structure.
type Entry struct {
	PDB          string
	HChain       string
	LChain       string
	HCoordSeq    string
	LCoordSeq    string
	Title        string
	ReleaseDate  string
	Method       string
	Resolution   float64 // 0 when not reported
	Carbohydrate string
	HCSpecies    string

	// HType and LType are kept as found. The clean isotypes are their
	// leading word, e.g. "IGHA1" for "IGHA1(IGHV3-23)".
	HType, LType           string
	HIsotype, LIsotype     string
	HCCoordSeq, LCCoordSeq string
	HVSeq, LVSeq           string
	DisulfideBond          string
}

// columns maps every column the pipeline needs to the field it fills.
var columns = []struct {
	name     string
	required bool
	set      func(e *Entry, v string) error
}{
	{"pdb", true, func(e *Entry, v string) error {
		e.PDB = strings.ToLower(strings.TrimSpace(v))
		return nil
	}},
	{"Hchain", true, func(e *Entry, v string) error { e.HChain = v; return nil }},
	{"Lchain", true, func(e *Entry, v string) error { e.LChain = v; return nil }},
	{"H_coordinate_seq", false, func(e *Entry, v string) error { e.HCoordSeq = v; return nil }},
	{"L_coordinate_seq", false, func(e *Entry, v string) error { e.LCoordSeq = v; return nil }},
	{"title", false, func(e *Entry, v string) error { e.Title = v; return nil }},
	{"release_date", false, func(e *Entry, v string) error { e.ReleaseDate = v; return nil }},
	{"method", false, func(e *Entry, v string) error { e.Method = v; return nil }},
	{"resolution", false, setResolution},
	{"carbohydrate", false, func(e *Entry, v string) error { e.Carbohydrate = v; return nil }},
	{"HC_species", true, func(e *Entry, v string) error { e.HCSpecies = v; return nil }},
	{"Htype", true, func(e *Entry, v string) error {
		e.HType, e.HIsotype = v, CleanIsotype(v)
		return nil
	}},
	{"Ltype", true, func(e *Entry, v string) error {
		e.LType, e.LIsotype = v, CleanIsotype(v)
		return nil
	}},
	{"HC_coordinate_seq", false, func(e *Entry, v string) error { e.HCCoordSeq = v; return nil }},
	{"LC_coordinate_seq", false, func(e *Entry, v string) error { e.LCCoordSeq = v; return nil }},
	{"HV_seq", false, func(e *Entry, v string) error { e.HVSeq = v; return nil }},
	{"LV_seq", false, func(e *Entry, v string) error { e.LVSeq = v; return nil }},
	{"disulfide_bond", false, func(e *Entry, v string) error { e.DisulfideBond = v; return nil }},
}

func setResolution(e *Entry, v string) error {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "", "nan", "none", "na", "n/a":
		return nil
	}
	// Some entries list several resolutions, e.g. "2.1, 2.3".
	if i := strings.IndexAny(v, ",;"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	res, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid resolution '%s'", v)
	}
	e.Resolution = res
	return nil
}

var isotypeWord = regexp.MustCompile(`^\w+`)

// CleanIsotype returns the leading word of a VCAb chain type, which is the
// isotype or light chain class without any gene annotations.
func CleanIsotype(s string) string {
	return isotypeWord.FindString(strings.TrimSpace(s))
}

// ReadFile reads a VCAb table from a CSV file. Rows that cannot be read are
// skipped and reported to lg, which may be nil.
func ReadFile(path string, lg *log.Logger) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Read(f, lg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Read reads a VCAb table in CSV format. Columns are found by header name,
// so their order does not matter and unused columns are ignored.
//
// A row with a value that cannot be read (e.g., a resolution that is not a
// number) is skipped and reported to lg, which may be nil. Malformed CSV
// is an error.
func Read(r io.Reader, lg *log.Logger) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty VCAb table")
	} else if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	var missing []string
	for _, col := range columns {
		if _, ok := index[col.name]; !ok && col.required {
			missing = append(missing, col.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("VCAb table is missing columns: %s",
			strings.Join(missing, ", "))
	}

	var entries []Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		var e Entry
		var bad error
		for _, col := range columns {
			i, ok := index[col.name]
			if !ok || i >= len(record) {
				continue
			}
			if err := col.set(&e, record[i]); err != nil {
				line, _ := cr.FieldPos(i)
				bad = fmt.Errorf("line %d, column %s: %w", line, col.name, err)
				break
			}
		}
		if bad != nil {
			if lg != nil {
				lg.Printf("VCAb: skipping entry '%s': %s", e.PDB, bad)
			}
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Filter restricts a table to a species and light chain class. An empty
// field disables that condition.
type Filter struct {
	Species      string `yaml:"species"`
	LightIsotype string `yaml:"light_isotype"`
}

// DefaultFilter keeps human heavy chains paired with kappa light chains.
var DefaultFilter = Filter{
	Species:      "homo_sapiens",
	LightIsotype: "kappa",
}

// Match reports whether the entry passes the filter. The species must match
// exactly while the light chain class is a case insensitive substring match
// of the clean light isotype.
func (f Filter) Match(e Entry) bool {
	if len(f.Species) > 0 && e.HCSpecies != f.Species {
		return false
	}
	if len(f.LightIsotype) > 0 &&
		!strings.Contains(strings.ToLower(e.LIsotype),
			strings.ToLower(f.LightIsotype)) {
		return false
	}
	return true
}

// Refine returns the entries matching the filter, in table order.
func Refine(entries []Entry, f Filter) []Entry {
	refined := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			refined = append(refined, e)
		}
	}
	return refined
}

// Template is a table entry chosen for one role of the recombination.
type Template struct {
	Role string
	Entry
}

// Pair holds the two chosen templates.
type Pair struct {
	Variable Template
	Constant Template
}

// IsotypeLabel is the isotype of the recombinant, i.e., the clean heavy
// chain isotype of the constant region template.
func (p Pair) IsotypeLabel() string {
	return p.Constant.HIsotype
}

// Select finds the variable and constant region templates by PDB code. When
// a code has several rows (several Fabs in one asymmetric unit), the first
// is used and the choice is reported to lg, which may be nil.
func Select(entries []Entry, vCode, cCode string, lg *log.Logger) (Pair, error) {
	v, err := find(entries, vCode, lg)
	if err != nil {
		return Pair{}, fmt.Errorf("variable region template: %w", err)
	}
	c, err := find(entries, cCode, lg)
	if err != nil {
		return Pair{}, fmt.Errorf("constant region template: %w", err)
	}
	return Pair{
		Variable: Template{Role: RoleVariable, Entry: v},
		Constant: Template{Role: RoleConstant, Entry: c},
	}, nil
}

// Find returns all entries with the given PDB code.
func Find(entries []Entry, code string) []Entry {
	code = strings.ToLower(strings.TrimSpace(code))
	var found []Entry
	for _, e := range entries {
		if e.PDB == code {
			found = append(found, e)
		}
	}
	return found
}

func find(entries []Entry, code string, lg *log.Logger) (Entry, error) {
	found := Find(entries, code)
	switch {
	case len(found) == 0:
		return Entry{}, fmt.Errorf("no VCAb entry for '%s' after filtering", code)
	case len(found) > 1 && lg != nil:
		lg.Printf("VCAb has %d entries for '%s'; using H=%s L=%s.",
			len(found), code, found[0].HChain, found[0].LChain)
	}
	return found[0], nil
}
