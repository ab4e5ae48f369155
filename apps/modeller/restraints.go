package modeller

import (
	"fmt"
	"regexp"
)

// Restraints are added to MODELLER's default restraints when models are
// built. Residues are named "<number>:<chain>" (e.g. "20:A" or "100A:H")
// and atoms "<atom>:<number>:<chain>" (e.g. "CA:547:B").
type Restraints struct {
	// Alpha and Strands restrain residue ranges to secondary structure.
	Alpha   []Range `yaml:"alpha" json:"alpha,omitempty"`
	Strands []Range `yaml:"strands" json:"strands,omitempty"`

	Sheets     []Sheet     `yaml:"sheets" json:"sheets,omitempty"`
	Distances  []Distance  `yaml:"distances" json:"distances,omitempty"`
	Disulfides []Disulfide `yaml:"disulfides" json:"disulfides,omitempty"`
}

// Range is an inclusive range of residues.
type Range struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Sheet pairs two strands through the hydrogen bond between a backbone N
// atom and a backbone O atom. HBonds is negative for an anti-parallel sheet
// and positive for a parallel one.
type Sheet struct {
	N      string `yaml:"n" json:"n"`
	O      string `yaml:"o" json:"o"`
	HBonds int    `yaml:"h_bonds" json:"h_bonds"`
}

// Distance is a Gaussian restraint on the distance between two atoms.
type Distance struct {
	A     string  `yaml:"a" json:"a"`
	B     string  `yaml:"b" json:"b"`
	Mean  float64 `yaml:"mean" json:"mean"`
	Stdev float64 `yaml:"stdev" json:"stdev"`
}

// Disulfide patches a disulfide bond between two cysteines.
type Disulfide struct {
	A string `yaml:"a" json:"a"`
	B string `yaml:"b" json:"b"`
}

var (
	residueID = regexp.MustCompile(`^-?[0-9]+[A-Za-z]?:[A-Za-z0-9]$`)
	atomID    = regexp.MustCompile(`^[A-Z0-9']+:-?[0-9]+[A-Za-z]?:[A-Za-z0-9]$`)
)

// Empty reports whether there are no restraints at all.
func (r Restraints) Empty() bool {
	return len(r.Alpha) == 0 && len(r.Strands) == 0 && len(r.Sheets) == 0 &&
		len(r.Distances) == 0 && len(r.Disulfides) == 0
}

// Validate checks every residue and atom name. Names end up in a Python
// script, so anything that is not a well formed name is rejected.
func (r Restraints) Validate() error {
	for _, rng := range append(append([]Range{}, r.Alpha...), r.Strands...) {
		if err := checkResidue(rng.From); err != nil {
			return err
		}
		if err := checkResidue(rng.To); err != nil {
			return err
		}
	}
	for _, s := range r.Sheets {
		if err := checkAtom(s.N); err != nil {
			return err
		}
		if err := checkAtom(s.O); err != nil {
			return err
		}
		if s.HBonds == 0 {
			return fmt.Errorf("sheet %s/%s needs a non-zero number of "+
				"hydrogen bonds", s.N, s.O)
		}
	}
	for _, d := range r.Distances {
		if err := checkAtom(d.A); err != nil {
			return err
		}
		if err := checkAtom(d.B); err != nil {
			return err
		}
		if d.Stdev <= 0 {
			return fmt.Errorf("distance %s/%s needs a positive standard "+
				"deviation", d.A, d.B)
		}
	}
	for _, d := range r.Disulfides {
		if err := checkResidue(d.A); err != nil {
			return err
		}
		if err := checkResidue(d.B); err != nil {
			return err
		}
	}
	return nil
}

func checkResidue(id string) error {
	if !residueID.MatchString(id) {
		return fmt.Errorf("'%s' is not a residue name like '20:A'", id)
	}
	return nil
}

func checkAtom(id string) error {
	if !atomID.MatchString(id) {
		return fmt.Errorf("'%s' is not an atom name like 'CA:547:B'", id)
	}
	return nil
}
