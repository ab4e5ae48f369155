package numbering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/TuftsBCB/seq"
)

var (
	// ErrBoundaryNotFound is returned by Split when no residue in the chain
	// is numbered with the requested boundary position.
	ErrBoundaryNotFound = errors.New("boundary position not found in chain")

	// ErrBoundaryAmbiguous is returned by Split when more than one residue
	// carries the boundary position.
	ErrBoundaryAmbiguous = errors.New("boundary position occurs more than once")
)

// Position is a residue number as assigned by the depositor of a structure,
// plus its insertion code (0 when there is none).
type Position struct {
	Num int
	Ins byte
}

// ParsePosition reads positions like "107", "100A" or "-3".
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return Position{}, fmt.Errorf("empty residue position")
	}
	var ins byte
	if last := s[len(s)-1]; last < '0' || last > '9' {
		ins = last
		s = s[:len(s)-1]
	}
	num, err := strconv.Atoi(s)
	if err != nil {
		return Position{}, fmt.Errorf("invalid residue position '%s%s'",
			s, insString(ins))
	}
	return Position{Num: num, Ins: ins}, nil
}

func (p Position) String() string {
	return fmt.Sprintf("%d%s", p.Num, insString(p.Ins))
}

// MarshalText lets positions appear as plain scalars in YAML and JSON.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	pos, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

func insString(ins byte) string {
	if ins == 0 || ins == ' ' || ins == '?' || ins == '.' {
		return ""
	}
	return string(ins)
}

// Residue is a single amino acid letter with its position.
type Residue struct {
	Letter seq.Residue
	Pos    Position
}

// Chain is an ordered list of numbered residues belonging to one chain of a
// structure. ID is the author chain identifier.
type Chain struct {
	ID       string
	Residues []Residue
}

// Zip pairs residue letters with positions. Both slices must have the same
// length.
func Zip(id string, letters []seq.Residue, positions []Position) (Chain, error) {
	if len(letters) != len(positions) {
		return Chain{}, fmt.Errorf("chain %s has %d residues but %d positions",
			id, len(letters), len(positions))
	}
	c := Chain{ID: id, Residues: make([]Residue, len(letters))}
	for i := range letters {
		c.Residues[i] = Residue{Letter: letters[i], Pos: positions[i]}
	}
	return c, nil
}

// Len returns the number of residues in the chain.
func (c Chain) Len() int {
	return len(c.Residues)
}

// Letters returns the one letter amino acid codes of the chain.
func (c Chain) Letters() []seq.Residue {
	rs := make([]seq.Residue, len(c.Residues))
	for i, r := range c.Residues {
		rs[i] = r.Letter
	}
	return rs
}

// Sequence returns the chain as a named sequence.
func (c Chain) Sequence(name string) seq.Sequence {
	return seq.Sequence{Name: name, Residues: c.Letters()}
}

func (c Chain) String() string {
	return string(c.Letters())
}

// First returns the position of the first residue. It panics on an empty
// chain.
func (c Chain) First() Position {
	return c.Residues[0].Pos
}

// Last returns the position of the last residue. It panics on an empty
// chain.
func (c Chain) Last() Position {
	return c.Residues[len(c.Residues)-1].Pos
}

// Index returns the index of the unique residue numbered pos.
func (c Chain) Index(pos Position) (int, error) {
	found := -1
	for i, r := range c.Residues {
		if r.Pos != pos {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("chain %s, position %s: %w",
				c.ID, pos, ErrBoundaryAmbiguous)
		}
		found = i
	}
	if found < 0 {
		return -1, fmt.Errorf("chain %s, position %s: %w",
			c.ID, pos, ErrBoundaryNotFound)
	}
	return found, nil
}

// Split cuts the chain at the boundary position. The variable region is the
// prefix up to and including the boundary residue and the constant region is
// everything after it. Both regions keep the chain identifier and share no
// memory with the original chain.
func Split(c Chain, boundary Position) (variable, constant Chain, err error) {
	i, err := c.Index(boundary)
	if err != nil {
		return Chain{}, Chain{}, err
	}
	variable = Chain{ID: c.ID, Residues: make([]Residue, i+1)}
	constant = Chain{ID: c.ID, Residues: make([]Residue, len(c.Residues)-i-1)}
	copy(variable.Residues, c.Residues[:i+1])
	copy(constant.Residues, c.Residues[i+1:])
	return variable, constant, nil
}

// Recombine splices a variable region onto a constant region. The hybrid
// takes the chain identifier of the variable region and every residue keeps
// the position it had in its source chain.
func Recombine(variable, constant Chain) Chain {
	rs := make([]Residue, 0, len(variable.Residues)+len(constant.Residues))
	rs = append(rs, variable.Residues...)
	rs = append(rs, constant.Residues...)
	return Chain{ID: variable.ID, Residues: rs}
}

// LocateMotif returns the position of the last residue of motif in the chain.
// This gives a boundary from the expected final residues of a variable
// domain (e.g. "LVTVSS" for most human VH genes). The motif must occur
// exactly once.
func LocateMotif(c Chain, motif string) (Position, error) {
	motif = strings.ToUpper(strings.TrimSpace(motif))
	if len(motif) == 0 {
		return Position{}, fmt.Errorf("empty boundary motif")
	}
	letters := c.String()
	first := strings.Index(letters, motif)
	if first < 0 {
		return Position{}, fmt.Errorf("chain %s, motif %s: %w",
			c.ID, motif, ErrBoundaryNotFound)
	}
	if strings.Index(letters[first+1:], motif) >= 0 {
		return Position{}, fmt.Errorf("chain %s, motif %s: %w",
			c.ID, motif, ErrBoundaryAmbiguous)
	}
	return c.Residues[first+len(motif)-1].Pos, nil
}

// Boundaries holds the last variable-domain position of each chain type.
type Boundaries struct {
	Heavy Position `yaml:"heavy" json:"heavy"`
	Light Position `yaml:"light" json:"light"`
}

// DefaultBoundaries are the Kabat/Chothia ends of the VH and VL domains.
var DefaultBoundaries = Boundaries{
	Heavy: Position{Num: 113},
	Light: Position{Num: 107},
}
