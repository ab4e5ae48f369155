// Package recombine splices the variable region of one antibody template
// onto the constant region of another, separately for the heavy and light
// chains, and writes the per-chain sequence sets the aligner consumes.
package recombine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/align"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/numbering"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pdb"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/vcab"
)

// HybridCode is the code of the recombinant in sequence names.
const HybridCode = "fab_hybrid"

// Kind is a chain type.
type Kind byte

const (
	Heavy Kind = 'H'
	Light Kind = 'L'
)

func (k Kind) String() string {
	switch k {
	case Heavy:
		return "heavy"
	case Light:
		return "light"
	}
	return fmt.Sprintf("Kind(%c)", byte(k))
}

// Template is a VCAb entry together with the numbered heavy and light chains
// read from its coordinate file.
type Template struct {
	vcab.Template
	Structure *pdb.Entry
	Heavy     numbering.Chain
	Light     numbering.Chain
}

// Load locates and reads the coordinate file of a template in atomDir.
func Load(t vcab.Template, atomDir string) (*Template, error) {
	path, err := pdb.Locate(atomDir, t.PDB)
	if err != nil {
		return nil, fmt.Errorf("%s '%s': %w", t.Role, t.PDB, err)
	}
	s, err := pdb.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%s '%s': %w", t.Role, t.PDB, err)
	}
	return New(t, s)
}

// New pairs a VCAb entry with an already read structure. Both of the entry's
// chains must be present in the structure.
func New(t vcab.Template, s *pdb.Entry) (*Template, error) {
	heavy, ok := s.Chain(t.HChain)
	if !ok {
		return nil, fmt.Errorf("%s '%s': heavy chain %s not in %s "+
			"(chains: %v)", t.Role, t.PDB, t.HChain, s.Path, s.ChainOrder())
	}
	light, ok := s.Chain(t.LChain)
	if !ok {
		return nil, fmt.Errorf("%s '%s': light chain %s not in %s "+
			"(chains: %v)", t.Role, t.PDB, t.LChain, s.Path, s.ChainOrder())
	}
	return &Template{Template: t, Structure: s, Heavy: heavy, Light: light}, nil
}

// Chain returns the heavy or light chain.
func (t *Template) Chain(k Kind) numbering.Chain {
	if k == Heavy {
		return t.Heavy
	}
	return t.Light
}

// Region is a chain cut into its variable and constant regions.
type Region struct {
	Variable numbering.Chain
	Constant numbering.Chain
}

// Regions splits both chains of the template at the boundaries.
func (t *Template) Regions(b numbering.Boundaries) (heavy, light Region, err error) {
	heavy.Variable, heavy.Constant, err = numbering.Split(t.Heavy, b.Heavy)
	if err != nil {
		return Region{}, Region{}, fmt.Errorf("%s '%s' heavy chain: %w",
			t.Role, t.PDB, err)
	}
	light.Variable, light.Constant, err = numbering.Split(t.Light, b.Light)
	if err != nil {
		return Region{}, Region{}, fmt.Errorf("%s '%s' light chain: %w",
			t.Role, t.PDB, err)
	}
	return heavy, light, nil
}

// Motifs are the expected final residues of the heavy and light variable
// domains, e.g. "LVTVSS" for most human VH genes. An empty motif keeps the
// numbered boundary for that chain.
type Motifs struct {
	Heavy string `yaml:"heavy" json:"heavy,omitempty"`
	Light string `yaml:"light" json:"light,omitempty"`
}

// Boundaries returns the template's own boundaries: those located by the
// motifs, falling back to def for chains without a motif.
func (t *Template) Boundaries(def numbering.Boundaries, m Motifs) (numbering.Boundaries, error) {
	b := def
	var err error
	if len(m.Heavy) > 0 {
		if b.Heavy, err = numbering.LocateMotif(t.Heavy, m.Heavy); err != nil {
			return b, fmt.Errorf("%s '%s' heavy chain: %w", t.Role, t.PDB, err)
		}
	}
	if len(m.Light) > 0 {
		if b.Light, err = numbering.LocateMotif(t.Light, m.Light); err != nil {
			return b, fmt.Errorf("%s '%s' light chain: %w", t.Role, t.PDB, err)
		}
	}
	return b, nil
}

// Recombinant is one chain type of the hybrid together with the full chains
// of both templates it came from.
type Recombinant struct {
	Kind Kind

	// VTemplate and CTemplate are the complete chains of the variable and
	// constant region templates.
	VTemplate numbering.Chain
	CTemplate numbering.Chain

	// Hybrid is V(VTemplate) followed by C(CTemplate).
	Hybrid numbering.Chain

	// VLen and CLen are the lengths of the variable regions of VTemplate and
	// CTemplate.
	VLen, CLen int
}

// Hybrid is the recombinant Fab.
type Hybrid struct {
	Variable, Constant *Template
	Heavy, Light       Recombinant
}

// Build recombines two templates: the hybrid heavy chain is V(v heavy) +
// C(c heavy) and the hybrid light chain is V(v light) + C(c light).
func Build(v, c *Template, b numbering.Boundaries) (*Hybrid, error) {
	return BuildEach(v, c, b, b)
}

// BuildEach is like Build, but cuts each template at its own boundaries.
func BuildEach(v, c *Template, vb, cb numbering.Boundaries) (*Hybrid, error) {
	vh, vl, err := v.Regions(vb)
	if err != nil {
		return nil, err
	}
	ch, cl, err := c.Regions(cb)
	if err != nil {
		return nil, err
	}
	recombinant := func(k Kind, vr, cr Region) Recombinant {
		return Recombinant{
			Kind:      k,
			VTemplate: v.Chain(k),
			CTemplate: c.Chain(k),
			Hybrid:    numbering.Recombine(vr.Variable, cr.Constant),
			VLen:      vr.Variable.Len(),
			CLen:      cr.Variable.Len(),
		}
	}
	return &Hybrid{
		Variable: v,
		Constant: c,
		Heavy:    recombinant(Heavy, vh, ch),
		Light:    recombinant(Light, vl, cl),
	}, nil
}

// Chain returns the heavy or light recombinant.
func (h *Hybrid) Chain(k Kind) Recombinant {
	if k == Heavy {
		return h.Heavy
	}
	return h.Light
}

// IsotypeLabel is the clean heavy isotype of the constant region template.
func (h *Hybrid) IsotypeLabel() string {
	return h.Constant.HIsotype
}

// SequenceName returns the name of a sequence in the per-chain FASTA and
// alignment files: "<code>|<chain>|<role>".
func SequenceName(code, chain, role string) string {
	return fmt.Sprintf("%s|%s|%s", code, chain, role)
}

// Sequences returns the variable template chain, the constant template chain
// and the hybrid, in that order.
func (h *Hybrid) Sequences(k Kind) []seq.Sequence {
	r := h.Chain(k)
	return []seq.Sequence{
		r.VTemplate.Sequence(SequenceName(
			h.Variable.PDB, r.VTemplate.ID, vcab.RoleVariable)),
		r.CTemplate.Sequence(SequenceName(
			h.Constant.PDB, r.CTemplate.ID, vcab.RoleConstant)),
		r.Hybrid.Sequence(SequenceName(
			HybridCode, string(k), vcab.RoleTarget)),
	}
}

// AlignChain returns the input of align.Fab for one chain type.
func (h *Hybrid) AlignChain(k Kind) align.Chain {
	r := h.Chain(k)
	seqs := h.Sequences(k)
	return align.Chain{
		Variable: seqs[0],
		Constant: seqs[1],
		Hybrid:   seqs[2],
		VLen:     r.VLen,
		CLen:     r.CLen,
	}
}

// WriteFasta writes the sequences of one chain type to path. The parent
// directory must exist.
func (h *Hybrid) WriteFasta(k Kind, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := fasta.NewWriter(f)
	w.Asterisk = false
	if err := w.WriteAll(h.Sequences(k)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s chain FASTA '%s': %w", k, path, err)
	}
	return f.Close()
}

// WriteFastaFiles writes the heavy and light chain FASTA files into dir.
func (h *Hybrid) WriteFastaFiles(dir, heavyName, lightName string) (
	heavyPath, lightPath string, err error,
) {
	heavyPath = filepath.Join(dir, heavyName)
	lightPath = filepath.Join(dir, lightName)
	if err := h.WriteFasta(Heavy, heavyPath); err != nil {
		return "", "", err
	}
	if err := h.WriteFasta(Light, lightPath); err != nil {
		return "", "", err
	}
	return heavyPath, lightPath, nil
}
