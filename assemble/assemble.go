// Package assemble turns the per-chain alignments of a recombination into
// the PIR alignment MODELLER builds from.
//
// MODELLER pairs the chain segments of the PIR entries by position, so every
// entry lists its two chains in the physical order of the variable region
// template's coordinate file. The description line of a template gives the
// first residue of its first chain and the last residue of its second chain.
package assemble

import (
	"errors"
	"fmt"
	"os"

	"github.com/TuftsBCB/seq"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/clustal"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/numbering"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pir"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/recombine"
)

// ErrChainOrderMismatch is returned when the two templates store their light
// and heavy chains in different orders.
var ErrChainOrderMismatch = errors.New("templates disagree on light/heavy chain order")

// ChainLayout is the chain order and residue range of one template.
type ChainLayout struct {
	Code       string
	LightFirst bool
	Start      numbering.Position
	StartChain string
	End        numbering.Position
	EndChain   string
}

// Layout finds which of the template's heavy and light chains comes first
// in its coordinate file.
func Layout(t *recombine.Template) (ChainLayout, error) {
	if t.HChain == t.LChain {
		return ChainLayout{}, fmt.Errorf("'%s' uses chain %s for both heavy "+
			"and light chains", t.PDB, t.HChain)
	}
	var relevant []string
	for _, id := range t.Structure.ChainOrder() {
		if id == t.HChain || id == t.LChain {
			relevant = append(relevant, id)
		}
	}
	if len(relevant) != 2 {
		return ChainLayout{}, fmt.Errorf("'%s' has chains %v, expected "+
			"heavy chain %s and light chain %s once each",
			t.PDB, t.Structure.ChainOrder(), t.HChain, t.LChain)
	}
	if t.Heavy.Len() == 0 || t.Light.Len() == 0 {
		return ChainLayout{}, fmt.Errorf("'%s' has an empty chain", t.PDB)
	}

	first, second := t.Heavy, t.Light
	lightFirst := relevant[0] == t.LChain
	if lightFirst {
		first, second = t.Light, t.Heavy
	}
	return ChainLayout{
		Code:       t.PDB,
		LightFirst: lightFirst,
		Start:      first.First(),
		StartChain: first.ID,
		End:        second.Last(),
		EndChain:   second.ID,
	}, nil
}

// Alignments holds the multiple alignments of the light and heavy chains.
// Rows are found by clustal.Key of their names.
type Alignments struct {
	Light, Heavy seq.MSA
}

// Gapped returns the gapped light and heavy chain sequences of code.
func (a Alignments) Gapped(code string) (light, heavy seq.Sequence, err error) {
	key := clustal.Key(code)
	light, ok := clustal.Index(a.Light)[key]
	if !ok {
		return seq.Sequence{}, seq.Sequence{},
			fmt.Errorf("no gapped sequence for '%s' in the light chain "+
				"alignment", code)
	}
	heavy, ok = clustal.Index(a.Heavy)[key]
	if !ok {
		return seq.Sequence{}, seq.Sequence{},
			fmt.Errorf("no gapped sequence for '%s' in the heavy chain "+
				"alignment", code)
	}
	return light, heavy, nil
}

// PIR assembles the variable template, constant template and target entries.
// The target entry is named target and its segments follow the variable
// template's chain order.
func PIR(
	v, c ChainLayout,
	alns Alignments,
	isotype, target string,
) ([]pir.Entry, error) {
	if v.LightFirst != c.LightFirst {
		return nil, fmt.Errorf("'%s' (light first: %v) and '%s' (light "+
			"first: %v): %w", v.Code, v.LightFirst, c.Code, c.LightFirst,
			ErrChainOrderMismatch)
	}

	template := func(l ChainLayout, name string) (pir.Entry, error) {
		light, heavy, err := alns.Gapped(l.Code)
		if err != nil {
			return pir.Entry{}, err
		}
		return pir.Entry{
			Code:       l.Code,
			Type:       pir.StructureX,
			File:       l.Code,
			Start:      l.Start.String(),
			StartChain: l.StartChain,
			End:        l.End.String(),
			EndChain:   l.EndChain,
			Name:       name,
			Segments:   ordered(l.LightFirst, light, heavy),
		}, nil
	}
	ventry, err := template(v, "variable_template")
	if err != nil {
		return nil, err
	}
	centry, err := template(c, "constant_template_"+isotype)
	if err != nil {
		return nil, err
	}

	light, heavy, err := alns.Gapped(recombine.HybridCode)
	if err != nil {
		return nil, err
	}
	tentry := pir.Entry{
		Code:       target,
		Type:       pir.Sequence,
		File:       target,
		StartChain: ".",
		EndChain:   ".",
		Name:       fmt.Sprintf("hybrid_%s_target", isotype),
		Segments:   ordered(v.LightFirst, light, heavy),
	}

	entries := []pir.Entry{ventry, centry, tentry}
	if err := pir.Validate(entries); err != nil {
		return nil, fmt.Errorf("assembled alignment is invalid: %w", err)
	}
	return entries, nil
}

// Hybrid assembles the PIR entries of a recombinant from its templates.
func Hybrid(h *recombine.Hybrid, alns Alignments, target string) ([]pir.Entry, error) {
	v, err := Layout(h.Variable)
	if err != nil {
		return nil, err
	}
	c, err := Layout(h.Constant)
	if err != nil {
		return nil, err
	}
	return PIR(v, c, alns, h.IsotypeLabel(), target)
}

// WriteFile writes the entries to a new PIR file at path.
func WriteFile(path string, entries []pir.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pir.NewWriter(f).WriteAll(entries); err != nil {
		f.Close()
		return fmt.Errorf("writing PIR file '%s': %w", path, err)
	}
	return f.Close()
}

func ordered(lightFirst bool, light, heavy seq.Sequence) [][]seq.Residue {
	if lightFirst {
		return [][]seq.Residue{light.Residues, heavy.Residues}
	}
	return [][]seq.Residue{heavy.Residues, light.Residues}
}
