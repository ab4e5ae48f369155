package assemble

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TuftsBCB/seq"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/numbering"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pdb"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/recombine"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/vcab"
)

func chain(t *testing.T, id, letters string, start int) numbering.Chain {
	positions := make([]numbering.Position, len(letters))
	for i := range positions {
		positions[i] = numbering.Position{Num: start + i}
	}
	c, err := numbering.Zip(id, []seq.Residue(letters), positions)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// template makes a template whose chains are stored in the given order.
func template(t *testing.T, code, h, l string, chains ...numbering.Chain) *recombine.Template {
	tpl, err := recombine.New(vcab.Template{
		Role:  vcab.RoleVariable,
		Entry: vcab.Entry{PDB: code, HChain: h, LChain: l},
	}, &pdb.Entry{IdCode: code, Chains: chains})
	if err != nil {
		t.Fatal(err)
	}
	return tpl
}

func msa(rows ...string) seq.MSA {
	m := seq.NewMSA()
	for i := 0; i < len(rows); i += 2 {
		m.Add(seq.Sequence{Name: rows[i], Residues: []seq.Residue(rows[i+1])})
	}
	return m
}

var alns = Alignments{
	Light: msa(
		"1n8z|A|v_template", "DIQMTKRTV-",
		"3m8o|L|c_template", "EIVLTRTVAA",
		"fab_hybrid|L|target", "DIQMTRTVAA",
	),
	Heavy: msa(
		"1n8z|B|v_template", "EVQLVASTKG",
		"3M8O|H|c_template", "QVQLQSPT-P",
		"fab_hybrid|H|target", "EVQLVSPT-P",
	),
}

func TestLayout(t *testing.T) {
	light := template(t, "1n8z", "B", "A",
		chain(t, "C", "GGG", 1),
		chain(t, "A", "DIQMTKRTV", 1),
		chain(t, "B", "EVQLVASTKG", 3))
	l, err := Layout(light)
	if err != nil {
		t.Fatal(err)
	}
	want := ChainLayout{
		Code: "1n8z", LightFirst: true,
		Start: numbering.Position{Num: 1}, StartChain: "A",
		End: numbering.Position{Num: 12}, EndChain: "B",
	}
	if l != want {
		t.Fatalf("got layout %+v, want %+v", l, want)
	}

	heavy := template(t, "3m8o", "H", "L",
		chain(t, "H", "QVQLQSPTP", 2),
		chain(t, "L", "EIVLTRTVAA", 1))
	l, err = Layout(heavy)
	if err != nil {
		t.Fatal(err)
	}
	want = ChainLayout{
		Code: "3m8o", LightFirst: false,
		Start: numbering.Position{Num: 2}, StartChain: "H",
		End: numbering.Position{Num: 10}, EndChain: "L",
	}
	if l != want {
		t.Fatalf("got layout %+v, want %+v", l, want)
	}
}

func TestPIR(t *testing.T) {
	v := ChainLayout{
		Code: "1n8z", LightFirst: true,
		Start: numbering.Position{Num: 1}, StartChain: "A",
		End: numbering.Position{Num: 214}, EndChain: "B",
	}
	c := ChainLayout{
		Code: "3m8o", LightFirst: true,
		Start: numbering.Position{Num: 1}, StartChain: "L",
		End: numbering.Position{Num: 100, Ins: 'A'}, EndChain: "H",
	}
	entries, err := PIR(v, c, alns, "IgA1", "target_IgA1")
	if err != nil {
		t.Fatal(err)
	}
	answer := []string{
		">P1;1n8z\n" +
			"structureX:1n8z:1:A:214:B:variable_template:::\n" +
			"DIQMTKRTV-/EVQLVASTKG*\n",
		">P1;3m8o\n" +
			"structureX:3m8o:1:L:100A:H:constant_template_IgA1:::\n" +
			"EIVLTRTVAA/QVQLQSPT-P*\n",
		">P1;target_IgA1\n" +
			"sequence:target_IgA1::.::.:hybrid_IgA1_target:::\n" +
			"DIQMTRTVAA/EVQLVSPT-P*\n",
	}
	if len(entries) != len(answer) {
		t.Fatalf("got %d entries, want %d", len(entries), len(answer))
	}
	for i := range answer {
		if got := entries[i].String(); got != answer[i] {
			t.Fatalf("entry %d is\n%s\nbut answer is\n%s", i, got, answer[i])
		}
	}

	path := filepath.Join(t.TempDir(), "alignment.pir")
	if err := WriteFile(path, entries); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PIR file not written: %v", err)
	}
}

func TestPIRHeavyFirst(t *testing.T) {
	v := ChainLayout{Code: "1n8z", StartChain: "B", EndChain: "A"}
	c := ChainLayout{Code: "3m8o", StartChain: "H", EndChain: "L"}
	entries, err := PIR(v, c, alns, "IgA1", "t")
	if err != nil {
		t.Fatal(err)
	}
	if got := string(entries[2].Residues()); got != "EVQLVSPT-P/DIQMTRTVAA*" {
		t.Fatalf("target residues are %s", got)
	}
}

func TestPIRChainOrderMismatch(t *testing.T) {
	v := ChainLayout{Code: "1n8z", LightFirst: true}
	c := ChainLayout{Code: "3m8o", LightFirst: false}
	_, err := PIR(v, c, alns, "IgA1", "t")
	if !errors.Is(err, ErrChainOrderMismatch) {
		t.Fatalf("got error %v, want %v", err, ErrChainOrderMismatch)
	}
}

func TestPIRSameTemplate(t *testing.T) {
	v := ChainLayout{Code: "1n8z", LightFirst: true}
	if _, err := PIR(v, v, alns, "IgG1", "t"); err == nil {
		t.Fatalf("expected an error for one code used by both templates")
	}
	c := ChainLayout{Code: "3m8o", LightFirst: true}
	if _, err := PIR(v, c, alns, "IgA1", "3m8o"); err == nil {
		t.Fatalf("expected an error for a target named like a template")
	}
}

func TestPIRMissingSequence(t *testing.T) {
	v := ChainLayout{Code: "1n8z"}
	c := ChainLayout{Code: "7xyz"}
	if _, err := PIR(v, c, alns, "IgA1", "t"); err == nil {
		t.Fatalf("expected an error for a code missing from the alignments")
	}
}
