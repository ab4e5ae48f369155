package clustal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/TuftsBCB/seq"
)

const omega = `CLUSTAL O(1.2.4) multiple sequence alignment


1N8Z|A|v_template         DIQMTQSPSSLSASVGDRVTITC	23
3m8o|L|c_template         DIQMTQSP--LSASVGDRVTITC	21
fab_hybrid|L|target       DIQMTQSPSSLSASVGDRVTITC	23
                          ********  *************

1N8Z|A|v_template         RTVAAPS	30
3m8o|L|c_template         RTVAAPS	28
fab_hybrid|L|target       RTVAAPS	30
                          *******
`

func TestRead(t *testing.T) {
	msa, err := Read(strings.NewReader(omega))
	if err != nil {
		t.Fatal(err)
	}
	answer := []struct {
		name     string
		residues string
	}{
		{"1N8Z|A|v_template", "DIQMTQSPSSLSASVGDRVTITCRTVAAPS"},
		{"3m8o|L|c_template", "DIQMTQSP--LSASVGDRVTITCRTVAAPS"},
		{"fab_hybrid|L|target", "DIQMTQSPSSLSASVGDRVTITCRTVAAPS"},
	}
	if len(msa.Entries) != len(answer) {
		t.Fatalf("got %d rows, want %d", len(msa.Entries), len(answer))
	}
	for i, want := range answer {
		got := msa.GetFasta(i)
		if got.Name != want.name || string(got.Residues) != want.residues {
			t.Fatalf("row %d is\n%s %s\nbut answer is\n%s %s",
				i, got.Name, got.Residues, want.name, want.residues)
		}
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"empty", ""},
		{"no header", "seq1 ACDE\n"},
		{"no rows", "CLUSTAL W (1.83) multiple sequence alignment\n\n"},
		{"bad residue", "CLUSTAL W\n\nseq1 AC#E\n"},
		{"ragged", "CLUSTAL W\n\nseq1 ACDE\nseq2 AC-\n"},
		{"bad count", "CLUSTAL W\n\nseq1 ACDE x\n"},
	}
	for _, test := range tests {
		if _, err := Read(strings.NewReader(test.input)); err == nil {
			t.Fatalf("%s: expected an error", test.name)
		}
	}
}

func TestWriteRead(t *testing.T) {
	long := strings.Repeat("ACDEFGHIKL", 13)
	gapped := "--" + long[2:]
	msa := seq.NewMSA()
	msa.AddSlice([]seq.Sequence{
		{Name: "1n8z|B|v_template", Residues: []seq.Residue(long)},
		{Name: "fab_hybrid|H|target", Residues: []seq.Residue(gapped)},
	})

	buf := new(bytes.Buffer)
	if err := Write(buf, msa); err != nil {
		t.Fatal(err)
	}
	if blocks := strings.Count(buf.String(), "1n8z|B|v_template"); blocks != 3 {
		t.Fatalf("130 columns were written in %d blocks, want 3", blocks)
	}

	back, err := Read(buf)
	if err != nil {
		t.Fatalf("reading written alignment: %s\n%s", err, buf)
	}
	if got := string(back.GetFasta(1).Residues); got != gapped {
		t.Fatalf("round trip gave\n%s\nbut answer is\n%s", got, gapped)
	}
}

func TestIndex(t *testing.T) {
	msa, err := Read(strings.NewReader(omega))
	if err != nil {
		t.Fatal(err)
	}
	index := Index(msa)
	for _, key := range []string{"1n8z", "3m8o", "fab_hybrid"} {
		if _, ok := index[key]; !ok {
			t.Fatalf("no row for '%s' in %v", key, index)
		}
	}
	if got := string(index["3m8o"].Residues[:10]); got != "DIQMTQSP--" {
		t.Fatalf("gapped 3m8o begins with %s, want DIQMTQSP--", got)
	}
	if Key(" FAB_Hybrid|H|target") != "fab_hybrid" {
		t.Fatalf("Key did not lower case and cut at '|'")
	}
}
