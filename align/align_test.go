package align

import (
	"fmt"
	"testing"

	"github.com/TuftsBCB/seq"
)

func TestBlosum62(t *testing.T) {
	tests := []struct {
		a, b seq.Residue
		want int
	}{
		{'A', 'A', 4},
		{'W', 'W', 11},
		{'C', 'C', 9},
		{'d', 'E', 2},
		{'I', 'V', 3},
		{'J', 'A', 0}, // scored as X
		{'*', '*', 1},
	}
	for _, test := range tests {
		if got := Blosum62.Score(test.a, test.b); got != test.want {
			t.Fatalf("Score(%c, %c) = %d, want %d", test.a, test.b, got, test.want)
		}
		if Blosum62.Score(test.a, test.b) != Blosum62.Score(test.b, test.a) {
			t.Fatalf("Blosum62 is not symmetric at %c/%c", test.a, test.b)
		}
	}
}

func TestNeedlemanWunsch(t *testing.T) {
	tests := []struct {
		a, b       string
		wantA      string
		wantB      string
		wantScore  int
	}{
		{"ACDEFG", "ACDEFG", "ACDEFG", "ACDEFG", 4 + 9 + 6 + 5 + 6 + 6},
		{"ACDEFG", "ACEFG", "ACDEFG", "AC-EFG", 4 + 9 - 4 + 5 + 6 + 6},
		{"", "AC", "--", "AC", -8},
		{"W", "", "W", "-", -4},
	}
	for _, test := range tests {
		aln := NeedlemanWunsch(
			[]seq.Residue(test.a), []seq.Residue(test.b), Blosum62, DefaultGap)
		gotA, gotB := string(aln.A), string(aln.B)
		if gotA != test.wantA || gotB != test.wantB {
			t.Fatalf("\nComputed alignment is\n\n%s\n%s\n\n"+
				"but answer is\n\n%s\n%s", gotA, gotB, test.wantA, test.wantB)
		}
		if aln.Score != test.wantScore {
			t.Fatalf("score = %d, want %d", aln.Score, test.wantScore)
		}
	}
}

func TestFab(t *testing.T) {
	variable := seq.Sequence{Name: "1n8z", Residues: []seq.Residue("EVQLVESSASTKGPS")}
	constant := seq.Sequence{Name: "3m8o", Residues: []seq.Residue("QVQLESSASPTSPK")}
	hybrid := seq.Sequence{Name: "fab_hybrid", Residues: []seq.Residue("EVQLVESSASPTSPK")}

	msa, err := Fab(Chain{
		Variable: variable, Constant: constant, Hybrid: hybrid,
		VLen: 7, CLen: 6,
	}, Blosum62, DefaultGap)
	if err != nil {
		t.Fatal(err)
	}
	if len(msa.Entries) != 3 {
		t.Fatalf("got %d rows, want 3", len(msa.Entries))
	}
	for i, want := range []seq.Sequence{variable, constant, hybrid} {
		row := msa.GetFasta(i)
		if row.Name != want.Name {
			t.Fatalf("row %d is %s, want %s", i, row.Name, want.Name)
		}
		if ungap(row.Residues) != string(want.Residues) {
			t.Fatalf("row %d ungapped is %s, want %s",
				i, ungap(row.Residues), want.Residues)
		}
	}

	// The hybrid copies the variable template's columns up to the boundary
	// and the constant template's columns after it.
	v, c, h := msa.GetFasta(0).Residues, msa.GetFasta(1).Residues, msa.GetFasta(2).Residues
	split := boundaryColumn(v, 7)
	for col := range h {
		src := c
		if col < split {
			src = v
		}
		if h[col] != src[col] {
			t.Fatalf("column %d of the hybrid is %c, want %c", col, h[col], src[col])
		}
	}
}

func TestFabRejectsNonRecombinant(t *testing.T) {
	s := func(name, res string) seq.Sequence {
		return seq.Sequence{Name: name, Residues: []seq.Residue(res)}
	}
	_, err := Fab(Chain{
		Variable: s("v", "AAAACCCC"),
		Constant: s("c", "GGGGTTTT"),
		Hybrid:   s("h", "AAAACCCC"),
		VLen:     4, CLen: 4,
	}, Blosum62, DefaultGap)
	if err == nil {
		t.Fatalf("expected an error for a hybrid that is not V(v)+C(c)")
	}
	_, err = Fab(Chain{VLen: 1}, Blosum62, DefaultGap)
	if err == nil {
		t.Fatalf("expected an error for an out of range boundary")
	}
}

func ungap(rs []seq.Residue) string {
	var s []byte
	for _, r := range rs {
		if r != '-' {
			s = append(s, byte(r))
		}
	}
	return string(s)
}

// boundaryColumn returns the column just after the n'th residue of row.
func boundaryColumn(row []seq.Residue, n int) int {
	seen := 0
	for col, r := range row {
		if r != '-' {
			seen++
		}
		if seen == n {
			return col + 1
		}
	}
	panic(fmt.Sprintf("row has fewer than %d residues", n))
}
