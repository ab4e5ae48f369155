package numbering

import (
	"errors"
	"testing"

	"github.com/TuftsBCB/seq"
)

func chain(id, letters string, start int) Chain {
	c := Chain{ID: id}
	for i := 0; i < len(letters); i++ {
		c.Residues = append(c.Residues, Residue{
			Letter: seq.Residue(letters[i]),
			Pos:    Position{Num: start + i},
		})
	}
	return c
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
	}{
		{"107", Position{Num: 107}},
		{"100A", Position{Num: 100, Ins: 'A'}},
		{" -3 ", Position{Num: -3}},
	}
	for _, test := range tests {
		got, err := ParsePosition(test.in)
		if err != nil {
			t.Fatalf("ParsePosition(%q): %s", test.in, err)
		}
		if got != test.want {
			t.Fatalf("ParsePosition(%q) = %v, want %v", test.in, got, test.want)
		}
		if test.want.Ins != 0 && got.String() != "100A" {
			t.Fatalf("String() = %q, want %q", got.String(), "100A")
		}
	}
	for _, bad := range []string{"", "A", "1x2"} {
		if _, err := ParsePosition(bad); err == nil {
			t.Fatalf("ParsePosition(%q) should fail", bad)
		}
	}
}

func TestSplit(t *testing.T) {
	c := chain("H", "EVQLVESGG", 105)
	v, k, err := Split(c, Position{Num: 107})
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "EVQ" || k.String() != "LVESGG" {
		t.Fatalf("Split gave %s/%s, want EVQ/LVESGG", v, k)
	}
	if v.Last() != (Position{Num: 107}) || k.First() != (Position{Num: 108}) {
		t.Fatalf("unexpected positions %s and %s", v.Last(), k.First())
	}

	// The regions must not alias the original chain.
	v.Residues[0].Letter = 'X'
	if c.Residues[0].Letter != 'E' {
		t.Fatalf("Split aliased the input chain")
	}
}

func TestSplitAtEnds(t *testing.T) {
	c := chain("L", "DIQMT", 1)
	v, k, err := Split(c, Position{Num: 5})
	if err != nil {
		t.Fatal(err)
	}
	if v.Len() != 5 || k.Len() != 0 {
		t.Fatalf("got %d/%d residues, want 5/0", v.Len(), k.Len())
	}
	v, k, err = Split(c, Position{Num: 1})
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "D" || k.String() != "IQMT" {
		t.Fatalf("got %s/%s, want D/IQMT", v, k)
	}
}

func TestSplitErrors(t *testing.T) {
	c := chain("L", "DIQMT", 1)
	if _, _, err := Split(c, Position{Num: 99}); !errors.Is(err, ErrBoundaryNotFound) {
		t.Fatalf("got %v, want ErrBoundaryNotFound", err)
	}

	dup := chain("L", "DIQ", 1)
	dup.Residues = append(dup.Residues, Residue{Letter: 'M', Pos: Position{Num: 3}})
	if _, _, err := Split(dup, Position{Num: 3}); !errors.Is(err, ErrBoundaryAmbiguous) {
		t.Fatalf("got %v, want ErrBoundaryAmbiguous", err)
	}

	// An insertion code makes a different position.
	ins := chain("H", "ABC", 1)
	ins.Residues = append(ins.Residues, Residue{Letter: 'D', Pos: Position{Num: 3, Ins: 'A'}})
	v, k, err := Split(ins, Position{Num: 3})
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "ABC" || k.String() != "D" {
		t.Fatalf("got %s/%s, want ABC/D", v, k)
	}
}

func TestRecombine(t *testing.T) {
	v, _, err := Split(chain("B", "VVVVCCCC", 110), Position{Num: 113})
	if err != nil {
		t.Fatal(err)
	}
	_, k, err := Split(chain("H", "vvvvkkkk", 110), Position{Num: 113})
	if err != nil {
		t.Fatal(err)
	}
	h := Recombine(v, k)
	if h.String() != "VVVVkkkk" {
		t.Fatalf("Recombine = %s, want VVVVkkkk", h)
	}
	if h.ID != "B" {
		t.Fatalf("Recombine chain id = %s, want B", h.ID)
	}
	if h.First().Num != 110 || h.Last().Num != 117 {
		t.Fatalf("unexpected numbering %s..%s", h.First(), h.Last())
	}
}

func TestLocateMotif(t *testing.T) {
	c := chain("H", "WGQGTLVTVSSASTKGPS", 103)
	pos, err := LocateMotif(c, "lvtvss")
	if err != nil {
		t.Fatal(err)
	}
	if pos.Num != 113 {
		t.Fatalf("LocateMotif = %s, want 113", pos)
	}
	if _, err := LocateMotif(c, "YYYY"); !errors.Is(err, ErrBoundaryNotFound) {
		t.Fatalf("got %v, want ErrBoundaryNotFound", err)
	}
	if _, err := LocateMotif(chain("H", "SSASS", 1), "SS"); !errors.Is(err, ErrBoundaryAmbiguous) {
		t.Fatalf("got %v, want ErrBoundaryAmbiguous", err)
	}
}

func TestZip(t *testing.T) {
	_, err := Zip("A", []seq.Residue("AC"), []Position{{Num: 1}})
	if err == nil {
		t.Fatalf("Zip should reject mismatched lengths")
	}
	c, err := Zip("A", []seq.Residue("AC"), []Position{{Num: 1}, {Num: 1, Ins: 'A'}})
	if err != nil {
		t.Fatal(err)
	}
	if c.Last().String() != "1A" {
		t.Fatalf("Last = %s, want 1A", c.Last())
	}
}
