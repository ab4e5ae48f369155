package pdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type atomRecord struct {
	het   bool
	res   string
	chain byte
	num   int
	ins   byte
}

// pairRecords is one structure written both as mmCIF and as PDB: a modified
// residue (MSE), an unknown amino acid (UNK), an insertion code and a water.
var pairRecords = []atomRecord{
	{false, "GLU", 'H', 1, ' '},
	{false, "VAL", 'H', 2, ' '},
	{false, "GLN", 'H', 2, 'A'},
	{true, "MSE", 'H', 3, ' '},
	{false, "UNK", 'H', 4, ' '},
	{false, "ASP", 'L', 1, ' '},
	{false, "ILE", 'L', 2, ' '},
	{true, "HOH", 'L', 301, ' '},
}

func pairPDB(records []atomRecord) string {
	var b strings.Builder
	b.WriteString("HEADER    IMMUNE SYSTEM                           01-JAN-00   1PRX              \n")
	for i, r := range records {
		rec := "ATOM"
		if r.het {
			rec = "HETATM"
		}
		fmt.Fprintf(&b, "%-6s%5d  CA  %3s %c%4d%c   %8.3f%8.3f%8.3f%6.2f%6.2f           C\n",
			rec, i+1, r.res, r.chain, r.num, r.ins, float64(i), 0.0, 0.0, 1.0, 0.0)
	}
	b.WriteString("END\n")
	return b.String()
}

func pairCIF(records []atomRecord) string {
	var b strings.Builder
	b.WriteString("data_1PRX\n_entry.id 1PRX\nloop_\n")
	for _, tag := range []string{
		"group_PDB", "id", "label_atom_id", "label_comp_id",
		"auth_asym_id", "auth_seq_id", "pdbx_PDB_ins_code",
	} {
		b.WriteString("_atom_site." + tag + "\n")
	}
	for i, r := range records {
		rec, ins := "ATOM", "?"
		if r.het {
			rec = "HETATM"
		}
		if r.ins != ' ' {
			ins = string(r.ins)
		}
		fmt.Fprintf(&b, "%s %d CA %s %c %d %s\n", rec, i+1, r.res, r.chain, r.num, ins)
	}
	return b.String()
}

func TestReadCIFAndPDBAgree(t *testing.T) {
	dir := t.TempDir()
	cifPath := filepath.Join(dir, "1prx.cif")
	pdbPath := filepath.Join(dir, "1prx.pdb")
	if err := os.WriteFile(cifPath, []byte(pairCIF(pairRecords)), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pdbPath, []byte(pairPDB(pairRecords)), 0644); err != nil {
		t.Fatal(err)
	}

	fromCIF, err := Read(cifPath)
	if err != nil {
		t.Fatal(err)
	}
	fromPDB, err := Read(pdbPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range []*Entry{fromCIF, fromPDB} {
		if entry.IdCode != "1prx" {
			t.Fatalf("%s: IdCode = %q, want 1prx", entry.Path, entry.IdCode)
		}
		if got := strings.Join(entry.ChainOrder(), ""); got != "HL" {
			t.Fatalf("%s: chain order = %s, want HL", entry.Path, got)
		}
		heavy, _ := entry.Chain("H")
		if heavy.String() != "EVQMX" {
			t.Fatalf("%s: heavy chain = %s, want EVQMX", entry.Path, heavy)
		}
		light, _ := entry.Chain("L")
		if light.String() != "DI" {
			t.Fatalf("%s: light chain = %s, want DI", entry.Path, light)
		}
	}
	if fromCIF.String() != fromPDB.String() {
		t.Fatalf("mmCIF and PDB readers disagree:\n%s\n%s", fromCIF, fromPDB)
	}
	cifHeavy, _ := fromCIF.Chain("H")
	pdbHeavy, _ := fromPDB.Chain("H")
	for i := range cifHeavy.Residues {
		if cifHeavy.Residues[i].Pos != pdbHeavy.Residues[i].Pos {
			t.Fatalf("residue %d: mmCIF %s, PDB %s", i,
				cifHeavy.Residues[i].Pos, pdbHeavy.Residues[i].Pos)
		}
	}
}

func TestResidueLetter(t *testing.T) {
	tests := []struct {
		name string
		het  bool
		want string
	}{
		{"ALA", false, "A"},
		{"mse", true, "M"},
		{"MSE", false, "M"},
		{"ABA", false, "X"},
		{"ABA", true, ""},
		{"HOH", true, ""},
		{"DA", false, ""},
	}
	for _, test := range tests {
		letter, ok := residueLetter(test.name, test.het)
		got := ""
		if ok {
			got = string(letter)
		}
		if got != test.want {
			t.Errorf("residueLetter(%s, %v) = %q, want %q",
				test.name, test.het, got, test.want)
		}
	}
}
