package vcab

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

const testTable = `pdb,iden_code,Hchain,Lchain,title,release_date,method,resolution,HC_species,Htype,Ltype,HV_seq,LV_seq,disulfide_bond
1n8z,1n8z_B_A,B,A,Herceptin Fab,2003-04-01,X-RAY DIFFRACTION,2.52,homo_sapiens,IGHG1(IGHV3-66),kappa(IGKV1-39),EVQLVES,DIQMTQS,yes
3m8o,3m8o_H_L,H,L,IgA1 Fab,2010-06-02,X-RAY DIFFRACTION,1.55,homo_sapiens,IGHA1(IGHV3-30),kappa(IGKV3-20),QVQLVES,EIVLTQS,
3m8o,3m8o_B_A,B,A,IgA1 Fab,2010-06-02,X-RAY DIFFRACTION,1.55,homo_sapiens,IGHA1(IGHV3-30),kappa(IGKV3-20),QVQLVES,EIVLTQS,
4abc,4abc_H_L,H,L,Mouse Fab,2012-01-01,X-RAY DIFFRACTION,NaN,mus_musculus,IGHG2A,kappa,QVQLQQS,DIVMTQS,
5xyz,5xyz_H_L,H,L,Lambda Fab,2015-01-01,X-RAY DIFFRACTION,"2.1, 2.3",homo_sapiens,IGHG4(IGHV1-2),lambda(IGLV2-14),QVQLVQS,QSALTQP,
`

func TestRead(t *testing.T) {
	entries, err := Read(strings.NewReader(testTable), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}
	e := entries[0]
	if e.PDB != "1n8z" || e.HChain != "B" || e.LChain != "A" {
		t.Fatalf("unexpected first entry %+v", e)
	}
	if e.HIsotype != "IGHG1" || e.LIsotype != "kappa" {
		t.Fatalf("got isotypes %s/%s, want IGHG1/kappa", e.HIsotype, e.LIsotype)
	}
	if e.Resolution != 2.52 {
		t.Fatalf("got resolution %f, want 2.52", e.Resolution)
	}
	if entries[3].Resolution != 0 {
		t.Fatalf("NaN resolution should be 0, got %f", entries[3].Resolution)
	}
	if entries[4].Resolution != 2.1 {
		t.Fatalf("got resolution %f, want 2.1", entries[4].Resolution)
	}
}

func TestReadMissingColumns(t *testing.T) {
	_, err := Read(strings.NewReader("pdb,Hchain\n1abc,H\n"), nil)
	if err == nil {
		t.Fatalf("expected an error for missing columns")
	}
	for _, col := range []string{"Lchain", "HC_species", "Htype", "Ltype"} {
		if !strings.Contains(err.Error(), col) {
			t.Fatalf("error %q does not name column %s", err, col)
		}
	}
}

func TestRefine(t *testing.T) {
	entries, err := Read(strings.NewReader(testTable), nil)
	if err != nil {
		t.Fatal(err)
	}
	refined := Refine(entries, DefaultFilter)
	var codes []string
	for _, e := range refined {
		codes = append(codes, e.PDB)
	}
	if got := strings.Join(codes, ","); got != "1n8z,3m8o,3m8o" {
		t.Fatalf("Refine kept %s, want 1n8z,3m8o,3m8o", got)
	}

	all := Refine(entries, Filter{})
	if len(all) != len(entries) {
		t.Fatalf("an empty filter kept %d of %d entries", len(all), len(entries))
	}

	lambda := Refine(entries, Filter{LightIsotype: "LAMBDA"})
	if len(lambda) != 1 || lambda[0].PDB != "5xyz" {
		t.Fatalf("lambda filter kept %v", lambda)
	}
}

func TestSelect(t *testing.T) {
	entries, err := Read(strings.NewReader(testTable), nil)
	if err != nil {
		t.Fatal(err)
	}
	entries = Refine(entries, DefaultFilter)

	buf := new(bytes.Buffer)
	pair, err := Select(entries, "1N8Z", "3m8o", log.New(buf, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	if pair.Variable.Role != RoleVariable || pair.Constant.Role != RoleConstant {
		t.Fatalf("unexpected roles %s/%s", pair.Variable.Role, pair.Constant.Role)
	}
	if pair.Constant.HChain != "H" {
		t.Fatalf("the first 3m8o row should be used, got H=%s", pair.Constant.HChain)
	}
	if !strings.Contains(buf.String(), "2 entries for '3m8o'") {
		t.Fatalf("duplicate rows were not reported: %q", buf.String())
	}
	if pair.IsotypeLabel() != "IGHA1" {
		t.Fatalf("IsotypeLabel = %s, want IGHA1", pair.IsotypeLabel())
	}

	if _, err := Select(entries, "1n8z", "4abc", nil); err == nil {
		t.Fatalf("a filtered out template should not be selectable")
	}
}

func TestCleanIsotype(t *testing.T) {
	tests := map[string]string{
		"IGHG1(IGHV3-66)": "IGHG1",
		"kappa(IGKV1-39)": "kappa",
		" IgA1 ":          "IgA1",
		"(none)":          "",
	}
	for in, want := range tests {
		if got := CleanIsotype(in); got != want {
			t.Fatalf("CleanIsotype(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadSkipsBadRows(t *testing.T) {
	const table = `pdb,Hchain,Lchain,title,resolution,HC_species,Htype,Ltype
1n8z,B,A,Herceptin Fab,2.52,homo_sapiens,IGHG1,kappa
3m8o,H,L,"IgA1 Fab
(two lines)",1.55,homo_sapiens,IGHA1,kappa
7bad,H,L,Bad Fab,high,homo_sapiens,IGHG1,kappa
5xyz,H,L,Lambda Fab,2.1,homo_sapiens,IGHG4,lambda
`
	buf := new(bytes.Buffer)
	entries, err := Read(strings.NewReader(table), log.New(buf, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	var codes []string
	for _, e := range entries {
		codes = append(codes, e.PDB)
	}
	if got := strings.Join(codes, " "); got != "1n8z 3m8o 5xyz" {
		t.Fatalf("got entries %s, want 1n8z 3m8o 5xyz", got)
	}
	if entries[1].Title != "IgA1 Fab\n(two lines)" {
		t.Fatalf("multi-line title is %q", entries[1].Title)
	}
	msg := buf.String()
	if !strings.Contains(msg, "'7bad'") || !strings.Contains(msg, "line 5, column resolution") {
		t.Fatalf("skipped row was reported as %q", msg)
	}
}
