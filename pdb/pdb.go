// Package pdb reads template coordinate files (mmCIF or PDB) into numbered
// protein chains kept in physical file order.
package pdb

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TuftsBCB/seq"

	tpdb "github.com/TuftsBCB/io/pdb"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/numbering"
)

// AminoThreeToOne is a map from three letter amino acids to their
// corresponding single letter representation. Common modified residues map
// to their parent amino acid, which is how MODELLER reads them with
// io.convert_modres switched on (its default).
var AminoThreeToOne = map[string]seq.Residue{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O',
	"MSE": 'M', "PCA": 'E', "HYP": 'P', "SEP": 'S', "TPO": 'T',
	"UNK": 'X', "ASX": 'X', "GLX": 'X',
}

// residueLetter names a residue of an ATOM (het false) or HETATM record.
// Known amino acids, modified ones included, get their one letter code in
// either record type. Other three letter ATOM residues are unknown amino acids
// ('X'). Anything else, such as waters, ligands and nucleotides, is not part of
// the protein chain.
func residueLetter(name string, het bool) (seq.Residue, bool) {
	name = strings.ToUpper(name)
	if letter, ok := AminoThreeToOne[name]; ok {
		return letter, true
	}
	if het || len(name) != 3 {
		return 0, false
	}
	return 'X', true
}

// Entry is a template structure: its file, its PDB code and its protein
// chains in the order they appear in the file. Only the first model of a
// multi-model file is kept.
type Entry struct {
	Path   string
	IdCode string
	Chains []numbering.Chain
}

// Read reads a structure from an mmCIF or PDB formatted file, chosen by the
// file extension. If the file name ends with ".gz", gzip decompression will be
// used.
func Read(fileName string) (*Entry, error) {
	name := strings.ToLower(strings.TrimSuffix(fileName, ".gz"))
	switch filepath.Ext(name) {
	case ".cif", ".mmcif":
		return readCIFFile(fileName)
	case ".pdb", ".ent", ".brk":
		return readPDBFile(fileName)
	}
	return nil, fmt.Errorf("'%s' is neither an mmCIF nor a PDB file", fileName)
}

// ChainOrder returns the chain identifiers in physical file order.
func (e *Entry) ChainOrder() []string {
	ids := make([]string, len(e.Chains))
	for i := range e.Chains {
		ids[i] = e.Chains[i].ID
	}
	return ids
}

// Chain looks for the chain with identifier ident.
func (e *Entry) Chain(ident string) (numbering.Chain, bool) {
	for _, chain := range e.Chains {
		if chain.ID == ident {
			return chain, true
		}
	}
	return numbering.Chain{}, false
}

func (e *Entry) String() string {
	lines := make([]string, len(e.Chains))
	for i, chain := range e.Chains {
		lines[i] = fmt.Sprintf("> Chain %s (%s, %s) :: length %d\n%s",
			chain.ID, chain.First(), chain.Last(), chain.Len(), chain)
	}
	return strings.Join(lines, "\n")
}

// extensions are tried in order by Locate.
var extensions = []string{
	".cif", ".cif.gz", ".pdb", ".pdb.gz", ".ent", ".ent.gz",
}

// Locate finds the coordinate file of a PDB code in dir. Both lower and upper
// case codes are tried, as is the "pdbXXXX.ent" naming used by PDB mirrors.
func Locate(dir, code string) (string, error) {
	var names []string
	for _, c := range []string{strings.ToLower(code), strings.ToUpper(code)} {
		for _, ext := range extensions {
			names = append(names, c+ext)
		}
	}
	names = append(names, "pdb"+strings.ToLower(code)+".ent",
		"pdb"+strings.ToLower(code)+".ent.gz")
	for _, name := range names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("no coordinate file for '%s' in '%s': %w",
		code, dir, os.ErrNotExist)
}

func open(fileName string) (io.ReadCloser, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(fileName) != ".gz" {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return gzReadCloser{gz, f}, nil
}

type gzReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (r gzReadCloser) Close() error {
	r.Reader.Close()
	return r.f.Close()
}

func readCIFFile(fileName string) (*Entry, error) {
	r, err := open(fileName)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entry, err := ReadCIF(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	entry.Path = fileName
	if len(entry.IdCode) == 0 {
		entry.IdCode = codeFromName(fileName)
	}
	return entry, nil
}

// readPDBFile reads a legacy PDB file. Residue numbers come from the ATOM and
// HETATM records of the first model, which is what the modelling engine sees.
func readPDBFile(fileName string) (*Entry, error) {
	pentry, err := tpdb.ReadPDB(fileName)
	if err != nil {
		return nil, err
	}
	r, err := open(fileName)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entry, err := scanPDB(r, pdbLetters(pentry))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	entry.Path = fileName
	entry.IdCode = strings.ToLower(pentry.IdCode)
	if len(entry.IdCode) == 0 {
		entry.IdCode = codeFromName(fileName)
	}
	return entry, nil
}

type residueKey struct {
	chain string
	pos   numbering.Position
}

// pdbLetters indexes the amino acids of the first model by chain and residue
// number.
func pdbLetters(pentry *tpdb.Entry) map[residueKey]seq.Residue {
	letters := make(map[residueKey]seq.Residue)
	for _, pchain := range pentry.Chains {
		if len(pchain.Models) == 0 {
			continue
		}
		for _, r := range pchain.Models[0].Residues {
			key := residueKey{
				chain: string(pchain.Ident),
				pos:   position(r.SequenceNum, r.InsertionCode),
			}
			letters[key] = r.Name
		}
	}
	return letters
}

// scanPDB builds chains from the ATOM and HETATM records of the first model,
// in file order. Amino acids already named in letters keep that name.
func scanPDB(r io.Reader, letters map[residueKey]seq.Residue) (*Entry, error) {
	entry := &Entry{}
	chains := make(map[string]int)
	var last residueKey
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "ENDMDL") {
			break
		}
		het := strings.HasPrefix(line, "HETATM")
		if !het && !strings.HasPrefix(line, "ATOM  ") || len(line) < 27 {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
		if err != nil {
			continue
		}
		key := residueKey{
			chain: string(line[21]),
			pos:   position(num, line[26]),
		}
		if key == last {
			continue
		}
		letter, ok := letters[key]
		if !ok || het {
			if letter, ok = residueLetter(strings.TrimSpace(line[17:20]), het); !ok {
				continue
			}
		}
		last = key

		ci, ok := chains[key.chain]
		if !ok {
			ci = len(entry.Chains)
			chains[key.chain] = ci
			entry.Chains = append(entry.Chains, numbering.Chain{ID: key.chain})
		}
		entry.Chains[ci].Residues = append(entry.Chains[ci].Residues,
			numbering.Residue{Letter: letter, Pos: key.pos})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(entry.Chains) == 0 {
		return nil, fmt.Errorf("no protein chains")
	}
	return entry, nil
}

func position(num int, ins byte) numbering.Position {
	switch ins {
	case ' ', '?', '.':
		ins = 0
	}
	return numbering.Position{Num: num, Ins: ins}
}

func codeFromName(fileName string) string {
	name := strings.ToLower(filepath.Base(fileName))
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimPrefix(name, "pdb")
}
