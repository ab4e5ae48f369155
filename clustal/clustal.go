// Package clustal reads and writes multiple sequence alignments in the
// CLUSTAL format written by Clustal W and Clustal Omega.
package clustal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TuftsBCB/seq"
)

// Columns is the number of alignment columns in each block written by Write.
const Columns = 60

// Read reads a CLUSTAL alignment. The header line must start with "CLUSTAL".
// Consensus lines and trailing residue counts are ignored. Rows are returned
// in the order they first appear.
func Read(r io.Reader) (seq.MSA, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	header := false
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !bytes.HasPrefix(bytes.ToUpper(line), []byte("CLUSTAL")) {
			return seq.MSA{}, fmt.Errorf("First line does not start with "+
				"'CLUSTAL': '%s'.", line)
		}
		header = true
		break
	}
	if !header {
		if err := scanner.Err(); err != nil {
			return seq.MSA{}, err
		}
		return seq.MSA{}, fmt.Errorf("Empty CLUSTAL alignment.")
	}

	var names []string
	rows := make(map[string][]seq.Residue)
	for lineno := 2; scanner.Scan(); lineno++ {
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		// Consensus lines are indented to the residue column.
		if raw[0] == ' ' || raw[0] == '\t' {
			continue
		}

		fields := bytes.Fields(raw)
		switch {
		case len(fields) == 3:
			if _, err := strconv.Atoi(string(fields[2])); err != nil {
				return seq.MSA{}, fmt.Errorf("Line %d: bad residue count "+
					"'%s'.", lineno, fields[2])
			}
		case len(fields) != 2:
			return seq.MSA{}, fmt.Errorf("Line %d: expected a name and "+
				"residues but got '%s'.", lineno, raw)
		}
		name := string(fields[0])
		residues, err := asResidues(fields[1])
		if err != nil {
			return seq.MSA{}, fmt.Errorf("Line %d: %s", lineno, err)
		}
		if _, ok := rows[name]; !ok {
			names = append(names, name)
		}
		rows[name] = append(rows[name], residues...)
	}
	if err := scanner.Err(); err != nil {
		return seq.MSA{}, err
	}
	if len(names) == 0 {
		return seq.MSA{}, fmt.Errorf("CLUSTAL alignment has no sequences.")
	}

	msa := seq.NewMSA()
	for _, name := range names {
		if len(rows[name]) != len(rows[names[0]]) {
			return seq.MSA{}, fmt.Errorf("Sequence '%s' has length %d, but "+
				"'%s' has length %d.",
				name, len(rows[name]), names[0], len(rows[names[0]]))
		}
		msa.Add(seq.Sequence{Name: name, Residues: rows[name]})
	}
	return msa, nil
}

// Write writes the alignment in the CLUSTAL format, in blocks of Columns
// residues followed by a line marking fully conserved columns with '*'.
func Write(w io.Writer, msa seq.MSA) error {
	var err error
	pf := func(format string, v ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, v...)
	}

	rows := make([]seq.Sequence, len(msa.Entries))
	width := 0
	for i := range msa.Entries {
		rows[i] = msa.GetFasta(i)
		if len(rows[i].Name) > width {
			width = len(rows[i].Name)
		}
	}
	width += 6

	pf("CLUSTAL multiple sequence alignment\n\n")
	length := 0
	if len(rows) > 0 {
		length = rows[0].Len()
	}
	for start := 0; start < length && err == nil; start += Columns {
		end := start + Columns
		if end > length {
			end = length
		}
		pf("\n")
		for _, row := range rows {
			pf("%-*s%s\n", width, row.Name, row.Residues[start:end])
		}
		pf("%s%s\n", strings.Repeat(" ", width), consensus(rows, start, end))
	}
	return err
}

// Key returns the identifier alignment rows are looked up by: the part of
// the name before the first '|', lower cased. The rows written for the
// recombination are named "<code>|<chain>|<role>".
func Key(name string) string {
	if i := strings.IndexByte(name, '|'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Index maps the Key of every row to its gapped sequence (with '-' gaps).
// When two rows share a key, the first is kept.
func Index(msa seq.MSA) map[string]seq.Sequence {
	index := make(map[string]seq.Sequence, len(msa.Entries))
	for i := range msa.Entries {
		s := msa.GetFasta(i)
		if _, ok := index[Key(s.Name)]; !ok {
			index[Key(s.Name)] = s
		}
	}
	return index
}

func consensus(rows []seq.Sequence, start, end int) string {
	line := make([]byte, end-start)
	for col := start; col < end; col++ {
		line[col-start] = '*'
		for _, row := range rows {
			r := row.Residues[col]
			if r == '-' || r != rows[0].Residues[col] {
				line[col-start] = ' '
				break
			}
		}
	}
	return strings.TrimRight(string(line), " ")
}

func asResidues(bs []byte) ([]seq.Residue, error) {
	rs := make([]seq.Residue, len(bs))
	for i, b := range bs {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b == '*':
			rs[i] = seq.Residue(b)
		case b == '-' || b == '.':
			rs[i] = '-'
		default:
			return nil, fmt.Errorf("Invalid CLUSTAL residue '%c'.", b)
		}
	}
	return rs, nil
}
