// Package pir reads and writes alignments in the PIR format used by
// MODELLER.
//
// Each entry has a '>P1;' line naming its code, a colon separated
// description line and the aligned sequence. A sequence made of several
// chains is written as segments separated by '/' and the sequence is
// terminated by '*'. The description line has ten fields:
//
//	type:file:start:startChain:end:endChain:name:source:resolution:rfactor
package pir

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/TuftsBCB/seq"
)

// Entry types understood by MODELLER.
const (
	StructureX = "structureX"
	StructureN = "structureN"
	StructureM = "structureM"
	Structure  = "structure"
	Sequence   = "sequence"
)

// Columns is the line width of sequences written by a Writer.
const Columns = 75

// Entry is a single PIR alignment entry. All description fields are kept as
// text, since MODELLER accepts residue ids with insertion codes ("100A") and
// the placeholders '.', FIRST and LAST.
type Entry struct {
	Code       string
	Type       string
	File       string
	Start      string
	StartChain string
	End        string
	EndChain   string
	Name       string
	Source     string
	Resolution string
	RFactor    string

	// Segments holds one aligned sequence per chain, using '-' for gaps.
	Segments [][]seq.Residue
}

// Header returns the description line of the entry.
func (e Entry) Header() string {
	return strings.Join([]string{
		e.Type, e.File, e.Start, e.StartChain, e.End, e.EndChain,
		e.Name, e.Source, e.Resolution, e.RFactor,
	}, ":")
}

// Residues returns the segments joined by '/' and terminated with '*'.
func (e Entry) Residues() []byte {
	var buf []byte
	for i, seg := range e.Segments {
		if i > 0 {
			buf = append(buf, '/')
		}
		for _, r := range seg {
			buf = append(buf, byte(r))
		}
	}
	return append(buf, '*')
}

// String returns the entry in PIR format, wrapped at Columns.
func (e Entry) String() string {
	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	w.Write(e)
	w.Flush()
	return buf.String()
}

// A Writer writes PIR entries. Entries are separated by a blank line.
type Writer struct {
	// The number of columns to wrap a sequence at. By default, this is
	// Columns. A value <= 0 turns wrapping off.
	Columns int

	buf     *bufio.Writer
	written int
}

// NewWriter creates a new PIR writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Columns: Columns,
		buf:     bufio.NewWriter(w),
	}
}

// Write writes a single entry. Call Flush when done.
func (w *Writer) Write(e Entry) error {
	if strings.ContainsAny(e.Code, " \t\n") {
		return fmt.Errorf("PIR code '%s' contains whitespace", e.Code)
	}
	if w.written > 0 {
		if err := w.buf.WriteByte('\n'); err != nil {
			return err
		}
	}
	w.written++

	if _, err := fmt.Fprintf(w.buf, ">P1;%s\n%s\n", e.Code, e.Header()); err != nil {
		return err
	}
	residues := e.Residues()
	for len(residues) > 0 {
		n := len(residues)
		if w.Columns > 0 && n > w.Columns {
			n = w.Columns
		}
		if _, err := w.buf.Write(residues[:n]); err != nil {
			return err
		}
		if err := w.buf.WriteByte('\n'); err != nil {
			return err
		}
		residues = residues[n:]
	}
	return nil
}

// WriteAll writes all entries and flushes the writer.
func (w *Writer) WriteAll(entries []Entry) error {
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Read reads every entry of a PIR file. Lines before the first '>P1;' line
// and comment lines ("C;" or "R;") between the description and the sequence
// are ignored.
func Read(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var entries []Entry
	var cur *Entry
	var residues []byte
	state := 0 // 0: want '>', 1: want description, 2: in sequence
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		switch state {
		case 0:
			if !strings.HasPrefix(line, ">") {
				continue
			}
			if !strings.HasPrefix(line, ">P1;") {
				return nil, fmt.Errorf("Line %d: expected '>P1;' but got '%s'.",
					lineno, line)
			}
			cur = &Entry{Code: strings.TrimSpace(line[4:])}
			residues = residues[:0]
			state = 1
		case 1:
			if len(line) == 0 {
				continue
			}
			fields := strings.Split(line, ":")
			if len(fields) < 10 {
				return nil, fmt.Errorf("Line %d: description of '%s' has %d "+
					"fields, but 10 are required.", lineno, cur.Code, len(fields))
			}
			cur.Type, cur.File = fields[0], fields[1]
			cur.Start, cur.StartChain = fields[2], fields[3]
			cur.End, cur.EndChain = fields[4], fields[5]
			cur.Name, cur.Source = fields[6], fields[7]
			cur.Resolution, cur.RFactor = fields[8], fields[9]
			state = 2
		case 2:
			if strings.HasPrefix(line, "C;") || strings.HasPrefix(line, "R;") {
				continue
			}
			if strings.HasPrefix(line, ">") {
				return nil, fmt.Errorf("Line %d: sequence of '%s' is not "+
					"terminated by '*'.", lineno, cur.Code)
			}
			for i := 0; i < len(line); i++ {
				if line[i] == ' ' || line[i] == '\t' {
					continue
				}
				if !validResidue(line[i]) {
					return nil, fmt.Errorf("Line %d: invalid residue '%c' "+
						"in '%s'.", lineno, line[i], cur.Code)
				}
				residues = append(residues, line[i])
			}
			if len(residues) > 0 && residues[len(residues)-1] == '*' {
				cur.Segments = segments(residues[:len(residues)-1])
				entries = append(entries, *cur)
				state = 0
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if state != 0 {
		return nil, fmt.Errorf("Entry '%s' is incomplete.", cur.Code)
	}
	return entries, nil
}

// Validate checks that the entries form an alignment: there is at least one
// entry, no code is empty, every entry has a known type and the same number
// of segments, and the n'th segments of all entries have the same length.
func Validate(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("alignment has no entries")
	}
	first := entries[0]
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if len(e.Code) == 0 {
			return fmt.Errorf("alignment has an entry without a code")
		}
		if seen[e.Code] {
			return fmt.Errorf("code '%s' is used by more than one entry", e.Code)
		}
		seen[e.Code] = true
		switch e.Type {
		case StructureX, StructureN, StructureM, Structure, Sequence:
		default:
			return fmt.Errorf("entry '%s' has unknown type '%s'", e.Code, e.Type)
		}
		if len(e.Segments) != len(first.Segments) {
			return fmt.Errorf("entry '%s' has %d segments, but '%s' has %d",
				e.Code, len(e.Segments), first.Code, len(first.Segments))
		}
		for i := range e.Segments {
			if len(e.Segments[i]) != len(first.Segments[i]) {
				return fmt.Errorf("segment %d of '%s' has %d columns, but "+
					"'%s' has %d", i+1, e.Code, len(e.Segments[i]),
					first.Code, len(first.Segments[i]))
			}
		}
	}
	return nil
}

func segments(residues []byte) [][]seq.Residue {
	pieces := bytes.Split(residues, []byte{'/'})
	segs := make([][]seq.Residue, len(pieces))
	for i, piece := range pieces {
		segs[i] = make([]seq.Residue, len(piece))
		for j, b := range piece {
			segs[i][j] = seq.Residue(b)
		}
	}
	return segs
}

func validResidue(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
	case b == '-' || b == '.' || b == '/' || b == '*':
	default:
		return false
	}
	return true
}
