package pdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/numbering"
)

// ReadCIF reads the first data block of a PDBx/mmCIF file. Only the entry
// identifier and the _atom_site loop are interpreted. Residues are built from
// consecutive atom records sharing a chain, residue number and insertion code.
// Author chain identifiers and residue numbers (auth_*) are preferred over
// their label_* fallbacks, since the modelling engine uses them when it reads
// the same file.
//
// Residues are named the way residueLetter describes, so waters and ligands
// are skipped.
func ReadCIF(r io.Reader) (*Entry, error) {
	entry := &Entry{}
	sc := newCIFScanner(r)

	var cols map[string]int
	for {
		tok, err := sc.next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		switch {
		case strings.HasPrefix(tok, "data_"):
			if len(entry.IdCode) > 0 || cols != nil {
				// Only the first data block is read.
				return finishCIF(entry, cols)
			}
		case strings.EqualFold(tok, "_entry.id"):
			id, err := sc.next()
			if err != nil {
				return nil, fmt.Errorf("_entry.id has no value")
			}
			entry.IdCode = strings.ToLower(id)
		case strings.EqualFold(tok, "loop_"):
			tags, err := sc.loopHeader()
			if err != nil {
				return nil, err
			}
			if len(tags) == 0 || !strings.HasPrefix(tags[0], "_atom_site.") {
				if err := sc.skipLoop(); err != nil {
					return nil, err
				}
				continue
			}
			cols = make(map[string]int, len(tags))
			for i, tag := range tags {
				cols[strings.TrimPrefix(tag, "_atom_site.")] = i
			}
			if err := readAtomSites(entry, sc, cols, len(tags)); err != nil {
				return nil, err
			}
		}
	}
	return finishCIF(entry, cols)
}

func finishCIF(entry *Entry, cols map[string]int) (*Entry, error) {
	if cols == nil {
		return nil, fmt.Errorf("no _atom_site loop found")
	}
	if len(entry.Chains) == 0 {
		return nil, fmt.Errorf("no amino acid residues in _atom_site")
	}
	return entry, nil
}

func readAtomSites(
	entry *Entry,
	sc *cifScanner,
	cols map[string]int,
	ncols int,
) error {
	col := func(names ...string) int {
		for _, name := range names {
			if i, ok := cols[name]; ok {
				return i
			}
		}
		return -1
	}
	group := col("group_pdb")
	comp := col("auth_comp_id", "label_comp_id")
	asym := col("auth_asym_id", "label_asym_id")
	seqid := col("auth_seq_id", "label_seq_id")
	ins := col("pdbx_pdb_ins_code")
	model := col("pdbx_pdb_model_num")
	if comp < 0 || asym < 0 || seqid < 0 {
		return fmt.Errorf("_atom_site lacks chain, residue or number columns")
	}

	chains := make(map[string]int)
	var firstModel string
	var lastKey string
	row := make([]string, ncols)
	for {
		for i := 0; i < ncols; i++ {
			tok, ok, err := sc.nextValue()
			switch {
			case i == 0 && (err == io.EOF || err == nil && !ok):
				// End of file or a tag, keyword or data block: the loop is over.
				return nil
			case err == io.EOF || err == nil && !ok:
				return fmt.Errorf("truncated _atom_site loop")
			case err != nil:
				return err
			}
			row[i] = tok
		}

		if model >= 0 {
			if len(firstModel) == 0 {
				firstModel = row[model]
			} else if row[model] != firstModel {
				continue
			}
		}
		isHet := group >= 0 && row[group] == "HETATM"
		letter, ok := residueLetter(row[comp], isHet)
		if !ok {
			continue
		}

		num, err := strconv.Atoi(row[seqid])
		if err != nil {
			// Unnumbered sites (e.g. label_seq_id '.') are not residues.
			continue
		}
		var insCode byte
		if ins >= 0 && len(row[ins]) > 0 {
			insCode = row[ins][0]
		}
		chainID := row[asym]
		key := chainID + "\x00" + row[seqid] + "\x00" + string(insCode)
		if key == lastKey {
			continue
		}
		lastKey = key

		ci, ok := chains[chainID]
		if !ok {
			ci = len(entry.Chains)
			chains[chainID] = ci
			entry.Chains = append(entry.Chains, numbering.Chain{ID: chainID})
		}
		entry.Chains[ci].Residues = append(entry.Chains[ci].Residues,
			numbering.Residue{
				Letter: letter,
				Pos:    position(num, insCode),
			})
	}
}

// cifScanner splits CIF text into tokens: whitespace separated words, quoted
// strings and semicolon delimited text fields. Comments are dropped.
type cifScanner struct {
	buf     *bufio.Reader
	pending []string
	line    int
}

func newCIFScanner(r io.Reader) *cifScanner {
	return &cifScanner{buf: bufio.NewReaderSize(r, 1<<16)}
}

// next returns the next token of any kind.
func (sc *cifScanner) next() (string, error) {
	for len(sc.pending) == 0 {
		line, err := sc.buf.ReadString('\n')
		if len(line) == 0 && err != nil {
			return "", err
		}
		sc.line++
		if strings.HasPrefix(line, ";") {
			text, err := sc.textField(line)
			if err != nil {
				return "", err
			}
			return text, nil
		}
		sc.pending, err = splitCIFLine(line)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", sc.line, err)
		}
	}
	tok := sc.pending[0]
	sc.pending = sc.pending[1:]
	return tok, nil
}

// nextValue returns the next token if it is a data value, which may be
// empty (''). If the next token is a tag or a reserved word, it is pushed back
// and ok is false.
func (sc *cifScanner) nextValue() (tok string, ok bool, err error) {
	tok, err = sc.next()
	if err != nil {
		return "", false, err
	}
	if isReserved(tok) {
		sc.unread(tok)
		return "", false, nil
	}
	return tok, true, nil
}

func (sc *cifScanner) unread(tok string) {
	sc.pending = append([]string{tok}, sc.pending...)
}

// loopHeader reads the tags of a loop. The loop body is left unread.
func (sc *cifScanner) loopHeader() ([]string, error) {
	var tags []string
	for {
		tok, err := sc.next()
		if err == io.EOF {
			return tags, nil
		} else if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(tok, "_") {
			sc.unread(tok)
			return tags, nil
		}
		tags = append(tags, strings.ToLower(tok))
	}
}

func (sc *cifScanner) skipLoop() error {
	for {
		_, ok, err := sc.nextValue()
		if err == io.EOF || (err == nil && !ok) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

func (sc *cifScanner) textField(first string) (string, error) {
	var b strings.Builder
	b.WriteString(strings.TrimRight(first[1:], "\r\n"))
	for {
		line, err := sc.buf.ReadString('\n')
		if len(line) == 0 && err != nil {
			return "", fmt.Errorf("line %d: unterminated text field", sc.line)
		}
		sc.line++
		if strings.HasPrefix(line, ";") {
			rest, err := splitCIFLine(line[1:])
			if err != nil {
				return "", err
			}
			sc.pending = rest
			return b.String(), nil
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(line, "\r\n"))
	}
}

func isReserved(tok string) bool {
	if strings.HasPrefix(tok, "_") {
		return true
	}
	lower := strings.ToLower(tok)
	return lower == "loop_" || lower == "stop_" || lower == "global_" ||
		strings.HasPrefix(lower, "data_") || strings.HasPrefix(lower, "save_")
}

// splitCIFLine splits a line into tokens, honoring single and double quoted
// strings. A quote only closes a string when followed by whitespace.
func splitCIFLine(line string) ([]string, error) {
	var toks []string
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '#':
			return toks, nil
		case c == '\'' || c == '"':
			j := i + 1
			for ; j < len(line); j++ {
				if line[j] == c && (j+1 == len(line) || isSpace(line[j+1])) {
					break
				}
			}
			if j >= len(line) {
				return nil, fmt.Errorf("unterminated quoted string")
			}
			toks = append(toks, line[i+1:j])
			i = j + 1
		default:
			j := i
			for j < len(line) && !isSpace(line[j]) {
				j++
			}
			toks = append(toks, line[i:j])
			i = j
		}
	}
	return toks, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
