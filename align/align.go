// Package align builds the template/target alignment of one antibody chain
// type without an external aligner. The hybrid target is, by construction,
// identical to the variable region of one template and to the constant
// region of the other, so only the cross pieces need a pairwise alignment.
package align

import (
	"fmt"

	"github.com/TuftsBCB/seq"
)

// DefaultGap is the linear gap penalty used with Blosum62.
const DefaultGap = -4

// Alignment is a global pairwise alignment. A and B have the same length and
// use '-' for gaps.
type Alignment struct {
	A, B  []seq.Residue
	Score int
}

// NeedlemanWunsch computes an optimal global alignment of A and B with a
// linear gap penalty (gap should be negative). Ties prefer a substitution,
// then a gap in B, then a gap in A.
func NeedlemanWunsch(A, B []seq.Residue, m *Matrix, gap int) Alignment {
	rows, cols := len(A)+1, len(B)+1
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
		matrix[i][0] = gap * i
	}
	for j := 0; j < cols; j++ {
		matrix[0][j] = gap * j
	}
	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			matrix[i][j] = max3(
				matrix[i-1][j-1]+m.Score(A[i-1], B[j-1]),
				matrix[i-1][j]+gap,
				matrix[i][j-1]+gap)
		}
	}

	// Trace an optimal path back from the bottom right corner.
	aligned := Alignment{
		A:     make([]seq.Residue, 0, max(len(A), len(B))),
		B:     make([]seq.Residue, 0, max(len(A), len(B))),
		Score: matrix[rows-1][cols-1],
	}
	i, j := len(A), len(B)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 &&
			matrix[i][j] == matrix[i-1][j-1]+m.Score(A[i-1], B[j-1]):
			aligned.A = append(aligned.A, A[i-1])
			aligned.B = append(aligned.B, B[j-1])
			i--
			j--
		case i > 0 && matrix[i][j] == matrix[i-1][j]+gap:
			aligned.A = append(aligned.A, A[i-1])
			aligned.B = append(aligned.B, '-')
			i--
		default:
			aligned.A = append(aligned.A, '-')
			aligned.B = append(aligned.B, B[j-1])
			j--
		}
	}

	// Since we built the alignment in backwards, we must reverse it.
	for i, j := 0, len(aligned.A)-1; i < j; i, j = i+1, j-1 {
		aligned.A[i], aligned.A[j] = aligned.A[j], aligned.A[i]
		aligned.B[i], aligned.B[j] = aligned.B[j], aligned.B[i]
	}
	return aligned
}

// Chain describes one chain type (heavy or light) of the three alignment
// members. VLen and CLen are the lengths of the variable regions of the
// variable and constant region templates; the hybrid is
// Variable[:VLen] + Constant[CLen:].
type Chain struct {
	Variable, Constant, Hybrid seq.Sequence
	VLen, CLen                 int
}

// Fab aligns the two templates and the hybrid of one chain type. Rows are
// returned in the order variable template, constant template, hybrid.
//
// The hybrid's variable region is copied column for column from the variable
// template, and its constant region from the constant template. The constant
// template's variable region is aligned to the variable template's with
// Needleman-Wunsch, and likewise for the constant regions.
func Fab(c Chain, m *Matrix, gap int) (seq.MSA, error) {
	v, k, h := c.Variable.Residues, c.Constant.Residues, c.Hybrid.Residues
	if c.VLen < 0 || c.VLen > len(v) || c.CLen < 0 || c.CLen > len(k) {
		return seq.MSA{}, fmt.Errorf("boundary outside of template sequences")
	}
	if len(h) != c.VLen+len(k)-c.CLen ||
		string(h[:c.VLen]) != string(v[:c.VLen]) ||
		string(h[c.VLen:]) != string(k[c.CLen:]) {
		return seq.MSA{}, fmt.Errorf("'%s' is not the recombinant of '%s' "+
			"and '%s'", c.Hybrid.Name, c.Variable.Name, c.Constant.Name)
	}

	vr := NeedlemanWunsch(v[:c.VLen], k[:c.CLen], m, gap)
	cr := NeedlemanWunsch(v[c.VLen:], k[c.CLen:], m, gap)

	rows := []seq.Sequence{
		{Name: c.Variable.Name, Residues: concat(vr.A, cr.A)},
		{Name: c.Constant.Name, Residues: concat(vr.B, cr.B)},
		{Name: c.Hybrid.Name, Residues: concat(vr.A, cr.B)},
	}
	msa := seq.NewMSA()
	msa.AddSlice(rows)
	return msa, nil
}

func concat(a, b []seq.Residue) []seq.Residue {
	rs := make([]seq.Residue, 0, len(a)+len(b))
	rs = append(rs, a...)
	return append(rs, b...)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func max3(a, b, c int) int {
	switch {
	case a >= b && a >= c:
		return a
	case b >= c:
		return b
	}
	return c
}
