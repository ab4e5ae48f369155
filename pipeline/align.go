package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/TuftsBCB/io/msa"
	"github.com/TuftsBCB/seq"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/align"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/assemble"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/clustal"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/config"
	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/recombine"
)

// alignChains produces the light and heavy chain alignments with the
// configured aligner. Alignments made here are also written to the
// alignments directory.
func alignChains(
	ctx context.Context,
	cfg *config.Config,
	h *recombine.Hybrid,
	r *Report,
	stamp func(string) string,
	lg *log.Logger,
) (assemble.Alignments, error) {
	var alns assemble.Alignments
	var err error

	switch cfg.Aligner {
	case config.AlignFiles:
		r.Files.ClustalHeavy = filepath.Join(cfg.Dirs.Alignments, cfg.Files.ClustalHeavy)
		r.Files.ClustalLight = filepath.Join(cfg.Dirs.Alignments, cfg.Files.ClustalLight)
		if alns.Heavy, err = ReadAlignment(r.Files.ClustalHeavy); err != nil {
			return alns, err
		}
		if alns.Light, err = ReadAlignment(r.Files.ClustalLight); err != nil {
			return alns, err
		}
		lg.Printf("Read alignments '%s' and '%s'.",
			r.Files.ClustalHeavy, r.Files.ClustalLight)
		return alns, nil
	case config.AlignClustalo:
		r.Files.ClustalHeavy = filepath.Join(cfg.Dirs.Alignments, stamp(cfg.Files.ClustalHeavy))
		r.Files.ClustalLight = filepath.Join(cfg.Dirs.Alignments, stamp(cfg.Files.ClustalLight))
		alns.Heavy, err = cfg.Clustalo.RunTo(ctx, r.Files.FastaHeavy, r.Files.ClustalHeavy)
		if err != nil {
			return alns, err
		}
		alns.Light, err = cfg.Clustalo.RunTo(ctx, r.Files.FastaLight, r.Files.ClustalLight)
		if err != nil {
			return alns, err
		}
	case config.AlignBuiltin:
		r.Files.ClustalHeavy = filepath.Join(cfg.Dirs.Alignments, stamp(cfg.Files.ClustalHeavy))
		r.Files.ClustalLight = filepath.Join(cfg.Dirs.Alignments, stamp(cfg.Files.ClustalLight))
		alns.Heavy, err = align.Fab(h.AlignChain(recombine.Heavy),
			align.Blosum62, align.DefaultGap)
		if err != nil {
			return alns, fmt.Errorf("heavy chain: %w", err)
		}
		alns.Light, err = align.Fab(h.AlignChain(recombine.Light),
			align.Blosum62, align.DefaultGap)
		if err != nil {
			return alns, fmt.Errorf("light chain: %w", err)
		}
		if err := WriteAlignment(r.Files.ClustalHeavy, alns.Heavy); err != nil {
			return alns, err
		}
		if err := WriteAlignment(r.Files.ClustalLight, alns.Light); err != nil {
			return alns, err
		}
	default:
		return alns, fmt.Errorf("unknown aligner '%s'", cfg.Aligner)
	}
	lg.Printf("Wrote alignments '%s' and '%s'.",
		r.Files.ClustalHeavy, r.Files.ClustalLight)
	return alns, nil
}

// isFasta reports whether the alignment file name is an aligned FASTA
// (or A2M/A3M) file rather than a CLUSTAL file.
func isFasta(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fasta", ".fa", ".fas", ".afa", ".a2m", ".a3m":
		return true
	}
	return false
}

// ReadAlignment reads a CLUSTAL alignment, or an aligned FASTA file when the
// extension says so.
func ReadAlignment(path string) (seq.MSA, error) {
	f, err := os.Open(path)
	if err != nil {
		return seq.MSA{}, err
	}
	defer f.Close()

	var read func(io.Reader) (seq.MSA, error) = clustal.Read
	if isFasta(path) {
		read = msa.Read
	}
	aln, err := read(f)
	if err != nil {
		return seq.MSA{}, fmt.Errorf("%s: %w", path, err)
	}
	return aln, nil
}

// WriteAlignment writes a CLUSTAL alignment, or an aligned FASTA file when
// the extension says so.
func WriteAlignment(path string, aln seq.MSA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	write := clustal.Write
	if isFasta(path) {
		write = msa.WriteFasta
	}
	if err := write(f, aln); err != nil {
		f.Close()
		return fmt.Errorf("writing alignment '%s': %w", path, err)
	}
	return f.Close()
}
