package clustalo

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const fakeClustalo = `#!/bin/sh
while [ $# -gt 0 ]; do
	case "$1" in
	-i) input="$2"; shift ;;
	-o) out="$2"; shift ;;
	esac
	shift
done
test -r "$input" || { echo "cannot read $input" >&2; exit 2; }
cat > "$out" <<'ALN'
CLUSTAL O(1.2.4) multiple sequence alignment


1n8z|B|v_template      EVQLV-ASTK
3m8o|H|c_template      QVQLQSPTSP
fab_hybrid|H|target    EVQLV-PTSP
                       ***
ALN
`

func fakeExec(t *testing.T, script string) string {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "clustalo")
	if err := ioutil.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunTo(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "heavy.fasta")
	if err := ioutil.WriteFile(input, []byte(">a\nEVQLV\n"), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "heavy.clustal")

	conf := Default
	conf.Exec = fakeExec(t, fakeClustalo)
	msa, err := conf.RunTo(context.Background(), input, output)
	if err != nil {
		t.Fatal(err)
	}
	if len(msa.Entries) != 3 {
		t.Fatalf("got %d rows, want 3", len(msa.Entries))
	}
	if got := string(msa.GetFasta(2).Residues); got != "EVQLV-PTSP" {
		t.Fatalf("hybrid row is %s, want EVQLV-PTSP", got)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("CLUSTAL output was not kept: %s", err)
	}
}

func TestRunFailure(t *testing.T) {
	conf := Default
	conf.Exec = fakeExec(t, fakeClustalo)
	_, err := conf.Run(context.Background(), filepath.Join(t.TempDir(), "missing.fasta"))
	if err == nil {
		t.Fatalf("expected an error when clustalo fails")
	}
	if !strings.Contains(err.Error(), "cannot read") {
		t.Fatalf("error does not carry the clustalo output: %s", err)
	}
}
