package script

import (
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"weft/internal/ir"
)

// fixture bundles a script source and its expected result tag in one
// txtar archive.
const fixture = `
-- pi-identity.weft --
star u
pi %1 %1
-- want --
Pi
`

func TestBuildPiIdentity(t *testing.T) {
	arc := txtar.Parse([]byte(fixture))
	var src, want string
	for _, f := range arc.Files {
		switch f.Name {
		case "pi-identity.weft":
			src = string(f.Data)
		case "want":
			want = strings.TrimSpace(string(f.Data))
		}
	}
	if src == "" || want == "" {
		t.Fatalf("fixture missing a section")
	}

	prog, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w := ir.New()
	result, err := Build(w, prog)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := w.Node(result).GetTag().String(); got != want {
		t.Fatalf("result tag = %s, want %s", got, want)
	}
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	src := "# a comment\n\nstar u\n"
	prog, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(prog.Instructions))
	}
}

func TestBuildRejectsUnknownInstruction(t *testing.T) {
	prog, err := Parse(strings.NewReader("frobnicate %1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w := ir.New()
	if _, err := Build(w, prog); err == nil {
		t.Fatalf("expected an error for an unknown instruction")
	}
}
