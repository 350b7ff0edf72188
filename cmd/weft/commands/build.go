// cmd/weft/commands/build.go
package commands

import (
	"fmt"
	"os"

	"weft/internal/diag"
	"weft/internal/ir"
	"weft/internal/script"
)

// BuildCommand parses and builds the script named by args[0], printing the
// resulting node's gid and tag on success.
func BuildCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: weft build <script>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	prog, err := script.Parse(f)
	if err != nil {
		return err
	}

	w := ir.NewWithOptions(ir.Options{Verify: true, Logger: diag.NewWriter(os.Stderr), ArenaHint: 256})
	result, err := script.Build(w, prog)
	if err != nil {
		return err
	}
	fmt.Printf("%%%d : %s\n", result, w.Node(result).GetTag())
	if pkgs := w.AxiomPackages(); len(pkgs) > 0 {
		fmt.Printf("axiom packages: %v\n", pkgs)
	}
	return nil
}

// CheckCommand parses and builds the script, then runs the whole-graph
// verifier over the result, reporting every diagnostic found.
func CheckCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: weft check <script>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	prog, err := script.Parse(f)
	if err != nil {
		return err
	}

	w := ir.NewWithOptions(ir.Options{Verify: true, Logger: diag.Nop{}, ArenaHint: 256})
	result, err := script.Build(w, prog)
	if err != nil {
		return err
	}

	diags := ir.Verify(w, result)
	if len(diags) == 0 {
		fmt.Printf("ok: %%%d is well-typed\n", result)
		return nil
	}
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	return fmt.Errorf("%d diagnostic(s)", len(diags))
}
