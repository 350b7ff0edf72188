// Package script implements the minimal line-oriented build-script format
// used by cmd/weft in place of the (out-of-scope) surface-syntax parser:
// one IR-construction instruction per line, each producing a new node
// addressable by later lines as %N (1-indexed in source order).
package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"weft/internal/ir"
	"weft/internal/qualifier"
)

// Program is a parsed, not-yet-built script: a flat instruction list. Build
// returns the node produced by the last instruction.
type Program struct {
	Instructions []Instruction
}

// Instruction is one parsed script line.
type Instruction struct {
	Line int
	Op   string
	Args []string
}

// Parse reads a script from r. Blank lines and lines beginning with '#'
// are ignored.
func Parse(r io.Reader) (*Program, error) {
	sc := bufio.NewScanner(r)
	var p Program
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		p.Instructions = append(p.Instructions, Instruction{Line: lineNo, Op: fields[0], Args: fields[1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "script: read")
	}
	return &p, nil
}

// Build constructs each instruction against w in order, returning the
// NodeID of the final instruction — the script's result.
func Build(w *ir.World, p *Program) (ir.NodeID, error) {
	results := make([]ir.NodeID, 0, len(p.Instructions))
	ref := func(tok string) (ir.NodeID, error) {
		if !strings.HasPrefix(tok, "%") {
			return 0, fmt.Errorf("expected a %%N reference, got %q", tok)
		}
		n, err := strconv.Atoi(tok[1:])
		if err != nil || n < 1 || n > len(results) {
			return 0, fmt.Errorf("invalid back-reference %q", tok)
		}
		return results[n-1], nil
	}
	q := func(tok string) (qualifier.Qualifier, error) {
		switch tok {
		case "u":
			return qualifier.Unlimited, nil
		case "r":
			return qualifier.Relevant, nil
		case "a":
			return qualifier.Affine, nil
		case "l":
			return qualifier.Linear, nil
		default:
			return 0, fmt.Errorf("unknown qualifier %q (want u/r/a/l)", tok)
		}
	}

	var last ir.NodeID
	for _, inst := range p.Instructions {
		var id ir.NodeID
		var err error
		switch inst.Op {
		case "star":
			qq, e := q(inst.Args[0])
			err = e
			id = w.Star(qq)
		case "arity_kind":
			qq, e := q(inst.Args[0])
			err = e
			id = w.ArityKind(qq)
		case "multi_arity_kind":
			qq, e := q(inst.Args[0])
			err = e
			id = w.MultiArityKind(qq)
		case "qualifier_type":
			id = w.QualifierType()
		case "arity":
			qq, e := q(inst.Args[0])
			if e != nil {
				err = e
				break
			}
			n, e2 := strconv.ParseUint(inst.Args[1], 10, 64)
			err = e2
			id = w.Arity(qq, n)
		case "var":
			typ, e := ref(inst.Args[0])
			if e != nil {
				err = e
				break
			}
			idx, e2 := strconv.Atoi(inst.Args[1])
			err = e2
			id = w.Var(typ, idx)
		case "pi":
			dom, e := ref(inst.Args[0])
			if e != nil {
				err = e
				break
			}
			cod, e2 := ref(inst.Args[1])
			err = e2
			id = w.Pi(dom, cod)
		case "lambda":
			dom, e := ref(inst.Args[0])
			if e != nil {
				err = e
				break
			}
			body, e2 := ref(inst.Args[1])
			err = e2
			id = w.Lambda(dom, body)
		case "sigma":
			ops, e := refAll(ref, inst.Args)
			err = e
			id = w.Sigma(ops)
		case "tuple":
			ops, e := refAll(ref, inst.Args)
			err = e
			id = w.Tuple(ops)
		case "extract":
			agg, e := ref(inst.Args[0])
			if e != nil {
				err = e
				break
			}
			idx, e2 := ref(inst.Args[1])
			err = e2
			id = w.Extract(agg, idx)
		case "app":
			callee, e := ref(inst.Args[0])
			if e != nil {
				err = e
				break
			}
			arg, e2 := ref(inst.Args[1])
			err = e2
			id = w.App(callee, arg)
		case "bottom":
			typ, e := ref(inst.Args[0])
			err = e
			id = w.Bottom(typ)
		case "top":
			typ, e := ref(inst.Args[0])
			err = e
			id = w.Top(typ)
		case "lit":
			typ, e := ref(inst.Args[0])
			if e != nil {
				err = e
				break
			}
			id, err = buildLit(w, typ, inst.Args[1])
		default:
			err = fmt.Errorf("unknown instruction %q", inst.Op)
		}
		if err != nil {
			return 0, errors.Wrapf(err, "script: line %d", inst.Line)
		}
		results = append(results, id)
		last = id
	}
	if len(results) == 0 {
		return 0, errors.New("script: empty program")
	}
	return last, nil
}

func refAll(ref func(string) (ir.NodeID, error), toks []string) ([]ir.NodeID, error) {
	out := make([]ir.NodeID, len(toks))
	for i, t := range toks {
		id, err := ref(t)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func buildLit(w *ir.World, typ ir.NodeID, value string) (ir.NodeID, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid literal value %q", value)
	}
	return w.Lit(typ, ir.IntLit(ir.LitInt64, uint64(n))), nil
}
