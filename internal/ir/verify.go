package ir

import (
	"fmt"

	"weft/internal/diag"
)

// Diagnostic is one finding from Verify: a node whose position in a larger
// graph violates an invariant that finalize's own checkConstruction (which
// only confirms that the node's type-of-type chain terminates) does not
// look at, one only visible with full context — an App whose cached argument
// assignability no longer holds after a Replace, for instance.
type Diagnostic struct {
	Node    NodeID
	Tag     Tag
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("node %%%d (%s): %s", d.Node, d.Tag, d.Message)
}

// Verify walks every node reachable from roots (component J) and confirms
// the whole-graph invariants finalize cannot check locally: App argument
// assignability still holding, every Pi's domain being a Type,
// Sigma/Variadic component types resolving to real Types rather than
// Bottom, and every Var's declared type agreeing with the binder it
// refers back to (§4.11). The first pass threads a plain visited set
// (shared subtrees checked once); the second threads a stack of expected
// binder types alongside a (node, scope-depth) memo set, since the Var
// rule's answer depends on the path taken to reach a node, not just the
// node itself — a shared subtree can sit under different binder stacks
// through different parents, and a nominal λ's self-reference would
// otherwise cycle the walk forever.
func Verify(w *World, roots ...NodeID) []Diagnostic {
	var diags []Diagnostic
	visited := make(map[NodeID]bool)
	var walk func(id NodeID)
	walk = func(id NodeID) {
		if id == 0 || visited[id] {
			return
		}
		visited[id] = true
		d := w.node(id)
		if d.typ != 0 {
			walk(d.typ)
		}
		for _, op := range d.ops {
			walk(op)
		}
		diags = append(diags, checkNode(w, d)...)
	}
	for _, r := range roots {
		walk(r)
	}
	diags = append(diags, checkVarEnv(w, roots)...)
	for _, dg := range diags {
		w.logger.Log(diagLevel(dg), dg.Message, diagField("gid", dg.Node), diagField("tag", dg.Tag.String()))
	}
	return diags
}

// envKey memoizes a (node, scope-depth) pair during the Var-checking walk:
// the same node reached under two different binder-stack depths is two
// distinct checks, but reaching it twice at the same depth (the usual case
// through shared structural DAG edges, or through a nominal node's
// self-reference) is redundant and, for the self-reference case, would
// otherwise never terminate.
type envKey struct {
	node  NodeID
	depth int
}

// checkVarEnv walks from roots threading a stack of expected binder types,
// one entry per De Bruijn binder currently in scope, and applies the Var
// rule at every Var node encountered: its declared type must agree with
// the scope's binder-type entry at the reversed position (entry 0 is the
// outermost binder, so index k refers to env[len(env)-1-k]), shifted
// forward by k+1 to account for the binder itself and the k binders
// introduced inside it since that entry was recorded.
func checkVarEnv(w *World, roots []NodeID) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[envKey]bool)
	var walk func(id NodeID, env []NodeID)
	walk = func(id NodeID, env []NodeID) {
		if id == 0 {
			return
		}
		key := envKey{id, len(env)}
		if seen[key] {
			return
		}
		seen[key] = true
		d := w.node(id)
		if d.tag == TagVar {
			diags = append(diags, checkVarRule(w, d, env)...)
		}
		if d.typ != 0 {
			walk(d.typ, env)
		}
		for i, op := range d.ops {
			if op == 0 {
				continue
			}
			bound := binderTypes(w, d, i)
			childEnv := env
			if len(bound) > 0 {
				childEnv = append(append([]NodeID(nil), env...), bound...)
			}
			walk(op, childEnv)
		}
	}
	for _, r := range roots {
		walk(r, nil)
	}
	return diags
}

// binderTypes returns the binder-type entries newly in scope for operand i
// of d, per shiftFor's per-tag crossing count: Pi/Lambda's body is under
// one binder over the domain itself; Variadic/Pack's body is under one
// binder over the arity's own Kind (the type the index variable `k_n`
// ranges over, §6); Sigma's component i is under i binders, one per
// earlier component.
func binderTypes(w *World, d *Def, i int) []NodeID {
	switch d.tag {
	case TagPi:
		if i == 1 {
			return []NodeID{d.ops[0]}
		}
	case TagLambda:
		if i == 1 {
			return []NodeID{w.node(d.typ).ops[0]}
		}
	case TagVariadic:
		if i == 1 {
			return []NodeID{w.node(d.ops[0]).typ}
		}
	case TagPack:
		arity := w.node(d.typ).ops[0]
		return []NodeID{w.node(arity).typ}
	case TagSigma:
		return d.ops[:i]
	}
	return nil
}

// checkVarRule compares a Var's declared type against the binder it
// refers to. A missing enclosing binder (index out of range of the
// threaded environment) and a type mismatch are both reported; neither
// can happen for a Var built through the public factory API in a closed
// term, so a hit here means some other construction path (Replace,
// cross-world import, or a hand-assembled nominal body) introduced an
// inconsistency only a full-graph walk can see.
func checkVarRule(w *World, d *Def, env []NodeID) []Diagnostic {
	k := d.varIndex
	if k < 0 || k >= len(env) {
		return []Diagnostic{{d.id, d.tag, msgNoBinder}}
	}
	entry := env[len(env)-1-k]
	expected := w.ShiftFree(entry, k+1)
	if w.Deref(expected) == w.Deref(d.typ) {
		return nil
	}
	if w.Assignable(expected, d.typ) {
		return nil
	}
	return []Diagnostic{{d.id, d.tag, "Var type does not match its binder's declared type"}}
}

const msgNoBinder = "Var index has no enclosing binder in the checked scope"

// diagLevel reports a Var with no enclosing binder at Error and every other
// finding at Warn.
func diagLevel(dg Diagnostic) diag.Level {
	if dg.Message == msgNoBinder {
		return diag.Error
	}
	return diag.Warn
}

func diagField(k string, v interface{}) diag.Field { return diag.F(k, v) }

func checkNode(w *World, d *Def) []Diagnostic {
	var out []Diagnostic
	switch d.tag {
	case TagApp:
		callee, arg := d.ops[0], d.ops[1]
		calleeDef := w.node(callee)
		if calleeDef.typ == 0 || w.node(calleeDef.typ).tag != TagPi {
			out = append(out, Diagnostic{d.id, d.tag, "App callee is not Pi-typed"})
			break
		}
		domain := w.node(calleeDef.typ).ops[0]
		if !w.AssignableValue(domain, arg) && !w.Assignable(domain, w.node(arg).typ) {
			out = append(out, Diagnostic{d.id, d.tag, "App argument not assignable to callee domain"})
		}
	case TagPi:
		if !isKindTag(w.node(w.node(d.ops[0]).typ).tag) && Sort(w, d.ops[0]) != SortType {
			out = append(out, Diagnostic{d.id, d.tag, "Pi domain is not a Type"})
		}
	case TagSigma:
		for i := range d.ops {
			chosen := make([]NodeID, i)
			compType := w.reduceSigmaComponent(d.id, i, chosen)
			if w.node(compType).tag == TagBottom {
				out = append(out, Diagnostic{d.id, d.tag, "Sigma component type resolves to Bottom"})
				break
			}
		}
	case TagVariadic:
		if w.node(d.ops[1]).tag == TagBottom {
			out = append(out, Diagnostic{d.id, d.tag, "Variadic body resolves to Bottom"})
		}
	case TagExtract:
		if w.node(d.typ).tag == TagBottom {
			out = append(out, Diagnostic{d.id, d.tag, "Extract result type resolves to Bottom"})
		}
	}
	return out
}

// WellTyped reports whether Verify(w, roots...) found no diagnostics.
func WellTyped(w *World, roots ...NodeID) bool {
	return len(Verify(w, roots...)) == 0
}
