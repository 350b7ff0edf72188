package ir

import (
	"context"

	"golang.org/x/sync/errgroup"

	"weft/internal/diag"
)

// Importer carries the memo table for one cross-world import session
// (§4.10, §5). A session is single-shot: construct one, call Import for
// each root you need copied into dst, then discard it.
type Importer struct {
	src, dst *World
	memo     map[NodeID]NodeID
	lostSharing bool
}

// NewImporter prepares to copy nodes from src into dst.
func NewImporter(src, dst *World) *Importer {
	return &Importer{src: src, dst: dst, memo: make(map[NodeID]NodeID)}
}

// LostSharing reports whether any nominal node reachable from an imported
// root had to be re-allocated as a fresh stub rather than being matched to
// an existing dst node — i.e. whether structural sharing that existed in
// src may not be preserved in dst (§4.10's explicit caveat about nominal
// nodes breaking cross-world dedup).
func (im *Importer) LostSharing() bool { return im.lostSharing }

// Import recursively copies id (a node of im.src) into im.dst, returning
// the corresponding dst NodeID. Structural nodes are rebuilt through the
// ordinary factory methods so they re-intern against whatever already
// exists in dst; nominal nodes are always given a fresh dst identity.
func (im *Importer) Import(id NodeID) NodeID {
	if id == 0 {
		return 0
	}
	if out, ok := im.memo[id]; ok {
		return out
	}
	d := im.src.node(id)

	if d.tag == TagUniverse {
		im.memo[id] = im.dst.universe
		return im.dst.universe
	}

	newType := im.Import(d.typ)

	if d.nominal {
		im.lostSharing = true
		stub := &Def{tag: d.tag, typ: newType, ops: make([]NodeID, len(d.ops)), nominal: true, dbg: d.dbg}
		im.dst.install(stub)
		im.memo[id] = stub.id
		for i, op := range d.ops {
			if op == 0 {
				continue
			}
			im.dst.setNominalSlot(stub.id, i, im.Import(op))
		}
		im.dst.finalizeNominalIfComplete(im.dst.node(stub.id))
		return stub.id
	}

	switch d.tag {
	case TagAxiom:
		out := im.dst.Axiom(newType, d.normalizer, d.axiomPkg)
		im.memo[id] = out
		return out
	case TagStar:
		out := im.dst.Star(d.qualifierVal)
		im.memo[id] = out
		return out
	case TagArityKind:
		out := im.dst.ArityKind(d.qualifierVal)
		im.memo[id] = out
		return out
	case TagMultiArityKind:
		out := im.dst.MultiArityKind(d.qualifierVal)
		im.memo[id] = out
		return out
	case TagQualifierType:
		out := im.dst.QualifierType()
		im.memo[id] = out
		return out
	case TagArity:
		out := im.dst.Arity(d.qualifierVal, d.arityN)
		im.memo[id] = out
		return out
	case TagLit:
		out := im.dst.Lit(newType, d.lit)
		im.memo[id] = out
		return out
	case TagBottom:
		out := im.dst.Bottom(newType)
		im.memo[id] = out
		return out
	case TagTop:
		out := im.dst.Top(newType)
		im.memo[id] = out
		return out
	}

	newOps := make([]NodeID, len(d.ops))
	for i, op := range d.ops {
		newOps[i] = im.Import(op)
	}
	template := &Def{tag: d.tag, typ: newType, ops: newOps, varIndex: d.varIndex}
	out := im.dst.Rebuild(template, newType, newOps)
	im.memo[id] = out
	return out
}

// ImportConcurrent imports each of roots, fanning the independent subtrees
// out across goroutines via errgroup and serializing only the final
// dst-side interning through the Importer's own (non-concurrent-safe)
// memo and World.internStructural calls (§5: "fan out over independent
// subtrees, serialize only the final insert"). Each root's subtree is
// pre-walked into a flat post-order list concurrently, one goroutine per
// root and reading src only; the Rebuild/intern calls that touch dst then
// run sequentially after every walk has finished.
func ImportConcurrent(ctx context.Context, src, dst *World, roots []NodeID, logger diag.Logger) ([]NodeID, error) {
	if logger == nil {
		logger = diag.Nop{}
	}
	orders := make([][]NodeID, len(roots))
	g, _ := errgroup.WithContext(ctx)
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			orders[i] = postOrder(src, root)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	im := NewImporter(src, dst)
	out := make([]NodeID, len(roots))
	for i, order := range orders {
		for _, id := range order {
			im.Import(id)
		}
		out[i] = im.Import(roots[i])
	}
	if im.LostSharing() {
		logger.Log(diag.Warn, "cross-world import encountered nominal nodes; structural sharing not guaranteed")
	}
	return out, nil
}

// postOrder computes a dependency-first visitation order for root within
// src, purely reading src (safe to run concurrently across independent
// roots since it never touches dst).
func postOrder(src *World, root NodeID) []NodeID {
	var order []NodeID
	visited := make(map[NodeID]bool)
	var visit func(id NodeID)
	visit = func(id NodeID) {
		if id == 0 || visited[id] {
			return
		}
		visited[id] = true
		d := src.node(id)
		if d.tag != TagUniverse {
			visit(d.typ)
		}
		for _, op := range d.ops {
			visit(op)
		}
		order = append(order, id)
	}
	visit(root)
	return order
}
