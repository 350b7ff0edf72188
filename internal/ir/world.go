package ir

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/mod/semver"

	"weft/internal/diag"
	"weft/internal/fvset"
	"weft/internal/qualifier"
)

// World owns every node's arena slot, the hash-consing table that makes
// structural nodes unique, and the monotonically increasing gid counter.
// A World is not safe for concurrent use except through the explicit
// batch-import routine of clone.go (§5).
type World struct {
	id uuid.UUID

	arena []*Def // arena[0] is an unused sentinel; real ids start at 1
	table map[uint64][]NodeID

	verify bool
	logger diag.Logger

	universe NodeID
	axiomPkg map[string]string // package name -> registered semver

	qualifierConsts map[qualifier.Qualifier]NodeID
	sigma0          NodeID
	appSeen         map[appKey]bool

	hits   uint64
	misses uint64
}

// Options configures World construction (component L, §4.13).
type Options struct {
	// Verify enables the type-check run finalize performs on every new
	// structural node (§4.4 step 5, §4.11). Default true; disabling it is
	// a performance escape hatch for trusted, already-checked input.
	Verify bool
	// Logger receives every Bottom-producing diagnostic. Defaults to
	// diag.Nop{}.
	Logger diag.Logger
	// ArenaHint pre-sizes the node arena.
	ArenaHint int
}

// DefaultOptions returns the Options a plain New() uses.
func DefaultOptions() Options {
	return Options{Verify: true, Logger: diag.Nop{}, ArenaHint: defaultArenaHint()}
}

// New constructs an empty World with default options (verification on).
func New() *World { return NewWithOptions(DefaultOptions()) }

// NewWithOptions constructs a World per opts.
func NewWithOptions(opts Options) *World {
	if opts.Logger == nil {
		opts.Logger = diag.Nop{}
	}
	if opts.ArenaHint <= 0 {
		opts.ArenaHint = 64
	}
	w := &World{
		id:       uuid.New(),
		arena:    make([]*Def, 1, opts.ArenaHint),
		table:    make(map[uint64][]NodeID),
		verify:   opts.Verify,
		logger:   opts.Logger,
		axiomPkg: make(map[string]string),
	}
	u := &Def{tag: TagUniverse, finalized: true}
	w.install(u)
	w.universe = u.id
	return w
}

// ID returns the World's identity, used only in diagnostics and
// cross-world clone reporting (§4.10) to say which world a node came from.
func (w *World) ID() uuid.UUID { return w.id }

// Logger returns the configured diagnostics sink.
func (w *World) Logger() diag.Logger { return w.logger }

// node resolves id to its Def, panicking on a stale or out-of-range id:
// this can only happen from a caller-side bug (mixing NodeIDs across two
// Worlds, or holding an id past the World's lifetime), never from
// well-formed use of the public factory API.
func (w *World) node(id NodeID) *Def {
	if int(id) >= len(w.arena) || w.arena[id] == nil {
		panic(fmt.Sprintf("ir: invalid NodeID %d for world %s", id, w.id))
	}
	return w.arena[id]
}

// Node exposes node() to other packages in this module (e.g. package
// core's normalizer implementations) without widening the id's validity
// contract.
func (w *World) Node(id NodeID) *Def { return w.node(id) }

// Deref follows the substitute forwarding pointer chain (§4.9) to the
// current live node for id, matching the Tracker behavior described in
// §9's design notes.
func (w *World) Deref(id NodeID) NodeID {
	for {
		d := w.node(id)
		if d.substitute == 0 {
			return id
		}
		id = d.substitute
	}
}

// install assigns a fresh gid and arena slot to d and returns it.
func (w *World) install(d *Def) *Def {
	d.id = NodeID(len(w.arena))
	w.arena = append(w.arena, d)
	return d
}

// Universe returns the world's unique Universe node.
func (w *World) Universe() NodeID { return w.universe }

// Stats reports operational counters for diagnostics (§4.12/§4.13);
// Stats.String renders them with go-humanize's thousands separators.
type Stats struct {
	NodeCount    int
	InternHits   uint64
	InternMisses uint64
}

func (w *World) StatsSnapshot() Stats {
	return Stats{NodeCount: len(w.arena) - 1, InternHits: w.hits, InternMisses: w.misses}
}

// String renders Stats with thousands separators, matching the corpus's
// preference for human-readable operational counters over raw integers.
func (s Stats) String() string {
	return fmt.Sprintf("%s nodes, %s hits, %s misses",
		humanize.Comma(int64(s.NodeCount)), humanize.Comma(int64(s.InternHits)), humanize.Comma(int64(s.InternMisses)))
}

// RegisterAxiomPackage records that the named axiom package was registered
// at the given semantic version (§4.13), rejecting a second registration
// under the same name at an incompatible version. Version strings follow
// the "vMAJOR.MINOR.PATCH" form golang.org/x/mod/semver expects.
func (w *World) RegisterAxiomPackage(name, version string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("ir: invalid semver %q for axiom package %q", version, name)
	}
	if existing, ok := w.axiomPkg[name]; ok {
		if semver.Major(existing) != semver.Major(version) {
			return fmt.Errorf("ir: axiom package %q already registered at %q, incompatible with %q",
				name, existing, version)
		}
		if semver.Compare(version, existing) > 0 {
			w.axiomPkg[name] = version
		}
		return nil
	}
	w.axiomPkg[name] = version
	return nil
}

// AxiomPackages returns the names of every axiom package registered so
// far, sorted for deterministic diagnostic output (§4.12/§4.13) — a World
// backs any number of independently-versioned operator packages (package
// core registers one, a hypothetical memory or control package would
// register its own), and a stable listing is what a CLI status report or
// log line wants, not map iteration order.
func (w *World) AxiomPackages() []string {
	names := maps.Keys(w.axiomPkg)
	slices.Sort(names)
	return names
}

// internStructural performs steps 3–5 of §4.4's construction protocol for a
// structural node: hash, look up, install on miss. build is invoked only on
// a miss to actually allocate the Def; it must not mutate w.
func (w *World) internStructural(tag Tag, typ NodeID, ops []NodeID, tentative *Def, build func() *Def) *Def {
	key := encodeKey(tag, typ, ops, tentative)
	h := bucketHash(key)
	for _, cand := range w.table[h] {
		d := w.node(cand)
		if structuralEqual(d, tag, typ, ops, tentative) {
			w.hits++
			return d
		}
	}
	w.misses++
	d := build()
	w.install(d)
	w.table[h] = append(w.table[h], d.id)
	w.finalize(d)
	return d
}

func structuralEqual(d *Def, tag Tag, typ NodeID, ops []NodeID, tentative *Def) bool {
	if d.tag != tag || d.typ != typ || len(d.ops) != len(ops) {
		return false
	}
	for i, op := range ops {
		if d.ops[i] != op {
			return false
		}
	}
	switch tag {
	case TagStar, TagArityKind, TagMultiArityKind:
		return d.qualifierVal == tentative.qualifierVal
	case TagVar:
		return d.varIndex == tentative.varIndex
	case TagArity:
		return d.arityN == tentative.arityN
	case TagLit:
		return d.lit.equal(tentative.lit)
	default:
		return true
	}
}

// finalize fills in free-vars/hasLambda, registers back-edges with each
// operand's use-set, and (if verification is enabled) type-checks the node
// (§4.4 step 5, §4.11).
func (w *World) finalize(d *Def) {
	d.freeVars = *w.computeFreeVars(d)
	d.hasLambda = d.tag == TagLambda
	for i, op := range d.ops {
		if op == 0 {
			continue
		}
		d.hasLambda = d.hasLambda || w.node(op).hasLambda
		w.addUse(op, d.id, i)
	}
	d.finalized = true
	if w.verify {
		w.checkConstruction(d)
	}
}

// computeFreeVars implements §3.4 invariant 3.
func (w *World) computeFreeVars(d *Def) *fvset.Set {
	if d.tag == TagVar {
		s := fvset.FromBits(d.varIndex)
		if d.typ != 0 {
			s.OrIn(&w.node(d.typ).freeVars)
		}
		return s
	}
	fv := &fvset.Set{}
	if d.typ != 0 {
		fv.OrIn(&w.node(d.typ).freeVars)
	}
	for i, op := range d.ops {
		if op == 0 {
			continue
		}
		s := w.node(op).freeVars.Shift(shiftFor(d.tag, i))
		fv.OrIn(s)
	}
	return fv
}
