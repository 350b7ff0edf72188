package ir

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// encodeKey serializes the fields that determine structural identity
// (tag, type, operand ids, variant-specific payload) into a canonical byte
// string, per §4.4 step 3's "fields = (tag, num_ops)" plus the hash
// combine over type/operand gids and variant payload.
func encodeKey(tag Tag, typ NodeID, ops []NodeID, payload *Def) []byte {
	buf := make([]byte, 0, 16+8*len(ops)+16)
	buf = append(buf, byte(tag))
	buf = appendU32(buf, uint32(typ))
	buf = appendU32(buf, uint32(len(ops)))
	for _, op := range ops {
		buf = appendU32(buf, uint32(op))
	}
	switch tag {
	case TagStar, TagArityKind, TagMultiArityKind:
		buf = append(buf, byte(payload.qualifierVal))
	case TagVar:
		buf = appendU32(buf, uint32(payload.varIndex))
	case TagArity:
		buf = appendU64(buf, payload.arityN)
	case TagLit:
		buf = append(buf, byte(payload.lit.Kind))
		if payload.lit.Kind == LitBool {
			if payload.lit.Bool {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		} else {
			buf = appendU64(buf, payload.lit.AsUint64())
		}
	case TagAxiom:
		// Axioms are never structurally deduplicated against one another
		// (two distinct calls to World.Axiom always yield distinct
		// constants, matching "externally-defined constant" semantics).
		// World.Axiom installs each axiom directly without consulting the
		// table, so nothing is added to the key here; this branch exists
		// only so encodeKey stays total over all tags.
	case TagLambda:
		// filter/body are ordinary operands already encoded above; nominal
		// Lambdas never reach this function (they skip canonicalization).
	}
	return buf
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// bucketHash reduces key to the uint64 bucket used by the hash-cons table.
// A real cryptographic hash is used (rather than a hand-rolled FNV mix) so
// that adversarial input graphs cannot cheaply engineer bucket collisions
// that degrade the table to linear search.
func bucketHash(key []byte) uint64 {
	sum := blake2b.Sum256(key)
	return binary.LittleEndian.Uint64(sum[:8])
}
