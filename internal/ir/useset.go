package ir

// addUse records that node user references operand at the given index
// (§4.9). Called once per operand slot by finalize, and by Replace for each
// use it moves onto the replacement.
func (w *World) addUse(operand, user NodeID, index int) {
	d := w.node(operand)
	if d.uses == nil {
		d.uses = make(map[use]struct{})
	}
	d.uses[use{user: user, index: index}] = struct{}{}
}

func (w *World) removeUse(operand, user NodeID, index int) {
	d := w.node(operand)
	delete(d.uses, use{user: user, index: index})
}

// Uses returns a snapshot of id's use-set: the reference is copied into an
// owned slice before the caller iterates, rather than handing back a live
// iterator over the map, so Replace can be called safely while walking the
// result (§9's "expose snapshots" guidance).
func (w *World) Uses(id NodeID) []NodeID {
	d := w.node(id)
	out := make([]NodeID, 0, len(d.uses))
	for u := range d.uses {
		out = append(out, u.user)
	}
	return out
}

// NumUses reports the size of id's use-set.
func (w *World) NumUses(id NodeID) int { return len(w.node(id).uses) }

// Replace marks old as substituted by replacement, rewrites every user's
// referencing operand slot to point at replacement, and clears old's
// use-set (§3.5, §4.9). old is left allocated ("dead but not freed");
// Deref will chase the forwarding pointer for any id still held by a
// caller.
func (w *World) Replace(old, replacement NodeID) {
	if old == replacement {
		return
	}
	oldDef := w.node(old)
	snapshot := make([]use, 0, len(oldDef.uses))
	for u := range oldDef.uses {
		snapshot = append(snapshot, u)
	}
	for _, u := range snapshot {
		userDef := w.node(u.user)
		if userDef.ops[u.index] != old {
			continue // stale snapshot entry, already rewritten
		}
		userDef.ops[u.index] = replacement
		w.addUse(replacement, u.user, u.index)
	}
	oldDef.uses = nil
	oldDef.substitute = replacement
}
