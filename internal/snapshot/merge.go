// Package snapshot reconciles freshly polled record lists with the list the
// client already holds.
//
// Field ownership is split by type: the poll owns Entity.Remote and replaces
// it wholesale on every merge, the client owns Entity.Local and no merge ever
// touches it. Entities that persist across polls keep their pointer identity,
// so anything the view attached to them survives.
package snapshot

// Entity is a remote record mirrored client-side.
type Entity[R any, L any] struct {
	Remote R // owned by the store, replaced on every poll
	Local  L // owned by the client, never sent to or read from the store
}

// Merge reconciles current with fresh and returns the new canonical list in
// fresh's order. Entities whose key appears in fresh are updated in place;
// new keys get a fresh entity with Local seeded by seed (zero value when seed
// is nil); keys missing from fresh are dropped. A key repeated in fresh keeps
// its first occurrence. current is not modified, but the entities it points
// to are.
func Merge[K comparable, R any, L any](current []*Entity[R, L], fresh []R, key func(R) K, seed func(R) L) []*Entity[R, L] {
	existing := make(map[K]*Entity[R, L], len(current))
	for _, e := range current {
		if e == nil {
			continue
		}
		k := key(e.Remote)
		if _, dup := existing[k]; !dup {
			existing[k] = e
		}
	}

	out := make([]*Entity[R, L], 0, len(fresh))
	seen := make(map[K]struct{}, len(fresh))
	for _, rec := range fresh {
		k := key(rec)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if e, ok := existing[k]; ok {
			e.Remote = rec
			out = append(out, e)
			continue
		}
		e := &Entity[R, L]{Remote: rec}
		if seed != nil {
			e.Local = seed(rec)
		}
		out = append(out, e)
	}
	return out
}

// Find returns the entity with key k, or nil.
func Find[K comparable, R any, L any](list []*Entity[R, L], key func(R) K, k K) *Entity[R, L] {
	for _, e := range list {
		if e != nil && key(e.Remote) == k {
			return e
		}
	}
	return nil
}

// Keys lists the keys of list in order.
func Keys[K comparable, R any, L any](list []*Entity[R, L], key func(R) K) []K {
	out := make([]K, 0, len(list))
	for _, e := range list {
		if e != nil {
			out = append(out, key(e.Remote))
		}
	}
	return out
}
