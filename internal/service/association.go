package service

import (
	"sort"

	apperrors "autoshop/internal/errors"
)

// MembershipChange is one add/remove request against a many-to-many collection.
// Nil slices are treated as empty.
type MembershipChange struct {
	Add    []uint
	Remove []uint
}

// IsEmpty reports whether the change touches nothing.
func (c MembershipChange) IsEmpty() bool {
	return len(c.Add) == 0 && len(c.Remove) == 0
}

// referenced returns every distinct ID the change mentions, sorted.
func (c MembershipChange) referenced() []uint {
	return dedupe(append(append([]uint{}, c.Add...), c.Remove...))
}

// Member is an associated entity as returned to clients.
type Member struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// planMembership computes the link rows to insert and delete so that the
// collection ends as (current - remove) + add. Removal is applied before
// addition, so an ID present in both lists ends up a member. IDs already in
// the desired state produce no work.
func planMembership(current []uint, change MembershipChange) (attach, detach []uint) {
	have := make(map[uint]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}

	want := make(map[uint]struct{}, len(current)+len(change.Add))
	for id := range have {
		want[id] = struct{}{}
	}
	for _, id := range change.Remove {
		delete(want, id)
	}
	for _, id := range change.Add {
		want[id] = struct{}{}
	}

	for id := range want {
		if _, ok := have[id]; !ok {
			attach = append(attach, id)
		}
	}
	for id := range have {
		if _, ok := want[id]; !ok {
			detach = append(detach, id)
		}
	}
	sortIDs(attach)
	sortIDs(detach)
	return attach, detach
}

// missingIDs returns the requested IDs that were not found.
func missingIDs(requested, found []uint) []uint {
	seen := make(map[uint]struct{}, len(found))
	for _, id := range found {
		seen[id] = struct{}{}
	}
	var missing []uint
	for _, id := range dedupe(requested) {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// requireAll fails with an UnknownReferenceError when any requested ID is missing.
func requireAll(kind string, requested, found []uint) error {
	if missing := missingIDs(requested, found); len(missing) > 0 {
		return &apperrors.UnknownReferenceError{Kind: kind, IDs: missing}
	}
	return nil
}

func dedupe(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []uint) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
