// Package optimistic holds the per-item state that is shown before the server
// confirms a mutation: like and follow toggles, and edit-in-place drafts.
// Every value here is owned by the UI event loop.
package optimistic

// Ticket identifies one user action on a toggle. Responses are matched back
// to the action that caused them through the ticket.
type Ticket struct {
	Seq    uint64
	Target bool
}

// Toggle is a boolean with a server-committed value and an optional pending
// value shown while a mutation is in flight. A confirmation older than one
// already applied is ignored, so a like followed by an unlike settles on
// "not liked" whichever response arrives first.
type Toggle struct {
	committed  bool
	pending    bool
	hasPending bool
	issued     uint64
	confirmed  uint64
}

func NewToggle(value bool) Toggle {
	return Toggle{committed: value}
}

// Begin flips the displayed value and returns the ticket for the mutation.
func (t *Toggle) Begin() Ticket {
	target := !t.Value()
	t.issued++
	t.pending = target
	t.hasPending = true
	return Ticket{Seq: t.issued, Target: target}
}

// Confirm commits the ticket's target. It reports false for a response that
// was overtaken by a newer confirmed one.
func (t *Toggle) Confirm(k Ticket) bool {
	if k.Seq <= t.confirmed || k.Seq > t.issued {
		return false
	}
	t.confirmed = k.Seq
	t.committed = k.Target
	if k.Seq == t.issued {
		t.hasPending = false
	}
	return true
}

// Fail rolls the display back to the committed value when k is the latest
// action. A failure of an overtaken action changes nothing.
func (t *Toggle) Fail(k Ticket) bool {
	if k.Seq != t.issued || !t.hasPending {
		return false
	}
	t.hasPending = false
	return true
}

func (t *Toggle) Value() bool {
	if t.hasPending {
		return t.pending
	}
	return t.committed
}

func (t *Toggle) Committed() bool {
	return t.committed
}

func (t *Toggle) Pending() bool {
	return t.hasPending
}

// Reseed replaces the committed value with a fresh server read. It is a no-op
// while an action is in flight.
func (t *Toggle) Reseed(value bool) bool {
	if t.hasPending {
		return false
	}
	t.committed = value
	return true
}
