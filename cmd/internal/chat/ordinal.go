package chat

// SessionRef is the (session id, ordinal) pair the ordinal algorithms work
// on. It is deliberately minimal so stores can feed it from any row shape.
type SessionRef struct {
	ID      string
	Ordinal int
}

// OrdinalShift moves one neighbor session from one ordinal to another.
type OrdinalShift struct {
	SessionID string
	From, To  int
}

// MovePlan is the outcome of PlanMove: the neighbor shifts to apply, followed
// by the final set of the target's ordinal. Stores must apply Shifts first
// and set the target last, inside one atomic unit, so a transient duplicate
// ordinal is never observable.
type MovePlan struct {
	TargetID    string
	FromOrdinal int
	ToOrdinal   int
	Shifts      []OrdinalShift
	NoOp        bool
}

// PlanMove computes the minimal contiguous shift that relocates the target
// session to newOrdinal while keeping every other ordinal of the same user on
// the 1..N range.
//
// Moving down (newOrdinal < current): neighbors in [newOrdinal, current-1]
// increment by one. Moving up: neighbors in [current+1, newOrdinal] decrement
// by one. A move to the current ordinal is a valid no-op.
func PlanMove(refs []SessionRef, sessionID string, newOrdinal int) (MovePlan, error) {
	if newOrdinal < 1 || newOrdinal > len(refs) {
		return MovePlan{}, ErrOrdinalOutOfRange
	}

	cur, ok := findOrdinal(refs, sessionID)
	if !ok {
		return MovePlan{}, ErrSessionNotFound
	}

	plan := MovePlan{
		TargetID:    sessionID,
		FromOrdinal: cur,
		ToOrdinal:   newOrdinal,
	}
	if newOrdinal == cur {
		plan.NoOp = true
		return plan, nil
	}

	for _, r := range refs {
		switch {
		case newOrdinal < cur && r.Ordinal >= newOrdinal && r.Ordinal < cur:
			plan.Shifts = append(plan.Shifts, OrdinalShift{SessionID: r.ID, From: r.Ordinal, To: r.Ordinal + 1})
		case newOrdinal > cur && r.Ordinal > cur && r.Ordinal <= newOrdinal:
			plan.Shifts = append(plan.Shifts, OrdinalShift{SessionID: r.ID, From: r.Ordinal, To: r.Ordinal - 1})
		}
	}

	return plan, nil
}

// PlanRemoval computes the compaction shifts for deleting the target session:
// every ordinal above it decrements by one, closing the gap. The same
// shift-then-finalize discipline as PlanMove applies.
func PlanRemoval(refs []SessionRef, sessionID string) (MovePlan, error) {
	cur, ok := findOrdinal(refs, sessionID)
	if !ok {
		return MovePlan{}, ErrSessionNotFound
	}

	plan := MovePlan{
		TargetID:    sessionID,
		FromOrdinal: cur,
	}
	for _, r := range refs {
		if r.Ordinal > cur {
			plan.Shifts = append(plan.Shifts, OrdinalShift{SessionID: r.ID, From: r.Ordinal, To: r.Ordinal - 1})
		}
	}

	return plan, nil
}

func findOrdinal(refs []SessionRef, sessionID string) (int, bool) {
	for _, r := range refs {
		if r.ID == sessionID {
			return r.Ordinal, true
		}
	}
	return 0, false
}
