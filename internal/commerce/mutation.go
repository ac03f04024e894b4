package commerce

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
)

// Phase is where a single mutation attempt stands.
type Phase int

const (
	PhasePending Phase = iota
	// PhaseOptimistic: applied to the local store only.
	PhaseOptimistic
	// PhaseConfirmed: acknowledged by the authoritative store.
	PhaseConfirmed
	PhaseRejected
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseOptimistic:
		return "optimistic"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseRejected:
		return "rejected"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no further transition is allowed.
func (p Phase) Terminal() bool {
	return p != PhasePending
}

// Mutation is the outcome of one cart or wishlist mutation attempt. Result is
// the collection state after the attempt. A local rejection carries the
// unchanged local state; a remote rejection carries a zero Result.
type Mutation[S any] struct {
	Phase  Phase
	Result S
	Err    error
}

func pending[S any]() *Mutation[S] {
	return &Mutation[S]{Phase: PhasePending}
}

// transition moves the attempt to a terminal phase exactly once.
func (m *Mutation[S]) transition(to Phase) error {
	if m.Phase != PhasePending || to == PhasePending {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("mutation cannot move from %s to %s", m.Phase, to))
	}
	m.Phase = to
	return nil
}

func (m *Mutation[S]) settle(to Phase, result S, err error) Mutation[S] {
	if terr := m.transition(to); terr != nil {
		m.Err = terr
		return *m
	}
	m.Result = result
	m.Err = err
	return *m
}

func (m *Mutation[S]) optimistic(result S) Mutation[S] {
	return m.settle(PhaseOptimistic, result, nil)
}

func (m *Mutation[S]) confirmed(result S) Mutation[S] {
	return m.settle(PhaseConfirmed, result, nil)
}

func (m *Mutation[S]) rejected(current S, err error) Mutation[S] {
	return m.settle(PhaseRejected, current, err)
}

// Kind classifies a rejection; it is KindNone for accepted mutations.
func (m Mutation[S]) Kind() pkgerrors.Kind {
	return pkgerrors.KindOf(m.Err)
}
