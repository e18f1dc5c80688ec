package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/asset-desk/internal/domain"
)

const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

// TransitionPolicy decides which ticket state changes an administrator may make.
// Re-applying the current state is always allowed.
type TransitionPolicy struct {
	name    string
	allowed map[domain.TicketState][]domain.TicketState
}

var strictTransitions = map[domain.TicketState][]domain.TicketState{
	domain.TicketStateReceived:     {domain.TicketStateInProgress},
	domain.TicketStateInProgress:   {domain.TicketStateResolved, domain.TicketStateWithProblems},
	domain.TicketStateWithProblems: {domain.TicketStateInProgress, domain.TicketStateResolved},
	domain.TicketStateResolved:     {domain.TicketStateInProgress},
}

// NewTransitionPolicy resolves a policy by name. An empty name selects the
// permissive policy.
func NewTransitionPolicy(name string) (TransitionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyPermissive:
		return TransitionPolicy{name: PolicyPermissive}, nil
	case PolicyStrict:
		return TransitionPolicy{name: PolicyStrict, allowed: strictTransitions}, nil
	}
	return TransitionPolicy{}, fmt.Errorf("unknown ticket transition policy %q", name)
}

// Name returns the configured policy name.
func (p TransitionPolicy) Name() string {
	if p.name == "" {
		return PolicyPermissive
	}
	return p.name
}

// Allows reports whether a ticket in state from may move to state to.
func (p TransitionPolicy) Allows(from, to domain.TicketState) bool {
	if !to.Valid() {
		return false
	}
	if from == to || p.allowed == nil {
		return true
	}
	for _, next := range p.allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}
