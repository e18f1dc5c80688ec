package service

import (
	"testing"

	"github.com/spec-kit/asset-desk/internal/domain"
)

func TestPermissivePolicyAllowsAnyKnownState(t *testing.T) {
	policy, err := NewTransitionPolicy("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy.Name() != PolicyPermissive {
		t.Fatalf("expected permissive default, got %q", policy.Name())
	}
	for _, from := range domain.TicketStates {
		for _, to := range domain.TicketStates {
			if !policy.Allows(from, to) {
				t.Fatalf("permissive policy rejected %s -> %s", from, to)
			}
		}
	}
	if policy.Allows(domain.TicketStateReceived, "cerrado") {
		t.Fatalf("unknown target states are never allowed")
	}
}

func TestStrictPolicyTable(t *testing.T) {
	policy, err := NewTransitionPolicy("STRICT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		from, to domain.TicketState
		allowed  bool
	}{
		{domain.TicketStateReceived, domain.TicketStateInProgress, true},
		{domain.TicketStateReceived, domain.TicketStateResolved, false},
		{domain.TicketStateReceived, domain.TicketStateWithProblems, false},
		{domain.TicketStateInProgress, domain.TicketStateResolved, true},
		{domain.TicketStateInProgress, domain.TicketStateWithProblems, true},
		{domain.TicketStateInProgress, domain.TicketStateReceived, false},
		{domain.TicketStateWithProblems, domain.TicketStateInProgress, true},
		{domain.TicketStateWithProblems, domain.TicketStateResolved, true},
		{domain.TicketStateResolved, domain.TicketStateInProgress, true},
		{domain.TicketStateResolved, domain.TicketStateReceived, false},
		{domain.TicketStateResolved, domain.TicketStateResolved, true},
	}
	for _, tc := range cases {
		if got := policy.Allows(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestUnknownPolicy(t *testing.T) {
	if _, err := NewTransitionPolicy("chaotic"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
