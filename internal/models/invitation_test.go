package models

import (
	"testing"
	"time"
)

func TestInvitationStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to InvitationStatus
		want     bool
	}{
		{InvitationPending, InvitationAccepted, true},
		{InvitationPending, InvitationCancelled, true},
		{InvitationAccepted, InvitationCancelled, false},
		{InvitationAccepted, InvitationPending, false},
		{InvitationCancelled, InvitationAccepted, false},
		{InvitationCancelled, InvitationPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestInvitationAcceptable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		inv  Invitation
		want bool
	}{
		{"pending and live", Invitation{Status: InvitationPending, ExpiresAt: now.Add(time.Hour)}, true},
		{"pending but expired", Invitation{Status: InvitationPending, ExpiresAt: now.Add(-time.Hour)}, false},
		{"expires exactly now", Invitation{Status: InvitationPending, ExpiresAt: now}, false},
		{"accepted", Invitation{Status: InvitationAccepted, ExpiresAt: now.Add(time.Hour)}, false},
		{"cancelled", Invitation{Status: InvitationCancelled, ExpiresAt: now.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inv.Acceptable(now); got != tt.want {
				t.Errorf("Acceptable = %v, want %v", got, tt.want)
			}
		})
	}
}
