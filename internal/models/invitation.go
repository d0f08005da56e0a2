package models

import "time"

// InvitationStatus is the closed set of invitation states. Pending is the
// only non-terminal state; accepted and cancelled are terminal and no
// transition ever leaves them.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationCancelled InvitationStatus = "cancelled"
)

// Terminal reports whether the status is an end state.
func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationCancelled
}

// CanTransitionTo reports whether the status machine allows moving to next.
func (s InvitationStatus) CanTransitionTo(next InvitationStatus) bool {
	return s == InvitationPending && next.Terminal()
}

// Invitation is a token-bearing, time-limited offer to join a project as a
// given membership type.
//
// Rows are never deleted: resolved invitations are retained as an audit
// trail. Email is the authoritative identity for acceptance; UserID is
// resolved eagerly when an account with that email exists at invite time but
// is not a live foreign-key contract. AcceptedAt is set exactly once, on the
// transition to accepted.
type Invitation struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	ProjectID   uint             `gorm:"index;not null" json:"project_id"`
	Project     *Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Email       string           `gorm:"index;size:255;not null" json:"email"`
	UserID      *uint            `json:"user_id"`
	UserType    string           `gorm:"size:20;not null" json:"user_type"`
	Token       string           `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Status      InvitationStatus `gorm:"size:20;default:pending" json:"status"`
	ExpiresAt   time.Time        `json:"expires_at"`
	InvitedByID uint             `gorm:"not null" json:"invited_by_id"`
	InvitedBy   *User            `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`
	AcceptedAt  *time.Time       `json:"accepted_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Invitation) TableName() string { return "invitations" }

// Expired reports whether the invitation's deadline has passed at now.
// Expiry is a passive predicate: no state transition accompanies it.
func (i *Invitation) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

// Acceptable reports whether the invitation can still be accepted at now.
func (i *Invitation) Acceptable(now time.Time) bool {
	return i.Status == InvitationPending && !i.Expired(now)
}
