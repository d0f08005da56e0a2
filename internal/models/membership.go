package models

import "time"

// Membership user types.
const (
	UserTypeClient     = "client"
	UserTypeContractor = "contractor"
	UserTypeEmployee   = "employee"
	UserTypeLegal      = "legal"
)

// ValidUserType reports whether t is one of the four membership types.
func ValidUserType(t string) bool {
	switch t {
	case UserTypeClient, UserTypeContractor, UserTypeEmployee, UserTypeLegal:
		return true
	}
	return false
}

// ProjectMembership grants a user one of four types on a project.
//
// There is deliberately no soft-delete column: the existence of a row is
// definitionally sufficient for member status, so removal is a hard delete.
// The project owner never holds a membership row — ownership lives on
// Project.OwnerUserID alone.
type ProjectMembership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_membership_project_user;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint      `gorm:"uniqueIndex:idx_membership_project_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	UserType  string    `gorm:"size:20;not null" json:"user_type"` // client, contractor, employee, legal
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProjectMembership) TableName() string { return "project_memberships" }
