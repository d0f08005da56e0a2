package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a workspace account.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password, empty for LDAP users
	Email     string         `gorm:"index;size:255" json:"email"`
	Nickname  string         `gorm:"size:100" json:"nickname"`
	Avatar    string         `gorm:"size:500" json:"avatar"`
	Role      string         `gorm:"size:50;default:user" json:"role"`       // admin, user
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Site-wide user roles. RoleSiteAdmin grants the "manage all projects"
// capability checked by the access guard.
const (
	RoleSiteAdmin = "admin"
	RoleSiteUser  = "user"
)

// Project is a shared collaboration space. The owner is fixed at creation
// and encoded only here: the owner never holds a membership row.
// PrimaryClientID, when set, must reference a user with a client-type
// membership on this project.
type Project struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:200;not null" json:"name"`
	Description     string         `gorm:"size:2000" json:"description"`
	OwnerUserID     uint           `gorm:"index;not null" json:"owner_user_id"`
	Owner           *User          `gorm:"foreignKey:OwnerUserID" json:"owner,omitempty"`
	PrimaryClientID *uint          `json:"primary_client_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Note is a workspace document. A note with a ProjectID is shared with that
// project's members; otherwise it is private to its author.
type Note struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index;not null" json:"user_id"`
	ProjectID  *uint          `gorm:"index" json:"project_id"`
	FolderID   *uint          `gorm:"index" json:"folder_id"`
	CategoryID *uint          `gorm:"index" json:"category_id"`
	Title      string         `gorm:"size:500;not null" json:"title"`
	Content    string         `gorm:"type:text" json:"content"`
	Pinned     bool           `gorm:"default:false" json:"pinned"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Folder organizes a user's notes into a tree.
type Folder struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	ParentID  *uint          `gorm:"index" json:"parent_id"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Category is a flat, colored label for notes.
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Color     string         `gorm:"size:20" json:"color"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Notification is an in-app notification record.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Subtitle  string    `gorm:"size:200" json:"subtitle"`
	Detail    string    `gorm:"size:2000" json:"detail"`
	Link      string    `gorm:"size:500" json:"link"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// RefreshToken stores the sha256 hash of an issued refresh token.
type RefreshToken struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"index;not null" json:"user_id"`
	TokenHash         string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt         time.Time  `json:"expires_at"`
	RevokedAt         *time.Time `json:"revoked_at"`
	ReplacedByTokenID *uint      `json:"-"`
	CreatedByIP       string     `gorm:"size:50" json:"-"`
	UserAgent         string     `gorm:"size:500" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
}

// SystemConfig represents system-wide configuration (stored in database)
type SystemConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:20;default:string" json:"type"` // string, int, bool, json
	Group     string    `gorm:"size:50;index" json:"group"`         // general, email, ldap, system
	Label     string    `gorm:"size:200" json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SystemLog represents a system operation log
type SystemLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string    `gorm:"size:100;index" json:"module"`
	Action    string    `gorm:"size:200;index" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	UserID    *uint     `json:"user_id"`
	IP        string    `gorm:"size:50" json:"ip"`
	UserAgent string    `gorm:"size:500" json:"user_agent"`
	Extra     string    `gorm:"type:text" json:"extra"` // JSON extra data
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides
func (User) TableName() string         { return "users" }
func (Project) TableName() string      { return "projects" }
func (Note) TableName() string         { return "notes" }
func (Folder) TableName() string       { return "folders" }
func (Category) TableName() string     { return "categories" }
func (Notification) TableName() string { return "notifications" }
func (RefreshToken) TableName() string { return "refresh_tokens" }
func (SystemConfig) TableName() string { return "system_configs" }
func (SystemLog) TableName() string    { return "system_logs" }
