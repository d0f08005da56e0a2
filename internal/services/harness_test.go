package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lucaswan/paperdesk/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database named after the test so
// parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// testEnv wires the full service graph against a test database, with mail
// dispatch and view caching disabled.
type testEnv struct {
	db            *gorm.DB
	access        *AccessService
	invitations   *InvitationService
	members       *MemberService
	projects      *ProjectService
	notes         *NoteService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)

	access := NewAccessService(db)
	emails := NewEmailService(db, "http://localhost:8080")
	notifications := NewNotificationService(db)
	views := &ViewCache{}
	mail := NewSyncMailQueue() // no processor: enqueued mail is dropped

	return &testEnv{
		db:            db,
		access:        access,
		invitations:   NewInvitationService(db, access, emails, mail, notifications, views),
		members:       NewMemberService(db, access, emails, mail, notifications, views),
		projects:      NewProjectService(db, access),
		notes:         NewNoteService(db, access),
		notifications: notifications,
	}
}

func createUser(t *testing.T, db *gorm.DB, username, email, role string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    email,
		Role:     role,
		AuthType: "local",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

func createProject(t *testing.T, db *gorm.DB, name string, ownerID uint) *models.Project {
	t.Helper()

	project := models.Project{Name: name, OwnerUserID: ownerID}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return &project
}

func addMember(t *testing.T, db *gorm.DB, projectID, userID uint, userType string) *models.ProjectMembership {
	t.Helper()

	membership := models.ProjectMembership{ProjectID: projectID, UserID: userID, UserType: userType}
	if err := db.Create(&membership).Error; err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}
	return &membership
}

func createInvitation(t *testing.T, db *gorm.DB, projectID uint, email, userType string, invitedByID uint, expiresAt time.Time) *models.Invitation {
	t.Helper()

	token, err := generateInvitationToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	invitation := models.Invitation{
		ProjectID:   projectID,
		Email:       email,
		UserType:    userType,
		Token:       token,
		Status:      models.InvitationPending,
		ExpiresAt:   expiresAt,
		InvitedByID: invitedByID,
	}
	if err := db.Create(&invitation).Error; err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}
	return &invitation
}
