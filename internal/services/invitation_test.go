package services

import (
	"testing"
	"time"

	"github.com/lucaswan/paperdesk/internal/models"
)

func TestInvitationCreate_Pending(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)

	before := time.Now()
	inv, err := env.invitations.Create(owner.ID, project.ID, &CreateInvitationRequest{
		Email:    "new@example.com",
		UserType: models.UserTypeContractor,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if inv.Status != models.InvitationPending {
		t.Errorf("status = %s, want pending", inv.Status)
	}
	if inv.Token == "" || len(inv.Token) != 64 {
		t.Errorf("token must be 64 hex chars, got %q", inv.Token)
	}

	wantExpiry := before.Add(7 * 24 * time.Hour)
	if inv.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || inv.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiry = %v, want about %v", inv.ExpiresAt, wantExpiry)
	}

	// Issuing an invitation grants no membership.
	var memberships int64
	env.db.Model(&models.ProjectMembership{}).Where("project_id = ?", project.ID).Count(&memberships)
	if memberships != 0 {
		t.Errorf("pending invitation must not create membership, found %d", memberships)
	}
}

func TestInvitationCreate_MemberCannotInvite(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	member := createUser(t, env.db, "member", "member@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, member.ID, models.UserTypeEmployee)

	_, err := env.invitations.Create(member.ID, project.ID, &CreateInvitationRequest{
		Email:    "new@example.com",
		UserType: models.UserTypeContractor,
	})
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 404 {
		t.Fatalf("member invite should be masked as 404, got %v", err)
	}
}

func TestInvitationCreate_DuplicatePending(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)

	req := &CreateInvitationRequest{Email: "new@example.com", UserType: models.UserTypeContractor}
	if _, err := env.invitations.Create(owner.ID, project.ID, req); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := env.invitations.Create(owner.ID, project.ID, req)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 409 {
		t.Fatalf("duplicate pending invitation should conflict, got %v", err)
	}
}

func TestInvitationCreate_ExistingMemberConflicts(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	member := createUser(t, env.db, "member", "member@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, member.ID, models.UserTypeEmployee)

	_, err := env.invitations.Create(owner.ID, project.ID, &CreateInvitationRequest{
		Email:    member.Email,
		UserType: models.UserTypeEmployee,
	})
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 409 {
		t.Fatalf("inviting an existing member should conflict, got %v", err)
	}
}

func TestInvitationCreate_InvalidInput(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)

	tests := []struct {
		name     string
		email    string
		userType string
	}{
		{"empty email", "", models.UserTypeClient},
		{"malformed email", "not-an-email", models.UserTypeClient},
		{"unknown user type", "a@example.com", "manager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.invitations.Create(owner.ID, project.ID, &CreateInvitationRequest{
				Email:    tt.email,
				UserType: tt.userType,
			})
			appErr := asAppError(err)
			if appErr == nil || appErr.HTTPStatus != 400 {
				t.Fatalf("want 400, got %v", err)
			}
		})
	}
}

func TestInvitationCreate_PrimaryClientShortcut(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	client := createUser(t, env.db, "client", "client@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)

	inv, err := env.invitations.Create(owner.ID, project.ID, &CreateInvitationRequest{
		Email:    client.Email,
		UserType: models.UserTypeClient,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The invitation is stored already accepted; it never passes through
	// pending.
	if inv.Status != models.InvitationAccepted {
		t.Errorf("status = %s, want accepted", inv.Status)
	}
	if inv.AcceptedAt == nil {
		t.Error("AcceptedAt must be set")
	}
	if inv.UserID == nil || *inv.UserID != client.ID {
		t.Errorf("UserID = %v, want %d", inv.UserID, client.ID)
	}

	var membership models.ProjectMembership
	if err := env.db.Where("project_id = ? AND user_id = ?", project.ID, client.ID).First(&membership).Error; err != nil {
		t.Fatalf("membership not created: %v", err)
	}
	if membership.UserType != models.UserTypeClient {
		t.Errorf("membership type = %s, want client", membership.UserType)
	}

	var reloaded models.Project
	env.db.First(&reloaded, project.ID)
	if reloaded.PrimaryClientID == nil || *reloaded.PrimaryClientID != client.ID {
		t.Errorf("primary client = %v, want %d", reloaded.PrimaryClientID, client.ID)
	}
}

func TestInvitationCreate_NoShortcutWhenPrimaryClientSet(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	first := createUser(t, env.db, "first", "first@example.com", models.RoleSiteUser)
	second := createUser(t, env.db, "second", "second@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, first.ID, models.UserTypeClient)
	env.db.Model(&models.Project{}).Where("id = ?", project.ID).Update("primary_client_id", first.ID)

	inv, err := env.invitations.Create(owner.ID, project.ID, &CreateInvitationRequest{
		Email:    second.Email,
		UserType: models.UserTypeClient,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.Status != models.InvitationPending {
		t.Errorf("slot taken: invitation should stay pending, got %s", inv.Status)
	}
}

func TestInvitationAccept(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	invitee := createUser(t, env.db, "invitee", "invitee@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	inv := createInvitation(t, env.db, project.ID, invitee.Email, models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))

	result, err := env.invitations.Accept(inv.Token, invitee.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if result.AlreadyMember {
		t.Error("first accept should not report AlreadyMember")
	}
	if result.Invitation.Status != models.InvitationAccepted {
		t.Errorf("status = %s, want accepted", result.Invitation.Status)
	}

	var memberships int64
	env.db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, invitee.ID).
		Count(&memberships)
	if memberships != 1 {
		t.Errorf("memberships = %d, want 1", memberships)
	}

	// The owner gets notified.
	var notifications int64
	env.db.Model(&models.Notification{}).Where("user_id = ?", owner.ID).Count(&notifications)
	if notifications != 1 {
		t.Errorf("owner notifications = %d, want 1", notifications)
	}
}

func TestInvitationAccept_SecondAcceptIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	invitee := createUser(t, env.db, "invitee", "invitee@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	inv := createInvitation(t, env.db, project.ID, invitee.Email, models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))

	if _, err := env.invitations.Accept(inv.Token, invitee.ID); err != nil {
		t.Fatalf("first Accept: %v", err)
	}

	// Same user retrying (e.g. after a lost response) succeeds without
	// duplicating anything.
	result, err := env.invitations.Accept(inv.Token, invitee.ID)
	if err != nil {
		t.Fatalf("second Accept: %v", err)
	}
	if !result.AlreadyMember {
		t.Error("second accept should report AlreadyMember")
	}

	var memberships int64
	env.db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, invitee.ID).
		Count(&memberships)
	if memberships != 1 {
		t.Errorf("memberships = %d, want exactly 1", memberships)
	}
}

func TestInvitationAccept_UsedTokenByOtherUser(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	invitee := createUser(t, env.db, "invitee", "invitee@example.com", models.RoleSiteUser)
	other := createUser(t, env.db, "other", "other@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	inv := createInvitation(t, env.db, project.ID, invitee.Email, models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))

	if _, err := env.invitations.Accept(inv.Token, invitee.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	_, err := env.invitations.Accept(inv.Token, other.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 409 {
		t.Fatalf("used token should conflict for another user, got %v", err)
	}
}

func TestInvitationAccept_Expired(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	invitee := createUser(t, env.db, "invitee", "invitee@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	inv := createInvitation(t, env.db, project.ID, invitee.Email, models.UserTypeContractor, owner.ID, time.Now().Add(-time.Hour))

	_, err := env.invitations.Accept(inv.Token, invitee.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 410 {
		t.Fatalf("expired invitation should report 410, got %v", err)
	}

	// Expiry is passive: the row stays pending.
	var reloaded models.Invitation
	env.db.First(&reloaded, inv.ID)
	if reloaded.Status != models.InvitationPending {
		t.Errorf("expired invitation status = %s, want pending", reloaded.Status)
	}
}

func TestInvitationAccept_EmailMismatch(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	other := createUser(t, env.db, "other", "other@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	inv := createInvitation(t, env.db, project.ID, "someone@example.com", models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))

	_, err := env.invitations.Accept(inv.Token, other.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 403 {
		t.Fatalf("email mismatch should report 403, got %v", err)
	}

	var memberships int64
	env.db.Model(&models.ProjectMembership{}).Where("project_id = ?", project.ID).Count(&memberships)
	if memberships != 0 {
		t.Errorf("mismatched accept must not create membership, found %d", memberships)
	}
}

func TestInvitationAccept_UnknownToken(t *testing.T) {
	env := newTestEnv(t)
	user := createUser(t, env.db, "u", "u@example.com", models.RoleSiteUser)

	_, err := env.invitations.Accept("deadbeef", user.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 404 {
		t.Fatalf("unknown token should report 404, got %v", err)
	}
}

func TestInvitationCancel(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	invitee := createUser(t, env.db, "invitee", "invitee@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	inv := createInvitation(t, env.db, project.ID, invitee.Email, models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))

	if err := env.invitations.Cancel(owner.ID, inv.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	var reloaded models.Invitation
	env.db.First(&reloaded, inv.ID)
	if reloaded.Status != models.InvitationCancelled {
		t.Errorf("status = %s, want cancelled", reloaded.Status)
	}

	// Cancellation is terminal: the token no longer redeems.
	_, err := env.invitations.Accept(inv.Token, invitee.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 409 {
		t.Fatalf("cancelled invitation should conflict on accept, got %v", err)
	}

	// No notification is sent to the invitee on cancel.
	var notifications int64
	env.db.Model(&models.Notification{}).Where("user_id = ?", invitee.ID).Count(&notifications)
	if notifications != 0 {
		t.Errorf("cancel must not notify the invitee, found %d notifications", notifications)
	}
}

func TestInvitationCancel_NonOwnerMasked(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	member := createUser(t, env.db, "member", "member@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, member.ID, models.UserTypeEmployee)
	inv := createInvitation(t, env.db, project.ID, "x@example.com", models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))

	err := env.invitations.Cancel(member.ID, inv.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 404 {
		t.Fatalf("non-owner cancel should be masked as 404, got %v", err)
	}
}

func TestInvitationCancel_AlreadyResolved(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	invitee := createUser(t, env.db, "invitee", "invitee@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	inv := createInvitation(t, env.db, project.ID, invitee.Email, models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))

	if _, err := env.invitations.Accept(inv.Token, invitee.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	err := env.invitations.Cancel(owner.ID, inv.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 409 {
		t.Fatalf("cancelling an accepted invitation should conflict, got %v", err)
	}
}

func TestInvitationListForProject_FiltersResolvedAndExpired(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	invitee := createUser(t, env.db, "invitee", "invitee@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)

	createInvitation(t, env.db, project.ID, "live@example.com", models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))
	createInvitation(t, env.db, project.ID, "stale@example.com", models.UserTypeContractor, owner.ID, time.Now().Add(-time.Hour))
	accepted := createInvitation(t, env.db, project.ID, invitee.Email, models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))
	if _, err := env.invitations.Accept(accepted.Token, invitee.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	invitations, err := env.invitations.ListForProject(owner.ID, project.ID)
	if err != nil {
		t.Fatalf("ListForProject: %v", err)
	}
	if len(invitations) != 1 {
		t.Fatalf("got %d invitations, want 1", len(invitations))
	}
	if invitations[0].Email != "live@example.com" {
		t.Errorf("listed %s, want live@example.com", invitations[0].Email)
	}
}

func TestInvitationListForUser(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	invitee := createUser(t, env.db, "invitee", "invitee@example.com", models.RoleSiteUser)
	p1 := createProject(t, env.db, "alpha", owner.ID)
	p2 := createProject(t, env.db, "beta", owner.ID)

	createInvitation(t, env.db, p1.ID, invitee.Email, models.UserTypeContractor, owner.ID, time.Now().Add(24*time.Hour))
	createInvitation(t, env.db, p2.ID, invitee.Email, models.UserTypeEmployee, owner.ID, time.Now().Add(-time.Hour))
	createInvitation(t, env.db, p2.ID, "someone-else@example.com", models.UserTypeEmployee, owner.ID, time.Now().Add(24*time.Hour))

	invitations, err := env.invitations.ListForUser(invitee.ID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(invitations) != 1 {
		t.Fatalf("got %d invitations, want 1", len(invitations))
	}
	if invitations[0].ProjectID != p1.ID {
		t.Errorf("listed project %d, want %d", invitations[0].ProjectID, p1.ID)
	}
	if invitations[0].Project == nil || invitations[0].Project.Name != "alpha" {
		t.Error("project should be preloaded")
	}
}
