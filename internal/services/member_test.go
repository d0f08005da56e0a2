package services

import (
	"testing"

	"github.com/lucaswan/paperdesk/internal/models"
)

func TestMemberList(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	a := createUser(t, env.db, "a", "a@example.com", models.RoleSiteUser)
	b := createUser(t, env.db, "b", "b@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, a.ID, models.UserTypeEmployee)
	addMember(t, env.db, project.ID, b.ID, models.UserTypeClient)

	members, err := env.members.List(owner.ID, project.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if members[0].User == nil {
		t.Error("user should be preloaded")
	}

	// A member may also view the roster.
	if _, err := env.members.List(a.ID, project.ID); err != nil {
		t.Errorf("member List: %v", err)
	}
}

func TestMemberRemove(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	member := createUser(t, env.db, "member", "member@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, member.ID, models.UserTypeEmployee)

	if err := env.members.Remove(owner.ID, project.ID, member.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	// Hard delete: the row is gone, not soft-deleted.
	var count int64
	env.db.Unscoped().Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, member.ID).
		Count(&count)
	if count != 0 {
		t.Errorf("membership row should be hard deleted, found %d", count)
	}

	if got := env.access.ResolveRole(member.ID, project.ID); got != RoleNone {
		t.Errorf("removed member should resolve to none, got %s", got)
	}
}

func TestMemberRemove_ClearsPrimaryClient(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	client := createUser(t, env.db, "client", "client@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, client.ID, models.UserTypeClient)
	env.db.Model(&models.Project{}).Where("id = ?", project.ID).Update("primary_client_id", client.ID)

	if err := env.members.Remove(owner.ID, project.ID, client.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	var reloaded models.Project
	env.db.First(&reloaded, project.ID)
	if reloaded.PrimaryClientID != nil {
		t.Errorf("primary client should be cleared, got %v", *reloaded.PrimaryClientID)
	}
}

func TestMemberRemove_MemberCannotRemove(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	a := createUser(t, env.db, "a", "a@example.com", models.RoleSiteUser)
	b := createUser(t, env.db, "b", "b@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, a.ID, models.UserTypeEmployee)
	addMember(t, env.db, project.ID, b.ID, models.UserTypeEmployee)

	err := env.members.Remove(a.ID, project.ID, b.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 404 {
		t.Fatalf("member remove should be masked as 404, got %v", err)
	}
}

func TestSetPrimaryClient(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	client := createUser(t, env.db, "client", "client@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, client.ID, models.UserTypeClient)

	updated, err := env.members.SetPrimaryClient(owner.ID, project.ID, &client.ID)
	if err != nil {
		t.Fatalf("SetPrimaryClient: %v", err)
	}
	if updated.PrimaryClientID == nil || *updated.PrimaryClientID != client.ID {
		t.Errorf("primary client = %v, want %d", updated.PrimaryClientID, client.ID)
	}
}

func TestSetPrimaryClient_NonClientRejected(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	employee := createUser(t, env.db, "emp", "emp@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, employee.ID, models.UserTypeEmployee)

	_, err := env.members.SetPrimaryClient(owner.ID, project.ID, &employee.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 422 {
		t.Fatalf("non-client designation should report 422, got %v", err)
	}

	var reloaded models.Project
	env.db.First(&reloaded, project.ID)
	if reloaded.PrimaryClientID != nil {
		t.Error("failed designation must not change the project")
	}
}

func TestSetPrimaryClient_NonMemberRejected(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	outsider := createUser(t, env.db, "out", "out@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)

	_, err := env.members.SetPrimaryClient(owner.ID, project.ID, &outsider.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 404 {
		t.Fatalf("non-member designation should report 404, got %v", err)
	}
}

func TestSetPrimaryClient_ClearAlwaysLegal(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	client := createUser(t, env.db, "client", "client@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, client.ID, models.UserTypeClient)
	env.db.Model(&models.Project{}).Where("id = ?", project.ID).Update("primary_client_id", client.ID)

	updated, err := env.members.SetPrimaryClient(owner.ID, project.ID, nil)
	if err != nil {
		t.Fatalf("clear SetPrimaryClient: %v", err)
	}
	if updated.PrimaryClientID != nil {
		t.Errorf("primary client should be nil after clear, got %v", *updated.PrimaryClientID)
	}

	// Clearing when already clear is still fine.
	if _, err := env.members.SetPrimaryClient(owner.ID, project.ID, nil); err != nil {
		t.Errorf("repeat clear: %v", err)
	}
}
