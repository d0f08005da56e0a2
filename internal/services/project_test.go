package services

import (
	"testing"
	"time"

	"github.com/lucaswan/paperdesk/internal/models"
)

func TestProjectGet_Visibility(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	member := createUser(t, env.db, "member", "member@example.com", models.RoleSiteUser)
	invited := createUser(t, env.db, "invited", "invited@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, member.ID, models.UserTypeEmployee)
	createInvitation(t, env.db, project.ID, invited.Email, models.UserTypeEmployee, owner.ID, time.Now().Add(24*time.Hour))

	for _, id := range []uint{owner.ID, member.ID, invited.ID} {
		if _, err := env.projects.Get(id, project.ID); err != nil {
			t.Errorf("user %d should see the project: %v", id, err)
		}
	}
}

func TestProjectUpdate_InvitedCannotEdit(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	invited := createUser(t, env.db, "invited", "invited@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	createInvitation(t, env.db, project.ID, invited.Email, models.UserTypeEmployee, owner.ID, time.Now().Add(24*time.Hour))

	name := "renamed"
	_, err := env.projects.Update(invited.ID, project.ID, &UpdateProjectRequest{Name: &name})
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 403 {
		t.Fatalf("invited update should report 403, got %v", err)
	}
}

func TestProjectDelete_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	member := createUser(t, env.db, "member", "member@example.com", models.RoleSiteUser)
	project := createProject(t, env.db, "alpha", owner.ID)
	addMember(t, env.db, project.ID, member.ID, models.UserTypeEmployee)

	err := env.projects.Delete(member.ID, project.ID)
	appErr := asAppError(err)
	if appErr == nil || appErr.HTTPStatus != 404 {
		t.Fatalf("member delete should be masked as 404, got %v", err)
	}

	if err := env.projects.Delete(owner.ID, project.ID); err != nil {
		t.Fatalf("owner Delete: %v", err)
	}

	if got := env.access.ResolveRole(owner.ID, project.ID); got != RoleNone {
		t.Errorf("deleted project should resolve to none, got %s", got)
	}
}

func TestProjectList(t *testing.T) {
	env := newTestEnv(t)

	owner := createUser(t, env.db, "owner", "owner@example.com", models.RoleSiteUser)
	member := createUser(t, env.db, "member", "member@example.com", models.RoleSiteUser)
	admin := createUser(t, env.db, "admin", "admin@example.com", models.RoleSiteAdmin)

	owned := createProject(t, env.db, "owned", owner.ID)
	joined := createProject(t, env.db, "joined", member.ID)
	addMember(t, env.db, joined.ID, owner.ID, models.UserTypeContractor)
	createProject(t, env.db, "unrelated", member.ID)

	projects, err := env.projects.List(owner.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("got %d projects, want 2 (owned + joined)", len(projects))
	}
	seen := map[uint]bool{}
	for _, p := range projects {
		seen[p.ID] = true
	}
	if !seen[owned.ID] || !seen[joined.ID] {
		t.Errorf("list should include owned and joined projects, got %v", seen)
	}

	all, err := env.projects.List(admin.ID)
	if err != nil {
		t.Fatalf("admin List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("admin should see all projects, got %d", len(all))
	}
}
