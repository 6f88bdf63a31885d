package models

import (
	"slices"
	"testing"
)

func TestCanAccess(t *testing.T) {
	tests := []struct {
		view View
		sa   bool
		pm   bool
		v    bool
	}{
		{ViewDashboard, true, true, true},
		{ViewParticipants, true, true, false},
		{ViewProgress, true, true, true},
		{ViewReminders, true, true, false},
		{ViewResources, true, true, false},
		{ViewCertificates, true, false, false},
		{ViewAnalytics, true, true, true},
		{ViewSettings, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			for role, want := range map[Role]bool{
				RoleSuperAdmin:     tt.sa,
				RoleProgramManager: tt.pm,
				RoleViewer:         tt.v,
			} {
				if got := CanAccess(role, tt.view); got != want {
					t.Errorf("CanAccess(%s, %s) = %v, want %v", role, tt.view, got, want)
				}
			}
		})
	}

	if CanAccess(Role("Intern"), ViewDashboard) {
		t.Error("unknown roles should not access anything")
	}
}

func TestMenuFor(t *testing.T) {
	tests := []struct {
		role Role
		want []View
	}{
		{RoleSuperAdmin, Views},
		{RoleProgramManager, []View{ViewDashboard, ViewParticipants, ViewProgress, ViewReminders, ViewResources, ViewAnalytics}},
		{RoleViewer, []View{ViewDashboard, ViewProgress, ViewAnalytics}},
		{Role("Intern"), nil},
	}
	for _, tt := range tests {
		if got := MenuFor(tt.role); !slices.Equal(got, tt.want) {
			t.Errorf("MenuFor(%s) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestCanMessage(t *testing.T) {
	if !CanMessage(RoleSuperAdmin) || !CanMessage(RoleProgramManager) || CanMessage(RoleViewer) {
		t.Error("only super admins and program managers may message")
	}
}

func TestFindAdminAndCohort(t *testing.T) {
	if a, ok := FindAdmin(DefaultAdmins(), "u-3"); !ok || a.Role != RoleViewer {
		t.Errorf("FindAdmin(u-3) = %+v, %v", a, ok)
	}
	if _, ok := FindAdmin(DefaultAdmins(), "u-9"); ok {
		t.Error("FindAdmin should miss unknown ids")
	}
	if c, ok := FindCohort(DefaultCohorts(), "c-100"); !ok || c.Status != CohortCompleted {
		t.Errorf("FindCohort(c-100) = %+v, %v", c, ok)
	}
}

func rosterOf(ids ...string) Roster {
	r := Roster{CohortID: "c-101", CurrentWeek: 3}
	for _, id := range ids {
		r.Participants = append(r.Participants, Participant{
			ID:             id,
			WeeklyProgress: []WeeklyRecord{{WeekNumber: 1, Status: StatusCompleted}},
		})
	}
	return r
}

func TestRoster_ValueMethods(t *testing.T) {
	get := func() Roster { return rosterOf("p-1", "p-2") }

	if n := get().Len(); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
	if p, ok := get().Find("p-2"); !ok || p.ID != "p-2" {
		t.Errorf("Find(p-2) = %+v, %v", p, ok)
	}
	if _, ok := get().Find("p-9"); ok {
		t.Error("Find should miss unknown ids")
	}
	if c := get().Clone(); c.Len() != 2 || c.CohortID != "c-101" {
		t.Errorf("Clone = %+v", c)
	}
}

func TestRoster_FindAliasesAndCloneCopies(t *testing.T) {
	r := rosterOf("p-1")

	p, _ := r.Find("p-1")
	p.FullName = "Alice"
	if r.Participants[0].FullName != "Alice" {
		t.Error("Find should return a pointer into the roster")
	}

	c := r.Clone()
	c.Participants[0].FullName = "Bob"
	c.Participants[0].WeeklyProgress[0].Status = StatusMissing
	if r.Participants[0].FullName != "Alice" || r.Participants[0].WeeklyProgress[0].Status != StatusCompleted {
		t.Error("Clone should not share participants or weekly records")
	}
}
