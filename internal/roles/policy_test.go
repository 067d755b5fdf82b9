package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/gorm"
)

func TestRolePredicates(t *testing.T) {
	cases := []struct {
		role   enums.Role
		higher bool
		medium bool
		lower  bool
	}{
		{role: enums.RoleManager, higher: true, medium: true},
		{role: enums.RoleInstructor, medium: true},
		{role: enums.RoleStudent, lower: true},
		{role: enums.Role("ADMIN")},
		{role: enums.Role("")},
	}

	for _, tc := range cases {
		if got := IsHigherRole(tc.role); got != tc.higher {
			t.Fatalf("IsHigherRole(%q) = %v, want %v", tc.role, got, tc.higher)
		}
		if got := IsMediumRole(tc.role); got != tc.medium {
			t.Fatalf("IsMediumRole(%q) = %v, want %v", tc.role, got, tc.medium)
		}
		if got := IsLowerRole(tc.role); got != tc.lower {
			t.Fatalf("IsLowerRole(%q) = %v, want %v", tc.role, got, tc.lower)
		}
	}
}

type stubLookup struct {
	role enums.Role
	err  error
}

func (s stubLookup) FindRoleByUserID(context.Context, uint) (enums.Role, error) {
	return s.role, s.err
}

func TestGetRoleByUserID(t *testing.T) {
	svc, err := NewService(stubLookup{role: enums.RoleInstructor})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	role, err := svc.GetRoleByUserID(context.Background(), 3)
	if err != nil || role != enums.RoleInstructor {
		t.Fatalf("unexpected result %s %v", role, err)
	}
}

func TestGetRoleByUserIDNotFound(t *testing.T) {
	svc, _ := NewService(stubLookup{err: gorm.ErrRecordNotFound})
	_, err := svc.GetRoleByUserID(context.Background(), 99)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetRoleByUserIDWrapsFailures(t *testing.T) {
	svc, _ := NewService(stubLookup{err: errors.New("db down")})
	_, err := svc.GetRoleByUserID(context.Background(), 1)
	if !pkgerrors.Is(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestNewServiceRequiresLookup(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil lookup")
	}
}
