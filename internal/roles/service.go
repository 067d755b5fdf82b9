package roles

import (
	"context"
	"errors"

	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/gorm"
)

// Lookup resolves the stored role of a user.
type Lookup interface {
	FindRoleByUserID(ctx context.Context, userID uint) (enums.Role, error)
}

// Service resolves roles for users.
type Service interface {
	GetRoleByUserID(ctx context.Context, userID uint) (enums.Role, error)
}

type service struct {
	lookup Lookup
}

func NewService(lookup Lookup) (Service, error) {
	if lookup == nil {
		return nil, errors.New("role lookup required")
	}
	return &service{lookup: lookup}, nil
}

// GetRoleByUserID fails with NOT_FOUND when the user does not exist.
func (s *service) GetRoleByUserID(ctx context.Context, userID uint) (enums.Role, error) {
	role, err := s.lookup.FindRoleByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user role")
	}
	return role, nil
}
