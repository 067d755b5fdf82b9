package models

import (
	"strings"
	"time"

	"github.com/tatame/tatame-backend/pkg/enums"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is a gym member linked to an identity-provider account.
type User struct {
	ID                   uint                      `gorm:"primaryKey" json:"id"`
	IdentityID           string                    `gorm:"column:identity_id;type:text;not null;uniqueIndex" json:"identityId"`
	Role                 enums.Role                `gorm:"column:role;type:text;not null" json:"role"`
	FirstName            string                    `gorm:"column:first_name;type:text;not null" json:"firstName"`
	LastName             string                    `gorm:"column:last_name;type:text;not null" json:"lastName"`
	Email                string                    `gorm:"column:email;type:text;not null" json:"email"`
	PictureURL           *string                   `gorm:"column:picture_url;type:text" json:"pictureUrl,omitempty"`
	BirthDate            *datatypes.Date           `gorm:"column:birth_date" json:"birthDate,omitempty"`
	BirthDay             *string                   `gorm:"column:birth_day;type:text;index" json:"birthDay,omitempty"`
	GymID                *uint                     `gorm:"column:gym_id;index" json:"gymId,omitempty"`
	ApprovedAt           *time.Time                `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	DeniedAt             *time.Time                `gorm:"column:denied_at" json:"deniedAt,omitempty"`
	StripeCustomerID     *string                   `gorm:"column:stripe_customer_id;type:text" json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID *string                   `gorm:"column:stripe_subscription_id;type:text" json:"stripeSubscriptionId,omitempty"`
	SubscriptionStatus   *enums.SubscriptionStatus `gorm:"column:subscription_status;type:text" json:"subscriptionStatus,omitempty"`
	PushToken            *string                   `gorm:"column:push_token;type:text" json:"-"`
	CreatedAt            time.Time                 `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt            gorm.DeletedAt            `gorm:"column:deleted_at;index" json:"deletedAt,omitempty"`
}

// FullName joins first and last name, trimming the result.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsApproved reports whether a manager approved the user.
func (u User) IsApproved() bool {
	return u.ApprovedAt != nil
}
