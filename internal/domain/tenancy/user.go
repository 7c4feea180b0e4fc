package tenancy

import (
	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/domain/core"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleMember }

type User struct {
	core.Record
	OrganisationID uuid.UUID `gorm:"type:uuid;not null;index;column:organisation_id" json:"organisationId"`
	Email          string    `gorm:"not null;column:email" json:"email"`
	PasswordHash   string    `gorm:"not null;column:password_hash" json:"-"`
	Role           Role      `gorm:"not null;column:role" json:"role"`
}

func (User) TableName() string { return "users" }

// UserPatch lists the user fields an update may touch. Nil means unchanged.
type UserPatch struct {
	Email *string
	Role  *Role
}

func (p UserPatch) Columns() map[string]any {
	out := map[string]any{}
	if p.Email != nil {
		out["email"] = *p.Email
	}
	if p.Role != nil {
		out["role"] = string(*p.Role)
	}
	return out
}
