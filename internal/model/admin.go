package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SuperAdminRole bypasses permission checks.
const SuperAdminRole = "Super Admin"

// InventoryPermissions grant visibility of stock alerts.
var InventoryPermissions = []string{"view_inventory", "manage_inventory", "adjust_stock"}

// Admin is a back-office user. Credentials live in the auth service; this
// table only carries identity and role for attribution and notifications.
type Admin struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string     `gorm:"uniqueIndex;not null"`
	FullName  string     `gorm:"not null"`
	RoleID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Role *Role `gorm:"foreignKey:RoleID"`
}

type Role struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoleName    string                      `gorm:"uniqueIndex;not null"`
	Permissions datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanSeeInventory reports whether the role receives stock alerts.
func (r *Role) CanSeeInventory() bool {
	if r == nil {
		return false
	}
	if r.RoleName == SuperAdminRole {
		return true
	}
	for _, p := range r.Permissions {
		for _, want := range InventoryPermissions {
			if p == want {
				return true
			}
		}
	}
	return false
}
