package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User identifies the actor recorded on production records. Credentials and
// session state live outside this service.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_users_tenant_email"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:uq_users_tenant_email"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
