package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RawMaterial is a purchasable input tracked per tenant. Stock is never stored
// on the material itself; it lives in the purchase lots.
type RawMaterial struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID      uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_raw_materials_tenant_name"`
	Name          string    `gorm:"column:name;not null;uniqueIndex:uq_raw_materials_tenant_name"`
	UnitOfMeasure string    `gorm:"column:unit_of_measure;not null"`
	Description   string    `gorm:"column:description"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *RawMaterial) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
