package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductionRecord is the immutable audit trail of one successful production
// run. TotalCost reflects the actual unit costs of the lots consumed.
type ProductionRecord struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID         uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index:idx_production_records_tenant"`
	ProductID        uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Product          *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	UserID           *uuid.UUID      `gorm:"column:user_id;type:uuid"`
	QuantityProduced decimal.Decimal `gorm:"column:quantity_produced;type:numeric(12,2);not null"`
	TotalCost        decimal.Decimal `gorm:"column:total_cost;type:numeric(12,2);not null"`
	ProducedAt       time.Time       `gorm:"column:produced_at;not null"`
}

func (r *ProductionRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
