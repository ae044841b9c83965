package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseLot is one historical purchase of a raw material. QuantityRemaining
// starts equal to Quantity and only ever decreases; the unit cost is derived
// from the original purchase and never changes.
type PurchaseLot struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID          uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index:idx_purchase_lots_tenant_material"`
	RawMaterialID     uuid.UUID       `gorm:"column:raw_material_id;type:uuid;not null;index:idx_purchase_lots_tenant_material"`
	RawMaterial       *RawMaterial    `gorm:"foreignKey:RawMaterialID;constraint:OnDelete:RESTRICT"`
	PurchaseDate      time.Time       `gorm:"column:purchase_date;type:date;not null"`
	Quantity          decimal.Decimal `gorm:"column:quantity;type:numeric(12,2);not null"`
	TotalCost         decimal.Decimal `gorm:"column:total_cost;type:numeric(12,2);not null"`
	QuantityRemaining decimal.Decimal `gorm:"column:quantity_remaining;type:numeric(12,2);not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *PurchaseLot) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// UnitCost returns the historical acquisition cost per unit at full precision.
// Rounding is the caller's responsibility and happens only on final totals.
func (l *PurchaseLot) UnitCost() decimal.Decimal {
	if l.Quantity.IsZero() {
		return decimal.Zero
	}
	return l.TotalCost.Div(l.Quantity)
}
