package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a finished good. Stock is only ever increased by the production
// engine; the recipe defines the raw materials one unit consumes.
type Product struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	TenantID    uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_products_tenant_name"`
	Name        string               `gorm:"column:name;not null;uniqueIndex:uq_products_tenant_name"`
	Category    string               `gorm:"column:category"`
	Description string               `gorm:"column:description"`
	SalePrice   decimal.NullDecimal  `gorm:"column:sale_price;type:numeric(12,2)"`
	Stock       decimal.Decimal      `gorm:"column:stock;type:numeric(12,2);not null"`
	Recipe      []RecipeIngredient   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient binds one raw material requirement to a product. At most
// one row exists per (product, raw material) pair.
type RecipeIngredient struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_recipe_product_material"`
	RawMaterialID uuid.UUID       `gorm:"column:raw_material_id;type:uuid;not null;uniqueIndex:uq_recipe_product_material"`
	RawMaterial   *RawMaterial    `gorm:"foreignKey:RawMaterialID;constraint:OnDelete:RESTRICT"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(12,4);not null"`
}

func (i *RecipeIngredient) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
