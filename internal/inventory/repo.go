package inventory

import (
	"context"
	"fmt"

	"github.com/centavohq/centavo-backend/pkg/db/models"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
	"github.com/centavohq/centavo-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaterialRepository manages persistence for raw materials.
type MaterialRepository interface {
	WithTx(tx *gorm.DB) MaterialRepository
	Create(ctx context.Context, material *models.RawMaterial) error
	FindByID(ctx context.Context, tenantID, materialID uuid.UUID) (*models.RawMaterial, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.RawMaterial, error)
	Delete(ctx context.Context, tenantID, materialID uuid.UUID) error
	IsReferenced(ctx context.Context, materialID uuid.UUID) (bool, error)
}

// LotLedger exposes the ordered purchase-lot collection per material. The
// locked read plus ApplyDeduction pair is the only path that spends stock.
type LotLedger interface {
	WithTx(tx *gorm.DB) LotLedger
	Create(ctx context.Context, lot *models.PurchaseLot) error
	ListByMaterial(ctx context.Context, tenantID, materialID uuid.UUID, params pagination.Params) ([]models.PurchaseLot, error)
	LockOpenLots(ctx context.Context, tenantID, materialID uuid.UUID) ([]models.PurchaseLot, error)
	ApplyDeduction(ctx context.Context, lot *models.PurchaseLot, amount decimal.Decimal) error
}

type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository returns a material repository bound to the provided database.
func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) WithTx(tx *gorm.DB) MaterialRepository {
	if tx == nil {
		return r
	}
	return &materialRepository{db: tx}
}

func (r *materialRepository) Create(ctx context.Context, material *models.RawMaterial) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *materialRepository) FindByID(ctx context.Context, tenantID, materialID uuid.UUID) (*models.RawMaterial, error) {
	var material models.RawMaterial
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, materialID).
		First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *materialRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.RawMaterial, error) {
	var materials []models.RawMaterial
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *materialRepository) Delete(ctx context.Context, tenantID, materialID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, materialID).
		Delete(&models.RawMaterial{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsReferenced reports whether any purchase lot or recipe row still points at
// the material. Deletion is blocked while history exists.
func (r *materialRepository) IsReferenced(ctx context.Context, materialID uuid.UUID) (bool, error) {
	var lotCount int64
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseLot{}).
		Where("raw_material_id = ?", materialID).
		Count(&lotCount).Error; err != nil {
		return false, err
	}
	if lotCount > 0 {
		return true, nil
	}

	var recipeCount int64
	if err := r.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Where("raw_material_id = ?", materialID).
		Count(&recipeCount).Error; err != nil {
		return false, err
	}
	return recipeCount > 0, nil
}

type lotLedger struct {
	db *gorm.DB
}

// NewLotLedger returns a lot ledger bound to the provided database.
func NewLotLedger(db *gorm.DB) LotLedger {
	return &lotLedger{db: db}
}

func (r *lotLedger) WithTx(tx *gorm.DB) LotLedger {
	if tx == nil {
		return r
	}
	return &lotLedger{db: tx}
}

func (r *lotLedger) Create(ctx context.Context, lot *models.PurchaseLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

func (r *lotLedger) ListByMaterial(ctx context.Context, tenantID, materialID uuid.UUID, params pagination.Params) ([]models.PurchaseLot, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND raw_material_id = ?", tenantID, materialID).
		Order("purchase_date DESC, id DESC").
		Limit(pagination.NormalizeLimit(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(purchase_date, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var lots []models.PurchaseLot
	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// LockOpenLots acquires exclusive row locks on every not-yet-exhausted lot of
// one material for one tenant, oldest purchase first with the lot id as tie
// breaker so the order is reproducible. Callers must hold a transaction; the
// locks live until it commits or rolls back.
func (r *lotLedger) LockOpenLots(ctx context.Context, tenantID, materialID uuid.UUID) ([]models.PurchaseLot, error) {
	query := r.db.WithContext(ctx)

	// sqlite (tests) has no row locks; its single-writer lock covers us there.
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var lots []models.PurchaseLot
	err := query.
		Where("tenant_id = ? AND raw_material_id = ? AND quantity_remaining > 0", tenantID, materialID).
		Order("purchase_date ASC, id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

// ApplyDeduction removes amount from the lot's remaining quantity and persists
// the result. Exceeding the remaining quantity means the concurrency control
// failed upstream, so it surfaces as an internal invariant violation rather
// than being clamped.
func (r *lotLedger) ApplyDeduction(ctx context.Context, lot *models.PurchaseLot, amount decimal.Decimal) error {
	if lot == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "deduction against nil lot")
	}
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeInternal,
			fmt.Sprintf("non-positive deduction %s for lot %s", amount, lot.ID))
	}
	if amount.GreaterThan(lot.QuantityRemaining) {
		return pkgerrors.New(pkgerrors.CodeInternal,
			fmt.Sprintf("deduction %s exceeds remaining %s for lot %s", amount, lot.QuantityRemaining, lot.ID))
	}

	remaining := lot.QuantityRemaining.Sub(amount)
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseLot{}).
		Where("id = ?", lot.ID).
		Update("quantity_remaining", remaining).Error
	if err != nil {
		return err
	}
	lot.QuantityRemaining = remaining
	return nil
}
