package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/centavohq/centavo-backend/pkg/db"
	"github.com/centavohq/centavo-backend/pkg/db/models"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
	"github.com/centavohq/centavo-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes raw material and purchase-lot intake operations.
type Service interface {
	CreateMaterial(ctx context.Context, tenantID uuid.UUID, input CreateMaterialInput) (*models.RawMaterial, error)
	GetMaterial(ctx context.Context, tenantID, materialID uuid.UUID) (*models.RawMaterial, error)
	ListMaterials(ctx context.Context, tenantID uuid.UUID) ([]models.RawMaterial, error)
	DeleteMaterial(ctx context.Context, tenantID, materialID uuid.UUID) error
	CreateLot(ctx context.Context, tenantID uuid.UUID, input CreateLotInput) (*models.PurchaseLot, error)
	ListLots(ctx context.Context, tenantID, materialID uuid.UUID, params pagination.Params) ([]models.PurchaseLot, error)
}

// CreateMaterialInput holds the validated payload to register a raw material.
type CreateMaterialInput struct {
	Name          string
	UnitOfMeasure string
	Description   string
}

// CreateLotInput records one purchase of a raw material.
type CreateLotInput struct {
	RawMaterialID uuid.UUID
	PurchaseDate  time.Time
	Quantity      decimal.Decimal
	TotalCost     decimal.Decimal
}

type service struct {
	materials MaterialRepository
	lots      LotLedger
}

// NewService wires the inventory service with its repositories.
func NewService(materials MaterialRepository, lots LotLedger) (Service, error) {
	if materials == nil {
		return nil, fmt.Errorf("material repository required")
	}
	if lots == nil {
		return nil, fmt.Errorf("lot ledger required")
	}
	return &service{materials: materials, lots: lots}, nil
}

func (s *service) CreateMaterial(ctx context.Context, tenantID uuid.UUID, input CreateMaterialInput) (*models.RawMaterial, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material name is required")
	}
	unit := strings.TrimSpace(input.UnitOfMeasure)
	if unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit of measure is required")
	}

	material := &models.RawMaterial{
		TenantID:      tenantID,
		Name:          name,
		UnitOfMeasure: unit,
		Description:   strings.TrimSpace(input.Description),
	}
	if err := s.materials.Create(ctx, material); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err,
				fmt.Sprintf("material %q already exists", name))
		}
		return nil, err
	}
	return material, nil
}

func (s *service) GetMaterial(ctx context.Context, tenantID, materialID uuid.UUID) (*models.RawMaterial, error) {
	material, err := s.materials.FindByID(ctx, tenantID, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return nil, err
	}
	return material, nil
}

func (s *service) ListMaterials(ctx context.Context, tenantID uuid.UUID) ([]models.RawMaterial, error) {
	return s.materials.ListByTenant(ctx, tenantID)
}

func (s *service) DeleteMaterial(ctx context.Context, tenantID, materialID uuid.UUID) error {
	if _, err := s.GetMaterial(ctx, tenantID, materialID); err != nil {
		return err
	}

	referenced, err := s.materials.IsReferenced(ctx, materialID)
	if err != nil {
		return err
	}
	if referenced {
		return pkgerrors.New(pkgerrors.CodeConflict,
			"material has purchase history or recipe uses and cannot be deleted")
	}

	if err := s.materials.Delete(ctx, tenantID, materialID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return err
	}
	return nil
}

func (s *service) CreateLot(ctx context.Context, tenantID uuid.UUID, input CreateLotInput) (*models.PurchaseLot, error) {
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lot quantity must be positive")
	}
	if input.TotalCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lot total cost cannot be negative")
	}
	if input.PurchaseDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase date is required")
	}

	if _, err := s.GetMaterial(ctx, tenantID, input.RawMaterialID); err != nil {
		return nil, err
	}

	lot := &models.PurchaseLot{
		TenantID:      tenantID,
		RawMaterialID: input.RawMaterialID,
		PurchaseDate:  input.PurchaseDate,
		Quantity:      input.Quantity,
		TotalCost:     input.TotalCost,
		// A new lot is fully available.
		QuantityRemaining: input.Quantity,
	}
	if err := s.lots.Create(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

func (s *service) ListLots(ctx context.Context, tenantID, materialID uuid.UUID, params pagination.Params) ([]models.PurchaseLot, error) {
	if _, err := s.GetMaterial(ctx, tenantID, materialID); err != nil {
		return nil, err
	}
	return s.lots.ListByMaterial(ctx, tenantID, materialID, params)
}
