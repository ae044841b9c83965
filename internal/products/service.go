package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/centavohq/centavo-backend/pkg/db"
	"github.com/centavohq/centavo-backend/pkg/db/models"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Requirement is one raw-material demand produced by resolving a recipe
// against a production quantity.
type Requirement struct {
	Material models.RawMaterial
	Quantity decimal.Decimal
}

// Resolver scales a product's bill of materials by a production quantity.
// Resolution is a pure read; it never mutates.
type Resolver interface {
	WithTx(tx *gorm.DB) Resolver
	ResolveRequirements(ctx context.Context, tenantID, productID uuid.UUID, quantity decimal.Decimal) (*models.Product, []Requirement, error)
}

// Service exposes product and recipe management plus recipe resolution.
type Service interface {
	Resolver
	CreateProduct(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error)
	ReplaceRecipe(ctx context.Context, tenantID, productID uuid.UUID, input []RecipeIngredientInput) (*models.Product, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Category    string
	Description string
	SalePrice   *decimal.Decimal
}

// RecipeIngredientInput defines one raw-material requirement per unit produced.
type RecipeIngredientInput struct {
	RawMaterialID uuid.UUID
	Quantity      decimal.Decimal
}

// materialFinder is the slice of the inventory repository the recipe editor
// needs to confirm material ownership.
type materialFinder interface {
	FindByID(ctx context.Context, tenantID, materialID uuid.UUID) (*models.RawMaterial, error)
}

type service struct {
	repo      Repository
	materials materialFinder
}

// NewService wires the product service with its repository and a material lookup.
func NewService(repo Repository, materials materialFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if materials == nil {
		return nil, fmt.Errorf("material finder required")
	}
	return &service{repo: repo, materials: materials}, nil
}

func (s *service) WithTx(tx *gorm.DB) Resolver {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), materials: s.materials}
}

func (s *service) CreateProduct(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.SalePrice != nil && input.SalePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price cannot be negative")
	}

	product := &models.Product{
		TenantID:    tenantID,
		Name:        name,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		Stock:       decimal.Zero,
	}
	if input.SalePrice != nil {
		product.SalePrice = decimal.NewNullDecimal(*input.SalePrice)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err,
				fmt.Sprintf("product %q already exists", name))
		}
		return nil, err
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Missing and foreign-tenant products are indistinguishable so
			// callers cannot enumerate other tenants' catalogs.
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *service) ReplaceRecipe(ctx context.Context, tenantID, productID uuid.UUID, input []RecipeIngredientInput) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(input))
	ingredients := make([]models.RecipeIngredient, 0, len(input))
	for _, item := range input {
		if !item.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient quantity must be positive")
		}
		if seen[item.RawMaterialID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("material %s appears more than once in the recipe", item.RawMaterialID))
		}
		seen[item.RawMaterialID] = true

		if _, err := s.materials.FindByID(ctx, tenantID, item.RawMaterialID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("material %s does not exist", item.RawMaterialID))
			}
			return nil, err
		}

		ingredients = append(ingredients, models.RecipeIngredient{
			ProductID:     productID,
			RawMaterialID: item.RawMaterialID,
			Quantity:      item.Quantity,
		})
	}

	if err := s.repo.ReplaceRecipe(ctx, productID, ingredients); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, tenantID, productID)
}

// ResolveRequirements loads the product scoped to the tenant and scales every
// recipe ingredient by the requested quantity.
func (s *service) ResolveRequirements(ctx context.Context, tenantID, productID uuid.UUID, quantity decimal.Decimal) (*models.Product, []Requirement, error) {
	product, err := s.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, nil, err
	}
	if len(product.Recipe) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNoRecipe,
			fmt.Sprintf("product %q has no recipe defined and cannot be produced", product.Name))
	}

	requirements := make([]Requirement, 0, len(product.Recipe))
	for _, ingredient := range product.Recipe {
		if ingredient.RawMaterial == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeInternal,
				fmt.Sprintf("recipe ingredient %s has no material loaded", ingredient.ID))
		}
		requirements = append(requirements, Requirement{
			Material: *ingredient.RawMaterial,
			Quantity: ingredient.Quantity.Mul(quantity),
		})
	}
	return product, requirements, nil
}
