package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo-backend/api/responses"
	"github.com/centavohq/centavo-backend/api/validators"
	productsvc "github.com/centavohq/centavo-backend/internal/products"
	"github.com/centavohq/centavo-backend/pkg/db/models"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
	"github.com/centavohq/centavo-backend/pkg/logger"
)

type createProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Category    string           `json:"category,omitempty"`
	Description string           `json:"description,omitempty"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
}

type recipeIngredientRequest struct {
	RawMaterialID string          `json:"raw_material_id" validate:"required,uuid"`
	Quantity      decimal.Decimal `json:"quantity"`
}

type replaceRecipeRequest struct {
	Ingredients []recipeIngredientRequest `json:"ingredients"`
}

type recipeIngredientResponse struct {
	RawMaterialID string          `json:"raw_material_id"`
	MaterialName  string          `json:"material_name,omitempty"`
	UnitOfMeasure string          `json:"unit_of_measure,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
}

type productResponse struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Category    string                     `json:"category,omitempty"`
	Description string                     `json:"description,omitempty"`
	SalePrice   *decimal.Decimal           `json:"sale_price"`
	Stock       decimal.Decimal            `json:"stock"`
	Recipe      []recipeIngredientResponse `json:"recipe,omitempty"`
}

func toProductResponse(p *models.Product) productResponse {
	resp := productResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Stock:       p.Stock,
	}
	if p.SalePrice.Valid {
		price := p.SalePrice.Decimal
		resp.SalePrice = &price
	}
	for _, ingredient := range p.Recipe {
		item := recipeIngredientResponse{
			RawMaterialID: ingredient.RawMaterialID.String(),
			Quantity:      ingredient.Quantity,
		}
		if ingredient.RawMaterial != nil {
			item.MaterialName = ingredient.RawMaterial.Name
			item.UnitOfMeasure = ingredient.RawMaterial.UnitOfMeasure
		}
		resp.Recipe = append(resp.Recipe, item)
	}
	return resp
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), tenantID, productsvc.CreateProductInput{
			Name:        payload.Name,
			Category:    payload.Category,
			Description: payload.Description,
			SalePrice:   payload.SalePrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toProductResponse(product))
	}
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListProducts(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]productResponse, 0, len(products))
		for i := range products {
			items = append(items, toProductResponse(&products[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), tenantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductResponse(product))
	}
}

func ReplaceRecipe(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload replaceRecipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := make([]productsvc.RecipeIngredientInput, 0, len(payload.Ingredients))
		for _, item := range payload.Ingredients {
			materialID, err := uuid.Parse(item.RawMaterialID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid raw_material_id"))
				return
			}
			input = append(input, productsvc.RecipeIngredientInput{
				RawMaterialID: materialID,
				Quantity:      item.Quantity,
			})
		}

		product, err := svc.ReplaceRecipe(r.Context(), tenantID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductResponse(product))
	}
}
