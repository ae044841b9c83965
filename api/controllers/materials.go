package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo-backend/api/responses"
	"github.com/centavohq/centavo-backend/api/validators"
	"github.com/centavohq/centavo-backend/internal/inventory"
	"github.com/centavohq/centavo-backend/pkg/db/models"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
	"github.com/centavohq/centavo-backend/pkg/logger"
	"github.com/centavohq/centavo-backend/pkg/pagination"
)

const purchaseDateLayout = "2006-01-02"

type createMaterialRequest struct {
	Name          string `json:"name" validate:"required"`
	UnitOfMeasure string `json:"unit_of_measure" validate:"required"`
	Description   string `json:"description,omitempty"`
}

type materialResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	UnitOfMeasure string `json:"unit_of_measure"`
	Description   string `json:"description,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toMaterialResponse(m *models.RawMaterial) materialResponse {
	return materialResponse{
		ID:            m.ID.String(),
		Name:          m.Name,
		UnitOfMeasure: m.UnitOfMeasure,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type createLotRequest struct {
	PurchaseDate string          `json:"purchase_date" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

type lotResponse struct {
	ID                string          `json:"id"`
	RawMaterialID     string          `json:"raw_material_id"`
	PurchaseDate      string          `json:"purchase_date"`
	Quantity          decimal.Decimal `json:"quantity"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
}

func toLotResponse(l *models.PurchaseLot) lotResponse {
	return lotResponse{
		ID:                l.ID.String(),
		RawMaterialID:     l.RawMaterialID.String(),
		PurchaseDate:      l.PurchaseDate.Format(purchaseDateLayout),
		Quantity:          l.Quantity,
		TotalCost:         l.TotalCost,
		QuantityRemaining: l.QuantityRemaining,
	}
}

func CreateMaterial(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createMaterialRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		material, err := svc.CreateMaterial(r.Context(), tenantID, inventory.CreateMaterialInput{
			Name:          payload.Name,
			UnitOfMeasure: payload.UnitOfMeasure,
			Description:   payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toMaterialResponse(material))
	}
}

func ListMaterials(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		materials, err := svc.ListMaterials(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]materialResponse, 0, len(materials))
		for i := range materials {
			items = append(items, toMaterialResponse(&materials[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

func GetMaterial(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		materialID, err := parseUUIDParam(r, "materialID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		material, err := svc.GetMaterial(r.Context(), tenantID, materialID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toMaterialResponse(material))
	}
}

func DeleteMaterial(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		materialID, err := parseUUIDParam(r, "materialID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteMaterial(r.Context(), tenantID, materialID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func CreateLot(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		materialID, err := parseUUIDParam(r, "materialID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createLotRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseDate, err := time.Parse(purchaseDateLayout, payload.PurchaseDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "purchase_date must be YYYY-MM-DD"))
			return
		}

		lot, err := svc.CreateLot(r.Context(), tenantID, inventory.CreateLotInput{
			RawMaterialID: materialID,
			PurchaseDate:  purchaseDate,
			Quantity:      payload.Quantity,
			TotalCost:     payload.TotalCost,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toLotResponse(lot))
	}
}

func ListLots(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		materialID, err := parseUUIDParam(r, "materialID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lots, err := svc.ListLots(r.Context(), tenantID, materialID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]lotResponse, 0, len(lots))
		for i := range lots {
			items = append(items, toLotResponse(&lots[i]))
		}
		responses.WriteSuccess(w, items)
	}
}
