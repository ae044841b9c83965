package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo-backend/api/responses"
	"github.com/centavohq/centavo-backend/api/validators"
	productionsvc "github.com/centavohq/centavo-backend/internal/production"
	"github.com/centavohq/centavo-backend/pkg/db/models"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
	"github.com/centavohq/centavo-backend/pkg/logger"
	"github.com/centavohq/centavo-backend/pkg/pagination"
)

type produceRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type productionRecordResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name,omitempty"`
	QuantityProduced decimal.Decimal `json:"quantity_produced"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	ProducedAt       string          `json:"produced_at"`
}

type productionListResponse struct {
	Items      []productionRecordResponse `json:"items"`
	NextCursor string                     `json:"next_cursor,omitempty"`
}

func toProductionRecordResponse(record *models.ProductionRecord, productName string) productionRecordResponse {
	resp := productionRecordResponse{
		ID:               record.ID.String(),
		ProductID:        record.ProductID.String(),
		ProductName:      productName,
		QuantityProduced: record.QuantityProduced,
		TotalCost:        record.TotalCost,
		ProducedAt:       record.ProducedAt.UTC().Format(time.RFC3339),
	}
	if resp.ProductName == "" && record.Product != nil {
		resp.ProductName = record.Product.Name
	}
	return resp
}

// Produce runs one production batch for the authenticated tenant.
func Produce(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, userID, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload produceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id"))
			return
		}

		result, err := svc.Produce(r.Context(), tenantID, userID, productionsvc.ProduceInput{
			ProductID: productID,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated,
			toProductionRecordResponse(result.Record, result.ProductName))
	}
}

// ListProduction returns the tenant's production history, newest first.
func ListProduction(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListRecords(r.Context(), tenantID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := productionListResponse{
			Items: make([]productionRecordResponse, 0, len(records)),
		}
		for i := range records {
			resp.Items = append(resp.Items, toProductionRecordResponse(&records[i], ""))
		}
		if len(records) == limit {
			last := records[len(records)-1]
			resp.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.ProducedAt,
				ID:        last.ID,
			})
		}
		responses.WriteSuccess(w, resp)
	}
}
