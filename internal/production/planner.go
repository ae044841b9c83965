package production

import (
	"fmt"

	"github.com/centavohq/centavo-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotTake is one planned deduction: take Amount from Lot.
type LotTake struct {
	Lot    *models.PurchaseLot
	Amount decimal.Decimal
}

// ConsumptionPlan captures how one material requirement will be spent across
// lots, oldest first, and what that consumption costs at full precision.
type ConsumptionPlan struct {
	MaterialID uuid.UUID
	Takes      []LotTake
	Subtotal   decimal.Decimal
}

// ShortageDetail describes one deficient material in an insufficient-stock
// report. Every short material of a run is reported, not just the first.
type ShortageDetail struct {
	MaterialID        uuid.UUID       `json:"material_id"`
	MaterialName      string          `json:"material_name"`
	QuantityRequired  decimal.Decimal `json:"quantity_required"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
}

type shortageError struct {
	detail ShortageDetail
}

func (e *shortageError) Error() string {
	return fmt.Sprintf("insufficient stock of %q: required %s, available %s",
		e.detail.MaterialName, e.detail.QuantityRequired, e.detail.QuantityAvailable)
}

// PlanConsumption walks the locked lot set oldest-first and decides how much
// to take from each lot to satisfy the requirement. It commits nothing; the
// caller applies the plan only once every material of the run has one.
func PlanConsumption(material models.RawMaterial, required decimal.Decimal, lots []models.PurchaseLot) (*ConsumptionPlan, error) {
	available := decimal.Zero
	for _, lot := range lots {
		available = available.Add(lot.QuantityRemaining)
	}
	if available.LessThan(required) {
		return nil, &shortageError{detail: ShortageDetail{
			MaterialID:        material.ID,
			MaterialName:      material.Name,
			QuantityRequired:  required,
			QuantityAvailable: available,
		}}
	}

	plan := &ConsumptionPlan{
		MaterialID: material.ID,
		Subtotal:   decimal.Zero,
	}
	remaining := required
	for i := range lots {
		if !remaining.IsPositive() {
			break
		}
		lot := &lots[i]
		if !lot.QuantityRemaining.IsPositive() {
			continue
		}

		take := decimal.Min(remaining, lot.QuantityRemaining)
		plan.Takes = append(plan.Takes, LotTake{Lot: lot, Amount: take})
		plan.Subtotal = plan.Subtotal.Add(take.Mul(lot.UnitCost()))
		remaining = remaining.Sub(take)
	}
	return plan, nil
}
