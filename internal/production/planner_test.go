package production

import (
	"errors"
	"testing"
	"time"

	"github.com/centavohq/centavo-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func lot(qty, total, remaining string, daysAgo int) models.PurchaseLot {
	return models.PurchaseLot{
		ID:                uuid.New(),
		PurchaseDate:      time.Now().AddDate(0, 0, -daysAgo),
		Quantity:          decimal.RequireFromString(qty),
		TotalCost:         decimal.RequireFromString(total),
		QuantityRemaining: decimal.RequireFromString(remaining),
	}
}

func TestPlanConsumptionOldestFirst(t *testing.T) {
	t.Parallel()

	material := models.RawMaterial{ID: uuid.New(), Name: "flour"}
	// Oldest lot is half spent and costs $1/unit, the newer one $2/unit.
	lots := []models.PurchaseLot{
		lot("100", "100", "50", 30),
		lot("100", "200", "100", 10),
	}

	plan, err := PlanConsumption(material, decimal.RequireFromString("100"), lots)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(plan.Takes) != 2 {
		t.Fatalf("expected 2 takes, got %d", len(plan.Takes))
	}
	if !plan.Takes[0].Amount.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected 50 from oldest lot, got %s", plan.Takes[0].Amount)
	}
	if plan.Takes[0].Lot.ID != lots[0].ID {
		t.Fatal("expected oldest lot spent first")
	}
	if !plan.Takes[1].Amount.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected 50 from second lot, got %s", plan.Takes[1].Amount)
	}
	// 50 @ $1 + 50 @ $2.
	if !plan.Subtotal.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("expected subtotal 150, got %s", plan.Subtotal)
	}
}

func TestPlanConsumptionFullPrecisionCost(t *testing.T) {
	t.Parallel()

	material := models.RawMaterial{ID: uuid.New(), Name: "yeast"}
	// $10 for 3 units: the per-unit cost is non-terminating, but draining the
	// whole lot must still cost exactly $10.
	lots := []models.PurchaseLot{lot("3", "10", "3", 5)}

	plan, err := PlanConsumption(material, decimal.RequireFromString("3"), lots)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !plan.Subtotal.Round(2).Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected subtotal 10.00, got %s", plan.Subtotal)
	}
}

func TestPlanConsumptionSkipsExhaustedLots(t *testing.T) {
	t.Parallel()

	material := models.RawMaterial{ID: uuid.New(), Name: "sugar"}
	lots := []models.PurchaseLot{
		lot("10", "10", "0", 20),
		lot("10", "30", "10", 5),
	}

	plan, err := PlanConsumption(material, decimal.RequireFromString("4"), lots)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(plan.Takes) != 1 {
		t.Fatalf("expected 1 take, got %d", len(plan.Takes))
	}
	if plan.Takes[0].Lot.ID != lots[1].ID {
		t.Fatal("expected exhausted lot skipped")
	}
	if !plan.Subtotal.Equal(decimal.RequireFromString("12")) {
		t.Fatalf("expected subtotal 12, got %s", plan.Subtotal)
	}
}

func TestPlanConsumptionShortage(t *testing.T) {
	t.Parallel()

	material := models.RawMaterial{ID: uuid.New(), Name: "butter"}
	lots := []models.PurchaseLot{
		lot("5", "25", "2.5", 15),
		lot("5", "30", "1.5", 3),
	}

	_, err := PlanConsumption(material, decimal.RequireFromString("6"), lots)
	if err == nil {
		t.Fatal("expected shortage error")
	}
	var short *shortageError
	if !errors.As(err, &short) {
		t.Fatalf("unexpected error type: %v", err)
	}
	if short.detail.MaterialID != material.ID || short.detail.MaterialName != "butter" {
		t.Fatalf("unexpected shortage detail: %+v", short.detail)
	}
	if !short.detail.QuantityRequired.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("expected required 6, got %s", short.detail.QuantityRequired)
	}
	if !short.detail.QuantityAvailable.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected available 4, got %s", short.detail.QuantityAvailable)
	}
}

func TestPlanConsumptionDoesNotMutateLots(t *testing.T) {
	t.Parallel()

	material := models.RawMaterial{ID: uuid.New(), Name: "salt"}
	lots := []models.PurchaseLot{lot("10", "5", "10", 1)}

	if _, err := PlanConsumption(material, decimal.RequireFromString("4"), lots); err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !lots[0].QuantityRemaining.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("planner mutated lot remaining: %s", lots[0].QuantityRemaining)
	}
}

func TestPlanConsumptionZeroUnitCostLot(t *testing.T) {
	t.Parallel()

	material := models.RawMaterial{ID: uuid.New(), Name: "water"}
	lots := []models.PurchaseLot{lot("100", "0", "100", 2)}

	plan, err := PlanConsumption(material, decimal.RequireFromString("30"), lots)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !plan.Subtotal.IsZero() {
		t.Fatalf("expected zero subtotal, got %s", plan.Subtotal)
	}
}
