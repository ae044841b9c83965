package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/centavohq/centavo-backend/pkg/db/models"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.RawMaterial{},
		&models.PurchaseLot{},
		&models.Product{},
		&models.RecipeIngredient{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedMaterial(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) models.RawMaterial {
	t.Helper()
	material := models.RawMaterial{TenantID: tenantID, Name: name, UnitOfMeasure: "kg"}
	if err := db.Create(&material).Error; err != nil {
		t.Fatalf("seed material: %v", err)
	}
	return material
}

func seedLot(t *testing.T, db *gorm.DB, tenantID, materialID uuid.UUID, qty, remaining string, daysAgo int) models.PurchaseLot {
	t.Helper()
	lot := models.PurchaseLot{
		TenantID:          tenantID,
		RawMaterialID:     materialID,
		PurchaseDate:      time.Now().AddDate(0, 0, -daysAgo),
		Quantity:          decimal.RequireFromString(qty),
		TotalCost:         decimal.RequireFromString(qty),
		QuantityRemaining: decimal.RequireFromString(remaining),
	}
	if err := db.Create(&lot).Error; err != nil {
		t.Fatalf("seed lot: %v", err)
	}
	return lot
}

func TestLockOpenLotsOrderAndFilter(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLotLedger(db)
	ctx := context.Background()

	tenantID := uuid.New()
	material := seedMaterial(t, db, tenantID, "flour")

	exhausted := seedLot(t, db, tenantID, material.ID, "10", "0", 40)
	newest := seedLot(t, db, tenantID, material.ID, "10", "10", 1)
	oldest := seedLot(t, db, tenantID, material.ID, "10", "5", 30)
	middle := seedLot(t, db, tenantID, material.ID, "10", "2", 15)

	// Same material name under another tenant must stay invisible.
	otherTenant := uuid.New()
	otherMaterial := seedMaterial(t, db, otherTenant, "flour")
	seedLot(t, db, otherTenant, otherMaterial.ID, "10", "10", 5)

	lots, err := ledger.LockOpenLots(ctx, tenantID, material.ID)
	if err != nil {
		t.Fatalf("lock open lots: %v", err)
	}
	if len(lots) != 3 {
		t.Fatalf("expected 3 open lots, got %d", len(lots))
	}
	want := []uuid.UUID{oldest.ID, middle.ID, newest.ID}
	for i, lot := range lots {
		if lot.ID != want[i] {
			t.Fatalf("lot %d out of order: got %s", i, lot.ID)
		}
		if lot.ID == exhausted.ID {
			t.Fatal("exhausted lot returned")
		}
	}
}

func TestApplyDeduction(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLotLedger(db)
	ctx := context.Background()

	tenantID := uuid.New()
	material := seedMaterial(t, db, tenantID, "sugar")
	lot := seedLot(t, db, tenantID, material.ID, "10", "10", 5)

	if err := ledger.ApplyDeduction(ctx, &lot, decimal.RequireFromString("3.5")); err != nil {
		t.Fatalf("apply deduction: %v", err)
	}
	if !lot.QuantityRemaining.Equal(decimal.RequireFromString("6.5")) {
		t.Fatalf("expected in-memory remaining 6.5, got %s", lot.QuantityRemaining)
	}

	var stored models.PurchaseLot
	if err := db.First(&stored, "id = ?", lot.ID).Error; err != nil {
		t.Fatalf("load lot: %v", err)
	}
	if !stored.QuantityRemaining.Equal(decimal.RequireFromString("6.5")) {
		t.Fatalf("expected stored remaining 6.5, got %s", stored.QuantityRemaining)
	}
}

func TestApplyDeductionInvariantViolations(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLotLedger(db)
	ctx := context.Background()

	tenantID := uuid.New()
	material := seedMaterial(t, db, tenantID, "salt")
	lot := seedLot(t, db, tenantID, material.ID, "10", "2", 5)

	cases := []struct {
		name   string
		lot    *models.PurchaseLot
		amount string
	}{
		{"nil lot", nil, "1"},
		{"zero amount", &lot, "0"},
		{"negative amount", &lot, "-1"},
		{"exceeds remaining", &lot, "2.01"},
	}
	for _, tc := range cases {
		err := ledger.ApplyDeduction(ctx, tc.lot, decimal.RequireFromString(tc.amount))
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeInternal {
			t.Fatalf("%s: expected internal error, got %v", tc.name, err)
		}
	}

	// Failed deductions must not touch the row.
	var stored models.PurchaseLot
	if err := db.First(&stored, "id = ?", lot.ID).Error; err != nil {
		t.Fatalf("load lot: %v", err)
	}
	if !stored.QuantityRemaining.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected remaining unchanged at 2, got %s", stored.QuantityRemaining)
	}
}

func TestIsReferenced(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewMaterialRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	unused := seedMaterial(t, db, tenantID, "unused")
	inLots := seedMaterial(t, db, tenantID, "in-lots")
	seedLot(t, db, tenantID, inLots.ID, "10", "10", 5)
	inRecipe := seedMaterial(t, db, tenantID, "in-recipe")
	product := models.Product{TenantID: tenantID, Name: "widget", Stock: decimal.Zero}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	ingredient := models.RecipeIngredient{
		ProductID:     product.ID,
		RawMaterialID: inRecipe.ID,
		Quantity:      decimal.RequireFromString("1"),
	}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}

	for _, tc := range []struct {
		material models.RawMaterial
		want     bool
	}{
		{unused, false},
		{inLots, true},
		{inRecipe, true},
	} {
		got, err := repo.IsReferenced(ctx, tc.material.ID)
		if err != nil {
			t.Fatalf("is referenced %s: %v", tc.material.Name, err)
		}
		if got != tc.want {
			t.Fatalf("material %s: expected referenced=%v", tc.material.Name, tc.want)
		}
	}
}
