package production

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/centavohq/centavo-backend/pkg/db/models"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openPostgres connects to the database named by CENTAVO_TEST_DB_DSN, or skips.
// Row-level locking semantics only exist on postgres, so the contention tests
// cannot run on the in-memory sqlite databases the rest of the suite uses.
func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("CENTAVO_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("CENTAVO_TEST_DB_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.RawMaterial{},
		&models.PurchaseLot{},
		&models.Product{},
		&models.RecipeIngredient{},
		&models.ProductionRecord{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func cleanupTenant(t *testing.T, db *gorm.DB, tenantID uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		db.Where("tenant_id = ?", tenantID).Delete(&models.ProductionRecord{})
		db.Exec("DELETE FROM recipe_ingredients WHERE product_id IN (SELECT id FROM products WHERE tenant_id = ?)", tenantID)
		db.Where("tenant_id = ?", tenantID).Delete(&models.Product{})
		db.Where("tenant_id = ?", tenantID).Delete(&models.PurchaseLot{})
		db.Where("tenant_id = ?", tenantID).Delete(&models.RawMaterial{})
		db.Where("id = ?", tenantID).Delete(&models.Tenant{})
	})
}

// Two simultaneous runs compete for the last units of one material. The row
// locks serialize them: the loser observes the winner's committed deductions
// and reports a shortage instead of double-spending the lots.
func TestProduceConcurrentRunsDoNotDoubleSpend(t *testing.T) {
	db := openPostgres(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	tenantID := seedTenant(t, db)
	cleanupTenant(t, db, tenantID)
	material := seedMaterial(t, db, tenantID, "resin")
	lot := seedLot(t, db, tenantID, material.ID, "10", "40", "10", 3)
	product := seedProduct(t, db, tenantID, "casting", []models.RecipeIngredient{
		{RawMaterialID: material.ID, Quantity: decimal.RequireFromString("1")},
	})

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Produce(ctx, tenantID, uuid.Nil, ProduceInput{
				ProductID: product.ID,
				Quantity:  decimal.RequireFromString("6"),
			})
		}(i)
	}
	wg.Wait()

	var succeeded, short int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
				t.Fatalf("unexpected error: %v", err)
			}
			short++
		}
	}
	if succeeded != 1 || short != 1 {
		t.Fatalf("expected one success and one shortage, got %d/%d", succeeded, short)
	}

	if got := loadLot(t, db, lot.ID).QuantityRemaining; !got.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected 4 remaining, got %s", got)
	}
	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if !reloaded.Stock.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("expected stock 6, got %s", reloaded.Stock)
	}
	var recordCount int64
	if err := db.Model(&models.ProductionRecord{}).
		Where("tenant_id = ?", tenantID).
		Count(&recordCount).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if recordCount != 1 {
		t.Fatalf("expected exactly one record, got %d", recordCount)
	}
}

// Runs over disjoint materials must not contend at all; both commit.
func TestProduceConcurrentDisjointMaterials(t *testing.T) {
	db := openPostgres(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	tenantID := seedTenant(t, db)
	cleanupTenant(t, db, tenantID)

	makeProduct := func(materialName, productName string) models.Product {
		material := seedMaterial(t, db, tenantID, materialName)
		seedLot(t, db, tenantID, material.ID, "100", "100", "100", 3)
		return seedProduct(t, db, tenantID, productName, []models.RecipeIngredient{
			{RawMaterialID: material.ID, Quantity: decimal.RequireFromString("1")},
		})
	}
	first := makeProduct("steel", "bracket")
	second := makeProduct("alloy", "hinge")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, product := range []models.Product{first, second} {
		wg.Add(1)
		go func(i int, productID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.Produce(ctx, tenantID, uuid.Nil, ProduceInput{
				ProductID: productID,
				Quantity:  decimal.RequireFromString("5"),
			})
		}(i, product.ID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}

	var recordCount int64
	if err := db.Model(&models.ProductionRecord{}).
		Where("tenant_id = ?", tenantID).
		Count(&recordCount).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if recordCount != 2 {
		t.Fatalf("expected 2 records, got %d", recordCount)
	}
}
