package production

import (
	"context"
	"testing"
	"time"

	"github.com/centavohq/centavo-backend/pkg/db/models"
	"github.com/centavohq/centavo-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRecord(t *testing.T, db *gorm.DB, tenantID, productID uuid.UUID, producedAt time.Time) models.ProductionRecord {
	t.Helper()
	record := models.ProductionRecord{
		TenantID:         tenantID,
		ProductID:        productID,
		QuantityProduced: decimal.RequireFromString("5"),
		TotalCost:        decimal.RequireFromString("12.50"),
		ProducedAt:       producedAt,
	}
	require.NoError(t, db.Create(&record).Error)
	return record
}

func TestRecordRepositoryListByTenant(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	tenantID := seedTenant(t, db)
	product := seedProduct(t, db, tenantID, "bread", nil)

	base := time.Now().UTC().Truncate(time.Second)
	oldest := seedRecord(t, db, tenantID, product.ID, base.Add(-2*time.Hour))
	middle := seedRecord(t, db, tenantID, product.ID, base.Add(-time.Hour))
	newest := seedRecord(t, db, tenantID, product.ID, base)

	page, err := repo.ListByTenant(ctx, tenantID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)
	require.NotNil(t, page[0].Product)
	assert.Equal(t, "bread", page[0].Product.Name)

	cursor := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: page[1].ProducedAt,
		ID:        page[1].ID,
	})
	rest, err := repo.ListByTenant(ctx, tenantID, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, oldest.ID, rest[0].ID)
}

func TestRecordRepositoryRejectsMalformedCursor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRecordRepository(db)

	_, err := repo.ListByTenant(context.Background(), uuid.New(), pagination.Params{Cursor: "%%%not-a-cursor"})
	require.Error(t, err)
}

func TestRecordRepositoryScopesByTenant(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	tenantID := seedTenant(t, db)
	product := seedProduct(t, db, tenantID, "bread", nil)
	seedRecord(t, db, tenantID, product.ID, time.Now().UTC())

	other, err := repo.ListByTenant(ctx, uuid.New(), pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, other)
}
