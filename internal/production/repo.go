package production

import (
	"context"

	"github.com/centavohq/centavo-backend/pkg/db/models"
	"github.com/centavohq/centavo-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordRepository manages persistence for production records.
type RecordRepository interface {
	WithTx(tx *gorm.DB) RecordRepository
	Create(ctx context.Context, record *models.ProductionRecord) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.ProductionRecord, error)
}

type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository returns a record repository bound to the provided database.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) WithTx(tx *gorm.DB) RecordRepository {
	if tx == nil {
		return r
	}
	return &recordRepository{db: tx}
}

func (r *recordRepository) Create(ctx context.Context, record *models.ProductionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.ProductionRecord, error) {
	query := r.db.WithContext(ctx).
		Preload("Product").
		Where("tenant_id = ?", tenantID).
		Order("produced_at DESC, id DESC").
		Limit(pagination.NormalizeLimit(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(produced_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var records []models.ProductionRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
