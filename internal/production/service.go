package production

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/centavohq/centavo-backend/internal/inventory"
	"github.com/centavohq/centavo-backend/internal/products"
	"github.com/centavohq/centavo-backend/pkg/db/models"
	pkgerrors "github.com/centavohq/centavo-backend/pkg/errors"
	"github.com/centavohq/centavo-backend/pkg/logger"
	"github.com/centavohq/centavo-backend/pkg/metrics"
	"github.com/centavohq/centavo-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service runs production batches: resolve the recipe, lock the lots, plan
// FIFO consumption, and commit every effect or none of them.
type Service interface {
	Produce(ctx context.Context, tenantID, userID uuid.UUID, input ProduceInput) (*Result, error)
	ListRecords(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.ProductionRecord, error)
}

// ProduceInput is the request to manufacture Quantity units of a product.
type ProduceInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// Result is the success payload of one production run.
type Result struct {
	Record      *models.ProductionRecord
	ProductName string
}

// ServiceParams collects the coordinator's explicit dependencies.
type ServiceParams struct {
	DB          *gorm.DB
	Resolver    products.Resolver
	Products    products.Repository
	Ledger      inventory.LotLedger
	Records     RecordRepository
	Metrics     *metrics.ProductionMetrics
	Logger      *logger.Logger
	Clock       func() time.Time
	LockTimeout time.Duration
}

type service struct {
	db          *gorm.DB
	resolver    products.Resolver
	products    products.Repository
	ledger      inventory.LotLedger
	records     RecordRepository
	metrics     *metrics.ProductionMetrics
	logg        *logger.Logger
	clock       func() time.Time
	lockTimeout time.Duration
}

// NewService wires the production coordinator.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("recipe resolver required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("lot ledger required")
	}
	if params.Records == nil {
		return nil, fmt.Errorf("record repository required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		db:          params.DB,
		resolver:    params.Resolver,
		products:    params.Products,
		ledger:      params.Ledger,
		records:     params.Records,
		metrics:     params.Metrics,
		logg:        params.Logger,
		clock:       clock,
		lockTimeout: params.LockTimeout,
	}, nil
}

// Produce executes one production run as a single serializable unit of work.
// Either every lot deduction, the product stock increase and the production
// record all commit, or nothing does.
func (s *service) Produce(ctx context.Context, tenantID, userID uuid.UUID, input ProduceInput) (*Result, error) {
	start := s.clock()

	result, err := s.produce(ctx, tenantID, userID, input)
	if err != nil {
		err = s.classify(err)
	}

	s.observe(ctx, start, input, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) produce(ctx context.Context, tenantID, userID uuid.UUID, input ProduceInput) (*Result, error) {
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}

	var result *Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applyLockTimeout(tx); err != nil {
			return err
		}

		product, requirements, err := s.resolver.WithTx(tx).ResolveRequirements(ctx, tenantID, input.ProductID, input.Quantity)
		if err != nil {
			return err
		}

		// Lock materials in ascending material-id order so two runs sharing
		// materials always acquire locks in the same sequence and cannot
		// deadlock each other.
		sort.Slice(requirements, func(i, j int) bool {
			a, b := requirements[i].Material.ID, requirements[j].Material.ID
			return bytes.Compare(a[:], b[:]) < 0
		})

		ledger := s.ledger.WithTx(tx)

		var (
			plans     []*ConsumptionPlan
			shortages []ShortageDetail
			causes    error
		)
		for _, req := range requirements {
			lots, err := ledger.LockOpenLots(ctx, tenantID, req.Material.ID)
			if err != nil {
				return err
			}
			plan, err := PlanConsumption(req.Material, req.Quantity, lots)
			if err != nil {
				var short *shortageError
				if errors.As(err, &short) {
					shortages = append(shortages, short.detail)
					causes = multierr.Append(causes, err)
					continue
				}
				return err
			}
			plans = append(plans, plan)
		}

		if len(shortages) > 0 {
			return pkgerrors.Wrap(pkgerrors.CodeInsufficientStock, causes,
				fmt.Sprintf("insufficient stock for %d material(s)", len(shortages))).
				WithDetails(shortages)
		}

		total := decimal.Zero
		for _, plan := range plans {
			for _, take := range plan.Takes {
				if err := ledger.ApplyDeduction(ctx, take.Lot, take.Amount); err != nil {
					return err
				}
			}
			total = total.Add(plan.Subtotal)
		}

		if err := s.products.WithTx(tx).IncrementStock(ctx, product.ID, input.Quantity); err != nil {
			return err
		}

		record := &models.ProductionRecord{
			TenantID:         tenantID,
			ProductID:        product.ID,
			QuantityProduced: input.Quantity,
			// Round once, on the summed total only.
			TotalCost:  total.Round(2),
			ProducedAt: s.clock(),
		}
		if userID != uuid.Nil {
			record.UserID = &userID
		}
		if err := s.records.WithTx(tx).Create(ctx, record); err != nil {
			return err
		}

		result = &Result{Record: record, ProductName: product.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListRecords(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.ProductionRecord, error) {
	return s.records.ListByTenant(ctx, tenantID, params)
}

// applyLockTimeout bounds lock waits for this transaction only.
func (s *service) applyLockTimeout(tx *gorm.DB) error {
	if s.lockTimeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())).Error
}

// classify converts storage-level lock failures into the retryable dependency
// code. Typed business errors pass through untouched.
func (s *service) classify(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	if pkgerrors.IsLockFailure(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			"lot lock contention, retry the production run")
	}
	return err
}

func (s *service) observe(ctx context.Context, start time.Time, input ProduceInput, err error) {
	elapsed := s.clock().Sub(start)

	if err == nil {
		s.metrics.IncSuccess()
		s.metrics.ObserveDuration("success", elapsed)
		if s.logg != nil {
			ctx = s.logg.WithFields(ctx, map[string]any{
				"product_id": input.ProductID.String(),
				"quantity":   input.Quantity.String(),
			})
			s.logg.Info(ctx, "production run committed")
		}
		return
	}

	kind := string(pkgerrors.CodeInternal)
	if typed := pkgerrors.As(err); typed != nil {
		kind = string(typed.Code())
	}
	s.metrics.IncFailure(kind)
	s.metrics.ObserveDuration("failure", elapsed)
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"product_id": input.ProductID.String(),
			"quantity":   input.Quantity.String(),
			"error_kind": kind,
		})
		s.logg.Warn(ctx, "production run aborted")
	}
}

// validateQuantity enforces a positive quantity with at most two fraction
// digits, matching the precision of the stock columns. The check compares
// values, so trailing zeros ("5.000") stay valid.
func validateQuantity(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity to produce must be positive")
	}
	if !quantity.Equal(quantity.Truncate(2)) {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity supports at most 2 decimal places")
	}
	return nil
}
