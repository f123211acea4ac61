package basket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foodbank/backend/internal/domain/basket"
	"github.com/foodbank/backend/internal/domain/catalog"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/domain/shared/strategy"
	"github.com/foodbank/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AssemblyMetrics records the outcome of basket runs
type AssemblyMetrics interface {
	RecordAssembled(ctx context.Context, basketQuantity int, duration time.Duration)
	RecordShortfall(ctx context.Context, basketQuantity int, missingFoods int)
	RecordConflict(ctx context.Context)
	RecordFailure(ctx context.Context)
}

// AssemblyConfig holds tuning for the assembly service
type AssemblyConfig struct {
	// MaxConflictRetries is how many times a run restarts from the load step
	// after losing a compare-and-set race
	MaxConflictRetries int
	// IdempotencyTTL is how long a completed idempotency key is remembered
	IdempotencyTTL time.Duration
}

// DefaultAssemblyConfig returns the default assembly configuration
func DefaultAssemblyConfig() AssemblyConfig {
	return AssemblyConfig{
		MaxConflictRetries: 1,
		IdempotencyTTL:     shared.DefaultIdempotencyConfig().TTL,
	}
}

// AssemblyService assembles basket batches from available stock
type AssemblyService struct {
	foodRepo       catalog.FoodRepository
	lotRepo        inventory.LotRepository
	batchRepo      basket.BatchRepository
	txScope        TransactionScope
	allocator      strategy.LotAllocationStrategy
	requestStore   shared.RequestStore
	eventPublisher shared.EventPublisher
	metrics        AssemblyMetrics
	logger         *zap.Logger
	config         AssemblyConfig
	now            func() time.Time
}

// NewAssemblyService creates a new AssemblyService
func NewAssemblyService(
	foodRepo catalog.FoodRepository,
	lotRepo inventory.LotRepository,
	batchRepo basket.BatchRepository,
	txScope TransactionScope,
	allocator strategy.LotAllocationStrategy,
	logger *zap.Logger,
	config AssemblyConfig,
) *AssemblyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxConflictRetries < 0 {
		config.MaxConflictRetries = 0
	}
	if config.IdempotencyTTL <= 0 {
		config.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	return &AssemblyService{
		foodRepo:  foodRepo,
		lotRepo:   lotRepo,
		batchRepo: batchRepo,
		txScope:   txScope,
		allocator: allocator,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// SetRequestStore enables idempotent submission
func (s *AssemblyService) SetRequestStore(store shared.RequestStore) {
	s.requestStore = store
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AssemblyService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *AssemblyService) SetMetrics(metrics AssemblyMetrics) {
	s.metrics = metrics
}

// PreviewAssembly reports whether current stock covers the given number of
// baskets, and how many baskets it could cover at most. Nothing is written.
func (s *AssemblyService) PreviewAssembly(ctx context.Context, quantity int) (*AvailabilityResponse, error) {
	check, err := s.checkStock(ctx, quantity)
	if err != nil {
		return nil, err
	}
	return ToAvailabilityResponse(check.report), nil
}

// AssembleBaskets produces a batch of baskets. Either every lot update and
// the batch record commit together, or nothing is written.
func (s *AssemblyService) AssembleBaskets(ctx context.Context, req AssembleBasketsRequest) (*AssemblyResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "basket_assembly", "assemble",
		telemetry.SpanAttrBasketQuantity, req.Quantity,
		telemetry.SpanAttrStrategy, s.allocator.Name(),
	)
	defer span.End()

	if req.Quantity <= 0 {
		return nil, catalog.ErrInvalidBasketQuantity
	}

	var (
		result *AssemblyResult
		err    error
	)
	if req.IdempotencyKey != "" && s.requestStore != nil {
		result, err = s.assembleOnce(ctx, req)
	} else {
		result, err = s.assemble(ctx, req)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, "basket.success", result.Success, "basket.replayed", result.Replayed)
	if result.Success {
		telemetry.SetAttributes(span, telemetry.SpanAttrBatchID, result.BatchID)
	}
	return result, nil
}

// assembleOnce wraps assemble with an idempotency key. A completed key
// replays the original batch; a pending key is rejected.
func (s *AssemblyService) assembleOnce(ctx context.Context, req AssembleBasketsRequest) (*AssemblyResult, error) {
	key := "basket-assembly:" + req.IdempotencyKey

	existing, err := s.requestStore.Claim(ctx, key, s.config.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if existing != nil {
		if existing.State == shared.RequestStateCompleted {
			s.logger.Info("Replaying completed basket assembly",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Int64("batch_id", existing.ResultID))
			return &AssemblyResult{Success: true, BatchID: existing.ResultID, Replayed: true}, nil
		}
		return nil, shared.ErrRequestInProgress
	}

	result, err := s.assemble(ctx, req)

	// the key must be settled even if the caller has gone away
	settleCtx := context.WithoutCancel(ctx)
	if err != nil || !result.Success {
		if relErr := s.requestStore.Release(settleCtx, key); relErr != nil {
			s.logger.Warn("Failed to release idempotency key",
				zap.String("idempotency_key", req.IdempotencyKey), zap.Error(relErr))
		}
		return result, err
	}
	if compErr := s.requestStore.Complete(settleCtx, key, result.BatchID, s.config.IdempotencyTTL); compErr != nil {
		s.logger.Warn("Failed to complete idempotency key",
			zap.String("idempotency_key", req.IdempotencyKey), zap.Error(compErr))
	}
	return result, nil
}

func (s *AssemblyService) assemble(ctx context.Context, req AssembleBasketsRequest) (*AssemblyResult, error) {
	started := s.now()
	attempts := s.config.MaxConflictRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, batch, err := s.attempt(ctx, req)
		if err == nil {
			if batch != nil {
				s.afterCommit(ctx, batch, started)
			}
			return result, nil
		}
		if !shared.IsConcurrencyConflict(err) {
			s.recordFailure(ctx)
			return nil, err
		}

		lastErr = err
		s.recordConflict(ctx)
		telemetry.AddEvent(trace.SpanFromContext(ctx), "stock_conflict", telemetry.SpanAttrAttempt, attempt)
		s.logger.Warn("Basket assembly lost a stock race",
			zap.Int("basket_quantity", req.Quantity),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err))
	}

	return nil, fmt.Errorf("basket assembly gave up after %d attempts: %w", attempts, lastErr)
}

// attempt runs one load-check-plan-apply cycle. A shortfall returns a
// result with no batch.
func (s *AssemblyService) attempt(ctx context.Context, req AssembleBasketsRequest) (*AssemblyResult, *basket.BasketBatch, error) {
	check, err := s.checkStock(ctx, req.Quantity)
	if err != nil {
		return nil, nil, err
	}

	if shortfalls := check.report.Shortfalls(); len(shortfalls) > 0 {
		if s.metrics != nil {
			s.metrics.RecordShortfall(ctx, req.Quantity, len(shortfalls))
		}
		s.logger.Info("Basket assembly rejected for insufficient stock",
			zap.Int("basket_quantity", req.Quantity),
			zap.Int("missing_foods", len(shortfalls)))
		return &AssemblyResult{Success: false, Missing: ToMissingFoods(shortfalls)}, nil, nil
	}

	plan, err := inventory.PlanAllocation(ctx, s.allocator, check.report.Demands(), check.snapshot, s.now())
	if err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			// the snapshot covered the demand a moment ago; treat as a lost race
			return nil, nil, shared.ErrConcurrencyConflict.WithMessage(err.Error())
		}
		return nil, nil, fmt.Errorf("plan allocation: %w", err)
	}

	batch, err := basket.NewBasketBatch(req.Quantity, req.CreatedBy, check.requirements, plan)
	if err != nil {
		return nil, nil, fmt.Errorf("build basket batch: %w", err)
	}

	// last point at which the caller may abandon the run
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	applyCtx := context.WithoutCancel(ctx)
	err = s.txScope.Execute(applyCtx, func(repos TransactionalRepositories) error {
		return s.apply(applyCtx, repos, plan, batch)
	})
	if err != nil {
		return nil, nil, err
	}

	return &AssemblyResult{Success: true, BatchID: batch.ID}, batch, nil
}

// apply writes the plan and the batch through the transactional repositories.
func (s *AssemblyService) apply(ctx context.Context, repos TransactionalRepositories, plan *inventory.AllocationPlan, batch *basket.BasketBatch) error {
	txCtx := context.WithoutCancel(ctx)

	for _, draw := range plan.Draws() {
		if err := repos.Lots().CompareAndUpdate(txCtx, draw.Update()); err != nil {
			if shared.IsConcurrencyConflict(err) {
				return err
			}
			return fmt.Errorf("update lot %d: %w", draw.LotID, err)
		}
	}

	if err := repos.Batches().InsertBatch(txCtx, batch); err != nil {
		return fmt.Errorf("insert basket batch: %w", err)
	}
	batch.Recorded(batch.ID)

	if err := repos.Batches().InsertItems(txCtx, batch.Items); err != nil {
		return fmt.Errorf("insert basket items: %w", err)
	}
	return nil
}

func (s *AssemblyService) afterCommit(ctx context.Context, batch *basket.BasketBatch, started time.Time) {
	s.logger.Info("Basket batch assembled",
		zap.Int64("batch_id", batch.ID),
		zap.Int("basket_quantity", batch.BasketQuantity),
		zap.Int("items", len(batch.Items)),
		zap.String("strategy", s.allocator.Name()))

	if s.metrics != nil {
		s.metrics.RecordAssembled(ctx, batch.BasketQuantity, s.now().Sub(started))
	}

	if s.eventPublisher != nil {
		events := batch.GetDomainEvents()
		if len(events) > 0 {
			// the batch is committed; a failed notification must not undo it
			if err := s.eventPublisher.Publish(context.WithoutCancel(ctx), events...); err != nil {
				s.logger.Error("Failed to publish basket events",
					zap.Int64("batch_id", batch.ID), zap.Error(err))
			}
		}
	}
	batch.ClearDomainEvents()
}

func (s *AssemblyService) recordConflict(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.RecordConflict(ctx)
	}
}

func (s *AssemblyService) recordFailure(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.RecordFailure(ctx)
	}
}

type stockCheck struct {
	requirements []catalog.Requirement
	snapshot     inventory.StockSnapshot
	report       basket.AvailabilityReport
}

// checkStock loads the basket catalog and the AVAILABLE lots it draws from
// and compares them.
func (s *AssemblyService) checkStock(ctx context.Context, quantity int) (*stockCheck, error) {
	foods, err := s.foodRepo.FindBasketFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load basket foods: %w", err)
	}

	reqs, err := catalog.CalculateRequirements(foods, quantity)
	if err != nil {
		return nil, err
	}

	var lots []inventory.Lot
	if len(reqs) > 0 {
		lots, err = s.lotRepo.FindAvailableByFoods(ctx, catalog.FoodIDs(reqs))
		if err != nil {
			return nil, fmt.Errorf("load available lots: %w", err)
		}
	}

	snapshot := inventory.NewStockSnapshot(lots)
	return &stockCheck{
		requirements: reqs,
		snapshot:     snapshot,
		report:       basket.CheckAvailability(quantity, reqs, snapshot),
	}, nil
}

// GetBatch returns a recorded batch with its items
func (s *AssemblyService) GetBatch(ctx context.Context, id int64) (*BasketBatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBasketBatchResponse(batch)
	return &resp, nil
}

// ListBatches returns recorded batches, newest first
func (s *AssemblyService) ListBatches(ctx context.Context, filter BatchListFilter) (*shared.Paginated[BasketBatchResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	batches, total, err := s.batchRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]BasketBatchResponse, len(batches))
	for i := range batches {
		items[i] = ToBasketBatchResponse(&batches[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}
