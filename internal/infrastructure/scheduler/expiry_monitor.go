package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	appbasket "github.com/foodbank/backend/internal/application/basket"
	appinventory "github.com/foodbank/backend/internal/application/inventory"
	"github.com/foodbank/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

// ExpiringLotsLister lists lots that have expired or will expire soon
type ExpiringLotsLister interface {
	ListExpiringLots(ctx context.Context, window inventory.ExpiryWindow) (*appinventory.ExpiringLotsResponse, error)
}

// LowStockChecker reports basket foods that can supply few baskets
type LowStockChecker interface {
	LowStock(ctx context.Context, foodIDs []int64) ([]appbasket.LowStockAlert, error)
}

// ExpiryMonitorConfig holds configuration for the expiry monitor
type ExpiryMonitorConfig struct {
	Enabled  bool
	Interval time.Duration
	Window   inventory.ExpiryWindow
	Timeout  time.Duration
}

// DefaultExpiryMonitorConfig returns default configuration
func DefaultExpiryMonitorConfig() ExpiryMonitorConfig {
	return ExpiryMonitorConfig{
		Enabled:  true,
		Interval: 6 * time.Hour,
		Window:   inventory.ExpiryWindow7Days,
		Timeout:  2 * time.Minute,
	}
}

// ExpiryMonitor periodically logs lots that are expired or about to expire
// so volunteers can use or discard them, and sweeps basket foods for low stock
type ExpiryMonitor struct {
	lister   ExpiringLotsLister
	lowStock LowStockChecker
	notifier appbasket.LowStockNotifier
	logger   *zap.Logger
	config   ExpiryMonitorConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewExpiryMonitor creates a new expiry monitor
func NewExpiryMonitor(lister ExpiringLotsLister, logger *zap.Logger, config ExpiryMonitorConfig) (*ExpiryMonitor, error) {
	if config.Enabled && config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultExpiryMonitorConfig().Timeout
	}
	return &ExpiryMonitor{
		lister: lister,
		logger: logger,
		config: config,
	}, nil
}

// WithLowStockSweep adds a low stock sweep of every basket food to each run.
// notifier may be nil.
func (m *ExpiryMonitor) WithLowStockSweep(checker LowStockChecker, notifier appbasket.LowStockNotifier) *ExpiryMonitor {
	m.lowStock = checker
	m.notifier = notifier
	return m
}

// Start runs a check immediately and then once per interval
func (m *ExpiryMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return nil
	}
	if !m.config.Enabled {
		m.mu.Unlock()
		m.logger.Info("Expiry monitor is disabled")
		return nil
	}
	m.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go m.loop(ctx)

	m.logger.Info("Expiry monitor started",
		zap.Duration("interval", m.config.Interval),
		zap.String("window", string(m.config.Window)),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run until ctx is done
func (m *ExpiryMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = false
	m.cancel()
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Expiry monitor stopped gracefully")
		return nil
	case <-ctx.Done():
		m.logger.Warn("Expiry monitor stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the monitor is running
func (m *ExpiryMonitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

// TriggerImmediateCheck runs one check in the background
func (m *ExpiryMonitor) TriggerImmediateCheck(ctx context.Context) error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.RunOnce(ctx)
	}()
	return nil
}

func (m *ExpiryMonitor) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	m.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

// RunOnce performs one expiry check and, when configured, one low stock sweep
func (m *ExpiryMonitor) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	m.checkExpiry(runCtx)
	if m.lowStock != nil {
		m.sweepLowStock(runCtx)
	}
}

func (m *ExpiryMonitor) checkExpiry(ctx context.Context) {
	started := time.Now()
	result, err := m.lister.ListExpiringLots(ctx, m.config.Window)
	if err != nil {
		m.logger.Error("Expiry check failed", zap.Duration("duration", time.Since(started)), zap.Error(err))
		return
	}

	for _, lot := range result.Expired {
		m.logger.Warn("Lot expired while available",
			zap.Int64("lot_id", lot.LotID),
			zap.String("food", lot.FoodName),
			zap.String("quantity", lot.Quantity.String()),
			zap.Time("expiry_date", lot.ExpiryDate),
		)
	}
	for _, lot := range result.Expiring {
		m.logger.Info("Lot expiring soon",
			zap.Int64("lot_id", lot.LotID),
			zap.String("food", lot.FoodName),
			zap.String("quantity", lot.Quantity.String()),
			zap.Int("days_until_expiry", lot.DaysUntilExpiry),
		)
	}

	m.logger.Info("Expiry check completed",
		zap.Duration("duration", time.Since(started)),
		zap.Int("expired", len(result.Expired)),
		zap.Int("expiring", len(result.Expiring)),
		zap.Time("cutoff", result.Cutoff),
	)
}

func (m *ExpiryMonitor) sweepLowStock(ctx context.Context) {
	alerts, err := m.lowStock.LowStock(ctx, nil)
	if err != nil {
		m.logger.Error("Low stock sweep failed", zap.Error(err))
		return
	}
	if m.notifier != nil {
		if err := m.notifier.NotifyLowStock(ctx, alerts); err != nil {
			m.logger.Error("Low stock notification failed", zap.Error(err))
		}
	}
	m.logger.Info("Low stock sweep completed", zap.Int("low_foods", len(alerts)))
}
