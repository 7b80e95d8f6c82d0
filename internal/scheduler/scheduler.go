package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/quotient/internal/clock"
	"github.com/smallbiznis/quotient/internal/config"
	obsmetrics "github.com/smallbiznis/quotient/internal/observability/metrics"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	"github.com/smallbiznis/quotient/internal/pushmetrics"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
	transferdomain "github.com/smallbiznis/quotient/internal/transfer/domain"
)

var ErrInvalidConfig = errors.New("invalid_config")

const (
	jobAutoTransfer = "auto_transfer"

	keyStoreSweepLock = "transfer:sweep:lock:%s"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	TransferCfg *config.TransferConfigHolder
	StoreSvc    storedomain.Service
	OrderSvc    ordersourcedomain.Service
	TransferSvc transferdomain.Service

	GenID  *snowflake.Node
	Clock  clock.Clock
	Locker *Locker
	Pusher pushmetrics.Pusher `optional:"true"`
	Config Config             `optional:"true"`
}

type storeLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// Scheduler periodically runs the batch transfer for every active store.
// It only finds work; all idempotency lives in the transfer ledger, so a
// sweep that overlaps a manual transfer never writes a second quotation.
type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	genID       *snowflake.Node
	clock       clock.Clock
	transferCfg *config.TransferConfigHolder
	storeSvc    storedomain.Service
	orderSvc    ordersourcedomain.Service
	transferSvc transferdomain.Service
	locks       storeLocker
	pusher      pushmetrics.Pusher
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.TransferCfg == nil || p.StoreSvc == nil || p.OrderSvc == nil || p.TransferSvc == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	s := &Scheduler{
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         cfg,
		genID:       p.GenID,
		clock:       p.Clock,
		transferCfg: p.TransferCfg,
		storeSvc:    p.StoreSvc,
		orderSvc:    p.OrderSvc,
		transferSvc: p.TransferSvc,
		pusher:      p.Pusher,
	}
	// A nil *Locker means redis is not configured; leave the interface nil
	// so lock checks short-circuit.
	if p.Locker != nil {
		s.locks = p.Locker
	}
	return s, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(
		zap.String("job", name),
		zap.String("run_id", s.genID.Generate().String()),
	)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)
	log.Info("job started")

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		log.Info("job finished")
		return nil
	}

	// treat deadline as soft-timeout
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, jobAutoTransfer, s.cfg.SweepTimeout, s.SweepJob)
}

// RunForever polls the watched transfer config and fires a sweep whenever
// auto transfer is enabled and its interval has elapsed. Disabling the flag
// stops future sweeps without restarting the process.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	schedMetrics := obsmetrics.Scheduler()

	var nextRun time.Time
	for {
		runtime := s.transferCfg.Get()
		switch {
		case !runtime.AutoTransfer.Enabled:
			nextRun = time.Time{}
		case nextRun.IsZero() || !s.clock.Now().Before(nextRun):
			if !nextRun.IsZero() {
				if lag := s.clock.Now().Sub(nextRun); lag > 0 {
					schedMetrics.ObserveRunLoopLag(lag)
				}
			}
			if err := s.RunOnce(ctx); err != nil {
				s.log.Warn("auto transfer sweep failed", zap.Error(err))
			}
			s.pushMetrics(ctx)
			nextRun = s.clock.Now().Add(runtime.AutoTransfer.Interval)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepJob transfers pending orders for every active store. One store's
// failure is joined into the job error and the sweep moves on to the next.
func (s *Scheduler) SweepJob(ctx context.Context) error {
	runtime := s.transferCfg.Get()
	stores, err := s.storeSvc.ListActiveStores(ctx)
	if err != nil {
		return fmt.Errorf("list active stores: %w", err)
	}
	schedMetrics := obsmetrics.Scheduler()

	var jobErr error
	for _, store := range stores {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}
		processed, err := s.sweepStore(ctx, store, runtime)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.log.Warn("store sweep failed",
				zap.String("store_id", store.ID.String()),
				zap.String("shop_url", store.ShopURL),
				zap.Error(err),
			)
			continue
		}
		if processed > 0 {
			schedMetrics.AddBatchProcessed(jobAutoTransfer, obsmetrics.SweepResourceOrders, processed)
		}
	}
	return jobErr
}

func (s *Scheduler) sweepStore(parent context.Context, store storedomain.Store, runtime config.TransferConfig) (int, error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.StoreTimeout)
	defer cancel()

	token, ok := s.acquireStoreLock(ctx, store.ID)
	if !ok {
		obsmetrics.Scheduler().IncBatchDeferred(jobAutoTransfer, obsmetrics.SchedulerBatchDeferredReasonLockHeld)
		s.log.Info("store sweep deferred, lock held elsewhere",
			zap.String("store_id", store.ID.String()),
		)
		return 0, nil
	}
	// Released on the parent so a store timeout cannot strand the lock
	// until the TTL expires.
	defer s.releaseStoreLock(parent, store.ID, token)

	creds := ordersourcedomain.Credentials{ShopURL: store.ShopURL, APIToken: store.APIToken}
	page, err := s.orderSvc.ListUnfulfilledOrders(ctx, creds, ordersourcedomain.ListOrdersRequest{
		DaysBack: runtime.LookbackDays,
		Limit:    runtime.OrderBatchSize,
	})
	if err != nil {
		return 0, fmt.Errorf("store %s: list orders: %w", store.ID, err)
	}
	if len(page.Orders) == 0 {
		return 0, nil
	}

	orderIDs := make([]string, 0, len(page.Orders))
	for _, order := range page.Orders {
		orderIDs = append(orderIDs, order.ID)
	}
	transferred, err := s.transferSvc.TransferredSet(ctx, store.ID.String(), orderIDs)
	if err != nil {
		return 0, fmt.Errorf("store %s: transferred set: %w", store.ID, err)
	}

	pending := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		if !transferred[id] {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	resp, err := s.transferSvc.Transfer(ctx, transferdomain.TransferRequest{
		StoreID:  store.ID.String(),
		OrderIDs: pending,
	})
	if err != nil {
		return 0, fmt.Errorf("store %s: transfer: %w", store.ID, err)
	}

	log := s.log.With(
		zap.String("store_id", store.ID.String()),
		zap.Int("pending", len(pending)),
		zap.Int("succeeded", resp.Summary.Success),
		zap.Int("failed", resp.Summary.Failed),
	)
	if resp.Summary.Failed > 0 {
		log.Warn("store sweep finished with failures")
	} else {
		log.Info("store sweep finished")
	}
	return resp.Summary.Success, nil
}

// acquireStoreLock grants unconditionally when no locker is configured and
// when redis itself is unreachable. The lock only trims duplicate work;
// correctness never depends on it.
func (s *Scheduler) acquireStoreLock(ctx context.Context, storeID snowflake.ID) (string, bool) {
	if s.locks == nil {
		return "", true
	}
	key := fmt.Sprintf(keyStoreSweepLock, storeID.String())
	token, ok, err := s.locks.TryLock(ctx, key, s.cfg.LockTTL)
	if err != nil {
		s.log.Warn("store sweep lock unavailable, proceeding unlocked",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
		return "", true
	}
	return token, ok
}

func (s *Scheduler) releaseStoreLock(ctx context.Context, storeID snowflake.ID, token string) {
	if s.locks == nil || token == "" {
		return
	}
	key := fmt.Sprintf(keyStoreSweepLock, storeID.String())
	if err := s.locks.Release(ctx, key, token); err != nil {
		s.log.Warn("store sweep lock release failed",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
	}
}

// pushMetrics ships the sweep counters after a run. A push failure is a
// warning; the transfers already happened.
func (s *Scheduler) pushMetrics(ctx context.Context) {
	if s.pusher == nil {
		return
	}
	if err := s.pusher.Push(ctx, prometheus.DefaultGatherer); err != nil {
		s.log.Warn("metrics push failed", zap.Error(err))
	}
}
