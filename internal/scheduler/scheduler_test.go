package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"github.com/smallbiznis/quotient/internal/clock"
	"github.com/smallbiznis/quotient/internal/config"
	obsmetrics "github.com/smallbiznis/quotient/internal/observability/metrics"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
	transferdomain "github.com/smallbiznis/quotient/internal/transfer/domain"
)

// Mocks for dependencies

type mockStoreSvc struct {
	stores  []storedomain.Store
	listErr error
}

func (m *mockStoreSvc) ListStores(context.Context) ([]storedomain.Store, error) {
	return m.stores, m.listErr
}
func (m *mockStoreSvc) ListActiveStores(context.Context) ([]storedomain.Store, error) {
	return m.stores, m.listErr
}
func (m *mockStoreSvc) CreateStore(context.Context, storedomain.CreateStoreRequest) (*storedomain.Store, error) {
	return nil, nil
}
func (m *mockStoreSvc) UpdateStore(context.Context, storedomain.UpdateStoreRequest) (*storedomain.Store, error) {
	return nil, nil
}
func (m *mockStoreSvc) GetStore(context.Context, storedomain.GetStoreRequest) (*storedomain.Store, error) {
	return nil, nil
}
func (m *mockStoreSvc) DeleteStore(context.Context, storedomain.DeleteStoreRequest) error {
	return nil
}
func (m *mockStoreSvc) ListConnections(context.Context) ([]storedomain.SQLConnection, error) {
	return nil, nil
}
func (m *mockStoreSvc) SaveConnection(context.Context, storedomain.SaveConnectionRequest) (*storedomain.SQLConnection, error) {
	return nil, nil
}
func (m *mockStoreSvc) ConnectionConfig(context.Context, string) (*storedomain.ConnectionConfig, error) {
	return nil, nil
}
func (m *mockStoreSvc) GetCustomerMapping(context.Context, storedomain.GetCustomerMappingRequest) (*storedomain.CustomerMapping, error) {
	return nil, nil
}
func (m *mockStoreSvc) SaveCustomerMapping(context.Context, storedomain.SaveCustomerMappingRequest) (*storedomain.CustomerMapping, error) {
	return nil, nil
}
func (m *mockStoreSvc) GetQuotationDefaults(context.Context, storedomain.GetQuotationDefaultsRequest) (*storedomain.QuotationDefaults, error) {
	return nil, nil
}
func (m *mockStoreSvc) SaveQuotationDefaults(context.Context, storedomain.SaveQuotationDefaultsRequest) (*storedomain.QuotationDefaults, error) {
	return nil, nil
}

type mockOrderSvc struct {
	mu        sync.Mutex
	pages     map[string]*ordersourcedomain.OrdersPage
	errs      map[string]error
	listCalls []ordersourcedomain.ListOrdersRequest
}

func (m *mockOrderSvc) TestConnection(context.Context, ordersourcedomain.Credentials) (*ordersourcedomain.ShopInfo, error) {
	return &ordersourcedomain.ShopInfo{}, nil
}

func (m *mockOrderSvc) ListUnfulfilledOrders(_ context.Context, creds ordersourcedomain.Credentials, req ordersourcedomain.ListOrdersRequest) (*ordersourcedomain.OrdersPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, req)
	if err := m.errs[creds.ShopURL]; err != nil {
		return nil, err
	}
	if page := m.pages[creds.ShopURL]; page != nil {
		return page, nil
	}
	return &ordersourcedomain.OrdersPage{}, nil
}

func (m *mockOrderSvc) GetOrder(context.Context, ordersourcedomain.Credentials, string) (*ordersourcedomain.Order, error) {
	return nil, ordersourcedomain.ErrOrderNotFound
}

func (m *mockOrderSvc) listCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listCalls)
}

type mockTransferSvc struct {
	mu          sync.Mutex
	transferred map[string]bool
	requests    []transferdomain.TransferRequest
	fired       chan struct{}
}

func (m *mockTransferSvc) Transfer(_ context.Context, req transferdomain.TransferRequest) (*transferdomain.TransferResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.fired != nil {
		m.fired <- struct{}{}
	}
	resp := &transferdomain.TransferResponse{}
	resp.Summary.Total = len(req.OrderIDs)
	resp.Summary.Success = len(req.OrderIDs)
	return resp, nil
}

func (m *mockTransferSvc) TransferredSet(_ context.Context, _ string, orderIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		if m.transferred[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (m *mockTransferSvc) ListHistory(context.Context, transferdomain.ListHistoryRequest) (*transferdomain.HistoryPage, error) {
	return &transferdomain.HistoryPage{}, nil
}
func (m *mockTransferSvc) DeleteRecord(context.Context, string) error { return nil }
func (m *mockTransferSvc) DeleteFailed(context.Context, transferdomain.DeleteFailedRequest) (int64, error) {
	return 0, nil
}

func (m *mockTransferSvc) transferRequests() []transferdomain.TransferRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transferdomain.TransferRequest(nil), m.requests...)
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired []string
	released map[string]string
}

func (f *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] {
		return "", false, nil
	}
	f.acquired = append(f.acquired, key)
	return "token-" + key, true, nil
}

func (f *fakeLocker) Release(_ context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released == nil {
		f.released = map[string]string{}
	}
	f.released[key] = token
	return nil
}

func testStore(id int64, shopURL string) storedomain.Store {
	return storedomain.Store{
		ID:       snowflake.ID(id),
		Name:     fmt.Sprintf("store-%d", id),
		ShopURL:  shopURL,
		APIToken: "shpat_test",
		IsActive: true,
	}
}

func testOrder(id string) ordersourcedomain.Order {
	return ordersourcedomain.Order{ID: id, Name: "#" + id}
}

func newTestScheduler(t *testing.T, stores *mockStoreSvc, orders *mockOrderSvc, transfers *mockTransferSvc, runtime config.TransferConfig) *Scheduler {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	sched, err := New(Params{
		Log:         zap.NewNop(),
		TransferCfg: config.StaticTransferConfigHolder(runtime),
		StoreSvc:    stores,
		OrderSvc:    orders,
		TransferSvc: transfers,
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)),
		Config:      Config{PollInterval: 5 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched
}

func resetSchedulerMetrics(t *testing.T) *prometheus.Registry {
	t.Helper()
	registry := prometheus.NewRegistry()
	restore := swapPrometheusRegistry(registry)
	t.Cleanup(restore)
	obsmetrics.ResetSchedulerMetricsForTest()
	obsmetrics.SchedulerWithConfig(obsmetrics.Config{ServiceName: "quotient", Environment: "test"})
	return registry
}

func TestSweepTransfersOnlyPendingOrders(t *testing.T) {
	resetSchedulerMetrics(t)

	stores := &mockStoreSvc{stores: []storedomain.Store{testStore(101, "alpha.myshopify.com")}}
	orders := &mockOrderSvc{pages: map[string]*ordersourcedomain.OrdersPage{
		"alpha.myshopify.com": {Orders: []ordersourcedomain.Order{
			testOrder("5001"), testOrder("5002"), testOrder("5003"),
		}},
	}}
	transfers := &mockTransferSvc{transferred: map[string]bool{"5002": true}}

	sched := newTestScheduler(t, stores, orders, transfers, config.TransferConfig{
		LookbackDays:   7,
		OrderBatchSize: 25,
	})

	if err := sched.SweepJob(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	reqs := transfers.transferRequests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 transfer request, got %d", len(reqs))
	}
	if reqs[0].StoreID != snowflake.ID(101).String() {
		t.Fatalf("unexpected store id %q", reqs[0].StoreID)
	}
	if len(reqs[0].OrderIDs) != 2 || reqs[0].OrderIDs[0] != "5001" || reqs[0].OrderIDs[1] != "5003" {
		t.Fatalf("expected pending orders [5001 5003], got %v", reqs[0].OrderIDs)
	}
	if len(orders.listCalls) != 1 {
		t.Fatalf("expected 1 order listing, got %d", len(orders.listCalls))
	}
	if got := orders.listCalls[0]; got.DaysBack != 7 || got.Limit != 25 {
		t.Fatalf("expected lookback 7 limit 25, got %+v", got)
	}
}

func TestSweepSkipsStoreWithNothingPending(t *testing.T) {
	resetSchedulerMetrics(t)

	stores := &mockStoreSvc{stores: []storedomain.Store{testStore(101, "alpha.myshopify.com")}}
	orders := &mockOrderSvc{pages: map[string]*ordersourcedomain.OrdersPage{
		"alpha.myshopify.com": {Orders: []ordersourcedomain.Order{testOrder("5001")}},
	}}
	transfers := &mockTransferSvc{transferred: map[string]bool{"5001": true}}

	sched := newTestScheduler(t, stores, orders, transfers, config.TransferConfig{})

	if err := sched.SweepJob(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := len(transfers.transferRequests()); got != 0 {
		t.Fatalf("expected no transfer requests, got %d", got)
	}
}

func TestSweepIsolatesStoreFailures(t *testing.T) {
	resetSchedulerMetrics(t)

	stores := &mockStoreSvc{stores: []storedomain.Store{
		testStore(101, "alpha.myshopify.com"),
		testStore(102, "beta.myshopify.com"),
	}}
	orders := &mockOrderSvc{
		pages: map[string]*ordersourcedomain.OrdersPage{
			"beta.myshopify.com": {Orders: []ordersourcedomain.Order{testOrder("6001")}},
		},
		errs: map[string]error{"alpha.myshopify.com": errors.New("shop unreachable")},
	}
	transfers := &mockTransferSvc{}

	sched := newTestScheduler(t, stores, orders, transfers, config.TransferConfig{})

	err := sched.SweepJob(context.Background())
	if err == nil {
		t.Fatal("expected sweep error from the failing store")
	}

	reqs := transfers.transferRequests()
	if len(reqs) != 1 {
		t.Fatalf("expected the healthy store to still transfer, got %d requests", len(reqs))
	}
	if reqs[0].StoreID != snowflake.ID(102).String() {
		t.Fatalf("unexpected store id %q", reqs[0].StoreID)
	}
}

func TestSweepDefersStoreWhenLockHeld(t *testing.T) {
	registry := resetSchedulerMetrics(t)

	stores := &mockStoreSvc{stores: []storedomain.Store{testStore(101, "alpha.myshopify.com")}}
	orders := &mockOrderSvc{pages: map[string]*ordersourcedomain.OrdersPage{
		"alpha.myshopify.com": {Orders: []ordersourcedomain.Order{testOrder("5001")}},
	}}
	transfers := &mockTransferSvc{}

	sched := newTestScheduler(t, stores, orders, transfers, config.TransferConfig{})
	lockKey := fmt.Sprintf(keyStoreSweepLock, snowflake.ID(101).String())
	sched.locks = &fakeLocker{held: map[string]bool{lockKey: true}}

	if err := sched.SweepJob(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := orders.listCallCount(); got != 0 {
		t.Fatalf("expected no order listing behind a held lock, got %d", got)
	}
	if got := len(transfers.transferRequests()); got != 0 {
		t.Fatalf("expected no transfer requests, got %d", got)
	}

	labels := map[string]string{
		"service": "quotient",
		"env":     "test",
		"job":     jobAutoTransfer,
		"reason":  obsmetrics.SchedulerBatchDeferredReasonLockHeld,
	}
	if got := getCounterValue(t, registry, "quotient_scheduler_batch_deferred_total", labels); got != 1 {
		t.Fatalf("expected 1 deferral, got %v", got)
	}
}

func TestSweepReleasesStoreLock(t *testing.T) {
	resetSchedulerMetrics(t)

	stores := &mockStoreSvc{stores: []storedomain.Store{testStore(101, "alpha.myshopify.com")}}
	orders := &mockOrderSvc{pages: map[string]*ordersourcedomain.OrdersPage{
		"alpha.myshopify.com": {Orders: []ordersourcedomain.Order{testOrder("5001")}},
	}}
	transfers := &mockTransferSvc{}

	sched := newTestScheduler(t, stores, orders, transfers, config.TransferConfig{})
	locker := &fakeLocker{}
	sched.locks = locker

	if err := sched.SweepJob(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	lockKey := fmt.Sprintf(keyStoreSweepLock, snowflake.ID(101).String())
	if len(locker.acquired) != 1 || locker.acquired[0] != lockKey {
		t.Fatalf("expected lock on %q, got %v", lockKey, locker.acquired)
	}
	if locker.released[lockKey] != "token-"+lockKey {
		t.Fatalf("expected token release for %q, got %v", lockKey, locker.released)
	}
}

func TestRunForeverHonorsEnabledFlag(t *testing.T) {
	resetSchedulerMetrics(t)

	stores := &mockStoreSvc{stores: []storedomain.Store{testStore(101, "alpha.myshopify.com")}}
	orders := &mockOrderSvc{pages: map[string]*ordersourcedomain.OrdersPage{
		"alpha.myshopify.com": {Orders: []ordersourcedomain.Order{testOrder("5001")}},
	}}
	transfers := &mockTransferSvc{fired: make(chan struct{}, 8)}

	sched := newTestScheduler(t, stores, orders, transfers, config.TransferConfig{
		AutoTransfer: config.AutoTransferConfig{Enabled: true, Interval: time.Hour},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.RunForever(ctx)
		close(done)
	}()

	select {
	case <-transfers.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never fired")
	}

	// The fake clock never reaches the next run, so later polls must not
	// fire a second sweep.
	select {
	case <-transfers.fired:
		t.Fatal("sweep fired again before the interval elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunForever did not stop on cancel")
	}
}

func TestRunForeverIdlesWhenDisabled(t *testing.T) {
	resetSchedulerMetrics(t)

	stores := &mockStoreSvc{stores: []storedomain.Store{testStore(101, "alpha.myshopify.com")}}
	orders := &mockOrderSvc{}
	transfers := &mockTransferSvc{}

	sched := newTestScheduler(t, stores, orders, transfers, config.TransferConfig{
		AutoTransfer: config.AutoTransferConfig{Enabled: false},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.RunForever(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunForever did not stop on cancel")
	}

	if got := len(transfers.transferRequests()); got != 0 {
		t.Fatalf("expected no sweeps while disabled, got %d", got)
	}
}

func TestRunJobTimeoutDoesNotReturnErrorAndIncrementsTimeout(t *testing.T) {
	registry := resetSchedulerMetrics(t)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	s := &Scheduler{log: zap.NewNop(), genID: node, clock: clock.NewFakeClock(time.Time{})}
	err = s.runJob(context.Background(), "timeout_job", 5*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	labels := map[string]string{
		"service": "quotient",
		"env":     "test",
		"job":     "timeout_job",
	}
	if got := getCounterValue(t, registry, "quotient_scheduler_job_timeouts_total", labels); got != 1 {
		t.Fatalf("expected timeout count 1, got %v", got)
	}

	errorLabels := map[string]string{
		"service": "quotient",
		"env":     "test",
		"job":     "timeout_job",
		"reason":  obsmetrics.SchedulerJobReasonDeadlineExceeded,
	}
	if got := getCounterValue(t, registry, "quotient_scheduler_job_errors_total", errorLabels); got != 1 {
		t.Fatalf("expected error count 1, got %v", got)
	}
}

func TestConfigWithDefaultsFillsZeroValues(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.PollInterval != time.Minute {
		t.Fatalf("poll interval: got %v", cfg.PollInterval)
	}
	if cfg.SweepTimeout != 10*time.Minute {
		t.Fatalf("sweep timeout: got %v", cfg.SweepTimeout)
	}
	if cfg.StoreTimeout != 2*time.Minute {
		t.Fatalf("store timeout: got %v", cfg.StoreTimeout)
	}
	if cfg.LockTTL != 5*time.Minute {
		t.Fatalf("lock ttl: got %v", cfg.LockTTL)
	}

	kept := Config{PollInterval: time.Second}.withDefaults()
	if kept.PollInterval != time.Second {
		t.Fatalf("explicit poll interval overwritten: %v", kept.PollInterval)
	}
}

func swapPrometheusRegistry(registry *prometheus.Registry) func() {
	oldRegisterer := prometheus.DefaultRegisterer
	oldGatherer := prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
	return func() {
		prometheus.DefaultRegisterer = oldRegisterer
		prometheus.DefaultGatherer = oldGatherer
		obsmetrics.ResetSchedulerMetricsForTest()
	}
}

func getCounterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metricFamilies {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if !metricMatchesLabels(metric, labels) {
				continue
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func metricMatchesLabels(metric *dto.Metric, labels map[string]string) bool {
	got := make(map[string]string, len(metric.GetLabel()))
	for _, pair := range metric.GetLabel() {
		got[pair.GetName()] = pair.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}
