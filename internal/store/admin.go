package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/observability"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/resilience"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var adminTracer = otel.Tracer("store/admin")

// activityLimit caps the recent-activity feed, matching the dashboard view.
const activityLimit = 10

// adminGateway is the slice of the platform client the admin store uses.
type adminGateway interface {
	AdminMetrics(ctx context.Context) (*domain.DashboardMetrics, error)
	AdminUsers(ctx context.Context, status, search string) ([]domain.AdminUser, error)
	AdminWithdrawals(ctx context.Context) ([]domain.PendingWithdrawal, error)
	AdminLedger(ctx context.Context) ([]domain.LedgerEntry, error)
	AdminActivity(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
	PendingPayments(ctx context.Context) ([]domain.PendingPayment, error)
	ApproveWithdrawal(ctx context.Context, id, status, rejectionReason string) error
	AdjustWallet(ctx context.Context, userID string, adj domain.WalletAdjustment) error
	UpdateUserStatus(ctx context.Context, userID, status string) error
	ApprovePayment(ctx context.Context, userID string) error
	RejectPayment(ctx context.Context, userID, reason string) error
}

// AdminState is an immutable snapshot of the admin store. Loading and
// Error are mutually exclusive with a successful resource write.
type AdminState struct {
	Metrics         *domain.DashboardMetrics   `json:"metrics"`
	Users           []domain.AdminUser         `json:"users"`
	Withdrawals     []domain.PendingWithdrawal `json:"withdrawals"`
	Transactions    []domain.LedgerEntry       `json:"transactions"`
	Activities      []domain.LedgerEntry       `json:"activities"`
	PendingPayments []domain.PendingPayment    `json:"pendingPayments"`
	Loading         bool                       `json:"loading"`
	Error           string                     `json:"error,omitempty"`
}

// Admin mirrors the wallet store for administrator-facing aggregates.
// Mutating actions re-fetch the affected collection instead of patching
// it locally: extra round-trips for consistency simplicity.
type Admin struct {
	mu    sync.Mutex
	state AdminState

	gw      adminGateway
	metrics *observability.Metrics
	logger  *zap.Logger
	bcast   *broadcaster[AdminState]

	// Remembered filters so refresh-after-write re-fetches the same view.
	userStatus string
	userSearch string
}

// NewAdmin creates the admin aggregate store.
func NewAdmin(gw adminGateway, metrics *observability.Metrics, logger *zap.Logger) *Admin {
	return &Admin{
		gw:      gw,
		metrics: metrics,
		logger:  logger,
		bcast:   newBroadcaster[AdminState](),
	}
}

// Snapshot returns a copy of the current state.
func (s *Admin) Snapshot() AdminState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// Subscribe registers a listener for state snapshots.
func (s *Admin) Subscribe() (<-chan AdminState, func()) {
	return s.bcast.subscribe()
}

// FetchMetrics loads the aggregate dashboard snapshot.
func (s *Admin) FetchMetrics(ctx context.Context) {
	ctx, span := adminTracer.Start(ctx, "Admin.FetchMetrics")
	defer span.End()

	s.beginLoad()
	m, err := s.gw.AdminMetrics(ctx)
	s.finishLoad("metrics", err, func() { s.state.Metrics = m })
}

// FetchUsers loads the user list with the given filters. The filters are
// remembered so mutations can refresh the same view.
func (s *Admin) FetchUsers(ctx context.Context, status, search string) {
	ctx, span := adminTracer.Start(ctx, "Admin.FetchUsers")
	defer span.End()

	s.mu.Lock()
	s.userStatus, s.userSearch = status, search
	s.mu.Unlock()

	s.beginLoad()
	users, err := s.gw.AdminUsers(ctx, status, search)
	s.finishLoad("users", err, func() { s.state.Users = users })
}

// FetchWithdrawals loads the pending approval queue.
func (s *Admin) FetchWithdrawals(ctx context.Context) {
	ctx, span := adminTracer.Start(ctx, "Admin.FetchWithdrawals")
	defer span.End()

	s.beginLoad()
	ws, err := s.gw.AdminWithdrawals(ctx)
	s.finishLoad("withdrawals", err, func() { s.state.Withdrawals = ws })
}

// FetchLedger loads the platform-wide transaction ledger.
func (s *Admin) FetchLedger(ctx context.Context) {
	ctx, span := adminTracer.Start(ctx, "Admin.FetchLedger")
	defer span.End()

	s.beginLoad()
	txs, err := s.gw.AdminLedger(ctx)
	s.finishLoad("ledger", err, func() { s.state.Transactions = txs })
}

// FetchActivity loads the recent-activity feed.
func (s *Admin) FetchActivity(ctx context.Context) {
	ctx, span := adminTracer.Start(ctx, "Admin.FetchActivity")
	defer span.End()

	s.beginLoad()
	acts, err := s.gw.AdminActivity(ctx, activityLimit)
	s.finishLoad("activity", err, func() { s.state.Activities = acts })
}

// FetchPendingPayments loads users awaiting payment verification.
func (s *Admin) FetchPendingPayments(ctx context.Context) {
	ctx, span := adminTracer.Start(ctx, "Admin.FetchPendingPayments")
	defer span.End()

	s.beginLoad()
	pending, err := s.gw.PendingPayments(ctx)
	s.finishLoad("pending_payments", err, func() { s.state.PendingPayments = pending })
}

// RefreshAll fetches every collection, bounded by the bulkhead so one
// polling tick cannot stampede the platform.
func (s *Admin) RefreshAll(ctx context.Context, bh *resilience.Bulkhead) {
	ctx, span := adminTracer.Start(ctx, "Admin.RefreshAll")
	defer span.End()

	fetches := []func(context.Context){
		s.FetchMetrics,
		func(ctx context.Context) {
			status, search := s.currentFilters()
			s.FetchUsers(ctx, status, search)
		},
		s.FetchWithdrawals,
		s.FetchLedger,
		s.FetchActivity,
		s.FetchPendingPayments,
	}

	var g errgroup.Group
	for _, fetch := range fetches {
		fetch := fetch
		g.Go(func() error {
			if err := bh.Acquire(ctx); err != nil {
				return err
			}
			defer bh.Release()
			fetch(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("admin refresh interrupted", zap.Error(err))
	}
}

// ApproveWithdrawal approves or rejects a queued withdrawal, then
// re-fetches the queue.
func (s *Admin) ApproveWithdrawal(ctx context.Context, id, status, rejectionReason string) error {
	ctx, span := adminTracer.Start(ctx, "Admin.ApproveWithdrawal")
	defer span.End()

	if err := s.gw.ApproveWithdrawal(ctx, id, status, rejectionReason); err != nil {
		s.storeError(err)
		return err
	}
	s.FetchWithdrawals(ctx)
	return nil
}

// AdjustWallet credits or debits a user wallet, then re-fetches the
// user list under the current filters.
func (s *Admin) AdjustWallet(ctx context.Context, userID string, adj domain.WalletAdjustment) error {
	ctx, span := adminTracer.Start(ctx, "Admin.AdjustWallet")
	defer span.End()

	if err := s.gw.AdjustWallet(ctx, userID, adj); err != nil {
		s.storeError(err)
		return err
	}
	status, search := s.currentFilters()
	s.FetchUsers(ctx, status, search)
	return nil
}

// UpdateUserStatus changes a user's account status, then re-fetches the
// user list.
func (s *Admin) UpdateUserStatus(ctx context.Context, userID, status string) error {
	ctx, span := adminTracer.Start(ctx, "Admin.UpdateUserStatus")
	defer span.End()

	if err := s.gw.UpdateUserStatus(ctx, userID, status); err != nil {
		s.storeError(err)
		return err
	}
	filterStatus, search := s.currentFilters()
	s.FetchUsers(ctx, filterStatus, search)
	return nil
}

// ApprovePayment confirms a joining payment, then re-fetches the pending
// payment list.
func (s *Admin) ApprovePayment(ctx context.Context, userID string) error {
	ctx, span := adminTracer.Start(ctx, "Admin.ApprovePayment")
	defer span.End()

	if err := s.gw.ApprovePayment(ctx, userID); err != nil {
		s.storeError(err)
		return err
	}
	s.FetchPendingPayments(ctx)
	return nil
}

// RejectPayment rejects a joining payment, then re-fetches the pending
// payment list.
func (s *Admin) RejectPayment(ctx context.Context, userID, reason string) error {
	ctx, span := adminTracer.Start(ctx, "Admin.RejectPayment")
	defer span.End()

	if err := s.gw.RejectPayment(ctx, userID, reason); err != nil {
		s.storeError(err)
		return err
	}
	s.FetchPendingPayments(ctx)
	return nil
}

func (s *Admin) currentFilters() (status, search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userStatus, s.userSearch
}

func (s *Admin) beginLoad() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
	s.publish()
}

// finishLoad clears the loading flag and applies either the success
// write or the error message — never both.
func (s *Admin) finishLoad(collection string, err error, apply func()) {
	s.mu.Lock()
	s.state.Loading = false
	if err != nil {
		s.state.Error = userMessage(err)
	} else {
		apply()
	}
	s.mu.Unlock()

	if err != nil {
		s.metrics.IncrStoreRefresh("admin_"+collection, "error")
		s.logger.Warn("admin fetch failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
	} else {
		s.metrics.IncrStoreRefresh("admin_"+collection, "ok")
	}
	s.publish()
}

func (s *Admin) storeError(err error) {
	s.mu.Lock()
	s.state.Error = userMessage(err)
	s.mu.Unlock()
	s.publish()
}

// userMessage extracts the server-supplied message when present.
func userMessage(err error) string {
	var remote *domain.ErrRemote
	if errors.As(err, &remote) {
		return remote.Message
	}
	var unauthorized *domain.ErrUnauthorized
	if errors.As(err, &unauthorized) {
		return unauthorized.Error()
	}
	return err.Error()
}

func (s *Admin) copyState() AdminState {
	cp := s.state
	cp.Users = append([]domain.AdminUser(nil), s.state.Users...)
	cp.Withdrawals = append([]domain.PendingWithdrawal(nil), s.state.Withdrawals...)
	cp.Transactions = append([]domain.LedgerEntry(nil), s.state.Transactions...)
	cp.Activities = append([]domain.LedgerEntry(nil), s.state.Activities...)
	cp.PendingPayments = append([]domain.PendingPayment(nil), s.state.PendingPayments...)
	if s.state.Metrics != nil {
		m := *s.state.Metrics
		cp.Metrics = &m
	}
	return cp
}

func (s *Admin) publish() {
	s.bcast.publish(s.Snapshot())
}
