// Package store holds the client-side state containers: the wallet/earnings
// store, the administrator aggregate store, the notification slot and the
// polling loop. Mutation methods are the only write path — presentation
// code never assigns fields directly.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/gateway"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/observability"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/rules"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var walletTracer = otel.Tracer("store/wallet")

// walletGateway is the slice of the platform client the wallet store uses.
type walletGateway interface {
	WalletSnapshot(ctx context.Context) (*domain.WalletPatch, error)
	WeeklyStats(ctx context.Context) (*domain.WeeklyPatch, error)
	Transactions(ctx context.Context) ([]domain.Transaction, error)
	CreateWithdrawal(ctx context.Context, req domain.WithdrawalRequest) error
	ActivateOther(ctx context.Context, targetUsername string) (*gateway.ActivationResult, error)
}

// WalletState is an immutable snapshot of the wallet store.
type WalletState struct {
	Wallet       domain.Wallet        `json:"wallet"`
	Weekly       domain.WeeklyStats   `json:"weekly"`
	Matrix       domain.MatrixStatus  `json:"matrix"`
	Transactions []domain.Transaction `json:"transactions"`

	BonanzaLogs     []domain.BonanzaLog     `json:"bonanzaLogs"`
	LeadershipLogs  []domain.LeadershipLog  `json:"leadershipLogs"`
	ReferralMembers []domain.ReferralMember `json:"referralMembers"`
}

// Wallet is the canonical client-side financial state. Optimistic updates
// and confirmed fetches both merge into the same fields without
// versioning, so a fetch completing after an optimistic debit can
// overwrite it with a still-pending server balance. That window is
// accepted and bounded by the next successful fetch.
type Wallet struct {
	mu    sync.Mutex
	state WalletState

	gw      walletGateway
	metrics *observability.Metrics
	logger  *zap.Logger
	bcast   *broadcaster[WalletState]

	withdrawalDay time.Weekday
	now           func() time.Time
	lastTxID      int64
}

// NewWallet creates the wallet store with empty balances and the plan's
// default weekly limits.
func NewWallet(gw walletGateway, metrics *observability.Metrics, logger *zap.Logger, withdrawalDay time.Weekday, now func() time.Time) *Wallet {
	if now == nil {
		now = time.Now
	}
	return &Wallet{
		state: WalletState{
			Weekly: domain.WeeklyStats{
				BonusThreshold:  rules.BonusThreshold,
				WithdrawalLimit: rules.MaxWithdrawal,
			},
			Matrix: domain.MatrixStatus{
				Level1: domain.MatrixLevel{Total: rules.Level1Total},
				Level2: domain.MatrixLevel{Total: rules.Level2Total},
				Cycle:  1,
			},
		},
		gw:            gw,
		metrics:       metrics,
		logger:        logger,
		bcast:         newBroadcaster[WalletState](),
		withdrawalDay: withdrawalDay,
		now:           now,
	}
}

// Snapshot returns a copy of the current state.
func (s *Wallet) Snapshot() WalletState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// Subscribe registers a listener for state snapshots.
func (s *Wallet) Subscribe() (<-chan WalletState, func()) {
	return s.bcast.subscribe()
}

// FetchWalletData refreshes the wallet snapshot and weekly stats in one
// round, both requests in flight together. Best-effort: on any failure
// the prior state is left untouched and no error reaches the caller.
func (s *Wallet) FetchWalletData(ctx context.Context) {
	ctx, span := walletTracer.Start(ctx, "Wallet.FetchWalletData")
	defer span.End()

	var (
		walletPatch *domain.WalletPatch
		weeklyPatch *domain.WeeklyPatch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		walletPatch, err = s.gw.WalletSnapshot(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		weeklyPatch, err = s.gw.WeeklyStats(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrStoreRefresh("wallet", "error")
		s.logger.Warn("wallet refresh failed, keeping prior state", zap.Error(err))
		return
	}

	s.mu.Lock()
	if walletPatch != nil {
		s.state.Wallet.Apply(*walletPatch)
	}
	if weeklyPatch != nil {
		s.state.Weekly.Apply(*weeklyPatch)
	}
	s.mu.Unlock()

	s.metrics.IncrStoreRefresh("wallet", "ok")
	s.publish()
}

// RefreshTransactions replaces the local log with the authoritative
// history, superseding any optimistic entries. Best-effort.
func (s *Wallet) RefreshTransactions(ctx context.Context) {
	ctx, span := walletTracer.Start(ctx, "Wallet.RefreshTransactions")
	defer span.End()

	txs, err := s.gw.Transactions(ctx)
	if err != nil {
		s.metrics.IncrStoreRefresh("transactions", "error")
		s.logger.Warn("transaction refresh failed, keeping prior state", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.state.Transactions = txs
	s.mu.Unlock()

	s.metrics.IncrStoreRefresh("transactions", "ok")
	s.publish()
}

// ProcessWithdrawal runs the local eligibility gate, submits the request,
// and on acceptance applies an optimistic debit to the selected wallet
// plus a "Processing" log entry. On any failure no state changes and the
// error propagates for notification display. Concurrent calls are not
// deduplicated here; the caller serializes via its submit guard.
func (s *Wallet) ProcessWithdrawal(ctx context.Context, req domain.WithdrawalRequest) error {
	ctx, span := walletTracer.Start(ctx, "Wallet.ProcessWithdrawal")
	defer span.End()

	s.mu.Lock()
	available := s.state.Wallet.Balance
	if req.WalletType == domain.MatrixWallet {
		available = s.state.Wallet.MatrixWallet
	}
	s.mu.Unlock()

	if err := rules.ValidateWithdrawal(req, available, s.now(), s.withdrawalDay); err != nil {
		return err
	}

	if err := s.gw.CreateWithdrawal(ctx, req); err != nil {
		return err
	}

	s.mu.Lock()
	if req.WalletType == domain.MatrixWallet {
		s.state.Wallet.MatrixWallet -= req.Amount
	} else {
		s.state.Wallet.Balance -= req.Amount
	}
	s.state.Weekly.WithdrawalUsed += req.Amount
	s.prependTransaction(domain.Transaction{
		Type:        "Withdrawal",
		Description: "Processing (" + string(req.WalletType) + ")...",
		Amount:      req.Amount,
		Date:        "Just Now",
		Direction:   domain.Debit,
	})
	s.mu.Unlock()

	s.metrics.IncrOptimisticUpdate("withdrawal")
	s.publish()
	return nil
}

// ActivateOther spends the member's balance to activate another account.
// Affordability is checked locally first; on success the balance is set
// from the server-confirmed value, not decremented blindly.
func (s *Wallet) ActivateOther(ctx context.Context, targetUsername string) (*gateway.ActivationResult, error) {
	ctx, span := walletTracer.Start(ctx, "Wallet.ActivateOther")
	defer span.End()

	s.mu.Lock()
	balance := s.state.Wallet.Balance
	s.mu.Unlock()

	if affordable, _ := rules.ActivationAffordability(balance); !affordable {
		return nil, &domain.ErrInsufficientFunds{Available: balance, Required: rules.ActivationCost}
	}

	result, err := s.gw.ActivateOther(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state.Wallet.Balance = result.NewBalance
	s.prependTransaction(domain.Transaction{
		Type:        "Activation",
		Description: "Activated @" + targetUsername,
		Amount:      rules.ActivationCost,
		Date:        "Just Now",
		Direction:   domain.Debit,
	})
	s.mu.Unlock()

	s.metrics.IncrOptimisticUpdate("activation")
	s.publish()
	return result, nil
}

// UpdateBalance applies a local-only additive adjustment. Never calls the
// gateway.
func (s *Wallet) UpdateBalance(delta int64) {
	s.mu.Lock()
	s.state.Wallet.Balance += delta
	s.mu.Unlock()
	s.publish()
}

// SetWallet merges a raw wallet patch. Views fetching outside the store's
// own path funnel through here so every write shares the same merge
// semantics.
func (s *Wallet) SetWallet(patch domain.WalletPatch) {
	s.mu.Lock()
	s.state.Wallet.Apply(patch)
	s.mu.Unlock()
	s.publish()
}

// SetWeekly merges a raw weekly-stats patch.
func (s *Wallet) SetWeekly(patch domain.WeeklyPatch) {
	s.mu.Lock()
	s.state.Weekly.Apply(patch)
	s.mu.Unlock()
	s.publish()
}

// SetMatrix replaces the matrix status with a server-reported snapshot.
func (s *Wallet) SetMatrix(m domain.MatrixStatus) {
	s.mu.Lock()
	s.state.Matrix = m
	s.mu.Unlock()
	s.publish()
}

// SetBonanzaLogs replaces the credited-bonus log.
func (s *Wallet) SetBonanzaLogs(logs []domain.BonanzaLog) {
	s.mu.Lock()
	s.state.BonanzaLogs = logs
	s.mu.Unlock()
	s.publish()
}

// SetLeadershipLogs replaces the royalty log.
func (s *Wallet) SetLeadershipLogs(logs []domain.LeadershipLog) {
	s.mu.Lock()
	s.state.LeadershipLogs = logs
	s.mu.Unlock()
	s.publish()
}

// SetReferralMembers replaces the direct-referral list.
func (s *Wallet) SetReferralMembers(members []domain.ReferralMember) {
	s.mu.Lock()
	s.state.ReferralMembers = members
	s.mu.Unlock()
	s.publish()
}

// prependTransaction adds an optimistic entry at the head of the log with
// a unique monotonic id. Callers hold the lock.
func (s *Wallet) prependTransaction(tx domain.Transaction) {
	id := s.now().UnixMilli()
	if id <= s.lastTxID {
		id = s.lastTxID + 1
	}
	s.lastTxID = id
	tx.ID = id

	txs := make([]domain.Transaction, 0, len(s.state.Transactions)+1)
	txs = append(txs, tx)
	txs = append(txs, s.state.Transactions...)
	s.state.Transactions = txs
}

func (s *Wallet) copyState() WalletState {
	cp := s.state
	cp.Transactions = append([]domain.Transaction(nil), s.state.Transactions...)
	cp.BonanzaLogs = append([]domain.BonanzaLog(nil), s.state.BonanzaLogs...)
	cp.LeadershipLogs = append([]domain.LeadershipLog(nil), s.state.LeadershipLogs...)
	cp.ReferralMembers = append([]domain.ReferralMember(nil), s.state.ReferralMembers...)
	return cp
}

func (s *Wallet) publish() {
	s.bcast.publish(s.Snapshot())
}
