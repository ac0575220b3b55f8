package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/gateway"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/observability"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/store"

	"go.uber.org/zap"
)

// A Saturday, the default withdrawal day.
var saturday = time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)

func i64(v int64) *int64 { return &v }

// fakeWalletGateway counts calls and serves canned responses.
type fakeWalletGateway struct {
	snapshot    *domain.WalletPatch
	weekly      *domain.WeeklyPatch
	txs         []domain.Transaction
	activation  *gateway.ActivationResult
	fetchErr    error
	withdrawErr error
	activateErr error

	withdrawCalls int
	fetchCalls    int
}

func (f *fakeWalletGateway) WalletSnapshot(context.Context) (*domain.WalletPatch, error) {
	f.fetchCalls++
	return f.snapshot, f.fetchErr
}

func (f *fakeWalletGateway) WeeklyStats(context.Context) (*domain.WeeklyPatch, error) {
	return f.weekly, f.fetchErr
}

func (f *fakeWalletGateway) Transactions(context.Context) ([]domain.Transaction, error) {
	return f.txs, f.fetchErr
}

func (f *fakeWalletGateway) CreateWithdrawal(context.Context, domain.WithdrawalRequest) error {
	f.withdrawCalls++
	return f.withdrawErr
}

func (f *fakeWalletGateway) ActivateOther(context.Context, string) (*gateway.ActivationResult, error) {
	return f.activation, f.activateErr
}

func newWallet(gw *fakeWalletGateway) (*store.Wallet, *observability.Metrics) {
	metrics := observability.NewMetrics()
	return store.NewWallet(gw, metrics, zap.NewNop(), time.Saturday, func() time.Time { return saturday }), metrics
}

func validBank() domain.BankDetails {
	return domain.BankDetails{
		AccountNumber:     "123456789012",
		IFSCCode:          "HDFC0001234",
		AccountHolderName: "Ravi Kumar",
	}
}

func withdrawal(amount int64, wt domain.WalletType) domain.WithdrawalRequest {
	return domain.WithdrawalRequest{Amount: amount, WalletType: wt, BankDetails: validBank()}
}

func TestProcessWithdrawal_OptimisticDebit(t *testing.T) {
	gw := &fakeWalletGateway{}
	s, metrics := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Balance: i64(1000)})

	if err := s.ProcessWithdrawal(context.Background(), withdrawal(300, domain.CurrentWallet)); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}

	snap := s.Snapshot()
	if snap.Wallet.Balance != 700 {
		t.Errorf("expected optimistic balance 700, got %d", snap.Wallet.Balance)
	}
	if snap.Weekly.WithdrawalUsed != 300 {
		t.Errorf("expected withdrawalUsed 300, got %d", snap.Weekly.WithdrawalUsed)
	}
	if len(snap.Transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(snap.Transactions))
	}
	tx := snap.Transactions[0]
	if tx.Direction != domain.Debit {
		t.Errorf("expected debit, got %s", tx.Direction)
	}
	if !strings.Contains(tx.Description, "Processing") {
		t.Errorf("expected Processing description, got %q", tx.Description)
	}
	if tx.Amount != 300 {
		t.Errorf("expected amount 300, got %d", tx.Amount)
	}
	if got := metrics.OptimisticUpdateCount("withdrawal"); got != 1 {
		t.Errorf("expected one optimistic withdrawal counted, got %v", got)
	}
}

func TestProcessWithdrawal_MatrixWalletDebit(t *testing.T) {
	gw := &fakeWalletGateway{}
	s, _ := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Balance: i64(100), MatrixWallet: i64(2000)})

	if err := s.ProcessWithdrawal(context.Background(), withdrawal(500, domain.MatrixWallet)); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}

	snap := s.Snapshot()
	if snap.Wallet.MatrixWallet != 1500 {
		t.Errorf("expected matrix wallet 1500, got %d", snap.Wallet.MatrixWallet)
	}
	if snap.Wallet.Balance != 100 {
		t.Errorf("current balance must be untouched, got %d", snap.Wallet.Balance)
	}
}

func TestProcessWithdrawal_ValidationSkipsGateway(t *testing.T) {
	gw := &fakeWalletGateway{}
	s, _ := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Balance: i64(1000)})

	if err := s.ProcessWithdrawal(context.Background(), withdrawal(150, domain.CurrentWallet)); err == nil {
		t.Fatal("expected rejection below minimum")
	}
	if gw.withdrawCalls != 0 {
		t.Errorf("local rejection must not reach the gateway, got %d calls", gw.withdrawCalls)
	}

	snap := s.Snapshot()
	if snap.Wallet.Balance != 1000 || len(snap.Transactions) != 0 {
		t.Error("rejected withdrawal must not mutate state")
	}
}

func TestProcessWithdrawal_GatewayFailureLeavesState(t *testing.T) {
	gw := &fakeWalletGateway{withdrawErr: &domain.ErrRemote{Status: 400, Message: "Insufficient wallet balance"}}
	s, _ := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Balance: i64(1000)})

	err := s.ProcessWithdrawal(context.Background(), withdrawal(300, domain.CurrentWallet))
	var remote *domain.ErrRemote
	if !errors.As(err, &remote) {
		t.Fatalf("expected remote error to propagate, got %v", err)
	}

	snap := s.Snapshot()
	if snap.Wallet.Balance != 1000 || snap.Weekly.WithdrawalUsed != 0 || len(snap.Transactions) != 0 {
		t.Error("failed withdrawal must not mutate state")
	}
}

func TestProcessWithdrawal_UniqueMonotonicIDs(t *testing.T) {
	// The clock is frozen, so uniqueness must come from the monotonic
	// fallback, not the clock itself.
	gw := &fakeWalletGateway{}
	s, _ := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Balance: i64(10000)})

	for i := 0; i < 3; i++ {
		if err := s.ProcessWithdrawal(context.Background(), withdrawal(300, domain.CurrentWallet)); err != nil {
			t.Fatalf("withdrawal %d: %v", i, err)
		}
	}

	snap := s.Snapshot()
	seen := map[int64]bool{}
	for _, tx := range snap.Transactions {
		if seen[tx.ID] {
			t.Fatalf("duplicate transaction id %d", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestFetchWalletData_PartialMerge(t *testing.T) {
	gw := &fakeWalletGateway{
		snapshot: &domain.WalletPatch{Balance: i64(5000), MatrixWallet: i64(800)},
		weekly:   &domain.WeeklyPatch{WithdrawalUsed: i64(1200)},
	}
	s, _ := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Royalty: i64(75)})

	s.FetchWalletData(context.Background())

	snap := s.Snapshot()
	if snap.Wallet.Balance != 5000 || snap.Wallet.MatrixWallet != 800 {
		t.Errorf("fetched fields not merged: %+v", snap.Wallet)
	}
	if snap.Wallet.Royalty != 75 {
		t.Error("unspecified fields must be left unchanged")
	}
	if snap.Weekly.WithdrawalUsed != 1200 {
		t.Errorf("weekly not merged: %+v", snap.Weekly)
	}
	if snap.Weekly.WithdrawalLimit != 50000 {
		t.Error("default withdrawal limit must survive a partial merge")
	}
}

func TestFetchWalletData_SilentFailure(t *testing.T) {
	gw := &fakeWalletGateway{fetchErr: errors.New("connection refused")}
	s, _ := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Balance: i64(900)})

	s.FetchWalletData(context.Background())

	if got := s.Snapshot().Wallet.Balance; got != 900 {
		t.Errorf("failed refresh must keep prior state, got %d", got)
	}
}

func TestSetWallet_RoundTrip(t *testing.T) {
	s, _ := newWallet(&fakeWalletGateway{})
	patch := domain.WalletPatch{
		Balance:        i64(1234),
		TotalEarnings:  i64(9000),
		Withdrawn:      i64(500),
		Pending:        i64(200),
		MatrixWallet:   i64(321),
		MatrixIncome:   i64(100),
		ReferralIncome: i64(400),
		Royalty:        i64(50),
	}
	s.SetWallet(patch)

	w := s.Snapshot().Wallet
	if w.Balance != 1234 || w.TotalEarnings != 9000 || w.Withdrawn != 500 ||
		w.Pending != 200 || w.MatrixWallet != 321 || w.MatrixIncome != 100 ||
		w.ReferralIncome != 400 || w.Royalty != 50 {
		t.Errorf("round trip mismatch: %+v", w)
	}
}

func TestLastWriteWinsRace(t *testing.T) {
	// A fetch completing after an optimistic debit overwrites it. This
	// window is accepted; the next successful fetch bounds it.
	gw := &fakeWalletGateway{}
	s, _ := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Balance: i64(1000)})

	if err := s.ProcessWithdrawal(context.Background(), withdrawal(300, domain.CurrentWallet)); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	s.SetWallet(domain.WalletPatch{Balance: i64(1000)}) // stale server snapshot

	if got := s.Snapshot().Wallet.Balance; got != 1000 {
		t.Errorf("last write must win, got %d", got)
	}
}

func TestActivateOther(t *testing.T) {
	gw := &fakeWalletGateway{activation: &gateway.ActivationResult{NewBalance: 20}}
	s, _ := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Balance: i64(1200)})

	result, err := s.ActivateOther(context.Background(), "suresh")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if result.NewBalance != 20 {
		t.Errorf("unexpected result: %+v", result)
	}

	snap := s.Snapshot()
	if snap.Wallet.Balance != 20 {
		t.Errorf("balance must follow the server-confirmed value, got %d", snap.Wallet.Balance)
	}
	if len(snap.Transactions) != 1 || snap.Transactions[0].Direction != domain.Debit {
		t.Error("expected a debit log entry for the activation")
	}
}

func TestActivateOther_Unaffordable(t *testing.T) {
	gw := &fakeWalletGateway{}
	s, _ := newWallet(gw)
	s.SetWallet(domain.WalletPatch{Balance: i64(1000)})

	_, err := s.ActivateOther(context.Background(), "suresh")
	var funds *domain.ErrInsufficientFunds
	if !errors.As(err, &funds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if funds.Required != 1180 {
		t.Errorf("expected required 1180, got %d", funds.Required)
	}
}

func TestUpdateBalance(t *testing.T) {
	s, _ := newWallet(&fakeWalletGateway{})
	s.SetWallet(domain.WalletPatch{Balance: i64(100)})

	s.UpdateBalance(50)
	if got := s.Snapshot().Wallet.Balance; got != 150 {
		t.Errorf("expected 150, got %d", got)
	}

	s.UpdateBalance(-150)
	if got := s.Snapshot().Wallet.Balance; got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestSubscribePublishesOnMutation(t *testing.T) {
	s, _ := newWallet(&fakeWalletGateway{})
	ch, cancel := s.Subscribe()
	defer cancel()

	s.SetWallet(domain.WalletPatch{Balance: i64(42)})

	select {
	case snap := <-ch:
		if snap.Wallet.Balance != 42 {
			t.Errorf("unexpected snapshot: %+v", snap.Wallet)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}
