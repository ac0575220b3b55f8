package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
)

// AuthResponse is the platform's login/signup reply.
type AuthResponse struct {
	Token string        `json:"token"`
	User  domain.Member `json:"user"`
}

// ActivationResult carries the caller's balance after activating another
// account.
type ActivationResult struct {
	NewBalance int64  `json:"newBalance"`
	Message    string `json:"message"`
}

// WithdrawalLimits is the weekly usage against the withdrawal cap.
type WithdrawalLimits struct {
	WithdrawalUsed  int64 `json:"withdrawalUsed"`
	WithdrawalLimit int64 `json:"withdrawalLimit"`
}

// LeadershipSummary is the royalty standing for the leadership view.
type LeadershipSummary struct {
	Royalty       int64 `json:"royalty"`
	DownlineCount int   `json:"downlineCount"`
}

// Signup registers a member. POST /user/signup.
func (c *Client) Signup(ctx context.Context, req domain.SignupRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.send(ctx, "Signup", http.MethodPost, "/user/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates a member. POST /user/login.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	payload := map[string]string{"username": username, "password": password}
	var out AuthResponse
	if err := c.send(ctx, "Login", http.MethodPost, "/user/login", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the member identity. GET /user/profile.
func (c *Client) Profile(ctx context.Context) (*domain.Member, error) {
	var out struct {
		User domain.Member `json:"user"`
	}
	if err := c.get(ctx, "Profile", "/user/profile", &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// SubmitPayment marks the joining payment as made. POST /user/payment/submit.
func (c *Client) SubmitPayment(ctx context.Context) error {
	return c.send(ctx, "SubmitPayment", http.MethodPost, "/user/payment/submit", nil, nil)
}

// ActivateOther spends the caller's balance to activate another account.
// POST /user/activate-other.
func (c *Client) ActivateOther(ctx context.Context, targetUsername string) (*ActivationResult, error) {
	payload := map[string]string{"targetUsername": targetUsername}
	var out ActivationResult
	if err := c.send(ctx, "ActivateOther", http.MethodPost, "/user/activate-other", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WalletSnapshot fetches the wallet balances. GET /user/wallet.
func (c *Client) WalletSnapshot(ctx context.Context) (*domain.WalletPatch, error) {
	var out struct {
		Wallet domain.WalletPatch `json:"wallet"`
	}
	if err := c.get(ctx, "WalletSnapshot", "/user/wallet", &out); err != nil {
		return nil, err
	}
	return &out.Wallet, nil
}

// Transactions fetches the authoritative transaction history, newest first.
// GET /user/transactions.
func (c *Client) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	var out struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := c.get(ctx, "Transactions", "/user/transactions", &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// WalletBreakdown fetches the per-source earnings split. GET /user/wallet/breakdown.
func (c *Client) WalletBreakdown(ctx context.Context) (*domain.WalletPatch, error) {
	var out domain.WalletPatch
	if err := c.get(ctx, "WalletBreakdown", "/user/wallet/breakdown", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MatrixStatus fetches the matrix fill state. GET /user/matrix.
func (c *Client) MatrixStatus(ctx context.Context) (*domain.MatrixStatus, error) {
	var out struct {
		Matrix domain.MatrixStatus `json:"matrix"`
	}
	if err := c.get(ctx, "MatrixStatus", "/user/matrix", &out); err != nil {
		return nil, err
	}
	return &out.Matrix, nil
}

// MatrixTree fetches the raw downline tree; the UI renders it as-is.
// GET /user/matrix/tree.
func (c *Client) MatrixTree(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.get(ctx, "MatrixTree", "/user/matrix/tree", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReferralCode fetches the member's shareable code. GET /user/referral/code.
func (c *Client) ReferralCode(ctx context.Context) (string, error) {
	var out struct {
		Code string `json:"code"`
	}
	if err := c.get(ctx, "ReferralCode", "/user/referral/code", &out); err != nil {
		return "", err
	}
	return out.Code, nil
}

// Referrals fetches the direct-referral list. GET /user/referrals.
func (c *Client) Referrals(ctx context.Context) ([]domain.ReferralMember, error) {
	var out struct {
		Referrals []domain.ReferralMember `json:"referrals"`
	}
	if err := c.get(ctx, "Referrals", "/user/referrals", &out); err != nil {
		return nil, err
	}
	return out.Referrals, nil
}

// WeeklyStats fetches the weekly referral/bonanza stats.
// GET /user/referrals/weekly-stats.
func (c *Client) WeeklyStats(ctx context.Context) (*domain.WeeklyPatch, error) {
	var out domain.WeeklyPatch
	if err := c.get(ctx, "WeeklyStats", "/user/referrals/weekly-stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWithdrawal submits a withdrawal request. POST /user/withdrawal/request.
func (c *Client) CreateWithdrawal(ctx context.Context, req domain.WithdrawalRequest) error {
	return c.send(ctx, "CreateWithdrawal", http.MethodPost, "/user/withdrawal/request", req, nil)
}

// Withdrawals fetches the member's withdrawal history. GET /user/withdrawals.
func (c *Client) Withdrawals(ctx context.Context) ([]domain.Withdrawal, error) {
	var out struct {
		Withdrawals []domain.Withdrawal `json:"withdrawals"`
	}
	if err := c.get(ctx, "Withdrawals", "/user/withdrawals", &out); err != nil {
		return nil, err
	}
	return out.Withdrawals, nil
}

// WithdrawalLimits fetches weekly usage against the cap. GET /user/withdrawal/limits.
func (c *Client) WithdrawalLimits(ctx context.Context) (*WithdrawalLimits, error) {
	var out WithdrawalLimits
	if err := c.get(ctx, "WithdrawalLimits", "/user/withdrawal/limits", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bonanza fetches the current week's bonus state. GET /user/bonanza.
func (c *Client) Bonanza(ctx context.Context) (*domain.WeeklyStats, error) {
	var out domain.WeeklyStats
	if err := c.get(ctx, "Bonanza", "/user/bonanza", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BonanzaLogs fetches credited bonus entries. GET /user/bonanza/logs.
func (c *Client) BonanzaLogs(ctx context.Context) ([]domain.BonanzaLog, error) {
	var out struct {
		Logs []domain.BonanzaLog `json:"logs"`
	}
	if err := c.get(ctx, "BonanzaLogs", "/user/bonanza/logs", &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// Leadership fetches the royalty standing. GET /user/leadership.
func (c *Client) Leadership(ctx context.Context) (*LeadershipSummary, error) {
	var out LeadershipSummary
	if err := c.get(ctx, "Leadership", "/user/leadership", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeadershipLogs fetches credited royalty entries. GET /user/leadership/logs.
func (c *Client) LeadershipLogs(ctx context.Context) ([]domain.LeadershipLog, error) {
	var out struct {
		Logs []domain.LeadershipLog `json:"logs"`
	}
	if err := c.get(ctx, "LeadershipLogs", "/user/leadership/logs", &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// DownlineCount fetches the total downline size. GET /user/downline/count.
func (c *Client) DownlineCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, "DownlineCount", "/user/downline/count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}
