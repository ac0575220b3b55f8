package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
)

// AdminAuthResponse is the platform's admin login reply.
type AdminAuthResponse struct {
	Token string       `json:"token"`
	Admin domain.Admin `json:"admin"`
}

// AdminLogin authenticates an administrator. POST /admin/login.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (*AdminAuthResponse, error) {
	payload := map[string]string{"username": username, "password": password}
	var out AdminAuthResponse
	if err := c.send(ctx, "AdminLogin", http.MethodPost, "/admin/login", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminMetrics fetches the platform-wide aggregate snapshot. GET /admin/metrics.
func (c *Client) AdminMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	var out domain.DashboardMetrics
	if err := c.get(ctx, "AdminMetrics", "/admin/metrics", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminUsers fetches the user list, optionally filtered by status or a
// search term. GET /admin/users.
func (c *Client) AdminUsers(ctx context.Context, status, search string) ([]domain.AdminUser, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if search != "" {
		q.Set("search", search)
	}
	path := "/admin/users"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out struct {
		Users []domain.AdminUser `json:"users"`
	}
	if err := c.get(ctx, "AdminUsers", path, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// AdminWithdrawals fetches the pending approval queue.
// GET /admin/withdrawals?status=pending.
func (c *Client) AdminWithdrawals(ctx context.Context) ([]domain.PendingWithdrawal, error) {
	var out struct {
		Withdrawals []domain.PendingWithdrawal `json:"withdrawals"`
	}
	if err := c.get(ctx, "AdminWithdrawals", "/admin/withdrawals?status=pending", &out); err != nil {
		return nil, err
	}
	return out.Withdrawals, nil
}

// ApproveWithdrawal approves or rejects a queued withdrawal.
// PUT /admin/withdrawals/:id/approve.
func (c *Client) ApproveWithdrawal(ctx context.Context, id, status, rejectionReason string) error {
	payload := map[string]string{"status": status, "rejectionReason": rejectionReason}
	path := fmt.Sprintf("/admin/withdrawals/%s/approve", url.PathEscape(id))
	return c.send(ctx, "ApproveWithdrawal", http.MethodPut, path, payload, nil)
}

// AdjustWallet credits or debits a user wallet. POST /admin/users/:id/wallet.
func (c *Client) AdjustWallet(ctx context.Context, userID string, adj domain.WalletAdjustment) error {
	path := fmt.Sprintf("/admin/users/%s/wallet", url.PathEscape(userID))
	return c.send(ctx, "AdjustWallet", http.MethodPost, path, adj, nil)
}

// UpdateUserStatus changes a user's account status. PUT /admin/users/:id/status.
func (c *Client) UpdateUserStatus(ctx context.Context, userID, status string) error {
	payload := map[string]string{"status": status}
	path := fmt.Sprintf("/admin/users/%s/status", url.PathEscape(userID))
	return c.send(ctx, "UpdateUserStatus", http.MethodPut, path, payload, nil)
}

// AdminLedger fetches the platform-wide transaction ledger. GET /admin/ledger.
func (c *Client) AdminLedger(ctx context.Context) ([]domain.LedgerEntry, error) {
	var out struct {
		Transactions []domain.LedgerEntry `json:"transactions"`
	}
	if err := c.get(ctx, "AdminLedger", "/admin/ledger", &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// AdminActivity fetches the most recent platform activity.
// GET /admin/activity?limit=n.
func (c *Client) AdminActivity(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	var out struct {
		Activities []domain.LedgerEntry `json:"activities"`
	}
	path := fmt.Sprintf("/admin/activity?limit=%d", limit)
	if err := c.get(ctx, "AdminActivity", path, &out); err != nil {
		return nil, err
	}
	return out.Activities, nil
}

// PendingPayments fetches users awaiting joining-payment verification.
// GET /admin/pending-payments.
func (c *Client) PendingPayments(ctx context.Context) ([]domain.PendingPayment, error) {
	var out struct {
		PendingUsers []domain.PendingPayment `json:"pendingUsers"`
	}
	if err := c.get(ctx, "PendingPayments", "/admin/pending-payments", &out); err != nil {
		return nil, err
	}
	return out.PendingUsers, nil
}

// ApprovePayment confirms a user's joining payment. PUT /admin/payment/approve/:id.
func (c *Client) ApprovePayment(ctx context.Context, userID string) error {
	path := fmt.Sprintf("/admin/payment/approve/%s", url.PathEscape(userID))
	return c.send(ctx, "ApprovePayment", http.MethodPut, path, nil, nil)
}

// RejectPayment rejects a user's joining payment. PUT /admin/payment/reject/:id.
func (c *Client) RejectPayment(ctx context.Context, userID, reason string) error {
	payload := map[string]string{"reason": reason}
	path := fmt.Sprintf("/admin/payment/reject/%s", url.PathEscape(userID))
	return c.send(ctx, "RejectPayment", http.MethodPut, path, payload, nil)
}
