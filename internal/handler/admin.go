package handler

import (
	"net/http"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Admin handlers trigger the matching store fetch and return the fresh
// snapshot, so the browser always renders from store state rather than a
// raw platform response.

func adminStateHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Admin.Snapshot())
	}
}

func adminMetricsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/metrics")
		defer span.End()

		d.Admin.FetchMetrics(ctx)
		snap := d.Admin.Snapshot()
		if snap.Error != "" {
			writeError(w, http.StatusBadGateway, snap.Error)
			return
		}
		writeJSON(w, http.StatusOK, snap.Metrics)
	}
}

func adminUsersHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/users")
		defer span.End()

		status := r.URL.Query().Get("status")
		search := r.URL.Query().Get("search")
		d.Admin.FetchUsers(ctx, status, search)

		snap := d.Admin.Snapshot()
		if snap.Error != "" {
			writeError(w, http.StatusBadGateway, snap.Error)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": snap.Users})
	}
}

func adminWithdrawalsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/withdrawals")
		defer span.End()

		d.Admin.FetchWithdrawals(ctx)
		snap := d.Admin.Snapshot()
		if snap.Error != "" {
			writeError(w, http.StatusBadGateway, snap.Error)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"withdrawals": snap.Withdrawals})
	}
}

func adminApproveWithdrawalHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/withdrawals/{withdrawalID}")
		defer span.End()

		id := chi.URLParam(r, "withdrawalID")
		var req struct {
			Status          string `json:"status" validate:"required,oneof=approved rejected"`
			RejectionReason string `json:"rejectionReason,omitempty"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "status must be approved or rejected")
			return
		}

		if err := d.Admin.ApproveWithdrawal(ctx, id, req.Status, req.RejectionReason); err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"withdrawals": d.Admin.Snapshot().Withdrawals})
	}
}

func adminAdjustWalletHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/users/{userID}/wallet")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		var adj domain.WalletAdjustment
		if !decodeBody(w, r, &adj) {
			return
		}
		if err := validate.Struct(adj); err != nil {
			writeError(w, http.StatusBadRequest, "amount must be positive and type credit or debit")
			return
		}

		if err := d.Admin.AdjustWallet(ctx, userID, adj); err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": d.Admin.Snapshot().Users})
	}
}

func adminUserStatusHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/users/{userID}/status")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		var req struct {
			Status string `json:"status" validate:"required,oneof=active blocked"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "status must be active or blocked")
			return
		}

		if err := d.Admin.UpdateUserStatus(ctx, userID, req.Status); err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": d.Admin.Snapshot().Users})
	}
}

func adminLedgerHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/ledger")
		defer span.End()

		d.Admin.FetchLedger(ctx)
		snap := d.Admin.Snapshot()
		if snap.Error != "" {
			writeError(w, http.StatusBadGateway, snap.Error)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": snap.Transactions})
	}
}

func adminActivityHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/activity")
		defer span.End()

		d.Admin.FetchActivity(ctx)
		snap := d.Admin.Snapshot()
		if snap.Error != "" {
			writeError(w, http.StatusBadGateway, snap.Error)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"activities": snap.Activities})
	}
}

func adminPendingPaymentsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/pending-payments")
		defer span.End()

		d.Admin.FetchPendingPayments(ctx)
		snap := d.Admin.Snapshot()
		if snap.Error != "" {
			writeError(w, http.StatusBadGateway, snap.Error)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pendingUsers": snap.PendingPayments})
	}
}

func adminApprovePaymentHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/pending-payments/{userID}/approve")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		if err := d.Admin.ApprovePayment(ctx, userID); err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pendingUsers": d.Admin.Snapshot().PendingPayments})
	}
}

func adminRejectPaymentHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/pending-payments/{userID}/reject")
		defer span.End()

		userID := chi.URLParam(r, "userID")
		var req struct {
			Reason string `json:"reason,omitempty"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		if err := d.Admin.RejectPayment(ctx, userID, req.Reason); err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pendingUsers": d.Admin.Snapshot().PendingPayments})
	}
}
