package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/rules"
)

// Session -------------------------------------------------------------

func signupHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/signup")
		defer span.End()

		var req domain.SignupRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := rules.ValidateSignup(req); err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}

		resp, err := d.Gateway.Signup(ctx, req)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}

		d.Session.Login(&resp.User, resp.Token)
		writeJSON(w, http.StatusCreated, map[string]any{"user": resp.User})
	}
}

func loginHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := d.Gateway.Login(ctx, req.Username, req.Password)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}

		d.Session.Login(&resp.User, resp.Token)
		d.Notifier.Show("Welcome", "Logged in as "+resp.User.Username, domain.NotifySuccess)
		writeJSON(w, http.StatusOK, map[string]any{"user": resp.User})
	}
}

func logoutHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Session.Logout()
		w.WriteHeader(http.StatusNoContent)
	}
}

func adminLoginHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/admin/login")
		defer span.End()

		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := d.Gateway.AdminLogin(ctx, req.Username, req.Password)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}

		d.Session.LoginAsAdmin(&resp.Admin, resp.Token)
		writeJSON(w, http.StatusOK, map[string]any{"admin": resp.Admin})
	}
}

func adminLogoutHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Session.LogoutAdmin()
		w.WriteHeader(http.StatusNoContent)
	}
}

// sessionHandler reports both channels plus token expiry for the account
// screen. Tokens themselves never leave the process.
func sessionHandler(d Deps) http.HandlerFunc {
	type channelState struct {
		Authenticated bool   `json:"authenticated"`
		ExpiresAt     string `json:"expiresAt,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Session.Snapshot()

		member := channelState{Authenticated: snap.IsAuthenticated}
		if exp, ok := d.Session.MemberTokenExpiry(); ok {
			member.ExpiresAt = exp.Format(time.RFC3339)
		}
		admin := channelState{Authenticated: snap.IsAdminAuthenticated}
		if exp, ok := d.Session.AdminTokenExpiry(); ok {
			admin.ExpiresAt = exp.Format(time.RFC3339)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"member":      snap.Member,
			"admin":       snap.Admin,
			"memberState": member,
			"adminState":  admin,
		})
	}
}

// Identity & joining payment ------------------------------------------

func profileHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/profile")
		defer span.End()

		member, err := d.Gateway.Profile(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		d.Session.UpdateMember(domain.MemberPatch{
			Fullname: &member.Fullname,
			Username: &member.Username,
			Phone:    &member.Phone,
			Status:   &member.Status,
			Verified: &member.Verified,
		})
		writeJSON(w, http.StatusOK, map[string]any{"user": member})
	}
}

func submitPaymentHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/payment/submit")
		defer span.End()

		if err := d.Gateway.SubmitPayment(ctx); err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		d.Notifier.Show("Payment Submitted", "Awaiting admin verification", domain.NotifyInfo)
		writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
	}
}

// Wallet & earnings ---------------------------------------------------

func walletStateHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Wallet.Snapshot())
	}
}

func walletRefreshHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/wallet/refresh")
		defer span.End()

		d.Wallet.FetchWalletData(ctx)
		writeJSON(w, http.StatusOK, d.Wallet.Snapshot())
	}
}

func transactionsRefreshHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions/refresh")
		defer span.End()

		d.Wallet.RefreshTransactions(ctx)
		writeJSON(w, http.StatusOK, map[string]any{
			"transactions": d.Wallet.Snapshot().Transactions,
		})
	}
}

func walletBreakdownHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/wallet/breakdown")
		defer span.End()

		patch, err := d.Gateway.WalletBreakdown(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		if patch != nil {
			d.Wallet.SetWallet(*patch)
		}
		writeJSON(w, http.StatusOK, map[string]any{"wallet": d.Wallet.Snapshot().Wallet})
	}
}

// Withdrawals ---------------------------------------------------------

func createWithdrawalHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/withdrawals")
		defer span.End()

		var req domain.WithdrawalRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := d.Wallet.ProcessWithdrawal(ctx, req); err != nil {
			d.Notifier.Show("Withdrawal Failed", userFacing(err), domain.NotifyError)
			handleDomainError(w, err, d.Logger)
			return
		}

		fee, net := rules.WithdrawalFee(req.Amount, req.WalletType)
		d.Notifier.Show("Withdrawal Requested", "Processing your request", domain.NotifySuccess)
		writeJSON(w, http.StatusCreated, map[string]any{
			"amount":     req.Amount,
			"adminFee":   fee,
			"netPayable": net,
			"wallet":     d.Wallet.Snapshot().Wallet,
		})
	}
}

func withdrawalsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/withdrawals")
		defer span.End()

		ws, err := d.Gateway.Withdrawals(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"withdrawals": ws})
	}
}

func withdrawalLimitsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/withdrawals/limits")
		defer span.End()

		limits, err := d.Gateway.WithdrawalLimits(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		d.Wallet.SetWeekly(domain.WeeklyPatch{
			WithdrawalUsed:  &limits.WithdrawalUsed,
			WithdrawalLimit: &limits.WithdrawalLimit,
		})
		writeJSON(w, http.StatusOK, limits)
	}
}

// Matrix & referrals --------------------------------------------------

func matrixHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/matrix")
		defer span.End()

		status, err := d.Gateway.MatrixStatus(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		d.Wallet.SetMatrix(*status)
		writeJSON(w, http.StatusOK, map[string]any{
			"matrix": status,
			"notice": rules.MatrixCycleNotice(status.Cycle),
		})
	}
}

func matrixTreeHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/matrix/tree")
		defer span.End()

		tree, err := d.Gateway.MatrixTree(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(tree)
	}
}

func referralsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/referrals")
		defer span.End()

		members, err := d.Gateway.Referrals(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		d.Wallet.SetReferralMembers(members)
		writeJSON(w, http.StatusOK, map[string]any{"referrals": members})
	}
}

func referralCodeHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/referral-code")
		defer span.End()

		code, err := d.Gateway.ReferralCode(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"code": code})
	}
}

func downlineCountHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/downline/count")
		defer span.End()

		count, err := d.Gateway.DownlineCount(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

func activateHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/activate")
		defer span.End()

		var req struct {
			Username string `json:"username"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Username == "" {
			writeError(w, http.StatusBadRequest, "username is required")
			return
		}

		result, err := d.Wallet.ActivateOther(ctx, req.Username)
		if err != nil {
			d.Notifier.Show("Activation Failed", userFacing(err), domain.NotifyError)
			handleDomainError(w, err, d.Logger)
			return
		}

		d.Notifier.Show("Account Activated", "Activated @"+req.Username, domain.NotifySuccess)
		writeJSON(w, http.StatusOK, result)
	}
}

// Weekly bonanza & leadership -----------------------------------------

func weeklyHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/weekly")
		defer span.End()

		patch, err := d.Gateway.WeeklyStats(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		if patch != nil {
			d.Wallet.SetWeekly(*patch)
		}

		weekly := d.Wallet.Snapshot().Weekly
		unlocked, base, bonus, total := rules.WeeklyBonusState(weekly.DirectReferrals)
		weekly.BonusUnlocked = unlocked
		weekly.BaseEarnings = base
		weekly.BonusEarnings = bonus
		weekly.TotalEarnings = total
		if weekly.WeekStart == "" || weekly.WeekEnd == "" {
			start, end := rules.WeekBounds(time.Now())
			weekly.WeekStart = start.Format("2006-01-02")
			weekly.WeekEnd = end.Format("2006-01-02")
		}
		writeJSON(w, http.StatusOK, weekly)
	}
}

func bonanzaHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bonanza")
		defer span.End()

		stats, err := d.Gateway.Bonanza(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func bonanzaLogsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bonanza/logs")
		defer span.End()

		logs, err := d.Gateway.BonanzaLogs(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		d.Wallet.SetBonanzaLogs(logs)
		writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
	}
}

func leadershipHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/leadership")
		defer span.End()

		summary, err := d.Gateway.Leadership(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func leadershipLogsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/leadership/logs")
		defer span.End()

		logs, err := d.Gateway.LeadershipLogs(ctx)
		if err != nil {
			handleDomainError(w, err, d.Logger)
			return
		}
		d.Wallet.SetLeadershipLogs(logs)
		writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
	}
}

// Notification slot ---------------------------------------------------

func notificationHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"notification": d.Notifier.Current()})
	}
}

func notificationHideHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Notifier.Hide()
		w.WriteHeader(http.StatusNoContent)
	}
}

// userFacing renders an error for the notification slot, preferring the
// server-supplied message over the wrapped technical one.
func userFacing(err error) string {
	var remote *domain.ErrRemote
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	var validation *domain.ErrValidation
	if errors.As(err, &validation) {
		return validation.Message
	}
	return err.Error()
}
