// Package rules holds the compensation-plan math the client computes or
// validates locally: withdrawal fee schedule, weekly bonanza thresholds,
// activation affordability and the withdrawal eligibility gate. Everything
// here is pure; the platform remains the authority and re-checks all of it.
package rules

import (
	"errors"
	"math"
	"time"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Plan constants. These mirror the platform's published schedule; the
// client only uses them for display and pre-submit rejection.
const (
	MinWithdrawal       int64 = 200
	MaxWithdrawal       int64 = 50000
	ActivationCost      int64 = 1180
	BonusThreshold            = 2
	EarningsPerReferral int64 = 200
	Level1Total               = 6
	Level2Total               = 25
	FinalCycle                = 5
)

// FeeRate is the admin fee on current-wallet withdrawals. Matrix-wallet
// withdrawals are fee-exempt.
const FeeRate = 0.20

var validate = validator.New()

// WithdrawalFee returns the admin fee and net payable for a withdrawal.
// Fee is rounded half away from zero to whole rupees.
func WithdrawalFee(amount int64, walletType domain.WalletType) (fee, net int64) {
	if walletType == domain.MatrixWallet {
		return 0, amount
	}
	fee = int64(math.Round(float64(amount) * FeeRate))
	return fee, amount - fee
}

// WeeklyBonusState derives the bonanza unlock state and earnings split
// from the week's direct-referral count.
func WeeklyBonusState(directReferrals int) (unlocked bool, base, bonus, total int64) {
	unlocked = directReferrals >= BonusThreshold
	base = EarningsPerReferral * int64(directReferrals)
	if unlocked {
		bonus = EarningsPerReferral * int64(directReferrals)
	}
	return unlocked, base, bonus, base + bonus
}

// ActivationAffordability reports whether balance covers an activation
// and the shortfall when it does not.
func ActivationAffordability(balance int64) (affordable bool, shortfall int64) {
	if balance >= ActivationCost {
		return true, 0
	}
	return false, ActivationCost - balance
}

// MatrixCycleNotice returns the "final cycle" advisory when the
// server-reported cycle has reached its last round, and "" otherwise.
// Purely a presentation threshold; the cycle value is never validated.
func MatrixCycleNotice(cycle int) string {
	if cycle == FinalCycle {
		return "This is your 5th (final) cycle. After completing this cycle, account reactivation will be required to continue."
	}
	return ""
}

// bank-detail field → user-facing reason
var bankFieldMessages = map[string]string{
	"AccountNumber":     "Account number is required",
	"IFSCCode":          "IFSC code is required",
	"AccountHolderName": "Account holder name is required",
}

// ValidateWithdrawal runs the client-side eligibility gate. Each rule
// reports a distinct reason, checked in the order the form surfaces them:
// minimum, maximum, bank details, balance, withdrawal day. A nil return
// means the request may go to the platform — which re-checks everything.
func ValidateWithdrawal(req domain.WithdrawalRequest, available int64, now time.Time, day time.Weekday) error {
	if req.Amount < MinWithdrawal {
		return &domain.ErrLimitExceeded{LimitType: "minimum", Limit: MinWithdrawal, Amount: req.Amount}
	}
	if req.Amount > MaxWithdrawal {
		return &domain.ErrLimitExceeded{LimitType: "maximum", Limit: MaxWithdrawal, Amount: req.Amount}
	}
	if err := validate.Struct(req.BankDetails); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0].StructField()
			return &domain.ErrValidation{Field: f, Message: bankFieldMessages[f]}
		}
		return &domain.ErrValidation{Field: "bankDetails", Message: "bank details are invalid"}
	}
	if req.Amount > available {
		return &domain.ErrInsufficientFunds{Available: available, Required: req.Amount}
	}
	if now.Weekday() != day {
		return &domain.ErrWithdrawalDay{Allowed: day.String()}
	}
	return nil
}

// ValidateSignup checks the registration payload shape before it is sent.
func ValidateSignup(req domain.SignupRequest) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &domain.ErrValidation{Field: verrs[0].StructField(), Message: "field is missing or too short"}
		}
		return &domain.ErrValidation{Field: "signup", Message: "signup payload is invalid"}
	}
	return nil
}

// WeekBounds returns the Monday-to-Sunday bounds of the week containing t,
// matching how the platform reports weekly stats.
func WeekBounds(t time.Time) (start, end time.Time) {
	offset := (int(t.Weekday()) + 6) % 7 // days since Monday
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}
