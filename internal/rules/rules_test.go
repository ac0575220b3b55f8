package rules_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/rules"
)

// A Saturday, the default withdrawal day.
var saturday = time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)

func validBank() domain.BankDetails {
	return domain.BankDetails{
		AccountNumber:     "123456789012",
		IFSCCode:          "HDFC0001234",
		AccountHolderName: "Ravi Kumar",
	}
}

func TestWithdrawalFee_CurrentWallet(t *testing.T) {
	fee, net := rules.WithdrawalFee(1000, domain.CurrentWallet)
	if fee != 200 {
		t.Errorf("expected fee 200, got %d", fee)
	}
	if net != 800 {
		t.Errorf("expected net 800, got %d", net)
	}
}

func TestWithdrawalFee_MatrixWalletExempt(t *testing.T) {
	fee, net := rules.WithdrawalFee(1000, domain.MatrixWallet)
	if fee != 0 {
		t.Errorf("expected zero fee for matrix wallet, got %d", fee)
	}
	if net != 1000 {
		t.Errorf("expected net 1000, got %d", net)
	}
}

func TestWithdrawalFee_Rounding(t *testing.T) {
	// 20% of 333 is 66.6 → rounds to 67
	fee, net := rules.WithdrawalFee(333, domain.CurrentWallet)
	if fee != 67 {
		t.Errorf("expected fee 67, got %d", fee)
	}
	if fee+net != 333 {
		t.Errorf("fee+net must equal amount, got %d", fee+net)
	}
}

func TestWeeklyBonusState(t *testing.T) {
	cases := []struct {
		referrals int
		unlocked  bool
		base      int64
		bonus     int64
		total     int64
	}{
		{0, false, 0, 0, 0},
		{1, false, 200, 0, 200},
		{2, true, 400, 400, 800},
		{5, true, 1000, 1000, 2000},
	}
	for _, c := range cases {
		unlocked, base, bonus, total := rules.WeeklyBonusState(c.referrals)
		if unlocked != c.unlocked {
			t.Errorf("referrals=%d: expected unlocked=%v, got %v", c.referrals, c.unlocked, unlocked)
		}
		if base != c.base || bonus != c.bonus || total != c.total {
			t.Errorf("referrals=%d: expected %d/%d/%d, got %d/%d/%d",
				c.referrals, c.base, c.bonus, c.total, base, bonus, total)
		}
		if !unlocked && bonus != 0 {
			t.Errorf("referrals=%d: bonus must be zero while locked", c.referrals)
		}
		if total != base+bonus {
			t.Errorf("referrals=%d: total must equal base+bonus", c.referrals)
		}
	}
}

func TestActivationAffordability(t *testing.T) {
	affordable, shortfall := rules.ActivationAffordability(1000)
	if affordable {
		t.Error("balance 1000 should not afford activation")
	}
	if shortfall != 180 {
		t.Errorf("expected shortfall 180, got %d", shortfall)
	}

	affordable, shortfall = rules.ActivationAffordability(1200)
	if !affordable {
		t.Error("balance 1200 should afford activation")
	}
	if shortfall != 0 {
		t.Errorf("expected shortfall 0, got %d", shortfall)
	}
}

func TestMatrixCycleNotice(t *testing.T) {
	if notice := rules.MatrixCycleNotice(5); notice == "" {
		t.Error("expected advisory at cycle 5")
	}
	for _, cycle := range []int{1, 2, 3, 4, 6} {
		if notice := rules.MatrixCycleNotice(cycle); notice != "" {
			t.Errorf("cycle %d: expected no advisory, got %q", cycle, notice)
		}
	}
}

func TestValidateWithdrawal_BelowMinimum(t *testing.T) {
	req := domain.WithdrawalRequest{Amount: 150, WalletType: domain.CurrentWallet, BankDetails: validBank()}
	err := rules.ValidateWithdrawal(req, 10000, saturday, time.Saturday)
	var limitErr *domain.ErrLimitExceeded
	if !errors.As(err, &limitErr) || limitErr.LimitType != "minimum" {
		t.Fatalf("expected minimum limit error, got %v", err)
	}
}

func TestValidateWithdrawal_AboveMaximum(t *testing.T) {
	req := domain.WithdrawalRequest{Amount: 60000, WalletType: domain.CurrentWallet, BankDetails: validBank()}
	err := rules.ValidateWithdrawal(req, 100000, saturday, time.Saturday)
	var limitErr *domain.ErrLimitExceeded
	if !errors.As(err, &limitErr) || limitErr.LimitType != "maximum" {
		t.Fatalf("expected maximum limit error, got %v", err)
	}
}

func TestValidateWithdrawal_MissingBankFields(t *testing.T) {
	cases := []struct {
		name  string
		bank  domain.BankDetails
		field string
	}{
		{"account number", domain.BankDetails{IFSCCode: "HDFC0001234", AccountHolderName: "Ravi"}, "AccountNumber"},
		{"ifsc", domain.BankDetails{AccountNumber: "123", AccountHolderName: "Ravi"}, "IFSCCode"},
		{"holder name", domain.BankDetails{AccountNumber: "123", IFSCCode: "HDFC0001234"}, "AccountHolderName"},
	}
	for _, c := range cases {
		req := domain.WithdrawalRequest{Amount: 500, WalletType: domain.CurrentWallet, BankDetails: c.bank}
		err := rules.ValidateWithdrawal(req, 10000, saturday, time.Saturday)
		var vErr *domain.ErrValidation
		if !errors.As(err, &vErr) {
			t.Fatalf("%s: expected validation error, got %v", c.name, err)
		}
		if vErr.Field != c.field {
			t.Errorf("%s: expected field %s, got %s", c.name, c.field, vErr.Field)
		}
	}
}

func TestValidateWithdrawal_InsufficientBalance(t *testing.T) {
	req := domain.WithdrawalRequest{Amount: 5000, WalletType: domain.CurrentWallet, BankDetails: validBank()}
	err := rules.ValidateWithdrawal(req, 1000, saturday, time.Saturday)
	var fundsErr *domain.ErrInsufficientFunds
	if !errors.As(err, &fundsErr) {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}
	if fundsErr.Available != 1000 || fundsErr.Required != 5000 {
		t.Errorf("unexpected amounts in error: %+v", fundsErr)
	}
}

func TestValidateWithdrawal_WrongDay(t *testing.T) {
	wednesday := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	req := domain.WithdrawalRequest{Amount: 500, WalletType: domain.CurrentWallet, BankDetails: validBank()}
	err := rules.ValidateWithdrawal(req, 10000, wednesday, time.Saturday)
	var dayErr *domain.ErrWithdrawalDay
	if !errors.As(err, &dayErr) {
		t.Fatalf("expected withdrawal day error, got %v", err)
	}
}

func TestValidateWithdrawal_OK(t *testing.T) {
	req := domain.WithdrawalRequest{Amount: 500, WalletType: domain.CurrentWallet, BankDetails: validBank()}
	if err := rules.ValidateWithdrawal(req, 10000, saturday, time.Saturday); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidateSignup(t *testing.T) {
	ok := domain.SignupRequest{Fullname: "Ravi Kumar", Username: "ravi", Phone: "9876543210", Password: "secret1"}
	if err := rules.ValidateSignup(ok); err != nil {
		t.Fatalf("expected valid signup, got %v", err)
	}

	missing := domain.SignupRequest{Username: "ravi", Phone: "9876543210", Password: "secret1"}
	if err := rules.ValidateSignup(missing); err == nil {
		t.Fatal("expected error for missing fullname")
	}
}

func TestWeekBounds(t *testing.T) {
	// 2025-06-04 is a Wednesday; week runs Mon 2nd – Sun 8th.
	start, end := rules.WeekBounds(time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC))
	if start.Day() != 2 || start.Weekday() != time.Monday {
		t.Errorf("expected week start Mon June 2, got %v", start)
	}
	if end.Day() != 8 || end.Weekday() != time.Sunday {
		t.Errorf("expected week end Sun June 8, got %v", end)
	}
}
