// Package domain holds the data model shared by the stores, the rule
// evaluator and the gateway: session channels, wallet balances, weekly
// referral stats, matrix status and the withdrawal request shape.
package domain

import "time"

// Member is the authenticated member identity as reported by the platform.
type Member struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
	Verified bool   `json:"verified"`
	Joined   string `json:"joined,omitempty"`
}

// MemberPatch is a shallow partial update of the member identity.
// Nil fields are left unchanged; the credential is never touched here.
type MemberPatch struct {
	Fullname *string `json:"fullname,omitempty"`
	Username *string `json:"username,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Status   *string `json:"status,omitempty"`
	Verified *bool   `json:"verified,omitempty"`
}

// Admin is the authenticated administrator identity.
type Admin struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// Session is the persisted dual-channel authentication state.
// The member and admin channels are independent: clearing one never
// touches the other.
type Session struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	Member          *Member `json:"member"`
	Token           string  `json:"token"`

	IsAdminAuthenticated bool   `json:"isAdminAuthenticated"`
	Admin                *Admin `json:"admin"`
	AdminToken           string `json:"adminToken"`
}

// Wallet is the canonical client-side view of all balances.
// Amounts are whole rupees — the platform never deals in paise.
type Wallet struct {
	Balance        int64 `json:"balance"`
	TotalEarnings  int64 `json:"totalEarnings"`
	Withdrawn      int64 `json:"withdrawn"`
	Pending        int64 `json:"pending"`
	MatrixWallet   int64 `json:"matrixWallet"`
	MatrixIncome   int64 `json:"matrixIncome"`
	ReferralIncome int64 `json:"referralIncome"`
	Royalty        int64 `json:"royalty"`
}

// WalletPatch carries a partial wallet update; nil fields are left
// unchanged by the merge.
type WalletPatch struct {
	Balance        *int64 `json:"balance,omitempty"`
	TotalEarnings  *int64 `json:"totalEarnings,omitempty"`
	Withdrawn      *int64 `json:"withdrawn,omitempty"`
	Pending        *int64 `json:"pending,omitempty"`
	MatrixWallet   *int64 `json:"matrixWallet,omitempty"`
	MatrixIncome   *int64 `json:"matrixIncome,omitempty"`
	ReferralIncome *int64 `json:"referralIncome,omitempty"`
	Royalty        *int64 `json:"royalty,omitempty"`
}

// TransactionDirection marks an entry as money in or money out.
type TransactionDirection string

const (
	Credit TransactionDirection = "credit"
	Debit  TransactionDirection = "debit"
)

// Transaction is a local log entry. Optimistic entries are created
// client-side with a monotonic clock id and a "Processing" description;
// authoritative entries arrive on the next server fetch and supersede them.
type Transaction struct {
	ID          int64                `json:"id"`
	Type        string               `json:"type"`
	Description string               `json:"description"`
	Amount      int64                `json:"amount"`
	Date        string               `json:"date"`
	Direction   TransactionDirection `json:"direction"`
}

// WeeklyStats is the weekly referral/bonanza view plus withdrawal usage.
type WeeklyStats struct {
	WeekStart       string `json:"weekStart"`
	WeekEnd         string `json:"weekEnd"`
	DirectReferrals int    `json:"directReferrals"`
	BonusThreshold  int    `json:"bonusThreshold"`
	BonusUnlocked   bool   `json:"bonusUnlocked"`
	BaseEarnings    int64  `json:"baseEarnings"`
	BonusEarnings   int64  `json:"bonusEarnings"`
	TotalEarnings   int64  `json:"totalEarnings"`
	WithdrawalUsed  int64  `json:"withdrawalUsed"`
	WithdrawalLimit int64  `json:"withdrawalLimit"`
}

// WeeklyPatch carries a partial weekly-stats update.
type WeeklyPatch struct {
	WeekStart       *string `json:"weekStart,omitempty"`
	WeekEnd         *string `json:"weekEnd,omitempty"`
	DirectReferrals *int    `json:"directReferrals,omitempty"`
	BonusThreshold  *int    `json:"bonusThreshold,omitempty"`
	BonusUnlocked   *bool   `json:"bonusUnlocked,omitempty"`
	BaseEarnings    *int64  `json:"baseEarnings,omitempty"`
	BonusEarnings   *int64  `json:"bonusEarnings,omitempty"`
	TotalEarnings   *int64  `json:"totalEarnings,omitempty"`
	WithdrawalUsed  *int64  `json:"withdrawalUsed,omitempty"`
	WithdrawalLimit *int64  `json:"withdrawalLimit,omitempty"`
}

// MatrixLevel is one tier of the member's referral matrix.
type MatrixLevel struct {
	Filled int `json:"filled"`
	Total  int `json:"total"`
}

// MatrixStatus mirrors the server-tracked matrix fill state. The cycle
// counter is opaque to this client beyond its numeric value.
type MatrixStatus struct {
	Level1 MatrixLevel `json:"level1"`
	Level2 MatrixLevel `json:"level2"`
	Cycle  int         `json:"cycle"`
}

// WalletType selects which balance a withdrawal draws from.
type WalletType string

const (
	CurrentWallet WalletType = "current"
	MatrixWallet  WalletType = "matrix"
)

// BankDetails is the payout destination for a withdrawal.
// Tags drive the field-presence checks of the withdrawal gate.
type BankDetails struct {
	AccountNumber     string `json:"accountNumber" validate:"required"`
	IFSCCode          string `json:"ifscCode" validate:"required"`
	AccountHolderName string `json:"accountHolderName" validate:"required"`
}

// WithdrawalRequest is ephemeral: built client-side, validated, sent,
// then discarded. On failure the UI keeps the form for correction.
type WithdrawalRequest struct {
	Amount      int64       `json:"amount"`
	WalletType  WalletType  `json:"walletType"`
	BankDetails BankDetails `json:"bankDetails"`
}

// Withdrawal is a server-reported withdrawal history row.
type Withdrawal struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AdminFee   int64  `json:"adminFee"`
	NetPayable int64  `json:"netPayable"`
	WalletType string `json:"walletType"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

// ReferralMember is one row of the member's direct-referral list.
type ReferralMember struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Joined         string `json:"joined"`
	Status         string `json:"status"`
	Verified       bool   `json:"verified"`
	RewardCredited bool   `json:"rewardCredited"`
}

// BonanzaLog is one credited weekly-bonus entry.
type BonanzaLog struct {
	ID       int64  `json:"id"`
	Amount   int64  `json:"amount"`
	Referral string `json:"referral"`
	Date     string `json:"date"`
}

// LeadershipLog is one credited royalty entry.
type LeadershipLog struct {
	ID      int64  `json:"id"`
	Amount  int64  `json:"amount"`
	Trigger string `json:"trigger"`
	Date    string `json:"date"`
}

// SignupRequest is the member registration payload.
type SignupRequest struct {
	Fullname     string `json:"fullname" validate:"required"`
	Username     string `json:"username" validate:"required,min=3"`
	Phone        string `json:"phone" validate:"required"`
	Password     string `json:"password" validate:"required,min=6"`
	ReferralCode string `json:"referralCode,omitempty"`
}

// NotificationKind classifies a transient status message.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is a transient status message; it self-clears after its TTL.
type Notification struct {
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Kind    NotificationKind `json:"kind"`
	At      time.Time        `json:"at"`
}
