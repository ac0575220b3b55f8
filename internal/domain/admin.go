package domain

// Administrator-facing aggregate views. These mirror what the platform's
// /admin namespace returns; the client never derives them locally.

// DashboardMetrics is the platform-wide aggregate snapshot.
type DashboardMetrics struct {
	TotalRevenue            int64 `json:"totalRevenue"`
	TotalJoiningFees        int64 `json:"totalJoiningFees"`
	TotalAdminFees          int64 `json:"totalAdminFees"`
	TotalUserEarnings       int64 `json:"totalUserEarnings"`
	ActiveUsers             int   `json:"activeUsers"`
	TotalUsers              int   `json:"totalUsers"`
	BlockedUsers            int   `json:"blockedUsers"`
	PendingWithdrawals      int   `json:"pendingWithdrawals"`
	PendingWithdrawalAmount int64 `json:"pendingWithdrawalAmount"`
	MatrixCycles            int   `json:"matrixCycles"`
	UserWalletHoldings      int64 `json:"userWalletHoldings"`
	ReserveFund             int64 `json:"reserveFund"`
	PendingPayments         int   `json:"pendingPayments"`
}

// AdminUser is one row of the administrator's user list.
type AdminUser struct {
	ID       string `json:"_id"`
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Wallet   struct {
		Balance       int64 `json:"balance"`
		TotalEarnings int64 `json:"totalEarnings"`
	} `json:"wallet"`
	Status    string `json:"status"`
	Verified  bool   `json:"verified"`
	CreatedAt string `json:"createdAt"`
}

// UserRef identifies the owning user on an admin-facing record.
type UserRef struct {
	ID       string `json:"_id"`
	Fullname string `json:"fullname"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone"`
}

// PendingWithdrawal is one entry of the administrator's approval queue.
type PendingWithdrawal struct {
	ID          string      `json:"_id"`
	User        UserRef     `json:"user"`
	Amount      int64       `json:"amount"`
	AdminFee    int64       `json:"adminFee"`
	NetPayable  int64       `json:"netPayable"`
	BankDetails BankDetails `json:"bankDetails"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"createdAt"`
}

// LedgerEntry is one platform-wide transaction row.
type LedgerEntry struct {
	ID          string  `json:"_id"`
	User        UserRef `json:"user"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      int64   `json:"amount"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
}

// PendingPayment is a user awaiting joining-payment verification.
type PendingPayment struct {
	ID        string `json:"_id"`
	Fullname  string `json:"fullname"`
	Username  string `json:"username"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"createdAt"`
}

// WalletAdjustment is the admin credit/debit payload for a user wallet.
type WalletAdjustment struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Type        string `json:"type" validate:"required,oneof=credit debit"`
	Description string `json:"description,omitempty"`
}
