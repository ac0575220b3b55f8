package domain

// Partial-update merges. Every fetch path funnels into these, so the
// semantics are uniform: last write wins per field, nil leaves the field
// unchanged.

// Apply merges a wallet patch into w.
func (w *Wallet) Apply(p WalletPatch) {
	if p.Balance != nil {
		w.Balance = *p.Balance
	}
	if p.TotalEarnings != nil {
		w.TotalEarnings = *p.TotalEarnings
	}
	if p.Withdrawn != nil {
		w.Withdrawn = *p.Withdrawn
	}
	if p.Pending != nil {
		w.Pending = *p.Pending
	}
	if p.MatrixWallet != nil {
		w.MatrixWallet = *p.MatrixWallet
	}
	if p.MatrixIncome != nil {
		w.MatrixIncome = *p.MatrixIncome
	}
	if p.ReferralIncome != nil {
		w.ReferralIncome = *p.ReferralIncome
	}
	if p.Royalty != nil {
		w.Royalty = *p.Royalty
	}
}

// Apply merges a weekly-stats patch into s.
func (s *WeeklyStats) Apply(p WeeklyPatch) {
	if p.WeekStart != nil {
		s.WeekStart = *p.WeekStart
	}
	if p.WeekEnd != nil {
		s.WeekEnd = *p.WeekEnd
	}
	if p.DirectReferrals != nil {
		s.DirectReferrals = *p.DirectReferrals
	}
	if p.BonusThreshold != nil {
		s.BonusThreshold = *p.BonusThreshold
	}
	if p.BonusUnlocked != nil {
		s.BonusUnlocked = *p.BonusUnlocked
	}
	if p.BaseEarnings != nil {
		s.BaseEarnings = *p.BaseEarnings
	}
	if p.BonusEarnings != nil {
		s.BonusEarnings = *p.BonusEarnings
	}
	if p.TotalEarnings != nil {
		s.TotalEarnings = *p.TotalEarnings
	}
	if p.WithdrawalUsed != nil {
		s.WithdrawalUsed = *p.WithdrawalUsed
	}
	if p.WithdrawalLimit != nil {
		s.WithdrawalLimit = *p.WithdrawalLimit
	}
}
