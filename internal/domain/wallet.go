package domain

import "time"

// DefaultTokenBalance is granted to every wallet at registration.
const DefaultTokenBalance = 100

// Wallet holds a user's token balance. The balance is only mutated through
// the wallet store, and every mutation appends exactly one TokenTransaction.
type Wallet struct {
	UserID      string
	Balance     int
	TotalEarned int
	TotalSpent  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TransactionKind enumerates ledger entry categories.
type TransactionKind string

const (
	TxnKindInitial       TransactionKind = "INITIAL"
	TxnKindPurchase      TransactionKind = "PURCHASE"
	TxnKindImageModify   TransactionKind = "IMAGE_MODIFY"
	TxnKindVideoGenerate TransactionKind = "VIDEO_GENERATE"
	TxnKindRefund        TransactionKind = "REFUND"
)

// TokenTransaction is one append-only ledger entry. BalanceAfter is always
// BalanceBefore + Amount; rows are never updated or deleted.
type TokenTransaction struct {
	ID            string
	UserID        string
	JobID         *string
	Amount        int
	Kind          TransactionKind
	BalanceBefore int
	BalanceAfter  int
	Description   string
	CreatedAt     time.Time
}
