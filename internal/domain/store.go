package domain

import "context"

// WalletStore is the sole writer of balance mutations. Every mutation appends
// exactly one TokenTransaction in the same atomic unit.
type WalletStore interface {
	// Balance returns the current token balance, ErrNotFound without a wallet.
	Balance(ctx context.Context, userID string) (int, error)
	// CreateWithSignupBonus creates the wallet with the registration grant and
	// the matching INITIAL ledger entry.
	CreateWithSignupBonus(ctx context.Context, userID string) error
	// Credit increments the balance (purchases, refunds).
	Credit(ctx context.Context, userID string, amount int, kind TransactionKind, description string) (*TokenTransaction, error)
	// SettleJobSuccess atomically debits cost from the wallet, appends the
	// ledger entry referencing jobID, and marks the job DONE. When the balance
	// no longer covers cost, nothing is applied and ErrInsufficientTokens is
	// returned.
	SettleJobSuccess(ctx context.Context, userID, jobID string, cost int, kind TransactionKind) (*TokenTransaction, error)
}

// JobStore persists job records and their asset links.
type JobStore interface {
	// Create inserts the job in PROCESSING and links the input assets. Input
	// links are only created for assets owned by the job's user; a mismatch
	// yields ErrForbidden.
	Create(ctx context.Context, job *Job, inputAssetIDs []string) error
	// MarkFailed moves a PROCESSING job to FAILED. Terminal jobs are left
	// untouched.
	MarkFailed(ctx context.Context, jobID, message string) error
	// LinkOutputs attaches generated assets to the job.
	LinkOutputs(ctx context.Context, jobID string, assetIDs []string) error
	// GetForUser fetches a job scoped to its owner.
	GetForUser(ctx context.Context, jobID, userID string) (*Job, error)
}

// AssetStore persists media records.
type AssetStore interface {
	// Create inserts an asset row; the implementation assigns ID and CreatedAt.
	Create(ctx context.Context, asset *Asset) error
	// GetOwned fetches an asset and enforces ownership: ErrNotFound when the
	// id is unknown, ErrForbidden when owned by someone else.
	GetOwned(ctx context.Context, assetID, userID string) (*Asset, error)
}
