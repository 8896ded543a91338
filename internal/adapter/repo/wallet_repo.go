package repo

import (
	"context"
	"fmt"

	"vidver/internal/domain"
	"vidver/internal/infra"
	"vidver/internal/sqlinline"
)

// WalletRepositoryPG implements domain.WalletStore. All mutations run as
// single CTE statements so the balance change and its ledger entry are never
// separately observable.
type WalletRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewWalletRepository creates a wallet store backed by PostgreSQL.
func NewWalletRepository(sql infra.SQLExecutor) *WalletRepositoryPG {
	return &WalletRepositoryPG{sql: sql}
}

// Balance returns the current token balance for the user.
func (r *WalletRepositoryPG) Balance(ctx context.Context, userID string) (int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectWalletBalance, userID)
	var balance int
	if err := row.Scan(&balance); err != nil {
		if infra.IsNoRows(err) {
			return 0, fmt.Errorf("wallet for user %s: %w", userID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("select wallet balance: %w", err)
	}
	return balance, nil
}

// CreateWithSignupBonus creates the wallet with the registration grant and
// its INITIAL ledger entry.
func (r *WalletRepositoryPG) CreateWithSignupBonus(ctx context.Context, userID string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QCreateWalletWithBonus, userID, domain.DefaultTokenBalance, "registration bonus")
	var txnID string
	if err := row.Scan(&txnID); err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	return nil
}

// Credit increments the balance and appends the matching ledger entry.
func (r *WalletRepositoryPG) Credit(ctx context.Context, userID string, amount int, kind domain.TransactionKind, description string) (*domain.TokenTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive: %w", domain.ErrInvalidRequest)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QCreditWallet, userID, amount, string(kind), description)
	txn := domain.TokenTransaction{
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
	}
	if err := row.Scan(&txn.ID, &txn.BalanceBefore, &txn.BalanceAfter, &txn.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("wallet for user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("credit wallet: %w", err)
	}
	return &txn, nil
}

// SettleJobSuccess performs the debit, ledger append and DONE transition as
// one statement. A missing row means the conditional debit did not fire.
func (r *WalletRepositoryPG) SettleJobSuccess(ctx context.Context, userID, jobID string, cost int, kind domain.TransactionKind) (*domain.TokenTransaction, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSettleJobSuccess, userID, jobID, cost, string(kind))
	txn := domain.TokenTransaction{
		UserID: userID,
		JobID:  &jobID,
		Amount: -cost,
		Kind:   kind,
	}
	if err := row.Scan(&txn.ID, &txn.BalanceBefore, &txn.BalanceAfter, &txn.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("settle job %s: %w", jobID, domain.ErrInsufficientTokens)
		}
		return nil, fmt.Errorf("settle job %s: %w", jobID, err)
	}
	return &txn, nil
}

var _ domain.WalletStore = (*WalletRepositoryPG)(nil)
