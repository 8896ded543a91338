package handlers

import (
	"net/http"
	"time"

	"vidver/internal/sqlinline"
)

const historyLimit = 50

type transactionDTO struct {
	ID            string    `json:"id"`
	JobID         *string   `json:"job_id,omitempty"`
	Amount        int       `json:"amount"`
	Kind          string    `json:"kind"`
	BalanceBefore int       `json:"balance_before"`
	BalanceAfter  int       `json:"balance_after"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (a *App) TokensHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	balance, err := a.Wallets.Balance(r.Context(), userID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListTransactionsByUser, userID, historyLimit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	defer rows.Close()
	items := []transactionDTO{}
	for rows.Next() {
		var t transactionDTO
		var ownerID string
		if err := rows.Scan(&t.ID, &ownerID, &t.JobID, &t.Amount, &t.Kind, &t.BalanceBefore, &t.BalanceAfter, &t.Description, &t.CreatedAt); err != nil {
			continue
		}
		items = append(items, t)
	}
	a.json(w, http.StatusOK, map[string]any{
		"balance":      balance,
		"transactions": items,
	})
}
