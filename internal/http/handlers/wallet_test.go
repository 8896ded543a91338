package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidver/internal/middleware"

	"github.com/jackc/pgx/v5"
)

func TestTokensHistory(t *testing.T) {
	now := time.Now()
	sqlStub := &stubExecutor{
		queryFn: func(query string, args ...any) (pgx.Rows, error) {
			if limit := args[1].(int); limit != historyLimit {
				t.Errorf("limit = %d, want %d", limit, historyLimit)
			}
			return newFakeRows([][]any{
				{"txn-2", "user-1", "job-1", -20, "IMAGE_MODIFY", 100, 80, "", now},
				{"txn-1", "user-1", nil, 100, "INITIAL", 0, 100, "registration bonus", now.Add(-time.Hour)},
			}), nil
		},
	}
	app := testApp(&stubSubmitter{}, &stubWallet{balance: 80}, sqlStub)

	req := httptest.NewRequest("GET", "/v1/tokens/history", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
	rr := httptest.NewRecorder()

	app.TokensHistory(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Balance      int              `json:"balance"`
		Transactions []transactionDTO `json:"transactions"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balance != 80 {
		t.Fatalf("balance = %d, want 80", resp.Balance)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(resp.Transactions))
	}
	first := resp.Transactions[0]
	if first.Amount != -20 || first.Kind != "IMAGE_MODIFY" || first.BalanceAfter != 80 {
		t.Fatalf("unexpected entry %+v", first)
	}
	if first.JobID == nil || *first.JobID != "job-1" {
		t.Fatalf("expected job link on debit entry")
	}
}

func TestTokensHistoryUnauthenticated(t *testing.T) {
	app := testApp(&stubSubmitter{}, &stubWallet{}, nil)
	rr := httptest.NewRecorder()
	app.TokensHistory(rr, httptest.NewRequest("GET", "/v1/tokens/history", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}
