package handlers

import (
	"context"

	"vidver/internal/domain"
	"vidver/internal/orchestrator"
)

type stubWallet struct {
	balance    int
	balanceErr error
	created    []string
}

func (s *stubWallet) Balance(ctx context.Context, userID string) (int, error) {
	if s.balanceErr != nil {
		return 0, s.balanceErr
	}
	return s.balance, nil
}

func (s *stubWallet) CreateWithSignupBonus(ctx context.Context, userID string) error {
	s.created = append(s.created, userID)
	return nil
}

func (s *stubWallet) Credit(ctx context.Context, userID string, amount int, kind domain.TransactionKind, description string) (*domain.TokenTransaction, error) {
	return &domain.TokenTransaction{UserID: userID, Amount: amount, Kind: kind}, nil
}

func (s *stubWallet) SettleJobSuccess(ctx context.Context, userID, jobID string, cost int, kind domain.TransactionKind) (*domain.TokenTransaction, error) {
	return nil, domain.ErrNotFound
}

type stubSubmitter struct {
	result *orchestrator.Result
	err    error
	userID string
	got    orchestrator.SubmitRequest
	calls  int
}

func (s *stubSubmitter) Submit(ctx context.Context, userID string, req orchestrator.SubmitRequest) (*orchestrator.Result, error) {
	s.calls++
	s.userID = userID
	s.got = req
	return s.result, s.err
}
