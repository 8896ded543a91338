package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vidver/internal/domain"
	"vidver/internal/gateway"

	"github.com/rs/zerolog"
)

// memStore backs all three stores with one mutex so settlement is atomic the
// same way the single-statement SQL is.
type memStore struct {
	mu      sync.Mutex
	userID  string
	balance int
	seq     int
	assets  map[string]domain.Asset
	jobs    map[string]*domain.Job
	outputs map[string][]string
	txns    []domain.TokenTransaction
}

func newMemStore(userID string, balance int) *memStore {
	return &memStore{
		userID:  userID,
		balance: balance,
		assets:  map[string]domain.Asset{},
		jobs:    map[string]*domain.Job{},
		outputs: map[string][]string{},
	}
}

func (m *memStore) addAsset(id, ownerID string, side domain.AssetSide) {
	m.assets[id] = domain.Asset{ID: id, UserID: ownerID, Kind: domain.AssetKindImage, Side: side, StorageKey: "uploads/" + id + ".jpg"}
}

func (m *memStore) Balance(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if userID != m.userID {
		return 0, domain.ErrNotFound
	}
	return m.balance, nil
}

func (m *memStore) CreateWithSignupBonus(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = domain.DefaultTokenBalance
	return nil
}

func (m *memStore) Credit(ctx context.Context, userID string, amount int, kind domain.TransactionKind, description string) (*domain.TokenTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.balance
	m.balance += amount
	txn := domain.TokenTransaction{UserID: userID, Amount: amount, Kind: kind, BalanceBefore: before, BalanceAfter: m.balance, CreatedAt: time.Now()}
	m.txns = append(m.txns, txn)
	return &txn, nil
}

func (m *memStore) SettleJobSuccess(ctx context.Context, userID, jobID string, cost int, kind domain.TransactionKind) (*domain.TokenTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.jobs[jobID]
	if job == nil || job.Status != domain.JobStatusProcessing {
		return nil, domain.ErrNotFound
	}
	if m.balance < cost {
		return nil, domain.ErrInsufficientTokens
	}
	before := m.balance
	m.balance -= cost
	job.Status = domain.JobStatusDone
	txn := domain.TokenTransaction{
		ID:            fmt.Sprintf("txn-%d", len(m.txns)+1),
		UserID:        userID,
		JobID:         &jobID,
		Amount:        -cost,
		Kind:          kind,
		BalanceBefore: before,
		BalanceAfter:  m.balance,
		CreatedAt:     time.Now(),
	}
	m.txns = append(m.txns, txn)
	return &txn, nil
}

func (m *memStore) Create(ctx context.Context, job *domain.Job, inputAssetIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	job.ID = fmt.Sprintf("job-%d", m.seq)
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *memStore) MarkFailed(ctx context.Context, jobID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.jobs[jobID]
	if job == nil || job.Status.Terminal() {
		return nil
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = message
	return nil
}

func (m *memStore) LinkOutputs(ctx context.Context, jobID string, assetIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[jobID] = append(m.outputs[jobID], assetIDs...)
	return nil
}

func (m *memStore) GetForUser(ctx context.Context, jobID, userID string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.jobs[jobID]
	if job == nil || job.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memStore) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	asset.ID = fmt.Sprintf("asset-%d", m.seq)
	asset.CreatedAt = time.Now()
	m.assets[asset.ID] = *asset
	return nil
}

func (m *memStore) GetOwned(ctx context.Context, assetID, userID string) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[assetID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if asset.UserID != userID {
		return nil, domain.ErrForbidden
	}
	copied := asset
	return &copied, nil
}

// assetStore adapts memStore's CreateAsset to the domain.AssetStore shape.
type assetStore struct{ *memStore }

func (s assetStore) Create(ctx context.Context, asset *domain.Asset) error {
	return s.CreateAsset(ctx, asset)
}

type stubGateway struct {
	mu        sync.Mutex
	submitErr error
	awaitErr  error
	status    gateway.TaskStatus
	submits   int
}

func (g *stubGateway) Submit(ctx context.Context, req gateway.TaskRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submits++
	if g.submitErr != nil {
		return "", g.submitErr
	}
	return fmt.Sprintf("task-%d", g.submits), nil
}

func (g *stubGateway) Await(ctx context.Context, taskID string) (gateway.TaskStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.awaitErr != nil {
		return gateway.TaskStatus{}, g.awaitErr
	}
	return g.status, nil
}

func newOrchestrator(store *memStore, gw *stubGateway) *Orchestrator {
	return &Orchestrator{
		Wallets:      store,
		Jobs:         store,
		Assets:       assetStore{store},
		Gateway:      gw,
		AssetBaseURL: "http://localhost:8080/static",
		Logger:       zerolog.Nop(),
	}
}

func TestSubmitImageSuccess(t *testing.T) {
	store := newMemStore("user-1", 100)
	store.addAsset("a1", "user-1", domain.AssetSideFront)
	gw := &stubGateway{status: gateway.TaskStatus{State: gateway.TaskSucceeded, ResultURL: "https://cdn.example.com/out.jpg"}}
	orch := newOrchestrator(store, gw)

	result, err := orch.Submit(context.Background(), "user-1", SubmitRequest{
		Kind:          domain.JobKindImage,
		InputAssetIDs: []string{"a1"},
		BrandName:     "BMW",
		ModelName:     "M3",
		Presets:       []string{"spoiler", "wheels"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Job.Status != domain.JobStatusDone {
		t.Fatalf("job status = %s, want DONE", result.Job.Status)
	}
	if result.RemainingBalance != 80 {
		t.Fatalf("remaining = %d, want 80", result.RemainingBalance)
	}
	if len(result.OutputAssets) != 1 {
		t.Fatalf("outputs = %d, want 1", len(result.OutputAssets))
	}
	out := result.OutputAssets[0]
	if out.Kind != domain.AssetKindImage || out.StorageKey != "https://cdn.example.com/out.jpg" {
		t.Fatalf("unexpected output asset %+v", out)
	}
	if out.Side != domain.AssetSideFront {
		t.Fatalf("output side = %s, want FRONT", out.Side)
	}
	if len(store.txns) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(store.txns))
	}
	txn := store.txns[0]
	if txn.Amount != -20 || txn.BalanceBefore != 100 || txn.BalanceAfter != 80 {
		t.Fatalf("unexpected ledger entry %+v", txn)
	}
	if txn.JobID == nil || *txn.JobID != result.Job.ID {
		t.Fatalf("ledger entry not linked to job")
	}
	if got := store.outputs[result.Job.ID]; len(got) != 1 || got[0] != out.ID {
		t.Fatalf("output link = %v", got)
	}
}

func TestSubmitVideoSuccess(t *testing.T) {
	store := newMemStore("user-1", 100)
	store.addAsset("a1", "user-1", domain.AssetSideLeft)
	gw := &stubGateway{status: gateway.TaskStatus{State: gateway.TaskSucceeded, ResultURL: "https://cdn.example.com/out.mp4"}}
	orch := newOrchestrator(store, gw)

	result, err := orch.Submit(context.Background(), "user-1", SubmitRequest{
		Kind:          domain.JobKindVideo,
		InputAssetIDs: []string{"a1"},
		EffectKey:     "360_spin",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.RemainingBalance != 50 {
		t.Fatalf("remaining = %d, want 50", result.RemainingBalance)
	}
	out := result.OutputAssets[0]
	if out.Kind != domain.AssetKindVideo || out.MIME != "video/mp4" {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestSubmitInsufficientBalance(t *testing.T) {
	store := newMemStore("user-1", 10)
	store.addAsset("a1", "user-1", "")
	gw := &stubGateway{status: gateway.TaskStatus{State: gateway.TaskSucceeded, ResultURL: "x"}}
	orch := newOrchestrator(store, gw)

	_, err := orch.Submit(context.Background(), "user-1", SubmitRequest{
		Kind:          domain.JobKindVideo,
		InputAssetIDs: []string{"a1"},
		EffectKey:     "360_spin",
	})
	if !errors.Is(err, domain.ErrInsufficientTokens) {
		t.Fatalf("err = %v, want ErrInsufficientTokens", err)
	}
	if len(store.jobs) != 0 {
		t.Fatalf("expected no job created, got %d", len(store.jobs))
	}
	if gw.submits != 0 {
		t.Fatalf("expected no gateway call")
	}
	if store.balance != 10 {
		t.Fatalf("balance changed to %d", store.balance)
	}
}

func TestSubmitForeignAsset(t *testing.T) {
	store := newMemStore("user-1", 100)
	store.addAsset("a1", "someone-else", "")
	gw := &stubGateway{}
	orch := newOrchestrator(store, gw)

	_, err := orch.Submit(context.Background(), "user-1", SubmitRequest{
		Kind:          domain.JobKindImage,
		InputAssetIDs: []string{"a1"},
		Presets:       []string{"wheels"},
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if len(store.jobs) != 0 {
		t.Fatalf("expected no job created")
	}
}

func TestSubmitGatewayFailure(t *testing.T) {
	store := newMemStore("user-1", 100)
	store.addAsset("a1", "user-1", "")
	gw := &stubGateway{submitErr: fmt.Errorf("%w: http 503", domain.ErrGatewayUnavailable)}
	orch := newOrchestrator(store, gw)

	result, err := orch.Submit(context.Background(), "user-1", SubmitRequest{
		Kind:          domain.JobKindImage,
		InputAssetIDs: []string{"a1"},
		Presets:       []string{"wheels"},
	})
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
	if result == nil || result.Job.Status != domain.JobStatusFailed {
		t.Fatalf("expected failed job in result")
	}
	if store.balance != 100 {
		t.Fatalf("balance changed to %d", store.balance)
	}
	if len(store.txns) != 0 {
		t.Fatalf("expected empty ledger")
	}
}

func TestSubmitTimeoutNoCharge(t *testing.T) {
	store := newMemStore("user-1", 100)
	store.addAsset("a1", "user-1", "")
	gw := &stubGateway{awaitErr: fmt.Errorf("%w: task t not terminal after 60 polls", domain.ErrGenerationTimeout)}
	orch := newOrchestrator(store, gw)

	result, err := orch.Submit(context.Background(), "user-1", SubmitRequest{
		Kind:          domain.JobKindImage,
		InputAssetIDs: []string{"a1"},
		Presets:       []string{"wheels"},
	})
	if !errors.Is(err, domain.ErrGenerationTimeout) {
		t.Fatalf("err = %v, want ErrGenerationTimeout", err)
	}
	job := store.jobs[result.Job.ID]
	if job.Status != domain.JobStatusFailed || job.ErrorMessage == "" {
		t.Fatalf("job not failed with message: %+v", job)
	}
	if store.balance != 100 || len(store.txns) != 0 {
		t.Fatalf("wallet touched on timeout")
	}
}

func TestSubmitProviderReportedFailure(t *testing.T) {
	store := newMemStore("user-1", 100)
	store.addAsset("a1", "user-1", "")
	gw := &stubGateway{status: gateway.TaskStatus{State: gateway.TaskFailed, Reason: "content rejected"}}
	orch := newOrchestrator(store, gw)

	result, err := orch.Submit(context.Background(), "user-1", SubmitRequest{
		Kind:          domain.JobKindImage,
		InputAssetIDs: []string{"a1"},
		Presets:       []string{"wheels"},
	})
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if result.Job.ErrorMessage != "content rejected" {
		t.Fatalf("error message = %q", result.Job.ErrorMessage)
	}
	if store.balance != 100 {
		t.Fatalf("balance changed on provider failure")
	}
}

func TestSubmitUnknownEffect(t *testing.T) {
	store := newMemStore("user-1", 100)
	store.addAsset("a1", "user-1", "")
	orch := newOrchestrator(store, &stubGateway{})

	_, err := orch.Submit(context.Background(), "user-1", SubmitRequest{
		Kind:          domain.JobKindVideo,
		InputAssetIDs: []string{"a1"},
		EffectKey:     "explode",
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

// Concurrent submits must never overdraw the wallet: with 100 tokens and
// 50-token jobs exactly two of five settle.
func TestSubmitConcurrentSpending(t *testing.T) {
	store := newMemStore("user-1", 100)
	for i := 0; i < 5; i++ {
		store.addAsset(fmt.Sprintf("a%d", i), "user-1", "")
	}
	gw := &stubGateway{status: gateway.TaskStatus{State: gateway.TaskSucceeded, ResultURL: "https://cdn.example.com/out.mp4"}}
	orch := newOrchestrator(store, gw)

	var wg sync.WaitGroup
	results := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := orch.Submit(context.Background(), "user-1", SubmitRequest{
				Kind:          domain.JobKindVideo,
				InputAssetIDs: []string{fmt.Sprintf("a%d", i)},
				EffectKey:     "360_spin",
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrInsufficientTokens) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2", succeeded)
	}
	if store.balance != 0 {
		t.Fatalf("final balance = %d, want 0", store.balance)
	}
	if len(store.txns) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(store.txns))
	}
}
