package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"vidver/internal/domain"
	"vidver/internal/gateway"
	"vidver/internal/infra"
	"vidver/internal/prompt"
)

// GenerationGateway is the boundary to the external AI provider.
type GenerationGateway interface {
	Submit(ctx context.Context, req gateway.TaskRequest) (string, error)
	Await(ctx context.Context, taskID string) (gateway.TaskStatus, error)
}

// SubmitRequest carries one generation request into the orchestrator. The
// user id always arrives as an explicit parameter of Submit, never from
// ambient request state.
type SubmitRequest struct {
	Kind          domain.JobKind
	InputAssetIDs []string
	BrandID       string
	ModelID       string
	BrandName     string
	ModelName     string
	Presets       []string
	EffectKey     string
}

// Result is the terminal outcome returned to the caller. Job is always in a
// terminal state; callers never receive a pending handle.
type Result struct {
	Job              *domain.Job
	OutputAssets     []domain.Asset
	RemainingBalance int
}

// Orchestrator drives one generation request from intake to settlement:
// balance check, job creation, gateway call, asset persistence and the
// atomic wallet settlement. Tokens are only charged on confirmed success.
type Orchestrator struct {
	Wallets      domain.WalletStore
	Jobs         domain.JobStore
	Assets       domain.AssetStore
	Gateway      GenerationGateway
	AssetBaseURL string
	Logger       infra.Logger
}

// Submit runs a generation job synchronously and returns the terminal job.
// On any error after the job row exists, the returned Result still carries
// the FAILED job so callers can surface it.
func (o *Orchestrator) Submit(ctx context.Context, userID string, req SubmitRequest) (*Result, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id required: %w", domain.ErrInvalidRequest)
	}
	if len(req.InputAssetIDs) == 0 {
		return nil, fmt.Errorf("at least one input asset required: %w", domain.ErrInvalidRequest)
	}
	cost := domain.JobCost(req.Kind)
	if cost == 0 {
		return nil, fmt.Errorf("unknown job kind %q: %w", req.Kind, domain.ErrInvalidRequest)
	}
	if req.Kind == domain.JobKindVideo && !domain.KnownVideoEffect(req.EffectKey) {
		return nil, fmt.Errorf("unknown video effect %q: %w", req.EffectKey, domain.ErrInvalidRequest)
	}

	// Pre-check so an obviously broke wallet never creates a job. The debit
	// itself re-checks atomically at settlement.
	balance, err := o.Wallets.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < cost {
		return nil, fmt.Errorf("balance %d below cost %d: %w", balance, cost, domain.ErrInsufficientTokens)
	}

	inputs := make([]domain.Asset, 0, len(req.InputAssetIDs))
	for _, assetID := range req.InputAssetIDs {
		asset, err := o.Assets.GetOwned(ctx, assetID, userID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, *asset)
	}

	job := &domain.Job{
		UserID:     userID,
		Kind:       req.Kind,
		Status:     domain.JobStatusProcessing,
		CostTokens: cost,
		BrandID:    optionalID(req.BrandID),
		ModelID:    optionalID(req.ModelID),
		Presets:    presetsFor(req),
	}
	if err := o.Jobs.Create(ctx, job, req.InputAssetIDs); err != nil {
		return nil, err
	}

	taskID, err := o.Gateway.Submit(ctx, o.taskRequest(req, inputs[0]))
	if err != nil {
		o.failJob(ctx, job, err.Error())
		return &Result{Job: job}, err
	}

	status, err := o.Gateway.Await(ctx, taskID)
	if err != nil {
		o.failJob(ctx, job, err.Error())
		return &Result{Job: job}, err
	}
	if status.State != gateway.TaskSucceeded {
		reason := status.Reason
		if reason == "" {
			reason = "provider reported failure"
		}
		o.failJob(ctx, job, reason)
		return &Result{Job: job}, fmt.Errorf("%w: %s", domain.ErrGenerationFailed, reason)
	}

	output := o.buildOutput(job, req, inputs[0], status.ResultURL)
	if err := o.Assets.Create(ctx, &output); err != nil {
		o.failJob(ctx, job, "failed to persist generated asset")
		return &Result{Job: job}, err
	}
	if err := o.Jobs.LinkOutputs(ctx, job.ID, []string{output.ID}); err != nil {
		o.failJob(ctx, job, "failed to link generated asset")
		return &Result{Job: job}, err
	}

	txn, err := o.Wallets.SettleJobSuccess(ctx, userID, job.ID, cost, domain.TransactionKindFor(req.Kind))
	if err != nil {
		// The provider already did the work but the debit did not land. The
		// job must not surface as DONE without its ledger entry.
		o.failJob(ctx, job, fmt.Sprintf("settlement failed: %v", err))
		return &Result{Job: job}, err
	}

	job.Status = domain.JobStatusDone
	job.CompletedAt = &txn.CreatedAt
	o.Logger.Info().
		Str("job_id", job.ID).
		Str("user_id", userID).
		Int("cost", cost).
		Int("balance", txn.BalanceAfter).
		Msg("job settled")

	return &Result{
		Job:              job,
		OutputAssets:     []domain.Asset{output},
		RemainingBalance: txn.BalanceAfter,
	}, nil
}

func (o *Orchestrator) taskRequest(req SubmitRequest, input domain.Asset) gateway.TaskRequest {
	if req.Kind == domain.JobKindVideo {
		return gateway.TaskRequest{
			Kind:     gateway.TaskVideoEffect,
			Prompt:   prompt.BuildEffectInstruction(req.EffectKey),
			ImageURL: o.publicURL(input.StorageKey),
			Params:   map[string]string{"effect": req.EffectKey},
		}
	}
	return gateway.TaskRequest{
		Kind:     gateway.TaskImageTune,
		Prompt:   prompt.BuildTuneInstruction(req.BrandName, req.ModelName, req.Presets),
		ImageURL: o.publicURL(input.StorageKey),
	}
}

func (o *Orchestrator) buildOutput(job *domain.Job, req SubmitRequest, input domain.Asset, resultURL string) domain.Asset {
	if req.Kind == domain.JobKindVideo {
		return domain.Asset{
			UserID:     job.UserID,
			JobID:      &job.ID,
			Kind:       domain.AssetKindVideo,
			StorageKey: resultURL,
			Filename:   req.EffectKey + "-output.mp4",
			MIME:       "video/mp4",
			Properties: domain.MustMarshal(domain.VideoEffectMeta{
				Generated:       true,
				JobID:           job.ID,
				Effect:          req.EffectKey,
				DurationSeconds: 10,
				Provider:        "kie",
			}),
		}
	}
	filename := "tuned" + path.Ext(resultURL)
	if input.Side != "" {
		filename = strings.ToLower(string(input.Side)) + "-" + filename
	}
	if path.Ext(filename) == "" {
		filename += ".jpg"
	}
	return domain.Asset{
		UserID:     job.UserID,
		JobID:      &job.ID,
		Kind:       domain.AssetKindImage,
		Side:       input.Side,
		StorageKey: resultURL,
		Filename:   filename,
		MIME:       "image/jpeg",
		Properties: domain.MustMarshal(domain.ImageTuneMeta{
			Generated: true,
			JobID:     job.ID,
			Brand:     req.BrandName,
			Model:     req.ModelName,
			Presets:   req.Presets,
			Provider:  "kie",
		}),
	}
}

// failJob records the terminal FAILED state. It runs detached from the
// request's cancellation so an aborted client still leaves a terminal job.
func (o *Orchestrator) failJob(ctx context.Context, job *domain.Job, message string) {
	if err := o.Jobs.MarkFailed(context.WithoutCancel(ctx), job.ID, message); err != nil {
		o.Logger.Error().Err(err).Str("job_id", job.ID).Msg("mark job failed")
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = message
}

func (o *Orchestrator) publicURL(storageKey string) string {
	lower := strings.ToLower(storageKey)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return storageKey
	}
	base := strings.TrimRight(o.AssetBaseURL, "/")
	return base + "/" + strings.TrimLeft(storageKey, "/")
}

func presetsFor(req SubmitRequest) []string {
	if req.Kind == domain.JobKindVideo {
		return []string{req.EffectKey}
	}
	return req.Presets
}

func optionalID(id string) *string {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return &id
}

// IsNoCharge reports whether err is one of the outcomes that must leave the
// wallet untouched.
func IsNoCharge(err error) bool {
	return errors.Is(err, domain.ErrGatewayUnavailable) ||
		errors.Is(err, domain.ErrGenerationFailed) ||
		errors.Is(err, domain.ErrGenerationTimeout)
}
