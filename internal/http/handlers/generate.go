package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"vidver/internal/domain"
	"vidver/internal/orchestrator"
	"vidver/internal/sqlinline"
)

type generateImageRequest struct {
	AssetIDs []string `json:"asset_ids"`
	BrandID  string   `json:"brand_id"`
	ModelID  string   `json:"model_id"`
	Presets  []string `json:"presets"`
}

type generateVideoRequest struct {
	AssetID   string `json:"asset_id"`
	EffectKey string `json:"effect_key"`
}

type generateResponse struct {
	Job              jobDTO        `json:"job"`
	OutputAssets     []jobAssetDTO `json:"output_assets"`
	RemainingBalance int           `json:"remaining_balance"`
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.AssetIDs) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "asset_ids required")
		return
	}
	if len(req.Presets) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "at least one preset required")
		return
	}
	for _, key := range req.Presets {
		if !domain.KnownTuningPreset(key) {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown preset: "+key)
			return
		}
	}
	brandName, modelName := a.resolveBrandModel(r, req.BrandID, req.ModelID)

	a.runGeneration(w, r, userID, orchestrator.SubmitRequest{
		Kind:          domain.JobKindImage,
		InputAssetIDs: req.AssetIDs,
		BrandID:       req.BrandID,
		ModelID:       req.ModelID,
		BrandName:     brandName,
		ModelName:     modelName,
		Presets:       req.Presets,
	})
}

func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.AssetID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "asset_id required")
		return
	}
	if !domain.KnownVideoEffect(req.EffectKey) {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown effect: "+req.EffectKey)
		return
	}

	a.runGeneration(w, r, userID, orchestrator.SubmitRequest{
		Kind:          domain.JobKindVideo,
		InputAssetIDs: []string{req.AssetID},
		EffectKey:     req.EffectKey,
	})
}

// runGeneration blocks through the provider round trip. When the job exists
// but ended FAILED, the error payload carries its id so clients can inspect
// the terminal record.
func (a *App) runGeneration(w http.ResponseWriter, r *http.Request, userID string, req orchestrator.SubmitRequest) {
	result, err := a.Orchestrator.Submit(r.Context(), userID, req)
	if err != nil {
		if result != nil && result.Job != nil {
			a.Logger.Warn().Err(err).Str("job_id", result.Job.ID).Msg("generation failed")
			w.Header().Set("X-Job-ID", result.Job.ID)
		}
		a.domainError(w, r, err)
		return
	}
	outputs := make([]jobAssetDTO, 0, len(result.OutputAssets))
	for _, asset := range result.OutputAssets {
		outputs = append(outputs, jobAssetDTO{
			ID:         asset.ID,
			Kind:       string(asset.Kind),
			Side:       string(asset.Side),
			URL:        a.assetURL(asset.StorageKey),
			Filename:   asset.Filename,
			MIME:       asset.MIME,
			Bytes:      asset.Bytes,
			Properties: asset.Properties,
			Role:       "output",
		})
	}
	a.json(w, http.StatusCreated, generateResponse{
		Job:              jobToDTO(result.Job),
		OutputAssets:     outputs,
		RemainingBalance: result.RemainingBalance,
	})
}

func (a *App) resolveBrandModel(r *http.Request, brandID, modelID string) (string, string) {
	if strings.TrimSpace(brandID) == "" && strings.TrimSpace(modelID) == "" {
		return "", ""
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectBrandModelNames, brandID, modelID)
	var brandName, modelName string
	if err := row.Scan(&brandName, &modelName); err != nil {
		a.Logger.Warn().Err(err).Msg("resolve brand/model failed")
		return "", ""
	}
	return brandName, modelName
}

func jobToDTO(job *domain.Job) jobDTO {
	return jobDTO{
		ID:           job.ID,
		Kind:         string(job.Kind),
		Status:       string(job.Status),
		CostTokens:   job.CostTokens,
		BrandID:      job.BrandID,
		ModelID:      job.ModelID,
		Presets:      job.Presets,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		CompletedAt:  job.CompletedAt,
	}
}
