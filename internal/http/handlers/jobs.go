package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vidver/internal/sqlinline"
	"vidver/pkg/zip"

	"github.com/go-chi/chi/v5"
)

type jobDTO struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	CostTokens   int        `json:"cost_tokens"`
	BrandID      *string    `json:"brand_id,omitempty"`
	ModelID      *string    `json:"model_id,omitempty"`
	Presets      []string   `json:"presets,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type jobAssetDTO struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Side       string          `json:"side,omitempty"`
	URL        string          `json:"url"`
	Filename   string          `json:"filename"`
	MIME       string          `json:"mime"`
	Bytes      int64           `json:"bytes"`
	Properties json.RawMessage `json:"properties,omitempty"`
	Role       string          `json:"role"`
}

func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	q := r.URL.Query()
	kind := strings.ToUpper(strings.TrimSpace(q.Get("kind")))
	status := strings.ToUpper(strings.TrimSpace(q.Get("status")))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	items := a.listJobs(r, userID, kind, status, limit, offset)

	var total int
	row := a.SQL.QueryRow(r.Context(), sqlinline.QCountJobsByUser, userID, kind, status)
	if err := row.Scan(&total); err != nil {
		total = len(items)
	}
	a.json(w, http.StatusOK, map[string]any{
		"items": items,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "id")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectJobForUser, jobID, userID)
	job, err := scanJobRow(row)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"job":    job,
		"assets": a.jobAssets(r, jobID),
	})
}

// DownloadJob streams the job's generated outputs as a zip archive. Locally
// stored files are packed as bytes; provider-hosted results are packed as a
// .url entry containing the address.
func (a *App) DownloadJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "id")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectJobForUser, jobID, userID)
	if _, err := scanJobRow(row); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	var assets []zip.Asset
	for _, item := range a.jobAssets(r, jobID) {
		if item.Role != "output" {
			continue
		}
		if strings.HasPrefix(item.URL, a.Config.PublicBaseURL) || !strings.Contains(item.URL, "://") {
			key := strings.TrimPrefix(item.URL, strings.TrimRight(a.Config.PublicBaseURL, "/")+"/static/")
			if data, err := a.Store.Read(r.Context(), key); err == nil {
				assets = append(assets, zip.Asset{Filename: item.Filename, MIME: item.MIME, Data: data})
				continue
			}
		}
		assets = append(assets, zip.Asset{Filename: item.Filename + ".url", MIME: "text/plain", Data: []byte(item.URL)})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "job has no outputs")
		return
	}
	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=job-%s.zip", jobID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) listJobs(r *http.Request, userID, kind, status string, limit, offset int) []jobDTO {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListJobsByUser, userID, kind, status, limit, offset)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list jobs failed")
		return []jobDTO{}
	}
	defer rows.Close()
	items := []jobDTO{}
	for rows.Next() {
		job, err := scanJobRow(rows)
		if err != nil {
			continue
		}
		items = append(items, *job)
	}
	return items
}

func (a *App) jobAssets(r *http.Request, jobID string) []jobAssetDTO {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectJobAssets, jobID)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("list job assets failed")
		return []jobAssetDTO{}
	}
	defer rows.Close()
	items := []jobAssetDTO{}
	for rows.Next() {
		var item jobAssetDTO
		var storageKey string
		var props []byte
		if err := rows.Scan(&item.ID, &item.Kind, &item.Side, &storageKey, &item.Filename, &item.MIME, &item.Bytes, &props, &item.Role); err != nil {
			continue
		}
		item.URL = a.assetURL(storageKey)
		item.Properties = props
		items = append(items, item)
	}
	return items
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJobRow(row scanner) (*jobDTO, error) {
	var job jobDTO
	var ownerID string
	var presets []byte
	if err := row.Scan(
		&job.ID,
		&ownerID,
		&job.Kind,
		&job.Status,
		&job.CostTokens,
		&job.BrandID,
		&job.ModelID,
		&presets,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	); err != nil {
		return nil, err
	}
	if len(presets) > 0 {
		_ = json.Unmarshal(presets, &job.Presets)
	}
	return &job, nil
}
