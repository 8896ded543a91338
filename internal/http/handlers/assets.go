package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"vidver/internal/domain"
	"vidver/internal/sqlinline"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type assetDTO struct {
	ID         string          `json:"id"`
	JobID      *string         `json:"job_id,omitempty"`
	Kind       string          `json:"kind"`
	Side       string          `json:"side,omitempty"`
	URL        string          `json:"url"`
	Filename   string          `json:"filename"`
	MIME       string          `json:"mime"`
	Bytes      int64           `json:"bytes"`
	Properties json.RawMessage `json:"properties,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Upload accepts one car photo as multipart form data. The optional "side"
// field tags which side of the car the photo shows.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file exceeds 10MB limit or malformed form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file field required")
		return
	}
	defer file.Close()

	side := domain.AssetSide(strings.ToUpper(strings.TrimSpace(r.FormValue("side"))))
	if !domain.ValidSide(side) {
		a.error(w, http.StatusBadRequest, "bad_request", "side must be FRONT, REAR, LEFT or RIGHT")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read file")
		return
	}
	if int64(len(data)) > maxUploadBytes {
		a.error(w, http.StatusBadRequest, "bad_request", "file exceeds 10MB limit")
		return
	}
	mime := http.DetectContentType(data)
	ext, ok := imageExtensions[mime]
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "only jpeg, png and webp images are accepted")
		return
	}

	key, err := a.Store.Write(r.Context(), "uploads/"+uuid.NewString()+ext, data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("store upload failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store file")
		return
	}

	filename := path.Base(header.Filename)
	if filename == "" || filename == "." {
		filename = "upload" + ext
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertAsset,
		userID, "", string(domain.AssetKindImage), string(side), key, filename, mime, int64(len(data)), nil)
	var id string
	var createdAt time.Time
	if err := row.Scan(&id, &createdAt); err != nil {
		a.Logger.Error().Err(err).Msg("insert asset failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save asset")
		return
	}
	a.json(w, http.StatusCreated, assetDTO{
		ID:        id,
		Kind:      string(domain.AssetKindImage),
		Side:      string(side),
		URL:       a.assetURL(key),
		Filename:  filename,
		MIME:      mime,
		Bytes:     int64(len(data)),
		CreatedAt: createdAt,
	})
}

func (a *App) ListAssets(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	q := r.URL.Query()
	kind := strings.ToUpper(strings.TrimSpace(q.Get("kind")))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListAssetsByUser, userID, kind, limit, offset)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}
	defer rows.Close()
	items := []assetDTO{}
	for rows.Next() {
		var item assetDTO
		var storageKey string
		var props []byte
		if err := rows.Scan(&item.ID, &item.JobID, &item.Kind, &item.Side, &storageKey, &item.Filename, &item.MIME, &item.Bytes, &props, &item.CreatedAt); err != nil {
			continue
		}
		item.URL = a.assetURL(storageKey)
		item.Properties = props
		items = append(items, item)
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	assetID := chi.URLParam(r, "id")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectAssetByID, assetID)
	var id, ownerID, kind, side, storageKey, filename, mime string
	var jobID *string
	var bytes int64
	var props []byte
	var createdAt time.Time
	if err := row.Scan(&id, &ownerID, &jobID, &kind, &side, &storageKey, &filename, &mime, &bytes, &props, &createdAt); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "asset not found")
		return
	}
	if ownerID != userID {
		a.domainError(w, r, domain.ErrForbidden)
		return
	}
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QDeleteAsset, assetID, userID); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete asset")
		return
	}
	if !strings.Contains(storageKey, "://") {
		if err := a.Store.Remove(r.Context(), storageKey); err != nil {
			a.Logger.Warn().Err(err).Str("asset_id", assetID).Msg("remove stored file failed")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
