package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidver/internal/domain"
	"vidver/internal/infra"
	"vidver/internal/middleware"
	"vidver/internal/orchestrator"

	"github.com/rs/zerolog"
)

func testApp(submitter *stubSubmitter, wallet *stubWallet, sqlStub *stubExecutor) *App {
	if sqlStub == nil {
		sqlStub = &stubExecutor{}
	}
	if wallet == nil {
		wallet = &stubWallet{balance: 100}
	}
	return &App{
		SQL:          sqlStub,
		Logger:       zerolog.Nop(),
		Config:       &infra.Config{PublicBaseURL: "http://localhost:8080", JWTSecret: "test-secret"},
		Orchestrator: submitter,
		Wallets:      wallet,
	}
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
	}
	return req
}

func doneResult(kind domain.JobKind, remaining int) *orchestrator.Result {
	jobID := "job-1"
	now := time.Now()
	return &orchestrator.Result{
		Job: &domain.Job{
			ID:          jobID,
			UserID:      "user-1",
			Kind:        kind,
			Status:      domain.JobStatusDone,
			CostTokens:  domain.JobCost(kind),
			CreatedAt:   now,
			UpdatedAt:   now,
			CompletedAt: &now,
		},
		OutputAssets: []domain.Asset{{
			ID:         "asset-9",
			UserID:     "user-1",
			JobID:      &jobID,
			Kind:       domain.AssetKind(kind),
			StorageKey: "https://cdn.example.com/out",
			Filename:   "out",
			MIME:       "image/jpeg",
		}},
		RemainingBalance: remaining,
	}
}

func TestGenerateImage(t *testing.T) {
	testCases := []struct {
		name       string
		body       map[string]any
		userID     string
		submitter  *stubSubmitter
		wantStatus int
		wantCode   string
	}{{
		name:       "success",
		userID:     "user-1",
		body:       map[string]any{"asset_ids": []string{"a1"}, "presets": []string{"wheels", "spoiler"}},
		submitter:  &stubSubmitter{result: doneResult(domain.JobKindImage, 80)},
		wantStatus: http.StatusCreated,
	}, {
		name:       "insufficient tokens",
		userID:     "user-1",
		body:       map[string]any{"asset_ids": []string{"a1"}, "presets": []string{"wheels"}},
		submitter:  &stubSubmitter{err: domain.ErrInsufficientTokens},
		wantStatus: http.StatusPaymentRequired,
		wantCode:   "insufficient_tokens",
	}, {
		name:       "unknown preset",
		userID:     "user-1",
		body:       map[string]any{"asset_ids": []string{"a1"}, "presets": []string{"rockets"}},
		submitter:  &stubSubmitter{},
		wantStatus: http.StatusBadRequest,
		wantCode:   "bad_request",
	}, {
		name:       "no assets",
		userID:     "user-1",
		body:       map[string]any{"presets": []string{"wheels"}},
		submitter:  &stubSubmitter{},
		wantStatus: http.StatusBadRequest,
		wantCode:   "bad_request",
	}, {
		name:       "unauthenticated",
		userID:     "",
		body:       map[string]any{"asset_ids": []string{"a1"}, "presets": []string{"wheels"}},
		submitter:  &stubSubmitter{},
		wantStatus: http.StatusUnauthorized,
		wantCode:   "unauthorized",
	}, {
		name:       "gateway timeout",
		userID:     "user-1",
		body:       map[string]any{"asset_ids": []string{"a1"}, "presets": []string{"wheels"}},
		submitter:  &stubSubmitter{err: domain.ErrGenerationTimeout},
		wantStatus: http.StatusInternalServerError,
		wantCode:   "generation_timeout",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := testApp(tc.submitter, nil, nil)
			body, _ := json.Marshal(tc.body)
			rr := httptest.NewRecorder()

			app.GenerateImage(rr, authedRequest("POST", "/v1/generate/image", body, tc.userID))

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body=%s", rr.Code, tc.wantStatus, rr.Body.String())
			}
			if tc.wantCode != "" {
				var resp map[string]string
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if resp["error"] != tc.wantCode {
					t.Fatalf("error code = %s, want %s", resp["error"], tc.wantCode)
				}
			}
		})
	}
}

func TestGenerateImageResponseShape(t *testing.T) {
	submitter := &stubSubmitter{result: doneResult(domain.JobKindImage, 80)}
	app := testApp(submitter, nil, nil)
	body, _ := json.Marshal(map[string]any{"asset_ids": []string{"a1", "a2"}, "presets": []string{"wheels"}})
	rr := httptest.NewRecorder()

	app.GenerateImage(rr, authedRequest("POST", "/v1/generate/image", body, "user-1"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d; body=%s", rr.Code, rr.Body.String())
	}
	var resp generateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Job.Status != "DONE" || resp.RemainingBalance != 80 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.OutputAssets) != 1 || resp.OutputAssets[0].URL != "https://cdn.example.com/out" {
		t.Fatalf("unexpected outputs %+v", resp.OutputAssets)
	}
	if submitter.userID != "user-1" {
		t.Fatalf("submitter user = %s", submitter.userID)
	}
	if len(submitter.got.InputAssetIDs) != 2 {
		t.Fatalf("input assets = %v", submitter.got.InputAssetIDs)
	}
}

func TestGenerateVideo(t *testing.T) {
	testCases := []struct {
		name       string
		body       map[string]any
		submitter  *stubSubmitter
		wantStatus int
	}{{
		name:       "success",
		body:       map[string]any{"asset_id": "a1", "effect_key": "360_spin"},
		submitter:  &stubSubmitter{result: doneResult(domain.JobKindVideo, 50)},
		wantStatus: http.StatusCreated,
	}, {
		name:       "unknown effect",
		body:       map[string]any{"asset_id": "a1", "effect_key": "explode"},
		submitter:  &stubSubmitter{},
		wantStatus: http.StatusBadRequest,
	}, {
		name:       "missing asset",
		body:       map[string]any{"effect_key": "360_spin"},
		submitter:  &stubSubmitter{},
		wantStatus: http.StatusBadRequest,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := testApp(tc.submitter, nil, nil)
			body, _ := json.Marshal(tc.body)
			rr := httptest.NewRecorder()

			app.GenerateVideo(rr, authedRequest("POST", "/v1/generate/video", body, "user-1"))

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body=%s", rr.Code, tc.wantStatus, rr.Body.String())
			}
			if tc.wantStatus == http.StatusCreated {
				if tc.submitter.got.Kind != domain.JobKindVideo || tc.submitter.got.EffectKey != "360_spin" {
					t.Fatalf("submitter request = %+v", tc.submitter.got)
				}
			} else if tc.submitter.calls != 0 {
				t.Fatalf("expected no orchestrator call")
			}
		})
	}
}

// A failed generation surfaces the terminal job id so clients can look it up.
func TestGenerateFailureCarriesJobID(t *testing.T) {
	submitter := &stubSubmitter{
		result: &orchestrator.Result{Job: &domain.Job{ID: "job-7", Status: domain.JobStatusFailed}},
		err:    domain.ErrGenerationFailed,
	}
	app := testApp(submitter, nil, nil)
	body, _ := json.Marshal(map[string]any{"asset_id": "a1", "effect_key": "360_spin"})
	rr := httptest.NewRecorder()

	app.GenerateVideo(rr, authedRequest("POST", "/v1/generate/video", body, "user-1"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("X-Job-ID"); got != "job-7" {
		t.Fatalf("X-Job-ID = %q, want job-7", got)
	}
}
