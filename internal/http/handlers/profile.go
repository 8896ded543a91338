package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vidver/internal/sqlinline"
)

type updateProfileRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.loadUser(r, userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	balance, err := a.Wallets.Balance(r.Context(), userID)
	if err != nil {
		a.Logger.Warn().Err(err).Str("user_id", userID).Msg("load balance failed")
	}
	recent := a.listJobs(r, userID, "", "", 10, 0)
	a.json(w, http.StatusOK, map[string]any{
		"user":        user,
		"balance":     balance,
		"recent_jobs": recent,
	})
}

func (a *App) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name+req.FirstName+req.LastName+req.Phone) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "nothing to update")
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpdateUserProfile, userID, req.Name, req.FirstName, req.LastName, req.Phone)
	var id string
	if err := row.Scan(&id); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	user, err := a.loadUser(r, userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load profile")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user": user})
}

func (a *App) loadUser(r *http.Request, userID string) (*userDTO, error) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByID, userID)
	var id, email, name, role string
	var firstName, lastName, phone *string
	var createdAt, updatedAt time.Time
	var lastLoginAt *time.Time
	if err := row.Scan(&id, &email, &name, &firstName, &lastName, &phone, &role, &createdAt, &updatedAt, &lastLoginAt); err != nil {
		return nil, err
	}
	return &userDTO{
		ID:        id,
		Email:     email,
		Name:      name,
		FirstName: strDeref(firstName),
		LastName:  strDeref(lastName),
		Phone:     strDeref(phone),
		Role:      role,
		CreatedAt: createdAt,
		LastLogin: lastLoginAt,
	}, nil
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
