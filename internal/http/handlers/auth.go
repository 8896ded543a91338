package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vidver/internal/domain"
	"vidver/internal/infra"
	"vidver/internal/middleware"
	"vidver/internal/sqlinline"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login_at,omitempty"`
}

type authResponse struct {
	Token   string  `json:"token"`
	User    userDTO `json:"user"`
	Balance int     `json:"balance"`
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		a.error(w, http.StatusBadRequest, "bad_request", "valid email required")
		return
	}
	if len(req.Password) < 6 {
		a.error(w, http.StatusBadRequest, "bad_request", "password must be at least 6 characters")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.FirstName + " " + req.LastName)
	}
	if name == "" {
		name = req.Email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("hash password failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to register")
		return
	}

	props := a.signupProperties(r)
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertUser, req.Email, name, string(hash), props)
	var userID string
	var createdAt time.Time
	if err := row.Scan(&userID, &createdAt); err != nil {
		if infra.IsUniqueViolation(err) {
			a.domainError(w, r, domain.ErrEmailTaken)
			return
		}
		a.Logger.Error().Err(err).Msg("insert user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to register")
		return
	}
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QUpdateUserProfile, userID, name, req.FirstName, req.LastName, req.Phone); err != nil {
		a.Logger.Warn().Err(err).Str("user_id", userID).Msg("store profile fields failed")
	}

	if err := a.Wallets.CreateWithSignupBonus(r.Context(), userID); err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("create wallet failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to register")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	token, err := middleware.IssueToken(a.Config.JWTSecret, userID, locale)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusCreated, authResponse{
		Token: token,
		User: userDTO{
			ID:        userID,
			Email:     req.Email,
			Name:      name,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Role:      string(domain.UserRoleUser),
			CreatedAt: createdAt,
		},
		Balance: domain.DefaultTokenBalance,
	})
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "email and password required")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByEmail, req.Email)
	var id, email, name, passwordHash, role string
	var createdAt time.Time
	if err := row.Scan(&id, &email, &name, &passwordHash, &role, &createdAt); err != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	token, err := middleware.IssueToken(a.Config.JWTSecret, id, locale)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QTouchLastLogin, id); err != nil {
		a.Logger.Warn().Err(err).Str("user_id", id).Msg("touch last login failed")
	}

	balance, err := a.Wallets.Balance(r.Context(), id)
	if err != nil {
		a.Logger.Warn().Err(err).Str("user_id", id).Msg("load balance failed")
	}
	a.json(w, http.StatusOK, authResponse{
		Token: token,
		User: userDTO{
			ID:        id,
			Email:     email,
			Name:      name,
			Role:      role,
			CreatedAt: createdAt,
		},
		Balance: balance,
	})
}

// signupProperties records where an account was created from. Lookups are
// best effort; a missing GeoIP database simply omits the country tag.
func (a *App) signupProperties(r *http.Request) []byte {
	props := map[string]any{
		"signup_locale": middleware.LocaleFromContext(r.Context()),
	}
	if a.Geo != nil {
		if code, err := a.Geo.CountryCode(middleware.ClientIP(r)); err == nil && code != "" {
			props["signup_country"] = code
		}
	}
	b, _ := json.Marshal(props)
	return b
}
