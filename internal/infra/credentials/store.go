package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"vidver/internal/infra"
	"vidver/internal/sqlinline"
)

const (
	ProviderKie = "kie"
)

// Store reads and writes external provider credentials persisted in the
// database. It backs the KIE_API_KEY environment variable as a fallback so
// the key can be rotated without a redeploy.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) KieAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderKie)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetKieAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("kie api key is required")
	}
	return s.upsert(ctx, ProviderKie, key, nil)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
