package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// AssetKind enumerates stored media types.
type AssetKind string

const (
	AssetKindImage AssetKind = "IMAGE"
	AssetKindVideo AssetKind = "VIDEO"
)

// AssetSide tags which side of the car an image shows.
type AssetSide string

const (
	AssetSideFront AssetSide = "FRONT"
	AssetSideRear  AssetSide = "REAR"
	AssetSideLeft  AssetSide = "LEFT"
	AssetSideRight AssetSide = "RIGHT"
)

// ValidSide reports whether s names a known car side. The empty string is
// accepted because uploads are not required to carry a side tag.
func ValidSide(s AssetSide) bool {
	switch s {
	case "", AssetSideFront, AssetSideRear, AssetSideLeft, AssetSideRight:
		return true
	}
	return false
}

// Asset is an uploaded or generated media record owned by one user.
// StorageKey is either a relative key under the file store or an absolute URL
// when the provider hosts the result.
type Asset struct {
	ID         string
	UserID     string
	JobID      *string
	Kind       AssetKind
	Side       AssetSide
	StorageKey string
	Filename   string
	MIME       string
	Bytes      int64
	Properties json.RawMessage
	CreatedAt  time.Time
}

// ImageTuneMeta describes how a generated image was produced.
type ImageTuneMeta struct {
	Generated bool     `json:"generated"`
	JobID     string   `json:"job_id"`
	Brand     string   `json:"brand,omitempty"`
	Model     string   `json:"model,omitempty"`
	Presets   []string `json:"presets,omitempty"`
	Provider  string   `json:"provider,omitempty"`
}

// VideoEffectMeta describes how a generated video was produced.
type VideoEffectMeta struct {
	Generated       bool   `json:"generated"`
	JobID           string `json:"job_id"`
	Effect          string `json:"effect"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Provider        string `json:"provider,omitempty"`
}

// MustMarshal serializes v and panics on failure. Metadata structs above are
// plain data, so a failure here is a programming error.
func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}
