package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type ShareRequest struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
	URL   string `json:"url,omitempty"`
}

func (r ShareRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" && strings.TrimSpace(r.URL) == "" {
		return ErrEmptyShare
	}
	if r.URL != "" {
		u, err := url.Parse(r.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidShareURL, r.URL)
		}
	}
	return nil
}

// MigrationState is the resumable position of a data migration between
// app versions or devices.
type MigrationState struct {
	SchemaVersion int       `json:"schemaVersion"`
	InstanceID    string    `json:"instanceId"`
	Cursor        string    `json:"cursor"`
	Payload       []byte    `json:"payload,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MigrationSchemaVersion is written into every saved MigrationState.
const MigrationSchemaVersion = 1

type HealthQuery struct {
	Metric string    `json:"metric"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

func (q HealthQuery) Validate() error {
	if q.Metric == "" {
		return fmt.Errorf("%w: metric is required", ErrInvalidHealthRange)
	}
	if q.From.IsZero() || q.To.IsZero() || !q.From.Before(q.To) {
		return ErrInvalidHealthRange
	}
	return nil
}

type HealthSample struct {
	Metric string    `json:"metric"`
	Value  float64   `json:"value"`
	Unit   string    `json:"unit"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}
