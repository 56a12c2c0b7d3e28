// Package devices provides the account DeviceDirectory backed by the quire API.
package devices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

type HTTP struct {
	client    *http.Client
	baseURL   string
	accountID string
}

var _ capability.DeviceDirectory = (*HTTP)(nil)

func NewHTTP(client *http.Client, baseURL, accountID string) *HTTP {
	return &HTTP{client: client, baseURL: strings.TrimRight(baseURL, "/"), accountID: accountID}
}

func (d *HTTP) Devices(ctx context.Context) ([]domain.Device, error) {
	if d.accountID == "" {
		return nil, errors.New("list devices: no account signed in")
	}
	endpoint := d.baseURL + "/v1/accounts/" + url.PathEscape(d.accountID) + "/devices"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("list devices: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var body struct {
		Devices []domain.Device `json:"devices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode devices: %w", err)
	}
	return body.Devices, nil
}
