// Package sharing provides the SharingLauncher variants.
package sharing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/browser"

	"github.com/bayleafwalker/quire/internal/adapters/bridge"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// Intent opens the native share sheet through the shell bridge.
type Intent struct {
	bridge *bridge.Client
}

var _ capability.SharingLauncher = (*Intent)(nil)

func NewIntent(b *bridge.Client) *Intent {
	return &Intent{bridge: b}
}

func (i *Intent) Share(ctx context.Context, req domain.ShareRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := i.bridge.Call(ctx, http.MethodPost, "/share", nil, req); err != nil {
		if bridge.CodeOf(err) == bridge.CodeUnsupported {
			return fmt.Errorf("%w: %v", capability.ErrSharingUnsupported, err)
		}
		return err
	}
	return nil
}

// Opener hands a URL to something that can display it.
type Opener func(ctx context.Context, rawURL string) error

// BrowserOpener opens the URL in the desktop's default browser.
func BrowserOpener(_ context.Context, rawURL string) error {
	return browser.OpenURL(rawURL)
}

// BridgeOpener asks the hosting page to navigate to the URL.
func BridgeOpener(b *bridge.Client) Opener {
	return func(ctx context.Context, rawURL string) error {
		_, err := b.Call(ctx, http.MethodPost, "/open", nil, map[string]string{"url": rawURL})
		return err
	}
}

// URLLauncher shares by opening the web share page with the request encoded
// in its query string.
type URLLauncher struct {
	base *url.URL
	open Opener
}

var _ capability.SharingLauncher = (*URLLauncher)(nil)

func NewURLLauncher(baseURL string, open Opener) (*URLLauncher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse share url: %w", err)
	}
	if open == nil {
		return nil, fmt.Errorf("%w: no opener", capability.ErrSharingUnsupported)
	}
	return &URLLauncher{base: base, open: open}, nil
}

// ShareURL returns the page URL for req.
func (l *URLLauncher) ShareURL(req domain.ShareRequest) string {
	u := *l.base
	q := u.Query()
	for k, v := range map[string]string{"title": req.Title, "text": req.Text, "url": req.URL} {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (l *URLLauncher) Share(ctx context.Context, req domain.ShareRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := l.open(ctx, l.ShareURL(req)); err != nil {
		return fmt.Errorf("open share page: %w", err)
	}
	return nil
}
