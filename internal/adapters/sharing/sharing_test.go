package sharing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayleafwalker/quire/internal/adapters/bridge"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

func TestURLLauncher_EncodesRequest(t *testing.T) {
	var opened string
	l, err := NewURLLauncher("https://quire.app/share?src=app", func(_ context.Context, u string) error {
		opened = u
		return nil
	})
	require.NoError(t, err)

	err = l.Share(context.Background(), domain.ShareRequest{Text: "a day & a night", URL: "https://quire.app/e/1"})
	require.NoError(t, err)
	assert.Equal(t, "https://quire.app/share?src=app&text=a+day+%26+a+night&url=https%3A%2F%2Fquire.app%2Fe%2F1", opened)
}

func TestURLLauncher_ValidatesBeforeOpening(t *testing.T) {
	l, err := NewURLLauncher("https://quire.app/share", func(context.Context, string) error {
		t.Fatal("opener must not be called for invalid requests")
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, l.Share(context.Background(), domain.ShareRequest{}), domain.ErrEmptyShare)
}

func TestURLLauncher_SurfacesOpenerErrors(t *testing.T) {
	l, err := NewURLLauncher("https://quire.app/share", func(context.Context, string) error {
		return errors.New("no display")
	})
	require.NoError(t, err)
	err = l.Share(context.Background(), domain.ShareRequest{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
}

func TestIntent_UnsupportedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/share", r.URL.Path)
		w.WriteHeader(http.StatusNotImplemented)
		_, _ = io.WriteString(w, `{"error":{"code":"unsupported"}}`)
	}))
	defer srv.Close()
	b, err := bridge.New(srv.Client(), srv.URL)
	require.NoError(t, err)

	err = NewIntent(b).Share(context.Background(), domain.ShareRequest{Text: "hello"})
	assert.ErrorIs(t, err, capability.ErrSharingUnsupported)
}

func TestBridgeOpener_PostsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "/open", r.URL.Path)
		assert.JSONEq(t, `{"url":"https://quire.app/share?text=x"}`, string(body))
		_, _ = io.WriteString(w, `{"data":true}`)
	}))
	defer srv.Close()
	b, err := bridge.New(srv.Client(), srv.URL)
	require.NoError(t, err)

	require.NoError(t, BridgeOpener(b)(context.Background(), "https://quire.app/share?text=x"))
}
