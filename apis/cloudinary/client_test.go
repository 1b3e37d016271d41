package cloudinary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	// example from the Cloudinary signature docs
	sig := Sign(map[string]string{"eager": "w_400,h_300,c_pad|w_260,h_200,c_crop", "public_id": "sample_image", "timestamp": "1315060510"}, "abcd")
	assert.Equal(t, "bfd09f95f331f558cbd1320e67aa8d488770583e", sig)
}

func TestPublicIDFromURL(t *testing.T) {
	id, ok := PublicIDFromURL("https://res.cloudinary.com/demo/image/upload/v1770944121/shops_logos/abc123.png")
	require.True(t, ok)
	assert.Equal(t, "shops_logos/abc123", id)

	_, ok = PublicIDFromURL("logo.png")
	assert.False(t, ok)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.Client(), &Conf{CloudName: "demo", APIKey: "k", APISecret: "s", BaseURL: srv.URL})
	c.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "shops_logos", r.FormValue("folder"))
		assert.Equal(t, "1700000000", r.FormValue("timestamp"))
		assert.NotEmpty(t, r.FormValue("signature"))
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(data))
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1/shops_logos/x.png"}`))
	})
	u, err := c.Upload(context.Background(), "logo.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Contains(t, u, "shops_logos/x.png")
}

func TestDestroy(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/destroy", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "shops_logos/x", r.PostForm.Get("public_id"))
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	})
	require.NoError(t, c.Destroy(context.Background(), "https://res.cloudinary.com/demo/image/upload/v1/shops_logos/x.png"))
	// not a cloudinary path: nothing to do
	require.NoError(t, c.Destroy(context.Background(), "x"))
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	})
	_, err := c.Upload(context.Background(), "logo.png", []byte("x"))
	assert.ErrorContains(t, err, "Invalid Signature")
}
