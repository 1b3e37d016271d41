package conf

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-cardpress/apis/mailer"
	"github.com/zeptools/gw-cardpress/cards/compose"
	"github.com/zeptools/gw-cardpress/cards/render"
)

const testThemes = `{
  "default": "plain_1",
  "themes": [
    {"category": "plain", "variant": 1, "background": "missing.png", "text_color": "#334155", "bleed_fill": "#ffffff"},
    {"category": "plain", "variant": 2, "background": "missing.png", "text_color": "#000000", "bleed_fill": "#fef9c3"}
  ]
}`

func newTestRoot(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o644))
	}
	return root
}

func newToolCore(t *testing.T, files map[string]string) *Core[string] {
	t.Helper()
	c := &Core[string]{}
	require.NoError(t, c.ToolInit(newTestRoot(t, files), context.Background()))
	return c
}

func TestToolInitDefaults(t *testing.T) {
	c := newToolCore(t, nil)
	assert.Equal(t, "cardpress", c.AppName)
	assert.Equal(t, 30*time.Second, c.BackendHttpClient.Timeout)

	c = newToolCore(t, map[string]string{"config/.core.json": `{"app_name":"florist","http_time_s":5}`})
	assert.Equal(t, "florist", c.AppName)
	assert.Equal(t, 5*time.Second, c.BackendHttpClient.Timeout)
	assert.Equal(t, filepath.Join(c.AppRoot, "x"), c.RootPath("x"))
	assert.Equal(t, "/abs", c.RootPath("/abs"))
}

func TestToolInitRejectsBadJSON(t *testing.T) {
	c := &Core[string]{}
	err := c.ToolInit(newTestRoot(t, map[string]string{"config/.core.json": `{"app_name":`}), context.Background())
	assert.ErrorContains(t, err, ".core.json")
}

func TestPrepareCardsDefaults(t *testing.T) {
	c := newToolCore(t, nil)
	require.NoError(t, c.PrepareCards())
	assert.Equal(t, "gentle_1", c.Cards.Themes.DefaultID())
	assert.Equal(t, 200, c.Cards.Conf.Limits.MaxText)
	assert.Equal(t, 105.0, c.Cards.Geometry.CardWidthMM)
	assert.Equal(t, "cardpress_artwork:", c.Cards.Artwork.KeyPrefix)
	assert.True(t, c.Cards.Conf.PreloadArtwork)
	assert.Equal(t, int64(DefaultMaxPDFBytes), c.Cards.Renderer.MaxBytes)
	assert.Nil(t, c.Cards.Artwork.Cache)
}

func TestPrepareCardsFromFile(t *testing.T) {
	c := newToolCore(t, map[string]string{
		"themes.json": testThemes,
		"config/.cards.json": `{"themes_file":"themes.json",
			"limits":{"max_text":120,"max_signature":10},
			"geometry":{"card_width_mm":100,"card_height_mm":140,"bleed_mm":2,"safe_padding_mm":8}}`,
	})
	require.NoError(t, c.PrepareCards())
	assert.Equal(t, []string{"plain_1", "plain_2"}, c.Cards.Themes.IDs())
	assert.Equal(t, 120, c.Cards.Conf.Limits.MaxText)
	assert.Equal(t, 2.0, c.Cards.Geometry.BleedMM)

	// missing artwork and fonts degrade to fill colour and the Go fallback face
	pdf, err := c.Cards.Renderer.Render(context.Background(),
		compose.CardContent{Message: "Привіт", ThemeKey: "plain_2"}, render.Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestPrepareCardsBadGeometry(t *testing.T) {
	c := newToolCore(t, map[string]string{
		"config/.cards.json": `{"geometry":{"card_width_mm":-1,"card_height_mm":148}}`,
	})
	assert.Error(t, c.PrepareCards())
}

func TestPrepareThrottleBucketStore(t *testing.T) {
	c := newToolCore(t, map[string]string{
		"config/.throttle.json": `{"groups":{"orders":{"burst":1,"increment":1,"period_sec":60}}}`,
	})
	require.NoError(t, c.PrepareThrottleBucketStore())
	store := c.ThrottleBucketStore
	for _, g := range []string{ThrottleOrders, ThrottlePreview, ThrottleLogin} {
		assert.True(t, store.HasBucketGroup(g), g)
	}
	now := time.Now()
	assert.True(t, store.Allow(ThrottleOrders, "10.0.0.1", now))
	assert.False(t, store.Allow(ThrottleOrders, "10.0.0.1", now))
	assert.True(t, store.Allow(ThrottlePreview, "10.0.0.1", now))
}

func TestPrepareKVAndSessions(t *testing.T) {
	c := newToolCore(t, map[string]string{
		"config/.kv-databases.json": `{"type":"memory"}`,
		"config/.web-session.json":  `{"enckey":"a2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2s=","jwt_secret":"s3cret","insecure_cookie":true}`,
	})
	assert.Error(t, c.PrepareWebSessions())

	require.NoError(t, c.PrepareKVDatabase())
	require.NoError(t, c.PrepareWebSessions())
	m := c.WebSessionManager
	assert.Equal(t, "admin_session", m.Conf.CookieName)
	assert.Equal(t, 7*24*time.Hour, m.Conf.TTL())
	assert.Equal(t, "cardpress", m.AppName)

	c.KVDBConf.Type = "memcached"
	assert.Error(t, c.prepareKVDBClient())
}

func TestPrepareAPIs(t *testing.T) {
	c := newToolCore(t, nil)
	assert.Error(t, c.PrepareMailer())
	require.NoError(t, c.PrepareCloudinary())
	assert.Nil(t, c.APIs.Cloudinary)

	c.DebugOpts.DryRunMail = true
	require.NoError(t, c.PrepareMailer())
	assert.IsType(t, mailer.DryRun{}, c.APIs.Mailer)

	c = newToolCore(t, map[string]string{
		"config/.mailer.json":     `{"api_key":"re_x","from":"Cards <noreply@example.com>"}`,
		"config/.cloudinary.json": `{"cloud_name":"demo","api_key":"k","api_secret":"s"}`,
	})
	require.NoError(t, c.PrepareMailer())
	require.NoError(t, c.PrepareCloudinary())
	mc, ok := c.APIs.Mailer.(*mailer.Client)
	require.True(t, ok)
	assert.Equal(t, mailer.DefaultEndpoint, mc.Conf.Endpoint)
	assert.Equal(t, "shops_logos", c.APIs.Cloudinary.Conf.Folder)
}
