package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-cardpress/conf"
	"github.com/zeptools/gw-cardpress/sec"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	// local, missing artwork keeps the test off the network
	themes := `{"default":"plain_1","themes":[{"category":"plain","variant":1,"background":"missing.png","text_color":"#334155","bleed_fill":"#fff0f5"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "themes.json"), []byte(themes), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", ".cards.json"), []byte(`{"themes_file":"themes.json"}`), 0o644))

	c := &conf.Core[string]{}
	require.NoError(t, c.ToolInit(root, context.Background()))
	require.NoError(t, c.PrepareCards())
	return &app{core: c}
}

func TestCommandsListing(t *testing.T) {
	a := newTestApp(t)
	cmds := a.commands()
	assert.Equal(t, []string{"fonts", "order", "proof", "resend", "seed", "themes"}, cmds.Names())

	var buf bytes.Buffer
	require.NoError(t, a.cmdThemes(context.Background(), nil, &buf))
	assert.Contains(t, buf.String(), "plain      plain_1")
	assert.Contains(t, buf.String(), "default: plain_1")

	buf.Reset()
	require.NoError(t, a.cmdFonts(context.Background(), nil, &buf))
	assert.Equal(t, 3+len(a.core.Cards.Fonts.Failures()), strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "font-inter")
}

func TestProofCommand(t *testing.T) {
	a := newTestApp(t)
	out := filepath.Join(t.TempDir(), "proof.pdf")

	assert.ErrorIs(t, a.cmdProof(context.Background(), []string{"plain_1"}, &bytes.Buffer{}), errUsage)

	var buf bytes.Buffer
	require.NoError(t, a.cmdProof(context.Background(), []string{"plain_1", "font-vibes", out}, &buf))
	assert.Contains(t, buf.String(), "wrote "+out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRunHashPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runHashPassword([]string{"peonies"}, &out))
	hash := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.NoError(t, sec.CheckPassword(hash, "peonies"))

	assert.Error(t, runHashPassword(nil, &out))
}
