package nullable

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shopRow struct {
	LogoURL String `json:"logo_url"`
	SentAt  Time   `json:"sent_at"`
}

func TestJSON(t *testing.T) {
	b, err := json.Marshal(shopRow{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"logo_url":null,"sent_at":null}`, string(b))

	sent := time.Date(2024, 2, 14, 9, 30, 0, 0, time.UTC)
	b, err = json.Marshal(shopRow{LogoURL: StringFrom("https://x/logo.png"), SentAt: TimeFrom(sent)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"logo_url":"https://x/logo.png","sent_at":"2024-02-14T09:30:00Z"}`, string(b))

	var back shopRow
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "https://x/logo.png", back.LogoURL.ForceValue())
	assert.True(t, back.SentAt.ForceValue().Equal(sent))

	require.NoError(t, json.Unmarshal([]byte(`{"logo_url":null}`), &back))
	assert.True(t, back.LogoURL.IsNil())
	assert.True(t, StringFromEmpty("").IsNil())
}

func TestScan(t *testing.T) {
	var s String
	require.NoError(t, s.Scan("abc"))
	assert.Equal(t, "abc", s.ForceValue())
	require.NoError(t, s.Scan(nil))
	assert.True(t, s.IsNil())
}
