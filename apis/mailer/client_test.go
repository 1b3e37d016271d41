package mailer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), &Conf{Endpoint: srv.URL, APIKey: "re_test", From: "Cards <noreply@example.com>"})
	id, err := c.Send(context.Background(), Message{
		To:          []string{"shop@example.com"},
		Subject:     "Card for order #ROS-1234",
		HTML:        "<p>hi</p>",
		Attachments: []Attachment{{Filename: "card-ROS-1234.pdf", Content: []byte("%PDF")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_1", id)
	assert.Equal(t, "Cards <noreply@example.com>", got.From)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), got.Attachments[0].Content)
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"validation_error","message":"bad from"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), &Conf{Endpoint: srv.URL})
	_, err := c.Send(context.Background(), Message{To: []string{"a@b.c"}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "bad from", apiErr.Message)

	_, err = c.Send(context.Background(), Message{})
	assert.Error(t, err)
}

func TestDryRun(t *testing.T) {
	id, err := DryRun{}.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "s"})
	require.NoError(t, err)
	assert.Equal(t, "dry-run", id)
}
