package web

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-cardpress/svc"
)

func TestServiceLifecycle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	s := NewService(context.Background(), "127.0.0.1:0", mux)
	assert.Equal(t, svc.StateREADY, s.State())
	require.NoError(t, s.Start())
	assert.Equal(t, svc.StateRUNNING, s.State())

	res, err := http.Get("http://" + s.Addr() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	assert.Equal(t, "pong", string(body))

	s.Stop()
	select {
	case err := <-s.Done():
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.Equal(t, svc.StateSTOPPED, s.State())
}

func TestServiceBindError(t *testing.T) {
	s := NewService(context.Background(), "256.0.0.1:1", http.NewServeMux())
	assert.Error(t, s.Start())
}
