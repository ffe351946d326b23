package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	server "github.com/zishang520/socket.io/v2/socket"
)

func TestDial_RejectsBadURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "unparsable", url: "://nope", want: "failed to parse relay URL"},
		{name: "no host", url: "/socket.io", want: "needs a scheme and a host"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Dial(context.Background(), Config{URL: tc.url})
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestDial_PublishReachesServer(t *testing.T) {
	received := make(chan map[string]any, 1)
	io := server.NewServer(nil, nil)
	io.On("connection", func(clients ...any) {
		client := clients[0].(*server.Socket)
		client.On("state_changed", func(args ...any) {
			if len(args) == 0 {
				return
			}
			if payload, ok := args[0].(map[string]any); ok {
				received <- payload
			}
		})
	})
	srv := httptest.NewServer(io.ServeHandler(nil))
	t.Cleanup(srv.Close)

	c, err := Dial(context.Background(), Config{
		URL:            srv.URL + "/socket.io/",
		Namespace:      "/",
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Publish(context.Background(), "state_changed", map[string]any{"component": "Selection"}))
	select {
	case payload := <-received:
		assert.Equal(t, "Selection", payload["component"])
	case <-time.After(5 * time.Second):
		t.Fatal("server never received the event")
	}
}

func TestDial_TimesOutWithoutServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := Dial(context.Background(), Config{URL: url, Namespace: "/", ConnectTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
