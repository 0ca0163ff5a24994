package webhook

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haveachin/mcstatus/internal/app/mcstatus"
	"github.com/haveachin/mcstatus/pkg/event"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

func TestPlugin_Load(t *testing.T) {
	var p Plugin
	if err := p.Load(map[string]any{}); !errors.Is(err, mcstatus.ErrPluginViaConfigDisabled) {
		t.Fatalf("got error %v; want %v", err, mcstatus.ErrPluginViaConfigDisabled)
	}

	err := p.Load(map[string]any{
		"defaults": map[string]any{
			"webhook": map[string]any{
				"dialTimeout": "2s",
				"events":      []any{mcstatus.ServerOfflineEventTopic},
			},
		},
		"webhooks": map[string]any{
			"discord": map[string]any{
				"url": "http://localhost/hook",
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(p.whks) != 1 {
		t.Fatalf("got %d webhooks; want 1", len(p.whks))
	}

	wh := p.whks[0]
	if wh.ID != "discord" || wh.URL != "http://localhost/hook" {
		t.Errorf("got webhook %+v", wh.Webhook)
	}
	if len(wh.AllowedTopics) != 1 || wh.AllowedTopics[0] != mcstatus.ServerOfflineEventTopic {
		t.Errorf("got topics %v; want defaults", wh.AllowedTopics)
	}
	if c := wh.HTTPClient.(*http.Client); c.Timeout != 2*time.Second {
		t.Errorf("got timeout %v", c.Timeout)
	}
}

func TestPlugin_HandleEvent(t *testing.T) {
	bodies := make(chan []byte, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bb, _ := io.ReadAll(r.Body)
		bodies <- bb
	}))
	defer srv.Close()

	p := Plugin{logger: zap.NewNop()}
	err := p.Load(map[string]any{
		"webhooks": map[string]any{
			"all": map[string]any{
				"url":    srv.URL,
				"events": []any{mcstatus.ServerOfflineEventTopic},
			},
			"other": map[string]any{
				"url":     srv.URL,
				"events":  []any{mcstatus.ServerOfflineEventTopic},
				"servers": []any{"other.example.com"},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ep := mcstatus.ServerEndpoint{Name: "Lobby", Address: "lobby.example.com"}
	p.handleEvent(event.New(mcstatus.ServerOfflineEvent{
		Endpoint: ep,
		Status:   mcstatus.ServerStatus{Version: "1.20.1"},
	}, mcstatus.ServerOfflineEventTopic))
	// not an allowed topic
	p.handleEvent(event.New(mcstatus.ServerOnlineEvent{Endpoint: ep}, mcstatus.ServerOnlineEventTopic))

	select {
	case bb := <-bodies:
		var got struct {
			Topics []string  `json:"topics"`
			Data   eventData `json:"data"`
		}
		if err := jsoniter.Unmarshal(bb, &got); err != nil {
			t.Fatal(err)
		}

		if got.Data.Server.Name != "Lobby" || got.Data.Status.Online || got.Data.Status.Version != "1.20.1" {
			t.Errorf("got data %+v", got.Data)
		}
		if len(got.Topics) != 1 || got.Topics[0] != mcstatus.ServerOfflineEventTopic {
			t.Errorf("got topics %v", got.Topics)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for webhook")
	}

	select {
	case bb := <-bodies:
		t.Errorf("unexpected webhook call %s", bb)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPlugin_Reload_RemovesWebhooks(t *testing.T) {
	calls := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls <- struct{}{}
	}))
	defer srv.Close()

	p := Plugin{logger: zap.NewNop()}
	err := p.Load(map[string]any{
		"webhooks": map[string]any{
			"all": map[string]any{
				"url":    srv.URL,
				"events": []any{mcstatus.ServerOfflineEventTopic},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = p.Reload(map[string]any{
		"webhooks": map[string]any{},
	})
	if !errors.Is(err, mcstatus.ErrPluginViaConfigDisabled) {
		t.Fatalf("got error %v; want %v", err, mcstatus.ErrPluginViaConfigDisabled)
	}
	if len(p.whks) != 0 {
		t.Fatalf("got %d webhooks; want 0", len(p.whks))
	}

	ep := mcstatus.ServerEndpoint{Name: "Lobby", Address: "lobby.example.com"}
	p.handleEvent(event.New(mcstatus.ServerOfflineEvent{Endpoint: ep}, mcstatus.ServerOfflineEventTopic))

	select {
	case <-calls:
		t.Error("removed webhook was called")
	case <-time.After(100 * time.Millisecond):
	}
}
