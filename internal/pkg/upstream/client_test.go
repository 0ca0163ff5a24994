package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/haveachin/mcstatus/internal/pkg/upstream"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPrimaryClient_FetchPrimary(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("server")
		_, _ = w.Write([]byte(`{
			"code": 200,
			"online": true,
			"ip": "1.2.3.4",
			"port": 25565,
			"hostname": "play.example.com",
			"players": 7,
			"max_players": 100,
			"version": "1.20.1",
			"motd_clean": "Hello World",
			"motd_html": "<span>Hello World</span>",
			"favicon_url": "https://example.com/icon.png"
		}`))
	}))
	defer srv.Close()

	c, err := upstream.NewPrimaryClient(srv.URL+"/v1/serverstatus?server={address}", srv.Client(), upstream.ClientConfig{})
	if err != nil {
		t.Fatal(err)
	}

	status, err := c.FetchPrimary(context.Background(), "play.example.com:25565")
	if err != nil {
		t.Fatal(err)
	}

	if gotQuery != "play.example.com:25565" {
		t.Errorf("got server query %q", gotQuery)
	}

	if status.Code != 200 || status.Online == nil || !*status.Online {
		t.Errorf("got code %d and online %v", status.Code, status.Online)
	}

	if status.Port != "25565" {
		t.Errorf("got port %q; want 25565", status.Port)
	}

	if status.Players == nil || *status.Players != 7 || status.MaxPlayers == nil || *status.MaxPlayers != 100 {
		t.Errorf("got players %v/%v", status.Players, status.MaxPlayers)
	}
}

func TestNewPrimaryClient_MissingPlaceholder(t *testing.T) {
	if _, err := upstream.NewPrimaryClient("https://example.com/status", http.DefaultClient, upstream.ClientConfig{}); err == nil {
		t.Error("expected error for url without placeholder")
	}
}

func TestLegacyClient_FetchLegacy(t *testing.T) {
	tt := []struct {
		name     string
		body     string
		players  []string
		plugins  []string
		protocol upstream.LegacyProtocol
		mapName  string
		ping     *int
	}{
		{
			name: "V2Shape",
			body: `{
				"online": true,
				"ip": "1.2.3.4",
				"port": 25565,
				"protocol": 763,
				"players": {"online": 2, "max": 20, "list": ["Alice", "Bob"]},
				"debug": {"ping": 42.7, "query": true, "cachehit": false},
				"map": "world",
				"plugins": {"names": ["WorldEdit", "Essentials"]}
			}`,
			players:  []string{"Alice", "Bob"},
			plugins:  []string{"WorldEdit", "Essentials"},
			protocol: upstream.LegacyProtocol{Version: "763"},
			mapName:  "world",
			ping:     intPtr(43),
		},
		{
			name: "V3Shape",
			body: `{
				"online": true,
				"protocol": {"version": 763, "name": "1.20.1"},
				"players": {"online": 1, "max": 20, "list": [{"name": "Alice", "uuid": "abc"}]},
				"debug": {"ping": true},
				"map": {"raw": "world", "clean": "world", "html": "world"},
				"plugins": [{"name": "WorldEdit", "version": "7"}]
			}`,
			players:  []string{"Alice"},
			plugins:  []string{"WorldEdit"},
			protocol: upstream.LegacyProtocol{Version: "763", Name: "1.20.1"},
			mapName:  "world",
		},
		{
			name: "OfflineShape",
			body: `{"online": false, "ip": "", "port": 25565, "debug": {"ping": false}}`,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := upstream.NewLegacyClient(srv.URL+"/2/", srv.Client(), upstream.ClientConfig{})
			status, err := c.FetchLegacy(context.Background(), "play.example.com")
			if err != nil {
				t.Fatal(err)
			}

			if gotPath != "/2/play.example.com" {
				t.Errorf("got path %q", gotPath)
			}

			var players []string
			if status.Players != nil {
				players = status.Players.List
			}
			if len(players)+len(tc.players) > 0 && !reflect.DeepEqual(players, tc.players) {
				t.Errorf("got players %v; want %v", players, tc.players)
			}

			if len(status.Plugins)+len(tc.plugins) > 0 && !reflect.DeepEqual([]string(status.Plugins), tc.plugins) {
				t.Errorf("got plugins %v; want %v", status.Plugins, tc.plugins)
			}

			if status.Protocol != tc.protocol {
				t.Errorf("got protocol %+v; want %+v", status.Protocol, tc.protocol)
			}

			if string(status.Map) != tc.mapName {
				t.Errorf("got map %q; want %q", status.Map, tc.mapName)
			}

			var ping *int
			if status.Debug != nil {
				ping = status.Debug.Ping.Millis()
			}
			if (ping == nil) != (tc.ping == nil) || ping != nil && *ping != *tc.ping {
				t.Errorf("got ping %v; want %v", ping, tc.ping)
			}
		})
	}
}

func TestFetch_Errors(t *testing.T) {
	tt := []struct {
		name        string
		status      int
		body        string
		cfg         upstream.ClientConfig
		expectedErr error
	}{
		{
			name:        "WithServerError",
			status:      http.StatusInternalServerError,
			body:        `{}`,
			expectedErr: upstream.ErrUnexpectedStatusCode,
		},
		{
			name:        "WithInvalidJSON",
			status:      http.StatusOK,
			body:        `{"online": tru`,
			expectedErr: upstream.ErrMalformedResponse,
		},
		{
			name:        "WithWrongFieldType",
			status:      http.StatusOK,
			body:        `{"online": "yes"}`,
			expectedErr: upstream.ErrMalformedResponse,
		},
		{
			name:        "WithTooLargeBody",
			status:      http.StatusOK,
			body:        `{"hostname": "` + strings.Repeat("a", 64) + `"}`,
			cfg:         upstream.ClientConfig{MaxResponseSize: 32},
			expectedErr: upstream.ErrResponseTooLarge,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.status, tc.body)
			c := upstream.NewLegacyClient(srv.URL, srv.Client(), tc.cfg)

			_, err := c.FetchLegacy(context.Background(), "example.com")
			if !errors.Is(err, tc.expectedErr) {
				t.Errorf("got error %v; want %v", err, tc.expectedErr)
			}
		})
	}
}

func TestPing_Millis(t *testing.T) {
	tt := []struct {
		name string
		ping upstream.Ping
		want *int
	}{
		{
			name: "RoundsUp",
			ping: upstream.NewPing(42.7),
			want: intPtr(43),
		},
		{
			name: "RoundsDown",
			ping: upstream.NewPing(42.2),
			want: intPtr(42),
		},
		{
			name: "WithoutValue",
			ping: upstream.Ping{},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.ping.Millis()
			if (got == nil) != (tc.want == nil) || got != nil && *got != *tc.want {
				t.Errorf("got %v; want %v", got, tc.want)
			}
		})
	}
}

func TestNewHTTPClient(t *testing.T) {
	if _, err := upstream.NewHTTPClient(upstream.ClientConfig{Proxy: "socks5://127.0.0.1:1080"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := upstream.NewHTTPClient(upstream.ClientConfig{Proxy: "gopher://127.0.0.1:70"}); err == nil {
		t.Error("expected error for unsupported proxy scheme")
	}
}

func intPtr(i int) *int {
	return &i
}
