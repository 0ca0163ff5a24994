//go:generate mockgen -destination=mcstatus_mock_test.go -package=mcstatus_test github.com/haveachin/mcstatus/internal/app/mcstatus PrimaryFetcher,LegacyFetcher
package mcstatus_test

import (
	"github.com/haveachin/mcstatus/internal/pkg/upstream"
)

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func primaryStatus(online bool, players, maxPlayers int) upstream.PrimaryStatus {
	return upstream.PrimaryStatus{
		Code:       200,
		Online:     boolPtr(online),
		IP:         "1.2.3.4",
		Port:       "25565",
		Hostname:   "play.example.com",
		Players:    intPtr(players),
		MaxPlayers: intPtr(maxPlayers),
		Version:    "Paper 1.20.1",
		MotdClean:  strPtr("A Minecraft Server"),
		MotdHTML:   strPtr(`<span style="color:#55FF55">A Minecraft Server</span>`),
		FaviconURL: strPtr("https://primary.example.com/icon.png"),
	}
}

func legacyStatus(online bool, players, maxPlayers int, list ...string) upstream.LegacyStatus {
	return upstream.LegacyStatus{
		Online:   boolPtr(online),
		IP:       "1.2.3.4",
		Port:     "25565",
		Hostname: "play.example.com",
		Icon:     strPtr("data:image/png;base64,AAAA"),
		Version:  "1.20.1",
		Protocol: upstream.LegacyProtocol{Version: "763", Name: "1.20.1"},
		Motd: &upstream.LegacyMotd{
			Raw:   []string{"§aA Minecraft Server", "§7second line"},
			Clean: []string{"A Minecraft Server", "second line"},
			HTML:  []string{`<span style="color: #55FF55">A Minecraft Server</span>`, `<span style="color: #AAAAAA">second line</span>`},
		},
		Players: &upstream.LegacyPlayers{
			Online: intPtr(players),
			Max:    intPtr(maxPlayers),
			List:   list,
		},
		Debug: &upstream.LegacyDebug{
			Ping:     upstream.NewPing(42.7),
			Query:    true,
			CacheHit: false,
		},
		Software: "Paper",
		Map:      "world",
		Plugins:  upstream.PluginList{"WorldEdit"},
	}
}
