package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/haveachin/mcstatus/internal/app/mcstatus"
)

func TestPrintStatus(t *testing.T) {
	ping := 43
	status := mcstatus.ServerStatus{
		Online:          true,
		Version:         "1.20.1",
		ProtocolVersion: "763",
		Players: mcstatus.Players{
			Online: 1200,
			Max:    5000,
			List:   []string{"Alice", "Bob"},
		},
		Motd: mcstatus.Motd{
			Clean: []string{"Welcome"},
		},
		Debug: mcstatus.Debug{
			Ping: &ping,
		},
		Software:  mcstatus.Unknown,
		FromCache: true,
		Error:     true,
	}

	var buf bytes.Buffer
	printStatus(&buf, "play.example.com", status, 1234*time.Microsecond)
	out := buf.String()

	for _, want := range []string{
		"play.example.com is online",
		"players:  1,200 / 5,000",
		"online:   Alice, Bob",
		"motd:     Welcome",
		"ping:     43ms",
		"showing last known status",
		"resolved in 1ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "software") {
		t.Errorf("unknown software printed:\n%s", out)
	}
}
