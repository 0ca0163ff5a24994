package upstream

import (
	"bytes"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var null = []byte("null")

// PrimaryStatus is the response of the primary status API.
// Pointer fields are nil when the API omitted them.
type PrimaryStatus struct {
	Code       int        `json:"code"`
	Online     *bool      `json:"online"`
	IP         FlexString `json:"ip"`
	Port       FlexString `json:"port"`
	Hostname   FlexString `json:"hostname"`
	Players    *int       `json:"players"`
	MaxPlayers *int       `json:"max_players"`
	Version    FlexString `json:"version"`
	MotdClean  *string    `json:"motd_clean"`
	MotdHTML   *string    `json:"motd_html"`
	FaviconURL *string    `json:"favicon_url"`
}

// LegacyStatus is the response of the legacy status API. Both the v2 and the
// v3 shapes of the nested fields are accepted.
type LegacyStatus struct {
	Online   *bool          `json:"online"`
	IP       FlexString     `json:"ip"`
	Port     FlexString     `json:"port"`
	Hostname FlexString     `json:"hostname"`
	Icon     *string        `json:"icon"`
	Version  FlexString     `json:"version"`
	Protocol LegacyProtocol `json:"protocol"`
	Motd     *LegacyMotd    `json:"motd"`
	Players  *LegacyPlayers `json:"players"`
	Debug    *LegacyDebug   `json:"debug"`
	Software FlexString     `json:"software"`
	Gamemode FlexString     `json:"gamemode"`
	Map      LegacyMap      `json:"map"`
	Plugins  PluginList     `json:"plugins"`
}

type LegacyMotd struct {
	Raw   []string `json:"raw"`
	Clean []string `json:"clean"`
	HTML  []string `json:"html"`
}

type LegacyPlayers struct {
	Online *int       `json:"online"`
	Max    *int       `json:"max"`
	List   PlayerList `json:"list"`
}

type LegacyDebug struct {
	Ping     Ping `json:"ping"`
	Query    bool `json:"query"`
	CacheHit bool `json:"cachehit"`
}

// FlexString accepts JSON strings and numbers. Null decodes to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(bb []byte) error {
	if bytes.Equal(bb, null) {
		*s = ""
		return nil
	}

	if len(bb) > 0 && bb[0] == '"' {
		var str string
		if err := json.Unmarshal(bb, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}

	var n jsoniter.Number
	if err := json.Unmarshal(bb, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// LegacyProtocol is either a bare protocol number (v2)
// or an object with version and name (v3).
type LegacyProtocol struct {
	Version string
	Name    string
}

func (p *LegacyProtocol) UnmarshalJSON(bb []byte) error {
	if bytes.Equal(bb, null) {
		return nil
	}

	if len(bb) > 0 && bb[0] == '{' {
		var obj struct {
			Version FlexString `json:"version"`
			Name    FlexString `json:"name"`
		}
		if err := json.Unmarshal(bb, &obj); err != nil {
			return err
		}
		p.Version = string(obj.Version)
		p.Name = string(obj.Name)
		return nil
	}

	var v FlexString
	if err := json.Unmarshal(bb, &v); err != nil {
		return err
	}
	p.Version = string(v)
	return nil
}

// PlayerList is either a list of names (v2)
// or a list of objects with a name and uuid (v3).
type PlayerList []string

func (l *PlayerList) UnmarshalJSON(bb []byte) error {
	if bytes.Equal(bb, null) {
		*l = nil
		return nil
	}

	var raw []jsoniter.RawMessage
	if err := json.Unmarshal(bb, &raw); err != nil {
		return err
	}

	names := make([]string, 0, len(raw))
	for _, r := range raw {
		if len(r) > 0 && r[0] == '{' {
			var p struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(r, &p); err != nil {
				return err
			}
			names = append(names, p.Name)
			continue
		}

		var name string
		if err := json.Unmarshal(r, &name); err != nil {
			return err
		}
		names = append(names, name)
	}
	*l = names
	return nil
}

// PluginList is either {"names": [...]} (v2) or [{"name": ...}] (v3).
type PluginList []string

func (l *PluginList) UnmarshalJSON(bb []byte) error {
	if bytes.Equal(bb, null) {
		*l = nil
		return nil
	}

	if len(bb) > 0 && bb[0] == '{' {
		var obj struct {
			Names []string `json:"names"`
		}
		if err := json.Unmarshal(bb, &obj); err != nil {
			return err
		}
		*l = obj.Names
		return nil
	}

	var plugins []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(bb, &plugins); err != nil {
		return err
	}

	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	*l = names
	return nil
}

// LegacyMap is either a plain string (v2) or a motd-like object (v3),
// in which case the clean variant is used.
type LegacyMap string

func (m *LegacyMap) UnmarshalJSON(bb []byte) error {
	if bytes.Equal(bb, null) {
		*m = ""
		return nil
	}

	if len(bb) > 0 && bb[0] == '{' {
		var obj struct {
			Clean string `json:"clean"`
		}
		if err := json.Unmarshal(bb, &obj); err != nil {
			return err
		}
		*m = LegacyMap(obj.Clean)
		return nil
	}

	var s FlexString
	if err := json.Unmarshal(bb, &s); err != nil {
		return err
	}
	*m = LegacyMap(s)
	return nil
}

// Ping is the latency reported by the legacy API. The API reports a boolean
// instead of a number when it has no measurement.
type Ping struct {
	value *float64
}

func NewPing(v float64) Ping {
	return Ping{value: &v}
}

func (p *Ping) UnmarshalJSON(bb []byte) error {
	p.value = nil
	if bytes.Equal(bb, null) || bytes.Equal(bb, []byte("true")) || bytes.Equal(bb, []byte("false")) {
		return nil
	}

	v, err := strconv.ParseFloat(string(bb), 64)
	if err != nil {
		return err
	}
	p.value = &v
	return nil
}

// Millis returns the ping rounded to the nearest millisecond
// or nil if no numeric ping was reported.
func (p Ping) Millis() *int {
	if p.value == nil {
		return nil
	}
	ms := int(math.Round(*p.value))
	return &ms
}
