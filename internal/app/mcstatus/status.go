package mcstatus

const (
	Unknown         = "unknown"
	DefaultGamemode = "survival"
)

// Source names the upstream API that produced a piece of data.
type Source string

const (
	PrimarySource Source = "primary"
	LegacySource  Source = "legacy"
)

// ServerStatus is the normalized status of a server. Every field is always
// populated; missing upstream data is replaced with typed defaults.
type ServerStatus struct {
	Online          bool     `json:"online"`
	IP              string   `json:"ip"`
	Port            string   `json:"port"`
	Hostname        string   `json:"hostname"`
	Icon            *string  `json:"icon"`
	Version         string   `json:"version"`
	ProtocolVersion string   `json:"protocolVersion"`
	ProtocolName    string   `json:"protocolName"`
	Players         Players  `json:"players"`
	Motd            Motd     `json:"motd"`
	Debug           Debug    `json:"debug"`
	Software        string   `json:"software"`
	Gamemode        string   `json:"gamemode"`
	Map             string   `json:"map"`
	Plugins         []string `json:"plugins"`
	FromCache       bool     `json:"fromCache"`
	Error           bool     `json:"error"`
}

type Players struct {
	Online int      `json:"online"`
	Max    int      `json:"max"`
	List   []string `json:"list"`
}

type Motd struct {
	Raw   []string `json:"raw"`
	Clean []string `json:"clean"`
	HTML  []string `json:"html"`
	// Origin is the upstream that produced Clean and HTML.
	Origin Source `json:"origin"`
}

type Debug struct {
	// Ping is the latency in milliseconds, nil if unknown.
	Ping         *int `json:"ping"`
	QueryEnabled bool `json:"queryEnabled"`
	CacheHit     bool `json:"cacheHit"`
}

// Clone returns a deep copy of the status.
func (s ServerStatus) Clone() ServerStatus {
	c := s
	if s.Icon != nil {
		icon := *s.Icon
		c.Icon = &icon
	}
	if s.Debug.Ping != nil {
		ping := *s.Debug.Ping
		c.Debug.Ping = &ping
	}
	c.Players.List = cloneStrings(s.Players.List)
	c.Motd.Raw = cloneStrings(s.Motd.Raw)
	c.Motd.Clean = cloneStrings(s.Motd.Clean)
	c.Motd.HTML = cloneStrings(s.Motd.HTML)
	c.Plugins = cloneStrings(s.Plugins)
	return c
}

// withDefaults replaces every absent field with its typed default.
func (s ServerStatus) withDefaults() ServerStatus {
	s.IP = orUnknown(s.IP)
	s.Port = orUnknown(s.Port)
	s.Hostname = orUnknown(s.Hostname)
	s.Version = orUnknown(s.Version)
	s.ProtocolVersion = orUnknown(s.ProtocolVersion)
	s.ProtocolName = orUnknown(s.ProtocolName)
	s.Software = orUnknown(s.Software)
	s.Map = orUnknown(s.Map)
	if s.Gamemode == "" {
		s.Gamemode = DefaultGamemode
	}
	if s.Players.List == nil {
		s.Players.List = []string{}
	}
	if s.Motd.Raw == nil {
		s.Motd.Raw = []string{}
	}
	if len(s.Motd.Clean) == 0 {
		s.Motd.Clean = []string{""}
	}
	if len(s.Motd.HTML) == 0 {
		s.Motd.HTML = []string{""}
	}
	if s.Plugins == nil {
		s.Plugins = []string{}
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

func cloneStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	c := make([]string, len(ss))
	copy(c, ss)
	return c
}

// ServerEndpoint describes one of the curated servers.
type ServerEndpoint struct {
	Name        string `mapstructure:"name" json:"name"`
	Address     string `mapstructure:"address" json:"address"`
	Description string `mapstructure:"description" json:"description"`
	Category    string `mapstructure:"category" json:"category"`
}
