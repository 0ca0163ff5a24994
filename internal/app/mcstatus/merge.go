package mcstatus

import (
	"strings"

	"github.com/haveachin/mcstatus/internal/pkg/upstream"
	"go.uber.org/multierr"
)

type resolution byte

const (
	resolutionPrimaryValid resolution = iota
	resolutionLegacyFallback
	resolutionFailed
)

func (r resolution) String() string {
	switch r {
	case resolutionPrimaryValid:
		return "primary"
	case resolutionLegacyFallback:
		return "legacyFallback"
	}
	return "failed"
}

func classify(primary Result[upstream.PrimaryStatus], legacy Result[upstream.LegacyStatus]) resolution {
	switch {
	case primary.Ok():
		return resolutionPrimaryValid
	case legacy.Ok():
		return resolutionLegacyFallback
	default:
		return resolutionFailed
	}
}

// resolve turns the results of both upstream calls into a status.
// The legacy result is optional enrichment when the primary result is valid
// and the only source otherwise.
func resolve(primary Result[upstream.PrimaryStatus], legacy Result[upstream.LegacyStatus]) (ServerStatus, resolution, error) {
	r := classify(primary, legacy)
	switch r {
	case resolutionPrimaryValid:
		var l *upstream.LegacyStatus
		if legacy.Ok() {
			l = &legacy.Data
		}
		return merge(primary.Data, l, PrimarySource), r, nil
	case resolutionLegacyFallback:
		return merge(primaryFromLegacy(legacy.Data), &legacy.Data, LegacySource), r, nil
	default:
		err := multierr.Combine(primary.Err, legacy.Err)
		if err == nil {
			err = ErrAllUpstreamsFailed
		}
		return ServerStatus{}, r, err
	}
}

// primaryFromLegacy translates a legacy response into the primary shape
// so that both paths share the same merge.
func primaryFromLegacy(l upstream.LegacyStatus) upstream.PrimaryStatus {
	online := l.Online != nil && *l.Online
	p := upstream.PrimaryStatus{
		Code:       200,
		Online:     &online,
		IP:         l.IP,
		Port:       l.Port,
		Hostname:   l.Hostname,
		Version:    l.Version,
		FaviconURL: l.Icon,
	}

	if l.Players != nil {
		p.Players = l.Players.Online
		p.MaxPlayers = l.Players.Max
	}

	if l.Motd != nil {
		if len(l.Motd.Clean) > 0 {
			clean := strings.Join(l.Motd.Clean, "\n")
			p.MotdClean = &clean
		}
		if len(l.Motd.HTML) > 0 {
			html := strings.Join(l.Motd.HTML, "<br>")
			p.MotdHTML = &html
		}
	}

	return p
}

// merge builds the canonical status. The primary response wins for the online
// state and player counts, the legacy response for the player list, icon and
// motd lines. Fields without a primary analogue come from legacy only.
func merge(p upstream.PrimaryStatus, l *upstream.LegacyStatus, origin Source) ServerStatus {
	if l == nil {
		l = &upstream.LegacyStatus{}
	}

	s := ServerStatus{
		IP:              firstNonEmpty(string(p.IP), string(l.IP)),
		Port:            firstNonEmpty(string(p.Port), string(l.Port)),
		Hostname:        firstNonEmpty(string(p.Hostname), string(l.Hostname)),
		Version:         firstNonEmpty(string(p.Version), string(l.Version)),
		ProtocolVersion: l.Protocol.Version,
		ProtocolName:    l.Protocol.Name,
		Software:        string(l.Software),
		Gamemode:        string(l.Gamemode),
		Map:             string(l.Map),
		Plugins:         cloneStrings(l.Plugins),
	}

	switch {
	case p.Online != nil:
		s.Online = *p.Online
	case l.Online != nil:
		s.Online = *l.Online
	}

	var lPlayers upstream.LegacyPlayers
	if l.Players != nil {
		lPlayers = *l.Players
	}
	s.Players.Online = firstInt(p.Players, lPlayers.Online)
	s.Players.Max = firstInt(p.MaxPlayers, lPlayers.Max)
	s.Players.List = cloneStrings(lPlayers.List)

	switch {
	case l.Icon != nil && *l.Icon != "":
		icon := *l.Icon
		s.Icon = &icon
	case p.FaviconURL != nil && *p.FaviconURL != "":
		icon := *p.FaviconURL
		s.Icon = &icon
	}

	var lMotd upstream.LegacyMotd
	if l.Motd != nil {
		lMotd = *l.Motd
	}
	s.Motd = Motd{
		Raw:    cloneStrings(lMotd.Raw),
		Clean:  []string{firstLine(p.MotdClean, lMotd.Clean)},
		HTML:   []string{firstLine(p.MotdHTML, lMotd.HTML)},
		Origin: origin,
	}

	if l.Debug != nil {
		s.Debug.QueryEnabled = l.Debug.Query
		s.Debug.CacheHit = l.Debug.CacheHit
		// The primary API has no latency data.
		if origin == LegacySource {
			s.Debug.Ping = l.Debug.Ping.Millis()
		}
	}

	return s.withDefaults()
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func firstInt(primary, legacy *int) int {
	if primary != nil {
		return *primary
	}
	if legacy != nil {
		return *legacy
	}
	return 0
}

func firstLine(flat *string, lines []string) string {
	if flat != nil {
		return *flat
	}
	if len(lines) > 0 {
		return lines[0]
	}
	return ""
}
