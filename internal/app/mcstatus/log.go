package mcstatus

import "go.uber.org/zap"

// Collection of utility functions to have consistent log fields.

func logAddress(addr string) zap.Field {
	return zap.String("address", addr)
}

func logStatus(s ServerStatus) []zap.Field {
	return []zap.Field{
		zap.Bool("online", s.Online),
		zap.Int("playersOnline", s.Players.Online),
		zap.Int("playersMax", s.Players.Max),
		zap.String("version", s.Version),
		zap.Bool("fromCache", s.FromCache),
		zap.Bool("stale", s.Error),
	}
}

func logEndpoint(e ServerEndpoint) []zap.Field {
	return []zap.Field{
		zap.String("endpointName", e.Name),
		zap.String("endpointAddress", e.Address),
		zap.String("endpointCategory", e.Category),
	}
}

func logPlugin(p Plugin) []zap.Field {
	return []zap.Field{
		zap.String("pluginName", p.Name()),
		zap.String("pluginVersion", p.Version()),
	}
}
