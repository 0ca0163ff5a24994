package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/haveachin/mcstatus/internal/app/mcstatus"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <address>",
	Short: "Resolves and prints the status of a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(environment)
		if err != nil {
			return err
		}
		defer logger.Sync()

		addr, err := mcstatus.NormalizeAddress(args[0])
		if err != nil {
			return err
		}

		data, cfg, err := readConfig()
		if err != nil {
			return err
		}
		defer cfg.Close()

		appCfg, err := loadAppConfig(data)
		if err != nil {
			return err
		}

		resolver, closeCache, err := newResolver(appCfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()

		start := time.Now()
		status, err := resolver.Status(cmd.Context(), addr)
		if err != nil {
			return err
		}

		printStatus(cmd.OutOrStdout(), addr, status, time.Since(start))
		return nil
	},
}

func printStatus(w io.Writer, addr string, s mcstatus.ServerStatus, took time.Duration) {
	state := "offline"
	if s.Online {
		state = "online"
	}

	fmt.Fprintf(w, "%s is %s\n", addr, state)
	fmt.Fprintf(w, "  version:  %s (protocol %s)\n", s.Version, s.ProtocolVersion)
	fmt.Fprintf(w, "  players:  %s / %s\n", humanize.Comma(int64(s.Players.Online)), humanize.Comma(int64(s.Players.Max)))
	if len(s.Players.List) > 0 {
		fmt.Fprintf(w, "  online:   %s\n", strings.Join(s.Players.List, ", "))
	}
	fmt.Fprintf(w, "  motd:     %s\n", strings.Join(s.Motd.Clean, " | "))
	if s.Debug.Ping != nil {
		fmt.Fprintf(w, "  ping:     %dms\n", *s.Debug.Ping)
	}
	if s.Software != mcstatus.Unknown {
		fmt.Fprintf(w, "  software: %s\n", s.Software)
	}
	if len(s.Plugins) > 0 {
		fmt.Fprintf(w, "  plugins:  %s\n", strings.Join(s.Plugins, ", "))
	}

	switch {
	case s.Error:
		fmt.Fprintln(w, "  upstreams failed; showing last known status")
	case s.FromCache:
		fmt.Fprintln(w, "  served from cache")
	}
	fmt.Fprintf(w, "  resolved in %s\n", took.Round(time.Millisecond))
}
