package main

import (
	"embed"
	"os"

	"github.com/haveachin/mcstatus/cmd"
)

//go:embed configs LICENSE LICENSE_NOTICES
var files embed.FS

// Set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cmd.Execute(files, version); err != nil {
		os.Exit(1)
	}
}
