package main

import (
	"fmt"
	"os"

	"github.com/shelflib/shelflib/internal/config"
	"github.com/shelflib/shelflib/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	entrypoint.Run(cfg, Version)
}
