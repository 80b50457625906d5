package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/lookout/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/lookout/config.toml)")
	deviceURL := flag.String("device", "", "device address, host:port or URL (overrides device_url)")
	pollMS := flag.Int("poll", 0, "poll interval in milliseconds (optional, defaults to 800)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("lookout", version)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		DeviceURL:  *deviceURL,
	}
	if poll := *pollMS; poll > 0 {
		opts.PollMS = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "lookout: %v\n", err)
		return 1
	}
	return 0
}
