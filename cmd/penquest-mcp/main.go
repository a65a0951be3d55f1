package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/seresheim/penquest-pkgs/internal/config"
	pqmcp "github.com/seresheim/penquest-pkgs/internal/mcp"
	"github.com/seresheim/penquest-pkgs/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	gateway := flag.String("gateway", "", "gateway websocket URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *gateway != "" {
		cfg.GatewayURL = *gateway
	}

	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pqmcp.SetGatewayURL(cfg.GatewayURL)
	pqmcp.SetSessionOptions(session.Options{
		AwaitTimeout:       cfg.AwaitTimeout,
		InteractionTimeout: cfg.InteractionTimeout,
	})
	pqmcp.SetLogger(log)

	s := server.NewMCPServer("penquest", "1.0.0")
	pqmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
