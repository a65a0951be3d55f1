package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/seresheim/penquest-pkgs/internal/config"
	pqnet "github.com/seresheim/penquest-pkgs/internal/net"
	"github.com/seresheim/penquest-pkgs/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	gateway := flag.String("gateway", "", "gateway websocket URL (overrides config)")
	scenario := flag.String("scenario", "", "scenario id when creating a game")
	join := flag.String("join", "", "lobby code to join instead of creating a game")
	bot := flag.Int("bot", 0, "bot opponent type to add to a created lobby (0 for none)")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := session.Options{
		AwaitTimeout:       cfg.AwaitTimeout,
		InteractionTimeout: cfg.InteractionTimeout,
	}
	client, err := pqnet.Dial(ctx, cfg.GatewayURL, opts, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()
	client.Start(ctx)

	log.Info("connected to gateway", zap.String("url", cfg.GatewayURL))

	repl := pqnet.NewREPL(client, os.Stdin, os.Stdout)
	repl.CreateScenarioID = *scenario
	repl.JoinCode = *join
	repl.BotType = *bot

	if err := repl.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
