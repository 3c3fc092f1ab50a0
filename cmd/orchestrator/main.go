package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Sama14b/orchestrator/internal/app/config"
	"github.com/Sama14b/orchestrator/pkg/orchestrator"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("orchestrator %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Optional path to a YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rt, err := orchestrator.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rt.Run(ctx)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to the configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	fmt.Printf("config ok: acquire=%s predict=%s listen=%s\n", cfg.AcquireURL, cfg.PredictURL, cfg.ListenAddr)
	return nil
}

func printUsage() {
	fmt.Printf(`Orchestrator service

Usage:
  orchestrator <command> [flags]

Commands:
  run        Start the orchestrator HTTP service
  validate   Load and validate configuration without starting the service

Examples:
  orchestrator run -config ./config.yaml
  ACQUIRE_URL=http://acquire:8081 PREDICT_URL=http://predict:8082 orchestrator run
  orchestrator validate -config ./config.yaml
`)
}
