package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/consultbook/internal/buildinfo"
	"github.com/dmitrijs2005/consultbook/internal/client/cli"
	"github.com/dmitrijs2005/consultbook/internal/client/config"
	"github.com/dmitrijs2005/consultbook/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	// a missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if s, ok := logger.(interface{ Sync() error }); ok {
		defer s.Sync()
	}

	ctx := context.Background()
	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	app.Run(ctx)

}
