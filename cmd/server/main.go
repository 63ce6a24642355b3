package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/consultbook/internal/buildinfo"
	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/dmitrijs2005/consultbook/internal/server"
	"github.com/dmitrijs2005/consultbook/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

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

	gin.SetMode(gin.ReleaseMode)

	server.NewApp(cfg, logger).Run(context.Background())

}
