// Package server initializes and runs the ConsultBook dev backend: an
// in-memory account store behind the HTTP-JSON API the client talks to.
// It handles graceful shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/dmitrijs2005/consultbook/internal/server/config"
	"github.com/dmitrijs2005/consultbook/internal/server/otp"
	"github.com/dmitrijs2005/consultbook/internal/server/services"
	"github.com/dmitrijs2005/consultbook/internal/server/users"

	hs "github.com/dmitrijs2005/consultbook/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *services.UserService
}

func NewApp(c *config.Config, logger logging.Logger) *App {
	mailer := otp.NewSender(c.ResendAPIKey, c.MailFrom, logger.With("module", "mailer"))
	us := services.NewUserService(users.NewMemoryRepository(), otp.NewStore(c.OtpValidityDuration), mailer, c, logger)
	return &App{config: c, logger: logger, userService: us}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := hs.NewHTTPServer(app.config.EndpointAddr, app.logger, app.userService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "admins", len(app.config.AdminEmails), "mail", app.config.ResendAPIKey != "")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
