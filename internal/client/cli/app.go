package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/consultbook/internal/client/client"
	"github.com/dmitrijs2005/consultbook/internal/client/config"
	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/consultbook/internal/client/services"
	"github.com/dmitrijs2005/consultbook/internal/filex"
	"github.com/dmitrijs2005/consultbook/internal/logging"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	api      client.Client
	geocoder client.Geocoder
	sessions *services.SessionStore
	drafts   *services.DraftStore
	gate     *services.EmailGate
	verifier *services.CredentialVerifier
	reader   *bufio.Reader
	out      io.Writer
	closer   func() error

	// location is the last destination the flows reached.
	location models.Destination
}

// NewApp opens the local store selected by c.StoreDriver and wires the
// flows to the backend at c.APIBaseURL.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repo, closer, err := openStore(ctx, c)
	if err != nil {
		log.Error(ctx, "error opening local store", "driver", c.StoreDriver, "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout)
	geo := client.NewNominatimGeocoder(c.GeocoderURL, c.RequestTimeout)

	return newApp(c, log, api, geo, repo, closer, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, api client.Client, geo client.Geocoder, repo metadata.Repository, closer func() error, r *bufio.Reader, w io.Writer) *App {
	if log == nil {
		log = logging.Nop()
	}
	sessions := services.NewSessionStore(repo, log.With("component", "session"))
	return &App{
		config:   c,
		log:      log,
		api:      api,
		geocoder: geo,
		sessions: sessions,
		drafts:   services.NewDraftStore(repo),
		gate:     services.NewEmailGate(api, sessions, log.With("component", "email_gate")),
		verifier: services.NewCredentialVerifier(api, sessions, log.With("component", "verifier")),
		reader:   r,
		out:      w,
		closer:   closer,
		location: models.DestinationSignIn,
	}
}

func openStore(ctx context.Context, c *config.Config) (metadata.Repository, func() error, error) {
	switch c.StoreDriver {
	case "", "sqlite":
		dsn, err := filex.EnsureDataDir(c.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("prepare sqlite store: %w", err)
		}
		db, err := client.InitDatabase(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("init sqlite store: %w", err)
		}
		return metadata.NewSQLiteRepository(db), db.Close, nil
	case "redis":
		rdb := redis.NewClient(redisOptions(c))
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis store: %w", err)
		}
		return metadata.NewRedisRepository(rdb, ""), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
}

// redisOptions bounds every Redis call by the configured request timeout.
func redisOptions(c *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         c.RedisAddr,
		Password:     c.RedisPassword,
		DB:           c.RedisDB,
		DialTimeout:  c.RequestTimeout,
		ReadTimeout:  c.RequestTimeout,
		WriteTimeout: c.RequestTimeout,
	}
}

// Run restores the stored session, then serves commands until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to ConsultBook (type 'help' for commands)")
	if sess, err := a.sessions.Read(ctx); err == nil {
		a.location = homeOf(sess.Role)
		printlnFn(fmt.Sprintf("Signed in as %s", sess.Email))
	} else if !errors.Is(err, services.ErrNoSession) {
		a.log.Warn(ctx, "cannot read stored session", "error", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if a.closer == nil {
		return
	}
	if err := a.closer(); err != nil {
		a.log.Warn(context.Background(), "error closing local store", "error", err)
	}
	a.closer = nil
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, err := a.sessions.Read(ctx)
	return err == nil
}

func homeOf(role models.Role) models.Destination {
	if role == models.RoleAdmin {
		return models.DestinationAdminHome
	}
	return models.DestinationUserHome
}
