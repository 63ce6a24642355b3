package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/consultbook/internal/client/client"
	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/repositories/metadata"
)

// ---- storage ----

func newRepo(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return metadata.NewSQLiteRepository(db)
}

func newStores(t *testing.T) (*metadata.SQLiteRepository, *SessionStore, *DraftStore) {
	t.Helper()
	repo := newRepo(t)
	return repo, NewSessionStore(repo, nil), NewDraftStore(repo)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// ---- fake backend ----

// fakeAPI implements client.Client for unit tests.
type fakeAPI struct {
	mu sync.Mutex

	CheckEmailRet *client.EmailCheckResponse
	CheckEmailErr error
	SignInRet     *client.AuthResponse
	SignInErr     error
	ResendRet     *client.StatusResponse
	ResendErr     error
	VerifyRet     *client.AuthResponse
	VerifyErr     error
	UpdateRet     *client.ProfileResponse
	UpdateErr     error

	// Block, when set, holds every call until it is closed.
	Block chan struct{}
	// Entered receives a value when a call starts, if set.
	Entered chan string

	CheckEmailCalls int
	SignInCalls     int
	ResendCalls     int
	VerifyCalls     int
	UpdateCalls     int

	LastEmail    string
	LastPassword string
	LastCode     string
	LastToken    string
	LastUserID   string
	LastProfile  client.ProfileUpdate
}

func (f *fakeAPI) enter(name string) {
	if f.Entered != nil {
		f.Entered <- name
	}
	if f.Block != nil {
		<-f.Block
	}
}

func (f *fakeAPI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CheckEmailCalls + f.SignInCalls + f.ResendCalls + f.VerifyCalls + f.UpdateCalls
}

func (f *fakeAPI) CheckEmail(ctx context.Context, email string) (*client.EmailCheckResponse, error) {
	f.enter("check")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CheckEmailCalls++
	f.LastEmail = email
	if f.CheckEmailErr != nil {
		return nil, f.CheckEmailErr
	}
	return f.CheckEmailRet, nil
}

func (f *fakeAPI) SignIn(ctx context.Context, email, password string) (*client.AuthResponse, error) {
	f.enter("signin")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignInCalls++
	f.LastEmail, f.LastPassword = email, password
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	return f.SignInRet, nil
}

func (f *fakeAPI) ResendOTP(ctx context.Context, email string) (*client.StatusResponse, error) {
	f.enter("resend")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResendCalls++
	f.LastEmail = email
	if f.ResendErr != nil {
		return nil, f.ResendErr
	}
	return f.ResendRet, nil
}

func (f *fakeAPI) VerifyOTP(ctx context.Context, email, code string) (*client.AuthResponse, error) {
	f.enter("verify")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VerifyCalls++
	f.LastEmail, f.LastCode = email, code
	if f.VerifyErr != nil {
		return nil, f.VerifyErr
	}
	return f.VerifyRet, nil
}

func (f *fakeAPI) UpdateUser(ctx context.Context, token, userID string, p client.ProfileUpdate) (*client.ProfileResponse, error) {
	f.enter("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	f.LastToken, f.LastUserID, f.LastProfile = token, userID, p
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return f.UpdateRet, nil
}

type fakeGeocoder struct {
	Ret       []models.Place
	Err       error
	LastQuery string
}

func (g *fakeGeocoder) SearchPlaces(ctx context.Context, query string) ([]models.Place, error) {
	g.LastQuery = query
	return g.Ret, g.Err
}

// ---- fake ticker ----

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// tickers hands out fake tickers and remembers them in creation order.
type tickers struct {
	mu  sync.Mutex
	all []*fakeTicker
}

func (ts *tickers) New(time.Duration) Ticker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	ts.all = append(ts.all, t)
	return t
}

func (ts *tickers) Last() *fakeTicker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.all) == 0 {
		return nil
	}
	return ts.all[len(ts.all)-1]
}

func (ts *tickers) Count() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.all)
}
