// Package dashboard is the typed API surface the dashboard views call. Every
// area (auth, jobs, applications, ...) runs its calls through its own
// request.Executor so a view can observe that area's loading and error
// state, while all areas share one HTTP client and one session store.
package dashboard

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/placeboard/placeboard/internal/client"
	"github.com/placeboard/placeboard/internal/config"
	"github.com/placeboard/placeboard/internal/crypto"
	"github.com/placeboard/placeboard/internal/request"
	"github.com/placeboard/placeboard/internal/session"
	"github.com/placeboard/placeboard/internal/storage"
)

const (
	loginPath = "/api/auth/login"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionNotSaved  = errors.New("session could not be saved")
)

// Service groups the dashboard API areas
type Service struct {
	client  *client.Client
	session *session.Store
	logger  zerolog.Logger

	Auth          *AuthService
	Companies     *CompanyService
	Jobs          *JobService
	Applications  *ApplicationService
	Notifications *NotificationService
	Tickets       *TicketService
	Overview      *OverviewService
}

// Option configures a Service
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	listener func(area string, s request.State)
}

// WithLogger sets the logger for the service and its executors
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStateListener is called after every loading/error transition of any
// area, tagged with the area name ("auth", "jobs", ...).
func WithStateListener(fn func(area string, s request.State)) Option {
	return func(o *options) { o.listener = fn }
}

// New wires the areas over c and store, and installs the session hooks on c:
// the stored access token is sent as a bearer token, and a 401 from anything
// but the login endpoint clears the stored session.
func New(c *client.Client, store *session.Store, opts ...Option) *Service {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{
		client:  c,
		session: store,
		logger:  o.logger,
	}
	c.Use(s.bearerToken, s.clearOnUnauthorized)

	executor := func(area string) *request.Executor {
		execOpts := []request.ExecutorOption{
			request.WithLogger(o.logger.With().Str("area", area).Logger()),
		}
		if o.listener != nil {
			execOpts = append(execOpts, request.WithListener(func(st request.State) {
				o.listener(area, st)
			}))
		}
		return request.NewExecutor(c, execOpts...)
	}

	s.Auth = &AuthService{area: area{executor("auth")}, session: store}
	s.Companies = &CompanyService{area{executor("companies")}}
	s.Jobs = &JobService{area{executor("jobs")}}
	s.Applications = &ApplicationService{area{executor("applications")}}
	s.Notifications = &NotificationService{area{executor("notifications")}}
	s.Tickets = &TicketService{area{executor("tickets")}}
	s.Overview = &OverviewService{area{executor("overview")}}

	return s
}

// NewFromConfig opens the configured session backend and builds a Service
// against cfg.API. The returned closer releases the backend; the backend
// itself is only reachable through the session store.
func NewFromConfig(cfg *config.Config, log zerolog.Logger) (*Service, io.Closer, error) {
	backend, err := storage.Open(cfg.Session)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	cipher, err := crypto.NewAESGCM(cfg.Session.Passphrase)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create session cipher: %w", err)
	}

	store := session.New(backend, cipher, session.WithLogger(log.With().Str("component", "session").Logger()))
	c := client.New(cfg.API.BaseURL, client.WithTimeout(cfg.API.Timeout))

	log.Debug().
		Str("base_url", cfg.API.BaseURL).
		Str("session_backend", cfg.Session.Backend).
		Msg("Dashboard service configured")

	return New(c, store, WithLogger(log)), backend, nil
}

// Session returns the store the service saves into
func (s *Service) Session() *session.Store {
	return s.session
}

func (s *Service) bearerToken(req *http.Request) error {
	if req.Header.Get("Authorization") != "" {
		return nil
	}
	if token := s.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

func (s *Service) clearOnUnauthorized(resp *http.Response) {
	if resp.StatusCode != http.StatusUnauthorized {
		return
	}
	if resp.Request != nil && strings.HasSuffix(resp.Request.URL.Path, loginPath) {
		return
	}
	if !s.session.IsAuthenticated() {
		return
	}

	s.logger.Info().Msg("Session rejected by server, signing out")
	s.session.Clear()
}

// area is the executor shared by one group of calls
type area struct {
	exec *request.Executor
}

// State returns the loading/error snapshot of the area's latest call
func (a area) State() request.State {
	return a.exec.State()
}

func resourcePath(base string, id string, rest ...string) string {
	parts := append([]string{base, url.PathEscape(id)}, rest...)
	return strings.Join(parts, "/")
}

func withQuery(path string, q url.Values) string {
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}
