package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/placeboard/placeboard/internal/client"
)

// GenericMessage is shown when a failure carries no server message.
const GenericMessage = "Something went wrong"

// Transport performs the network call; *client.Client satisfies it.
type Transport interface {
	Do(ctx context.Context, r client.Request) (*client.Response, error)
}

// State is a snapshot of an Executor's loading/error state. An empty
// Error means no failure.
type State struct {
	Loading bool
	Error   string
}

// Result is delivered by Start once the call settles
type Result struct {
	Data json.RawMessage
	Err  error
}

// Executor runs calls through a shared Transport
type Executor struct {
	transport Transport
	logger    zerolog.Logger

	mu       sync.Mutex
	state    State
	listener func(State)

	// notifyMu orders listener calls the same way as the state writes
	notifyMu sync.Mutex
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithLogger sets the logger used for failed calls
func WithLogger(l zerolog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// WithListener registers a callback invoked after every state transition,
// in the order the transitions were applied. The callback must not start
// calls on the same Executor.
func WithListener(fn func(State)) ExecutorOption {
	return func(e *Executor) { e.listener = fn }
}

func NewExecutor(t Transport, opts ...ExecutorOption) *Executor {
	e := &Executor{
		transport: t,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current loading/error snapshot
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Loading reports whether a call is in flight
func (e *Executor) Loading() bool {
	return e.State().Loading
}

// Error returns the last failure message, empty when the last call succeeded
func (e *Executor) Error() string {
	return e.State().Error
}

// Execute performs the call and returns the response payload unmodified.
// Failures set Error and are returned to the caller.
func (e *Executor) Execute(ctx context.Context, cfg Config) (json.RawMessage, error) {
	e.begin()
	return e.run(ctx, cfg)
}

// Start flips the executor to loading before returning, then performs the
// call on a new goroutine. The channel receives exactly one Result.
func (e *Executor) Start(ctx context.Context, cfg Config) <-chan Result {
	e.begin()

	out := make(chan Result, 1)
	go func() {
		data, err := e.run(ctx, cfg)
		out <- Result{Data: data, Err: err}
	}()
	return out
}

func (e *Executor) begin() {
	e.set(State{Loading: true})
}

func (e *Executor) run(ctx context.Context, cfg Config) (data json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("request panicked: %v", r)
		}
		if err != nil {
			e.set(State{Loading: false, Error: Message(err)})
			e.logger.Warn().Err(err).Str("method", cfg.Method).Str("url", cfg.URL).Msg("Request failed")
			return
		}
		e.set(State{Loading: false})
	}()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	resp, err := e.transport.Do(ctx, cfg.toRequest())
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (e *Executor) set(s State) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	e.mu.Lock()
	e.state = s
	e.mu.Unlock()

	if e.listener != nil {
		e.listener(s)
	}
}

// Message flattens err into the text shown to the user: the server's
// message when one was sent, otherwise GenericMessage.
func Message(err error) string {
	var respErr *client.ResponseError
	if errors.As(err, &respErr) && respErr.Message != "" {
		return respErr.Message
	}
	return GenericMessage
}

// Do executes cfg and decodes the payload into T
func Do[T any](ctx context.Context, e *Executor, cfg Config) (T, error) {
	var out T
	data, err := e.Execute(ctx, cfg)
	if err != nil {
		return out, err
	}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}
