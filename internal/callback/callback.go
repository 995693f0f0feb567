// Package callback receives the Kakao redirect on a loopback listener. The
// listener serves the login surface paths, so the redirect URI is the login
// page's own origin and path.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/naveenspark/ieum/internal/auth"
	"github.com/naveenspark/ieum/pkg/domain"
)

// Result is one captured redirect, handed to the login surface of Mode.
type Result struct {
	Mode     domain.Mode
	Redirect auth.Redirect
}

// Receiver serves /login and /senior/login on the loopback interface.
type Receiver struct {
	log     *zap.Logger
	results chan Result

	mu        sync.Mutex
	base      *url.URL
	exchanges map[domain.Mode]*auth.Exchange

	listener net.Listener
	srv      *http.Server
}

// New creates a receiver that is not yet listening.
func New(log *zap.Logger) *Receiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Receiver{
		log:       log,
		results:   make(chan Result, 4),
		exchanges: make(map[domain.Mode]*auth.Exchange),
	}
}

// Listen binds 127.0.0.1:port (0 picks a free port) and starts serving.
func Listen(port int, log *zap.Logger) (*Receiver, error) {
	r := New(log)
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}
	r.listener = ln
	r.SetBase(&url.URL{Scheme: "http", Host: ln.Addr().String()})
	r.srv = &http.Server{Handler: r.Handler()}
	go func() {
		if err := r.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error("callback server stopped", zap.Error(err))
		}
	}()
	return r, nil
}

// SetBase sets the origin the receiver is reachable at.
func (r *Receiver) SetBase(u *url.URL) {
	r.mu.Lock()
	r.base = u
	r.mu.Unlock()
}

// PageURL is the login surface URL for mode, used as the redirect page.
// It is nil until the receiver has a base.
func (r *Receiver) PageURL(mode domain.Mode) *url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.base == nil {
		return nil
	}
	u := *r.base
	u.Path = mode.LoginRoute()
	return &u
}

// Arm makes ex the exchange that captures the next redirect for its mode.
func (r *Receiver) Arm(ex *auth.Exchange) {
	r.mu.Lock()
	r.exchanges[ex.Mode()] = ex
	r.mu.Unlock()
}

// Disarm forgets the exchange for mode.
func (r *Receiver) Disarm(mode domain.Mode) {
	r.mu.Lock()
	delete(r.exchanges, mode)
	r.mu.Unlock()
}

// Results delivers captured redirects.
func (r *Receiver) Results() <-chan Result {
	return r.results
}

// Handler returns the router.
func (r *Receiver) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get(domain.ModeNormal.LoginRoute(), r.handle(domain.ModeNormal))
	router.Get(domain.ModeSenior.LoginRoute(), r.handle(domain.ModeSenior))
	router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/", http.StatusSeeOther)
	})
	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writePage(w, pageIdle)
	})
	return router
}

func (r *Receiver) handle(mode domain.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if !q.Has("code") && !q.Has("error") {
			writePage(w, pageDone)
			return
		}

		r.mu.Lock()
		ex := r.exchanges[mode]
		r.mu.Unlock()

		u := *req.URL
		if base := r.PageURL(mode); base != nil {
			u.Scheme, u.Host = base.Scheme, base.Host
		}

		if ex == nil {
			r.log.Warn("redirect with no login in progress", zap.String("mode", mode.String()))
			http.Redirect(w, req, auth.ScrubURL(&u), http.StatusSeeOther)
			return
		}

		rd, ok := ex.CaptureRedirect(&u)
		// The browser never keeps code or error in its address bar.
		http.Redirect(w, req, rd.Clean, http.StatusSeeOther)
		if !ok {
			return
		}
		select {
		case r.results <- Result{Mode: mode, Redirect: rd}:
		default:
			r.log.Warn("dropped redirect, receiver is full", zap.String("mode", mode.String()))
		}
	}
}

// Close stops the listener.
func (r *Receiver) Close(ctx context.Context) error {
	if r.srv == nil {
		return nil
	}
	return r.srv.Shutdown(ctx)
}
