// Package route is the mode route guard: it decides whether a navigation
// may proceed given which modes hold a session.
package route

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/naveenspark/ieum/pkg/domain"
)

// Well-known routes.
const (
	Entry        = "/"
	Login        = "/login"
	SeniorLogin  = "/senior/login"
	Signup       = "/signup"
	FindPassword = "/find-password"
	NormalHome   = "/normal/home"
	SeniorHome   = "/senior/home"

	ChangePassword = "/normal/settings/password"
)

// Route is one entry of the route table. A public route has no required
// mode.
type Route struct {
	Path     string
	Required domain.Mode
}

// Public reports whether the route needs no session.
func (r Route) Public() bool {
	return r.Required == ""
}

// Table is the client's route table.
var Table = []Route{
	{Path: Entry},
	{Path: Login},
	{Path: SeniorLogin},
	{Path: Signup},
	{Path: FindPassword},
	{Path: NormalHome, Required: domain.ModeNormal},
	{Path: ChangePassword, Required: domain.ModeNormal},
	{Path: SeniorHome, Required: domain.ModeSenior},
}

// Lookup finds path in the table, ignoring a trailing slash.
func Lookup(path string) (Route, bool) {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range Table {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Decision is the guard's verdict. Redirect is empty when Allow is true.
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(target string) Decision { return Decision{Redirect: target} }

// Decide is the pure guard rule for a known route and the set of modes that
// hold a session.
func Decide(r Route, held map[domain.Mode]bool) Decision {
	if r.Public() {
		return allow()
	}
	if held[r.Required] {
		return allow()
	}
	if other := r.Required.Other(); held[other] {
		return redirect(other.Home())
	}
	return redirect(Entry)
}

// SessionSource reports which modes hold a session. *session.Policy
// satisfies it.
type SessionSource interface {
	Held(ctx context.Context) (map[domain.Mode]bool, error)
}

// Guard checks every navigation against the session store.
type Guard struct {
	sessions SessionSource
	log      *zap.Logger
}

// NewGuard creates a guard.
func NewGuard(sessions SessionSource, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{sessions: sessions, log: log}
}

// Check decides whether navigation to path may proceed. Unknown routes go
// to the entry page. A mode whose store cannot be read counts as not held.
func (g *Guard) Check(ctx context.Context, path string) Decision {
	r, ok := Lookup(path)
	if !ok {
		g.log.Debug("unknown route", zap.String("path", path))
		return redirect(Entry)
	}
	if r.Public() {
		return allow()
	}
	// held still lists the modes that could be read.
	held, err := g.sessions.Held(ctx)
	if err != nil {
		g.log.Warn("read sessions for route guard", zap.String("path", path), zap.Error(err))
	}
	d := Decide(r, held)
	if !d.Allow {
		g.log.Debug("route redirected", zap.String("path", path), zap.String("to", d.Redirect))
	}
	return d
}
