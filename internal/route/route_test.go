package route

import (
	"context"
	"errors"
	"testing"

	"github.com/naveenspark/ieum/internal/session"
	"github.com/naveenspark/ieum/pkg/domain"
)

type heldModes map[domain.Mode]bool

func (h heldModes) Held(context.Context) (map[domain.Mode]bool, error) {
	return h, nil
}

type brokenStore struct{}

func (brokenStore) Held(context.Context) (map[domain.Mode]bool, error) {
	return nil, errors.New("disk gone")
}

func TestGuardCheck(t *testing.T) {
	none := heldModes{}
	normal := heldModes{domain.ModeNormal: true}
	senior := heldModes{domain.ModeSenior: true}
	both := heldModes{domain.ModeNormal: true, domain.ModeSenior: true}

	tests := []struct {
		name string
		held heldModes
		path string
		want Decision
	}{
		{"senior home without session", none, SeniorHome, Decision{Redirect: Entry}},
		{"normal home without session", none, NormalHome, Decision{Redirect: Entry}},
		{"senior home with normal only", normal, SeniorHome, Decision{Redirect: NormalHome}},
		{"normal home with senior only", senior, NormalHome, Decision{Redirect: SeniorHome}},
		{"senior home with senior", senior, SeniorHome, Decision{Allow: true}},
		{"normal home with normal", normal, NormalHome, Decision{Allow: true}},
		{"both sessions", both, SeniorHome, Decision{Allow: true}},
		{"trailing slash", senior, SeniorHome + "/", Decision{Allow: true}},
		{"nested normal route with senior", senior, ChangePassword, Decision{Redirect: SeniorHome}},
		{"unknown route", both, "/admin", Decision{Redirect: Entry}},
		{"unknown route without session", none, "/senior/unknown", Decision{Redirect: Entry}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGuard(tt.held, nil).Check(context.Background(), tt.path)
			if got != tt.want {
				t.Errorf("Check(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestPublicRoutesAlwaysAllowed(t *testing.T) {
	for _, held := range []heldModes{{}, {domain.ModeNormal: true}, {domain.ModeSenior: true}} {
		g := NewGuard(held, nil)
		for _, p := range []string{Entry, Login, SeniorLogin, Signup, FindPassword} {
			if d := g.Check(context.Background(), p); !d.Allow {
				t.Errorf("Check(%q) with %v = %+v", p, held, d)
			}
		}
	}
}

func TestGuardUnreadableStore(t *testing.T) {
	g := NewGuard(brokenStore{}, nil)
	if d := g.Check(context.Background(), NormalHome); d.Allow || d.Redirect != Entry {
		t.Errorf("Check() = %+v, want redirect to entry", d)
	}
	if d := g.Check(context.Background(), Login); !d.Allow {
		t.Error("public route blocked by store error")
	}
}

// downStore fails every call, like an unreachable redis.
type downStore struct{}

func (downStore) Get(context.Context, string) (string, error) { return "", errors.New("connection refused") }
func (downStore) Set(context.Context, string, string) error { return errors.New("connection refused") }
func (downStore) Delete(context.Context, string) error { return errors.New("connection refused") }

func TestGuardKeepsSeniorSessionWhenDurableStoreFails(t *testing.T) {
	ctx := context.Background()
	policy := session.NewPolicy(downStore{}, session.NewMemoryStore(), nil)
	if err := policy.Persist(ctx, domain.Session{Mode: domain.ModeSenior, CredentialToken: "t1"}); err != nil {
		t.Fatal(err)
	}
	g := NewGuard(policy, nil)

	if d := g.Check(ctx, SeniorHome); !d.Allow {
		t.Errorf("Check(%q) = %+v, want allow", SeniorHome, d)
	}
	if d := g.Check(ctx, NormalHome); d.Allow || d.Redirect != SeniorHome {
		t.Errorf("Check(%q) = %+v, want redirect to %s", NormalHome, d, SeniorHome)
	}
}

func TestDecideEveryProtectedRoute(t *testing.T) {
	for _, r := range Table {
		if r.Public() {
			continue
		}
		if d := Decide(r, map[domain.Mode]bool{r.Required: true}); !d.Allow {
			t.Errorf("%s denied with its own mode", r.Path)
		}
		if d := Decide(r, nil); d.Redirect != Entry {
			t.Errorf("%s without session = %+v", r.Path, d)
		}
	}
}
