package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/ieum/internal/auth"
	"github.com/naveenspark/ieum/internal/callback"
	"github.com/naveenspark/ieum/internal/config"
	"github.com/naveenspark/ieum/internal/logging"
	"github.com/naveenspark/ieum/internal/route"
	"github.com/naveenspark/ieum/internal/session"
	"github.com/naveenspark/ieum/internal/tui"
	"github.com/naveenspark/ieum/pkg/client"
	"github.com/naveenspark/ieum/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var cmd string
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(out, "ieum "+version) //nolint:errcheck
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dir, err := cfg.Dir()
	if err != nil {
		return fmt.Errorf("state dir: %w", err)
	}
	log := logging.NewOrNop(dir, cfg.LogLevel)
	defer log.Sync() //nolint:errcheck

	switch cmd {
	case "", "login", "senior":
		return runTUI(cfg, dir, log, startRoute(cmd))
	case "logout":
		return runLogout(cfg, dir, log, out)
	case "status":
		return runStatus(cfg, dir, log, out)
	}
	printHelp(out)
	return fmt.Errorf("unknown command %q", cmd)
}

func startRoute(cmd string) string {
	switch cmd {
	case "login":
		return route.Login
	case "senior":
		return route.SeniorLogin
	}
	return route.Entry
}

// openSessions builds the session policy. IEUM_TOKEN stands in for the
// stored normal-mode token and is never written to disk.
func openSessions(ctx context.Context, cfg config.Config, dir string, log *zap.Logger) (*session.Policy, error) {
	var durable session.Store
	if cfg.Token != "" {
		mem := session.NewMemoryStore()
		if err := mem.Set(ctx, session.NormalKey, cfg.Token); err != nil {
			return nil, err
		}
		durable = mem
	} else {
		durable = session.OpenDurable(dir, cfg.RedisAddr, cfg.RedisPassword, log)
	}
	return session.NewPolicy(durable, session.NewMemoryStore(), log), nil
}

func runTUI(cfg config.Config, dir string, log *zap.Logger, start string) error {
	ctx := context.Background()
	sessions, err := openSessions(ctx, cfg, dir, log)
	if err != nil {
		return err
	}

	// Without a listener Kakao login is unavailable; everything else works.
	rcv, err := callback.Listen(cfg.CallbackPort, log)
	if err != nil {
		log.Warn("kakao callback listener unavailable", zap.Error(err))
		rcv = nil
	} else {
		defer func() {
			shutCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			rcv.Close(shutCtx) //nolint:errcheck
		}()
	}

	c := client.New(cfg.APIURL, "")
	app := tui.NewApp(tui.Deps{
		Backend:  c,
		Authed:   func(token string) auth.Backend { return c.WithToken(token) },
		Sessions: sessions,
		Receiver: rcv,
		Provider: cfg.Provider(),
		Log:      log,
		Version:  version,
	}, start)

	log.Info("starting", zap.String("version", version), zap.String("route", start))
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// runLogout clears the normal-mode session. Senior sessions never outlive
// the process that created them.
func runLogout(cfg config.Config, dir string, log *zap.Logger, out io.Writer) error {
	if cfg.Token != "" {
		fmt.Fprintln(out, "IEUM_TOKEN is set. Unset it to log out.") //nolint:errcheck
		return nil
	}
	ctx := context.Background()
	sessions, err := openSessions(ctx, cfg, dir, log)
	if err != nil {
		return err
	}
	_, ok, err := sessions.Load(ctx, domain.ModeNormal)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Already logged out.") //nolint:errcheck
		return nil
	}
	if err := sessions.Clear(ctx, domain.ModeNormal); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Fprintln(out, "Logged out.") //nolint:errcheck
	return nil
}

func runStatus(cfg config.Config, dir string, log *zap.Logger, out io.Writer) error {
	ctx := context.Background()
	sessions, err := openSessions(ctx, cfg, dir, log)
	if err != nil {
		return err
	}
	s, ok, err := sessions.Load(ctx, domain.ModeNormal)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Signed out.") //nolint:errcheck
		return nil
	}
	if s.DisplayName != "" {
		fmt.Fprintf(out, "Signed in as %s.\n", s.DisplayName) //nolint:errcheck
		return nil
	}
	fmt.Fprintln(out, "Signed in.") //nolint:errcheck
	return nil
}
