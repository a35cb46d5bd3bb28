package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/jrsteele09/go-crm-session/session"
	"github.com/jrsteele09/go-crm-session/token"
	"github.com/jrsteele09/go-crm-session/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type command struct {
	usage  string
	banner bool
	run    func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":   {usage: "sign in with -email and -password", run: runLogin},
	"status":  {usage: "restore the stored session and print its status", run: runStatus},
	"whoami":  {usage: "print the signed-in user's profile", run: runWhoami},
	"refresh": {usage: "mint a new access token", run: runRefresh},
	"refetch": {usage: "reload the profile from the API", run: runRefetch},
	"update":  {usage: "change profile fields, e.g. -set phone=555-0100", run: runUpdate},
	"logout":  {usage: "clear the stored session", run: runLogout},
	"watch":   {usage: "keep the session fresh and report changes until interrupted", banner: true, run: runWatch},
}

var commandOrder = []string{"login", "status", "whoami", "refresh", "refetch", "update", "logout", "watch"}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login", a.out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		fs.Usage()
		return errors.New("-email and -password are required")
	}

	if err := a.manager.Bootstrap(ctx); err != nil {
		return err
	}
	if ok, err := a.manager.Login(ctx, *email, *password); !ok {
		if apperrors.Is(err, apperrors.ErrInvalidCredentials) {
			return apperrors.ErrInvalidCredentials
		}
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s\n", displayName(a.manager.User()))
	return nil
}

// bootstrap restores the stored session and fails unless it is authenticated.
func bootstrap(ctx context.Context, a *app) error {
	if err := a.manager.Bootstrap(ctx); err != nil {
		return err
	}
	if a.manager.Status() != session.StatusAuthenticated {
		return apperrors.ErrNotAuthenticated
	}
	return nil
}

func runStatus(ctx context.Context, a *app, _ []string) error {
	if err := a.manager.Bootstrap(ctx); err != nil {
		return err
	}
	s := a.manager.Snapshot()
	fmt.Fprintf(a.out, "status: %s\n", s.Status)
	if !s.IsAuthenticated() {
		return nil
	}
	fmt.Fprintf(a.out, "user:   %s\n", displayName(s.User))
	if exp, ok := token.ExpiresAt(s.AccessToken); ok {
		fmt.Fprintf(a.out, "token:  expires %s (in %s)\n", exp.Format(time.RFC3339), time.Until(exp).Round(time.Second))
	}
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	if err := bootstrap(ctx, a); err != nil {
		return err
	}
	return printProfile(a.out, a.manager.User())
}

func runRefresh(ctx context.Context, a *app, _ []string) error {
	if err := bootstrap(ctx, a); err != nil {
		return err
	}
	if err := a.manager.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "access token refreshed")
	return nil
}

func runRefetch(ctx context.Context, a *app, _ []string) error {
	if err := bootstrap(ctx, a); err != nil {
		return err
	}
	if err := a.manager.RefetchProfile(ctx); err != nil {
		return err
	}
	return printProfile(a.out, a.manager.User())
}

func runUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("update", a.out)
	fields := fieldsFlag{}
	fs.Var(fields, "set", "field to change as key=value, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fields) == 0 {
		fs.Usage()
		return errors.New("nothing to update")
	}

	if err := bootstrap(ctx, a); err != nil {
		return err
	}
	updated, err := a.editor.Save(ctx, fields)
	if err != nil {
		return err
	}
	return printProfile(a.out, updated)
}

func runLogout(_ context.Context, a *app, _ []string) error {
	a.manager.Logout()
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("watch", a.out)
	email := fs.String("email", "", "sign in with this email if no session is stored")
	password := fs.String("password", "", "password for -email")
	autoRefresh := fs.Bool("auto-refresh", a.config.GetAutoRefresh(), "refresh the access token before it expires")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	updates, unsubscribe := a.manager.Subscribe()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for status := range updates {
			fmt.Fprintf(a.out, "%s status: %s\n", time.Now().Format(time.Kitchen), status)
		}
	}()
	// a.out must not be written once runWatch returns
	defer func() {
		unsubscribe()
		<-printed
	}()

	if err := a.manager.Bootstrap(ctx); err != nil {
		return err
	}
	if a.manager.Status() != session.StatusAuthenticated && *email != "" {
		if ok, err := a.manager.Login(ctx, *email, *password); !ok {
			return err
		}
	}

	if !*autoRefresh {
		log.Info().Msg("auto refresh disabled, waiting for interrupt")
		<-ctx.Done()
		return nil
	}
	if err := a.manager.RunAutoRefresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printProfile(out io.Writer, profile users.Profile) error {
	fields, err := profile.Fields()
	if err != nil {
		return errors.Wrap(err, "decode profile")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%-12s %v\n", k+":", fields[k])
	}
	return nil
}

func displayName(profile users.Profile) string {
	user, err := profile.User()
	if err != nil {
		return "unknown user"
	}
	return user.DisplayName()
}

// fieldsFlag collects repeated -set key=value flags.
type fieldsFlag map[string]any

func (f fieldsFlag) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (f fieldsFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	f[key] = val
	return nil
}
