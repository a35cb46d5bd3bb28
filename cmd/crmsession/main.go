package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-crm-session/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(out)
		if len(args) == 0 {
			return errors.New("no command given")
		}
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(out)
		return errors.Errorf("unknown command %q", args[0])
	}
	if cmd.banner {
		displayAppname(out, c.GetAppName())
	}

	a, err := newApp(ctx, c, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Err(err).Msg("failed to close storage")
		}
	}()

	return cmd.run(ctx, a, args[1:])
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Str("env", c.GetEnv()).
		Logger()
}

func printUsage(out io.Writer) {
	names := make([]string, 0, len(commandOrder))
	for _, name := range commandOrder {
		names = append(names, fmt.Sprintf("  %-8s %s", name, commands[name].usage))
	}
	fmt.Fprintf(out, "usage: crmsession <command> [flags]\n\ncommands:\n%s\n", strings.Join(names, "\n"))
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
