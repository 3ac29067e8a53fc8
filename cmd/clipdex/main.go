// clipdex is a command-line client for the video retrieval backend.
//
// Usage:
//
//	clipdex <command> [flags]
//
// Commands: query, similar, clips, submit, image, bookmarks, card, stub, version.
// Configuration is read from config/<ENV>.yaml (ENV defaults to "local").
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clipdex"
	"github.com/kailas-cloud/clipdex/internal/config"
	logpkg "github.com/kailas-cloud/clipdex/internal/logger"
	"github.com/kailas-cloud/clipdex/internal/version"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "clipdex: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	name, args := args[0], args[1:]

	switch name {
	case "version":
		_, err := fmt.Fprintln(out, version.String())
		return err //nolint:wrapcheck // stdout write
	case "card":
		return runCard(args, out)
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logpkg.NewContext(ctx, logger)

	if name == "stub" {
		return runStub(ctx, cfg, args)
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", name, errUsage)
	}
	return cmd(ctx, client, args, out)
}

func newClient(cfg config.Config, logger *zap.Logger) (*clipdex.Client, error) {
	opts := []clipdex.Option{
		clipdex.WithBaseURL(cfg.Backend.BaseURL),
		clipdex.WithLogger(logger),
	}
	if cfg.Backend.TimeoutSec > 0 {
		opts = append(opts, clipdex.WithTimeout(time.Duration(cfg.Backend.TimeoutSec)*time.Second))
	}
	for k, v := range cfg.Backend.Headers {
		if v != "" {
			opts = append(opts, clipdex.WithHeader(k, v))
		}
	}

	c, err := clipdex.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage: clipdex <command> [flags]

commands:
  query     -q TEXT [-sub IDS] [-embedding]   text search
  similar   -id ID                            items similar to ID
  clips     -movie NAME                       all clips of a movie
  submit    -movie NAME -frame N              submit an answer
  image     -file PATH [-sub JSON]            search by sketch or frame (png/jpeg)
  bookmarks [-set id,id,...]                  show or replace bookmarks
  card      -kind K -cid ID -thumb URL        render a result card
  stub      [-listen ADDR]                    run a fake backend
  version                                     print build info
`)
}
