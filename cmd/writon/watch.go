// cmd/writon/watch.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"writon/internal/input"
	"writon/internal/session"
	"writon/internal/watch"
)

func newWatchCmd(g *globals) *cobra.Command {
	var (
		flags   processFlags
		delay   time.Duration
		initial bool
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Reprocess a file every time it is saved",
		Long: `Watch a file and process it again each time it changes, printing every
result. Combine with -o to keep a report of each run. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := input.ValidatePath(args[0])
			if err != nil {
				return err
			}

			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctrl := e.controller(session.WithoutPersistence())
			defer ctrl.Close()
			if err := flags.apply(cmd, ctrl); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run := func(ctx context.Context, path string) {
				if err := processFile(ctx, cmd, e, ctrl, &flags, path); err != nil {
					e.log.Debug("watch run failed", zap.String("path", path), zap.Error(err))
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
			}

			w, err := watch.New(path, run, watch.WithDelay(delay), watch.WithLogger(e.log.Named("watch")))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", w.Path())
			if initial {
				run(ctx, w.Path())
			}
			return w.Run(ctx)
		},
	}
	flags.bind(cmd)
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "Quiet period after a change before processing")
	cmd.Flags().BoolVar(&initial, "initial", true, "Process the file once at startup")
	return cmd
}

// processFile loads path and submits it. Empty saves are skipped quietly.
func processFile(ctx context.Context, cmd *cobra.Command, e *env, ctrl *session.Controller, flags *processFlags, path string) error {
	var (
		text string
		err  error
	)
	if input.NeedsUpload(path) {
		text, err = uploadText(ctx, e.client, path)
	} else {
		text, err = input.LoadFile(path)
	}
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	ctrl.SetText(text)
	result, err := ctrl.Submit(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "--- %s (%s)\n", time.Now().Format(time.TimeOnly), ctrl.Elapsed().Round(time.Millisecond))
	return flags.emit(cmd, result)
}
