package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bnema/taleweaver/internal/application"
	"github.com/bnema/taleweaver/internal/domain"
	"github.com/bnema/taleweaver/internal/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const quitCommand = "/quit"

func newPlayCmd(app *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "play <id>",
		Short: "Play a story interactively",
		Long:  "Play a story one action per line. Narration streams as it is generated; Ctrl+C stops the current narration and " + quitCommand + " leaves the story.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := lookupSession(app, args[0])
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				stop, err := serveMetrics(app, metricsAddr)
				if err != nil {
					return err
				}
				defer stop()
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Serving metrics on http://%s/metrics\n", metricsAddr)
			}

			session, err = app.narrator.Begin(cmd.Context(), session.ID)
			if err != nil {
				return fmt.Errorf("start story: %w", err)
			}
			if err := writeTranscriptOutput(cmd, app, session, false); err != nil {
				return err
			}

			return runPlayLoop(cmd, app, session.ID)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address while playing (e.g. 127.0.0.1:9464)")

	return cmd
}

func runPlayLoop(cmd *cobra.Command, app *app, id domain.SessionID) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "\nType an action, or %s to leave.\n", quitCommand)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}

		action := strings.TrimSpace(scanner.Text())
		switch action {
		case "":
			continue
		case quitCommand:
			return nil
		}

		if err := playTurn(cmd.Context(), out, app, id, action); err != nil {
			return err
		}
	}
}

// playTurn streams one narration. An interrupt while it runs cancels the stream only.
func playTurn(ctx context.Context, out io.Writer, app *app, id domain.SessionID, action string) error {
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprint(out, "\nNarrator: ")
	_, result, err := app.narrator.PlayTurn(turnCtx, id, action, func(token string) {
		_, _ = fmt.Fprint(out, token)
	})
	if err != nil {
		if errors.Is(err, application.ErrEmptyAction) {
			return nil
		}
		return fmt.Errorf("play turn: %w", err)
	}

	if result.Outcome == ports.StreamCancelled {
		_, _ = fmt.Fprint(out, " [narration stopped]")
	}
	_, _ = fmt.Fprint(out, "\n\n")

	return nil
}

func serveMetrics(app *app, addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			app.logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}, nil
}
