package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShryukGrandhi/urban/internal/capability"
	"github.com/ShryukGrandhi/urban/internal/config"
	"github.com/ShryukGrandhi/urban/internal/hub"
	"github.com/ShryukGrandhi/urban/internal/orchestrator"
	"github.com/ShryukGrandhi/urban/internal/watch"
)

var (
	serveAddr  string
	serveInbox string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent engine over websockets",
	Long: `Start the websocket server. Every connected client receives all task
events in real time; clients can also start tasks, read stats, and clear the
shared context.

Policy documents dropped into the inbox directory are parsed and attached to
tasks that carry no policy data of their own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if serveInbox != "" {
			cfg.Watch.InboxDir = serveInbox
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		inbox, err := watch.NewInbox(cfg.Watch.InboxDir, capability.NewTextParser())
		if err != nil {
			return fmt.Errorf("starting inbox watcher: %w", err)
		}
		defer inbox.Close()

		h := hub.New()
		orch, _, err := buildOrchestrator(ctx, cfg,
			orchestrator.WithPublisher(h),
			orchestrator.WithPolicySource(inbox),
		)
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/ws", hub.NewHandler(h, orch))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})

		server := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: mux,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("[urban] serving on %s (inbox: %s)", cfg.Server.Addr, cfg.Watch.InboxDir)
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Printf("[urban] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().StringVar(&serveInbox, "inbox", "", "Policy document inbox directory (default from config)")
}
