package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/goshadow/middleware"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr         string
		rejectIssues bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse pipeline over HTTP",
		Long: `Serve the pipeline over HTTP. Request bodies are JSON documents.

  POST /parse    the combined document (payload plus "_meta")
  POST /explain  the error and remark report
  GET  /healthz  liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           newRouter(p, rejectIssues),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() {
				a.log.Info("listening", zap.String("addr", addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&rejectIssues, "reject-issues", false, "answer 422 when a document has errors")
	return cmd
}

func newRouter(p *pipeline, rejectIssues bool) http.Handler {
	opt := p.cfg.parseOpt()
	if opt.MaxBytes == 0 {
		opt.MaxBytes = middleware.DefaultMaxBytes
	}
	annotate := middleware.Annotate(middleware.Config{
		Schema:       p.schema,
		Rules:        p.rules,
		ParseOpt:     &opt,
		RejectIssues: rejectIssues,
		Logger:       p.log,
	})

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		r.Use(annotate)
		r.Post("/parse", func(w http.ResponseWriter, r *http.Request) {
			doc, _ := middleware.DocumentFromContext(r.Context())
			w.Header().Set("Content-Type", "application/json")
			if err := middleware.WriteDocument(w, doc); err != nil {
				p.log.Error("write document", zap.Error(err))
			}
		})
		r.Post("/explain", func(w http.ResponseWriter, r *http.Request) {
			doc, _ := middleware.DocumentFromContext(r.Context())
			middleware.WriteJSON(w, http.StatusOK, newReport("request", doc))
		})
	})
	return r
}
