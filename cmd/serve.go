package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundraising-cli/internal/donor"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP tool server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		// The tool table is built once at startup; dispatch is an explicit
		// name lookup, no registry.
		tools := e.Service.Tools()
		byName := make(map[string]donor.Tool, len(tools))
		for _, t := range tools {
			byName[t.Name] = t
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Get("/tools", func(w http.ResponseWriter, _ *http.Request) {
			type toolInfo struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			}
			list := make([]toolInfo, len(tools))
			for i, t := range tools {
				list[i] = toolInfo{Name: t.Name, Description: t.Description}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(list)
		})

		r.Post("/tools/{name}", func(w http.ResponseWriter, req *http.Request) {
			name := chi.URLParam(req, "name")
			tool, ok := byName[name]
			if !ok {
				http.Error(w, `{"error":"unknown tool"}`, http.StatusNotFound)
				return
			}

			args, err := io.ReadAll(req.Body)
			if err != nil {
				http.Error(w, `{"error":"read request body"}`, http.StatusBadRequest)
				return
			}

			// Remote calls run on the request goroutine; they block here
			// without stalling other requests.
			text, err := tool.Handler(req.Context(), args)
			if err != nil {
				zap.L().Warn("tool arguments rejected", zap.String("tool", name), zap.Error(err))
				http.Error(w, `{"error":"invalid tool arguments"}`, http.StatusBadRequest)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"report": text})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.Int("tools", len(tools)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
