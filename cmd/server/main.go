package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/flipbook/internal/asset"
	"github.com/inamate/flipbook/internal/config"
	"github.com/inamate/flipbook/internal/export"
	mw "github.com/inamate/flipbook/internal/middleware"
	"github.com/inamate/flipbook/internal/pdfdoc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	assetHandler := asset.NewHandler(cfg.StaticDir, cfg.BookPath)
	exportHandler := export.NewHandler(pdfdoc.NewEngine(slog.Default()), cfg.BookPath, cfg.ViewerOptions())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// The book, fetched by pdf.js in range chunks
	r.HandleFunc("/book.pdf", assetHandler.Book).Methods("GET", "HEAD", "OPTIONS")

	// Single-page previews rendered server side
	r.HandleFunc("/export/page/{page:[0-9]+}.png", exportHandler.PagePNG).Methods("GET")

	// Viewer shell, scripts and wasm
	r.PathPrefix("/").Handler(assetHandler.Serve()).Methods("GET", "HEAD")

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "static", cfg.StaticDir, "book", cfg.BookPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
