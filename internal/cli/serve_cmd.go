// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve_cmd.go - Read-only transcript viewer over HTTP.

package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/sia-console/internal/config"
	"github.com/jeranaias/sia-console/internal/server"
)

// HandleServe runs the transcript preview server until interrupted.
func HandleServe(args Args) {
	app, err := NewApp(args)
	if err != nil {
		Fatalf("%v", err)
	}
	defer app.Close()

	parser := NewArgParser(args.Raw)
	addr := parser.FlagOrDefault("addr", app.Config.Server.Addr)

	srv := server.NewServer(server.Config{
		Addr:      addr,
		Source:    server.StoreSource{Store: app.Store},
		RateLimit: app.Config.Server.RateLimit,
		RateBurst: app.Config.Server.RateBurst,
	})

	// Long-running process: follow config edits so cap and cadence
	// changes apply without a restart. Listen address changes still
	// need one.
	if path, err := config.ConfigPathTOML(); err == nil {
		if watcher, werr := config.NewWatcher(path, func(*config.Config) {
			log.Printf("CONFIG: reloaded %s", path)
		}); werr == nil {
			if werr := watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
	}

	app.infof("%s", titleStyle.Render("sia-console transcript viewer"))
	app.infof("listening on http://%s (ctrl+c to stop)", srv.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			Fatalf("serve: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("SERVER: received %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			Fatalf("shutdown: %v", err)
		}
	}
}
