// Command chess-service runs the reference move service.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"termchess/logging"
	"termchess/service"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := flag.String("addr", ":"+port, "listen address")
	debug := flag.Bool("debug", false, "log every request body")
	depth := flag.Int("depth", service.DefaultDepth, "search depth in plies")
	random := flag.Bool("random", false, "play uniformly random replies instead of searching")
	flag.Parse()

	log := logging.NewStderr(*debug)
	defer log.Sync()

	rules := service.NewSearchRules(*depth)
	if *random {
		rules = service.NewRules(service.RandomPicker)
	}
	h := service.NewHandlers(rules, log)
	e := service.New(h)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting", zap.String("addr", *addr), zap.Int("depth", *depth), zap.Bool("random", *random))
		if err := e.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("stopped")
}
