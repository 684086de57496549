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
	"golang.org/x/sync/errgroup"

	"shopinventory/config"
	"shopinventory/internal/app"
	"shopinventory/internal/catalogapi"
	"shopinventory/internal/media"
	"shopinventory/internal/sessionstore"
	"shopinventory/internal/webserver"
)

var (
	cfile  = flag.String("c", "/etc/shopinventory.yml", "config file")
	initdb = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

func main() {
	flag.Parse()

	cfg := config.LoadConfig(*cfile)
	a := app.NewApplication(cfg)
	a.Init()
	defer a.Release()

	if *initdb {
		a.InitDb()
		zap.S().Info("database initialized")
		os.Exit(0)
	}

	store := sessionstore.New(a.DB(),
		time.Duration(cfg.Web.SessionTTL)*time.Second,
		[]byte(cfg.Web.Secret))
	server := webserver.New(cfg, store)

	mediaClient := media.NewClient(cfg.Media)
	catalogapi.New(a.DB(), mediaClient, a.Settings()).Register(server.Echo())

	sched := a.InitScheduler()
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shctx)
	})

	if err := g.Wait(); err != nil {
		zap.S().Fatal(err)
	}
}
