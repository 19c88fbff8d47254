package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benjamin-es-hall/solbirthday"
	"github.com/benjamin-es-hall/solbirthday/render"
	"github.com/benjamin-es-hall/solbirthday/server"
	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

var (
	metakernel string
	addr       string
)

func init() {
	flag.StringVar(&metakernel, "metakernel", "", "metakernel TOML file (default $"+solbirthday.MetakernelEnv+" or "+solbirthday.DefaultMetakernel+")")
	flag.StringVar(&addr, "addr", "", "listen address (default from the metakernel `server.address`)")
}

func main() {
	flag.Parse()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)

	path := solbirthday.MetakernelPath(metakernel)
	conf, err := solbirthday.LoadConfig(path)
	if err != nil {
		logger.Log("level", "critical", "subsys", "config", "metakernel", path, "err", err)
		fmt.Fprintln(os.Stderr, "Exiting...")
		os.Exit(1)
	}
	if addr != "" {
		conf.ServerAddr = addr
	}
	sys, err := solbirthday.LoadSolarSystem(conf, logger)
	if err != nil {
		logger.Log("level", "critical", "subsys", "ephem", "err", err)
		fmt.Fprintln(os.Stderr, "Exiting...")
		os.Exit(1)
	}

	srv := server.NewServer(conf.ServerAddr, sys, render.NewFigure(sys, conf), logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Log("level", "info", "subsys", "api", "status", "listening", "addr", conf.ServerAddr, "engine", sys.Ephemeris().Engine().Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log("level", "critical", "subsys", "api", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Log("level", "info", "subsys", "api", "status", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Log("level", "error", "subsys", "api", "err", err)
	}
}
