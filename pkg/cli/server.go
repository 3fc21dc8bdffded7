package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/drugsafe/dilictl/pkg/score"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	serverPortDefault         = 8080
)

var (
	portFlag = &cli.IntFlag{
		Name:     "port",
		Usage:    "Port on which the server will listen",
		Value:    serverPortDefault,
		Required: false,
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start local HTTP API over the scored targets",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
			debugFlag,
		},
	}
)

func cmdStartServer(c *cli.Context) error {
	cfg := getConfig(c)
	port := c.Int(portFlag.Name)
	address := fmt.Sprintf("127.0.0.1:%d", port)

	store, err := loadStore(c)
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		slog.Warn("no scores imported yet, the API will serve empty results")
	}

	mux := makeRouter(store, cfg.Conf.HistogramBins)
	s := &http.Server{
		Addr:           address,
		Handler:        mux,
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("error starting server", "error", err)
		}
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address), "targets", store.Len())

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}

func makeRouter(store *score.Store, defaultBins int) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /data/target", targetAPIHandler(store))
	mux.HandleFunc("GET /data/suggest", suggestAPIHandler(store))
	mux.HandleFunc("GET /data/targets", targetListAPIHandler(store))
	mux.HandleFunc("GET /data/thresholds", thresholdsAPIHandler(store))
	mux.HandleFunc("GET /data/histogram", histogramAPIHandler(store, defaultBins))
	mux.HandleFunc("GET /data/summary", summaryAPIHandler(store))

	return mux
}
