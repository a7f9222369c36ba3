package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd)
		},
	}
}

func (c *cli) serve(cmd *cobra.Command) error {
	gin.SetMode(c.cfg.Server.Mode)

	a, err := c.openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		c.log.Info("closing database connection")
		if err := a.Close(context.Background()); err != nil {
			c.log.WithError(err).Error("failed to close database")
		}
	}()

	router, err := a.Router()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         c.cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  c.cfg.Server.ReadTimeout,
		WriteTimeout: c.cfg.Server.WriteTimeout,
		IdleTimeout:  c.cfg.Server.IdleTimeout,
	}

	// --- Graceful Shutdown ---
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		c.log.WithField("address", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	c.log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return err
	}

	c.log.Info("server exiting")
	return nil
}
