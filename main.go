package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/api/handlers"
	"github.com/alumnihub/alumni-api/api/scheduler"
	"github.com/alumnihub/alumni-api/config"
	"github.com/alumnihub/alumni-api/databases"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()
	if err := a.Config.Validate(); err != nil {
		zap.S().Fatalw("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// initialize database and router
	if err := a.Initialize(ctx); err != nil {
		zap.S().Fatalw("failed to initialize", "error", err)
	}

	var sch *scheduler.Scheduler
	if a.Config.SchedulerEnabled {
		sch = scheduler.NewScheduler(
			databases.NewSubscriptionDatabase(a.DB),
			databases.NewJobDatabase(a.DB),
			databases.NewReferralDatabase(a.DB),
			databases.NewUserDatabase(a.DB),
			a.Mailer,
			a.Redis,
			a.Config.ReferralReminderDays,
		)
		sch.Start()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.S().Infow("alumni-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	zap.S().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("graceful shutdown failed", "error", err)
	}
	if sch != nil {
		sch.Stop()
	}
	a.Close(shutdownCtx)
}
