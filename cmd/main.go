package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Ricardo-1112/waterbar-reservation/config"
	"github.com/Ricardo-1112/waterbar-reservation/database"
	"github.com/Ricardo-1112/waterbar-reservation/database/dbhelper"
	"github.com/Ricardo-1112/waterbar-reservation/middlewares"
	"github.com/Ricardo-1112/waterbar-reservation/server"
	"github.com/Ricardo-1112/waterbar-reservation/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.Init()
	middlewares.InitSessions(config.SessionSecret)

	if err := database.ConnectAndMigrate(config.DatabaseURL); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Println("migration is successful")

	if err := seedBarAdmin(); err != nil {
		logrus.Panicf("failed to seed bar admin, error: %v", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	svr := server.SetupRoutes()
	go func() {
		logrus.Infof("listening on :%s", config.Port)
		if err := svr.Run(config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Panicf("server stopped, error: %v", err)
		}
	}()

	<-done

	logrus.Info("shutting down...")
	if err := svr.Shutdown(shutdownTimeout); err != nil {
		logrus.WithError(err).Error("failed to shut down server cleanly")
	}
	if err := database.Shutdown(); err != nil {
		logrus.WithError(err).Error("failed to close database connection")
	}
	logrus.Info("bye")
}

// seedBarAdmin guarantees a fresh deployment has one manageable account.
func seedBarAdmin() error {
	hash, err := utils.HashPassword(config.AdminPassword)
	if err != nil {
		return err
	}
	created, err := dbhelper.EnsureDefaultBarAdmin(config.AdminEmail, hash)
	if err != nil {
		return err
	}
	if created {
		logrus.Infof("created default bar admin account %s", config.AdminEmail)
	}
	return nil
}
