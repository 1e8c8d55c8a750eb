package api

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"storefront/app"
	"storefront/config"
)

var (
	router  http.Handler
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		cfg := config.LoadConfig()
		// serverless instances share one database; migrations run at deploy time
		cfg.AutoMigrate = false
		cfg.CartIdleTTL = 0

		logger, err := config.NewLogger(cfg)
		if err != nil {
			initErr = err
			return
		}

		a, err := app.New(context.Background(), cfg, logger)
		if err != nil {
			logger.Error("failed to initialize application", zap.Error(err))
			initErr = err
			return
		}
		router = a.Router
	})
}

func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"message":"Service unavailable"}`))
		return
	}
	router.ServeHTTP(w, r)
}
