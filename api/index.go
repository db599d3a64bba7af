package handler

import (
	"net/http"
	"sync"

	"hotel/config"
	"hotel/di"
	"hotel/shared/logger"
	transport "hotel/transport/http"
)

var (
	once   sync.Once
	server *transport.HTTP
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.Init(cfg)

		// The platform owns the process, so the producer is never closed here.
		server, _ = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
