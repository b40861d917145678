package web

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jyothri/ipodphotos/constants"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

func Server() {
	slog.Info("Starting web server.", "addr", constants.ListenAddr)
	r := mux.NewRouter()
	// Registered ahead of the /api/ routes, which carry a smaller body limit.
	decode(r, constants.MaxUploadBytes, rate.NewLimiter(rate.Limit(constants.DecodeRateLimit), constants.DecodeBurst))
	api(r)
	oauth(r)
	sse(r)
	cors := cors.New(cors.Options{
		AllowedOrigins:   []string{constants.FrontendUrl},
		AllowCredentials: true,
	})
	handler := cors.Handler(r)
	srv := &http.Server{
		Handler: handler,
		Addr:    constants.ListenAddr,
		// Decode uploads can be large; reads get more time than responses.
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  30 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
