package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jyothri/ipodphotos/collect"
	"github.com/jyothri/ipodphotos/photodb"
	"golang.org/x/time/rate"
)

func decode(r *mux.Router, maxBytes int64, limiter *rate.Limiter) {
	decodeRouter := r.PathPrefix("/api/photodb").Subrouter()
	decodeRouter.Use(RateLimitMiddleware(limiter))
	decodeRouter.Use(RequestSizeLimitMiddleware(maxBytes))
	decodeRouter.HandleFunc("/decode", DecodePhotoDbHandler(maxBytes)).Methods("POST")
}

// DecodePhotoDbHandler decodes a container posted as the request body.
func DecodePhotoDbHandler(maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database, err := collect.DecodeUpload(r.Body, maxBytes)
		if handleMaxBytesError(w, r, err, maxBytes) {
			return
		}
		var decodeErr *photodb.DecodeError
		switch {
		case err == nil:
		case errors.As(err, &decodeErr), errors.Is(err, photodb.ErrMalformed), errors.Is(err, photodb.ErrTruncated):
			slog.Warn("Rejected malformed photo database upload",
				"remote_addr", r.RemoteAddr,
				"error", err)
			details := map[string]interface{}{}
			if decodeErr != nil {
				details["tag"] = decodeErr.Tag
				details["offset"] = decodeErr.Offset
			}
			writeErrorResponse(w, ErrorResponse{
				Error: ErrorDetail{
					Code:      "MALFORMED_CONTAINER",
					Message:   err.Error(),
					Details:   details,
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				},
			}, http.StatusUnprocessableEntity)
			return
		default:
			slog.Error("Failed to read photo database upload", "error", err)
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		slog.Info("Decoded photo database upload",
			"images", len(database.Images),
			"albums", len(database.Albums))
		writeJSONResponse(w, DecodeResponse{ImageCount: len(database.Images), Database: database}, http.StatusOK)
	}
}

type DecodeResponse struct {
	ImageCount int               `json:"image_count"`
	Database   *photodb.Database `json:"database"`
}
