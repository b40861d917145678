package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jyothri/ipodphotos/notification"
)

func sse(r *mux.Router) {
	sse := r.PathPrefix("/sse").Subrouter()
	sse.HandleFunc("/events", sseHandler).Queries("client_key", "{client_key}")
	sse.HandleFunc("/events", sseHandler)
}

// sseHandler streams scan progress for a client key, or for every scan when none is given.
func sseHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientKey := mux.Vars(r)["client_key"]
	if clientKey == "" {
		clientKey = notification.NOTIFICATION_ALL
	}
	lastEventId := r.Header.Get("Last-Event-Id")

	rc := http.NewResponseController(w)
	clientGone := r.Context().Done()
	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()
	progress := notification.GetSubscriber(clientKey)
	defer notification.Unsubscribe(clientKey, progress)

	slog.Info("Client connected", "client_key", clientKey, "last_event_id", lastEventId)
	start := time.Now()
	write := func(event string, data string) bool {
		timestamp := strconv.FormatInt(time.Now().UTC().UnixMilli(), 10)
		if _, err := fmt.Fprintf(w, "event:%s\nretry: 10000\nid:%s\ndata:%s\n\n", event, timestamp, data); err != nil {
			slog.Warn("Unable to write event", "client_key", clientKey, "event", event, "error", err)
			return false
		}
		rc.SetWriteDeadline(time.Time{})
		rc.Flush()
		return true
	}

	for {
		select {
		case <-clientGone:
			slog.Info("Client disconnected", "client_key", clientKey, "duration", time.Since(start))
			return
		case <-ticker.C:
			if !write("timer", time.Now().Format(time.RFC850)) {
				return
			}
		case p, ok := <-progress:
			if !ok {
				write("close", "close at "+time.Now().Format(time.RFC850))
				return
			}
			data, err := json.Marshal(p)
			if err != nil {
				slog.Error("Failed to marshal progress", "error", err)
				continue
			}
			if !write("progress", string(data)) {
				return
			}
		}
	}
}
