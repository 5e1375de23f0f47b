package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/subtrack/internal/events"
	"github.com/theirongolddev/subtrack/internal/model"
)

const maxRequestBody = 1 << 20 // 1 MB

type listResponse struct {
	Subscriptions []model.Subscription `json:"subscriptions"`
}

type syncRequest struct {
	Subscriptions []model.Record `json:"subscriptions"`
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleGetByQuery(w http.ResponseWriter, r *http.Request) {
	s.serveList(w, r, strings.TrimSpace(r.URL.Query().Get("token")))
}

func (s *Service) handleGetByPath(w http.ResponseWriter, r *http.Request) {
	s.serveList(w, r, strings.TrimSpace(r.PathValue("token")))
}

func (s *Service) serveList(w http.ResponseWriter, r *http.Request, token string) {
	if token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	subs, err := s.repo.Get(r.Context(), token)
	if errors.Is(err, model.ErrTokenNotFound) {
		http.Error(w, "Token not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.recordError(err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()

	writeJSON(w, listResponse{Subscriptions: subs})
}

func (s *Service) handleNewToken(w http.ResponseWriter, r *http.Request) {
	token, err := generateToken()
	if err == nil {
		err = s.repo.Create(r.Context(), token)
	}
	if err != nil {
		s.recordError(err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.tokensIssued++
	s.mu.Unlock()

	s.publishEvent(r.Context(), events.New(events.TypeTokenCreated, token, 0))
	writeJSON(w, map[string]string{"token": token})
}

func (s *Service) handleSync(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	var payload syncRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	for i, rec := range payload.Subscriptions {
		if err := model.Validate(rec); err != nil {
			http.Error(w, fmt.Sprintf("Invalid subscription %d: %v", i+1, err), http.StatusBadRequest)
			return
		}
	}

	stored, err := s.repo.Replace(r.Context(), token, payload.Subscriptions)
	if err != nil {
		s.recordError(err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.syncs++
	s.lastSyncAt = time.Now()
	s.mu.Unlock()

	s.publishEvent(r.Context(), events.New(events.TypeSubscriptionsReplaced, token, len(stored)))
	writeJSON(w, listResponse{Subscriptions: stored})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Status(r.Context()))
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	evs := make([]events.Event, len(s.events))
	copy(evs, s.events)
	s.mu.RUnlock()

	writeJSON(w, evs)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan events.Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Greet with a snapshot so clients know the stream is live.
	st := s.Status(r.Context())
	writeSSE(w, events.Event{
		Type:      events.TypeSnapshot,
		Timestamp: time.Now().UTC(),
		Count:     st.Tokens,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
