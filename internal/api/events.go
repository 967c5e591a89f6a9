package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/pathworks/curriculum-engine/internal/curriculum"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// eventEnvelope is the wire format of the event feed
type eventEnvelope struct {
	CurriculumID string           `json:"curriculum_id"`
	Event        curriculum.Event `json:"event"`
	At           time.Time        `json:"at"`
}

// EventHub fans mutation events out to websocket subscribers, keyed by
// curriculum. Implements curriculum.Publisher.
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan eventEnvelope]struct{}
}

// NewEventHub creates an event hub
func NewEventHub() *EventHub {
	return &EventHub{
		subscribers: make(map[string]map[chan eventEnvelope]struct{}),
	}
}

// Publish delivers an event to all subscribers of the curriculum. Slow
// subscribers drop events rather than blocking the mutation path.
func (h *EventHub) Publish(curriculumID string, event curriculum.Event) {
	env := eventEnvelope{
		CurriculumID: curriculumID,
		Event:        event,
		At:           time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[curriculumID] {
		select {
		case ch <- env:
		default:
			slog.Debug("dropping event for slow subscriber", "curriculum_id", curriculumID)
		}
	}
}

func (h *EventHub) subscribe(curriculumID string) chan eventEnvelope {
	ch := make(chan eventEnvelope, 32)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[curriculumID] == nil {
		h.subscribers[curriculumID] = make(map[chan eventEnvelope]struct{})
	}
	h.subscribers[curriculumID][ch] = struct{}{}
	return ch
}

func (h *EventHub) unsubscribe(curriculumID string, ch chan eventEnvelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.subscribers[curriculumID]; subs != nil {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.subscribers, curriculumID)
		}
	}
}

// handleEventsWS streams mutation events for one curriculum over a websocket
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	curriculumID := chi.URLParam(r, "id")
	if curriculumID == "" {
		http.Error(w, "curriculum id required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "event feed disabled", http.StatusNotImplemented)
		return
	}

	if _, err := s.manager.GetCurriculum(r.Context(), curriculumID); err != nil {
		http.Error(w, "curriculum not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("event websocket connected", "curriculum_id", curriculumID)

	ch := s.hub.subscribe(curriculumID)
	defer s.hub.unsubscribe(curriculumID, ch)

	done := make(chan struct{})

	// Drain client messages to detect disconnects
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			slog.Info("event websocket disconnected", "curriculum_id", curriculumID)
			return
		case env := <-ch:
			data, err := json.Marshal(env)
			if err != nil {
				slog.Error("failed to marshal event", "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("failed to send event", "error", err)
				return
			}
		}
	}
}
