package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"portal-quiz-service/internal/app"
	"portal-quiz-service/internal/domain"
	"portal-quiz-service/internal/quiz"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type startedPayload struct {
	SessionID string    `json:"sessionId"`
	View      quiz.View `json:"view"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and runs one quiz session per connection.
// Closing the connection tears the session down.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	subject := r.URL.Query().Get("subject")
	moduleID, err := strconv.Atoi(r.URL.Query().Get("moduleId"))
	if userID == "" || err != nil {
		http.Error(w, "missing userId or moduleId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sessionID, view, err := h.service.Start(ctx, userID, subject, moduleID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer func() { h.service.Abandon(context.Background(), sessionID) }()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var forwarders sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// follow forwards countdown ticks and the final result of a session to the client.
	follow := func(id string) error {
		updates, cancel, err := h.service.Subscribe(ctx, id)
		if err != nil {
			return err
		}
		<-updates // initial snapshot, already sent with "started"
		forwarders.Add(1)
		go func() {
			defer forwarders.Done()
			defer cancel()
			for {
				select {
				case ev, ok := <-updates:
					if !ok {
						return
					}
					select {
					case send <- eventMessage(ev):
					case <-closeSignals:
						return
					}
				case <-closeSignals:
					return
				}
			}
		}()
		return nil
	}

	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{SessionID: sessionID, View: view}}
	if err := follow(sessionID); err != nil {
		send <- errorMessage(err)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var (
			current quiz.View
			err     error
		)
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}
				continue
			}
			current, err = h.service.Select(ctx, sessionID, payload.Option)
		case "submit":
			current, err = h.service.Submit(ctx, sessionID)
		case "next":
			current, err = h.service.Advance(ctx, sessionID)
		case "retry":
			var newID string
			newID, current, err = h.service.Retry(ctx, sessionID)
			if err == nil {
				sessionID = newID
				send <- outboundMessage[any]{Type: "started", Payload: startedPayload{SessionID: sessionID, View: current}}
				err = follow(sessionID)
				if err == nil {
					continue
				}
			}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
			continue
		}
		if err != nil {
			send <- errorMessage(err)
			continue
		}
		send <- outboundMessage[any]{Type: "state", Payload: current}
	}

	close(closeSignals)
	forwarders.Wait()
	close(send)
	<-writerDone
}

func eventMessage(ev app.Event) outboundMessage[any] {
	if ev.Type == app.EventResult && ev.Result != nil {
		return outboundMessage[any]{Type: "result", Payload: *ev.Result}
	}
	return outboundMessage[any]{Type: "tick", Payload: ev.View}
}

func errorMessage(err error) outboundMessage[any] {
	msg := err.Error()
	if errors.Is(err, domain.ErrContentUnavailable) || errors.Is(err, domain.ErrContentNotFound) {
		msg = "unable to load quiz"
	}
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
