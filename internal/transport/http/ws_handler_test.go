package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"portal-quiz-service/internal/app"
	"portal-quiz-service/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	conn := dial(t, server, "/ws?userId=u1&subject=safety&moduleId=1")
	defer conn.Close()

	_, started := readNext(conn, t, "started")
	if started["sessionId"] == "" {
		t.Fatalf("expected session id, got %+v", started)
	}

	send(t, conn, map[string]any{"type": "select", "payload": map[string]any{"option": "Stairs"}})
	_, state := readNext(conn, t, "state")
	if state["state"] != "awaitingSubmit" {
		t.Fatalf("expected awaitingSubmit, got %+v", state)
	}

	send(t, conn, map[string]any{"type": "submit"})
	_, state = readNext(conn, t, "state")
	if state["feedback"] != "Correct" || state["score"] != float64(1) {
		t.Fatalf("expected correct feedback, got %+v", state)
	}

	send(t, conn, map[string]any{"type": "next"})
	resultSeen := false
	stateSeen := false
	for i := 0; i < 2; i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "result":
			resultSeen = true
			if payload["score"] != float64(1) || payload["total"] != float64(1) || payload["moduleTitle"] != "Exits" {
				t.Fatalf("unexpected result %+v", payload)
			}
		case "state":
			stateSeen = true
		}
	}
	if !resultSeen || !stateSeen {
		t.Fatalf("expected result and state, got result=%v state=%v", resultSeen, stateSeen)
	}
}

func TestWebSocketRetry(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	conn := dial(t, server, "/ws?userId=u1&subject=safety&moduleId=1")
	defer conn.Close()

	_, first := readNext(conn, t, "started")
	send(t, conn, map[string]any{"type": "retry"})
	_, second := readNext(conn, t, "started")
	if second["sessionId"] == first["sessionId"] {
		t.Fatalf("expected a new session on retry")
	}
}

func TestWebSocketUnknownSubject(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	conn := dial(t, server, "/ws?userId=u1&subject=unknown&moduleId=1")
	defer conn.Close()

	_, payload := readNext(conn, t, "error")
	if payload["message"] != "unable to load quiz" {
		t.Fatalf("unexpected error payload %+v", payload)
	}
}

func TestWebSocketRequiresParams(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws?subject=safety")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestResultsHandlerListsHistory(t *testing.T) {
	server := httptest.NewServer(newTestMux())
	defer server.Close()

	conn := dial(t, server, "/ws?userId=u7&subject=safety&moduleId=1")
	readNext(conn, t, "started")
	send(t, conn, map[string]any{"type": "select", "payload": map[string]any{"option": "Lift"}})
	readNext(conn, t, "state")
	send(t, conn, map[string]any{"type": "submit"})
	readNext(conn, t, "state")
	send(t, conn, map[string]any{"type": "next"})
	for i := 0; i < 2; i++ {
		readNext(conn, t, "")
	}
	conn.Close()

	resp, err := http.Get(server.URL + "/results?userId=u7")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var results []struct {
		UserID string `json:"userId"`
		Result struct {
			Score int `json:"score"`
			Total int `json:"total"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 1 || results[0].UserID != "u7" || results[0].Result.Score != 0 || results[0].Result.Total != 1 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func newTestMux() *http.ServeMux {
	loader := memory.NewStaticContentLoader(map[string][]byte{
		"safety": []byte(`{"modules": [{"id": 1, "title": "Exits", "duration": 120, "questions": [
			{"question": "Exit route?", "options": ["Lift", "Stairs"], "answer": "Stairs"}
		]}]}`),
	})
	service := app.NewQuizService(
		memory.NewSessionStore(),
		memory.NewContentRepository(loader, time.Minute),
		memory.NewResultStore(),
		nil,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service).ServeWS)
	mux.Handle("/results", NewResultsHandler(service))
	return mux
}
