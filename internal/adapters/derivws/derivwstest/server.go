// Package derivwstest runs an in-process fake of the trading API WebSocket
// endpoint for tests.
package derivwstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

type forcedError struct {
	code    string
	message string
}

// Server answers authorize, get_settings, set_settings, logout, copy_start,
// copy_stop and ping the way the real API does, echoing the request under
// echo_req.
type Server struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu           sync.Mutex
	accounts     map[string]string
	allowCopiers map[string]bool
	failures     map[string]forcedError
	ignore       map[string]bool
	requests     []map[string]any
	pings        int
	appIDs       []string
	conns        []*websocket.Conn
}

func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		accounts:     map[string]string{},
		allowCopiers: map[string]bool{},
		failures:     map[string]forcedError{},
		ignore:       map[string]bool{},
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// URL is the ws:// endpoint of the fake.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *Server) Close() {
	s.DropConnections()
	s.srv.Close()
}

// AddAccount makes token authorize as loginID.
func (s *Server) AddAccount(token, loginID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[token] = loginID
}

func (s *Server) SetAllowCopiers(loginID string, allow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allowCopiers[loginID] = allow
}

func (s *Server) AllowCopiers(loginID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.allowCopiers[loginID]
}

// FailOn makes every request of msgType answer with an API error.
func (s *Server) FailOn(msgType, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[msgType] = forcedError{code: code, message: message}
}

// IgnoreSetSettings accepts set_settings without changing the permission.
func (s *Server) IgnoreSetSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ignore["set_settings"] = true
}

// Requests returns every received request except keep-alive pings.
func (s *Server) Requests() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, len(s.requests))
	copy(out, s.requests)
	return out
}

// Ops returns the operation name of every received request, in order.
func (s *Server) Ops() []string {
	requests := s.Requests()
	ops := make([]string, 0, len(requests))
	for _, req := range requests {
		ops = append(ops, opOf(req))
	}
	return ops
}

func (s *Server) Pings() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pings
}

func (s *Server) AppIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.appIDs))
	copy(out, s.appIDs)
	return out
}

// DropConnections closes every open client socket from the server side.
func (s *Server) DropConnections() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.appIDs = append(s.appIDs, r.URL.Query().Get("app_id"))
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	defer conn.Close()

	session := ""
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req map[string]any
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}

		resp := s.respond(req, &session)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (s *Server) respond(req map[string]any, session *string) map[string]any {
	op := opOf(req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if op == "ping" {
		s.pings++
		return map[string]any{"msg_type": "ping", "ping": "pong", "echo_req": req}
	}
	s.requests = append(s.requests, req)

	resp := map[string]any{"msg_type": op, "echo_req": req}
	if pt, ok := req["passthrough"]; ok {
		resp["passthrough"] = pt
	}

	if failure, ok := s.failures[op]; ok {
		resp["error"] = map[string]any{"code": failure.code, "message": failure.message}
		return resp
	}

	if op != "authorize" && *session == "" {
		resp["error"] = map[string]any{"code": "AuthorizationRequired", "message": "Please log in."}
		return resp
	}

	switch op {
	case "authorize":
		token, _ := req["authorize"].(string)
		loginID, ok := s.accounts[token]
		if !ok {
			resp["error"] = map[string]any{"code": "InvalidToken", "message": "The token is invalid."}
			return resp
		}
		*session = loginID
		resp["authorize"] = map[string]any{
			"loginid":    loginID,
			"is_virtual": boolInt(strings.HasPrefix(loginID, "VRT")),
		}
	case "get_settings":
		resp["get_settings"] = map[string]any{"allow_copiers": boolInt(s.allowCopiers[*session])}
	case "set_settings":
		if !s.ignore["set_settings"] {
			s.allowCopiers[*session] = true
		}
		resp["set_settings"] = 1
	case "logout":
		*session = ""
		resp["logout"] = 1
	case "copy_start":
		resp["copy_start"] = 1
	case "copy_stop":
		resp["copy_stop"] = 1
	default:
		resp["error"] = map[string]any{"code": "UnrecognisedRequest", "message": "Unrecognised request."}
	}

	return resp
}

func opOf(req map[string]any) string {
	for _, op := range []string{"authorize", "get_settings", "set_settings", "logout", "copy_start", "copy_stop", "ping"} {
		if _, ok := req[op]; ok {
			return op
		}
	}
	return ""
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
