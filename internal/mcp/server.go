package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/deeprave/mcp-guide-go/internal/core/supervisor"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Server is the RPC transport (component N): one ToolRegistry served over
// both a stdio line-delimited JSON-RPC stream and an HTTP/websocket
// endpoint, with a ConnectionManager and connection limiter guarding the
// websocket push channel.
type Server struct {
	sup               *supervisor.Supervisor
	tools             *ToolRegistry
	connections       *ConnectionManager
	connectionLimiter *ConnectionLimiter
	onToolCall        func(sessionID, toolName string)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewServer constructs a Server bound to sup, whose ProcessResponse is run
// over every outgoing tool-call payload before it is serialized.
func NewServer(sup *supervisor.Supervisor) *Server {
	return &Server{
		sup:               sup,
		tools:             NewToolRegistry(),
		connections:       NewConnectionManager(),
		connectionLimiter: NewConnectionLimiter(MaxConnectionsPerSession, MaxTotalConnections),
	}
}

// RegisterTool adds a tool to the server.
func (s *Server) RegisterTool(tool ToolDefinition) {
	s.tools.Register(tool)
}

// SetToolCallCallback installs a callback invoked after every tool
// dispatch, whether or not the handler returned an error, before the
// ledger injection pass.
func (s *Server) SetToolCallCallback(callback func(sessionID, toolName string)) {
	s.onToolCall = callback
}

// PushInstruction delivers text to sessionID's open websocket push
// channel, if any, independent of any in-flight tool call.
func (s *Server) PushInstruction(sessionID, text string) {
	s.connections.PushInstruction(sessionID, text)
}

// BroadcastInstruction delivers text to every session with an open
// websocket push channel. The caller is the workflow task's phase-change
// hook, a process-wide signal that fires outside any single
// request/response cycle.
func (s *Server) BroadcastInstruction(text string) {
	s.connections.BroadcastInstruction(text)
}

// Router builds the HTTP mux: POST /mcp for JSON-RPC calls, GET /mcp/ws
// for the websocket push channel.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/mcp", s.handleHTTP).Methods(http.MethodPost)
	r.HandleFunc("/mcp/ws", s.handleWebSocket).Methods(http.MethodGet)
	return r
}

// ServeStdio runs the stdio JSON-RPC loop until in is exhausted or
// returns an error, dispatching one line-delimited request at a time onto
// sessionID (stdio serves exactly one session per process).
func (s *Server) ServeStdio(sessionID string, in *bufio.Scanner, out *bufio.Writer) error {
	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}
		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeStdioError(out, nil, -32700, "parse error")
			continue
		}
		resp := s.handle(sessionID, &req)
		encoded, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("mcp: encoding stdio response: %w", err)
		}
		if _, err := out.Write(encoded); err != nil {
			return err
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return in.Err()
}

func (s *Server) writeStdioError(out *bufio.Writer, id json.RawMessage, code int, message string) {
	resp := JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: &JSONRPCError{Code: code, Message: message}}
	encoded, _ := json.Marshal(resp)
	out.Write(encoded)
	out.WriteByte('\n')
	out.Flush()
}

// handleHTTP serves one JSON-RPC request over a plain HTTP POST.
func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		sessionID = r.URL.Query().Get("session_id")
	}
	if sessionID == "" {
		http.Error(w, "X-Session-ID header or session_id query param required", http.StatusBadRequest)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, nil, -32700, "parse error")
		return
	}

	resp := s.handle(sessionID, &req)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	resp := JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: &JSONRPCError{Code: code, Message: message}}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleWebSocket upgrades the connection and registers it as sessionID's
// push channel for ledger-injected instructions delivered between
// request/response cycles.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id query param required", http.StatusBadRequest)
		return
	}
	if !s.connectionLimiter.TryAcquire(sessionID) {
		s.connectionLimiter.HandleLimitExceeded(w, sessionID)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.connectionLimiter.Release(sessionID)
		log.Printf("[MCP] websocket upgrade failed for session %s: %v", sessionID, err)
		return
	}

	conn := NewConnection(sessionID, wsConn)
	s.connections.Add(sessionID, conn)
	defer func() {
		s.connections.Remove(sessionID)
		s.connectionLimiter.Release(sessionID)
	}()

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			return
		}
	}
}

// handle dispatches one JSON-RPC request for sessionID.
func (s *Server) handle(sessionID string, req *JSONRPCRequest) JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(sessionID, req)
	default:
		return JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: -32601, Message: fmt.Sprintf("method not found: %s", req.Method)},
		}
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) JSONRPCResponse {
	return JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]string{
				"name":    "guide-core",
				"version": "1.0.0",
			},
			"capabilities": map[string]any{
				"tools": map[string]bool{"listChanged": false},
			},
		},
	}
}

func (s *Server) handleToolsList(req *JSONRPCRequest) JSONRPCResponse {
	return JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]any{"tools": s.tools.List()},
	}
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// handleToolsCall executes one tool, runs the supervisor's boundary hooks
// (OnToolCalled, ProcessResponse/ledger.Inject) around it, and serializes
// the result.
func (s *Server) handleToolsCall(sessionID string, req *JSONRPCRequest) JSONRPCResponse {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: -32602, Message: "invalid params"},
		}
	}

	result, err := s.tools.Execute(params.Name, sessionID, params.Arguments)
	s.sup.OnToolCalled()
	if s.onToolCall != nil {
		s.onToolCall(sessionID, params.Name)
	}
	if err != nil {
		return JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: -32000, Message: err.Error()},
		}
	}

	injected := s.sup.ProcessResponse(result)
	return JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: injected}
}
