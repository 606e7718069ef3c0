/*
 * Copyright 2026 The Workpad Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package rpc provides the client-facing HTTP surface: document
// creation and the websocket watch stream. Identity is taken as-is
// from gateway-supplied headers and query parameters; authentication
// happens in front of this server.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/workpad-team/workpad/api/types"
	pkgerrors "github.com/workpad-team/workpad/pkg/errors"
	"github.com/workpad-team/workpad/server/backend"
	"github.com/workpad-team/workpad/server/documents"
	"github.com/workpad-team/workpad/server/logging"
)

// Identity headers set by the gateway on plain HTTP requests.
const (
	headerUser    = "X-Workpad-User"
	headerDisplay = "X-Workpad-Display"
)

// Server is a normal server that processes the logic requested by the client.
type Server struct {
	conf       *Config
	backend    *backend.Backend
	serveMux   *http.ServeMux
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer creates a new instance of Server.
func NewServer(conf *Config, be *backend.Backend) (*Server, error) {
	s := &Server{
		conf:     conf,
		backend:  be,
		serveMux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// The gateway in front of this server enforces origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.serveMux.HandleFunc("/documents", s.handleCreateDocument)
	s.serveMux.HandleFunc("/documents/watch", s.handleWatchDocument)
	s.serveMux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.Port),
		Handler: s.serveMux,
	}

	return s, nil
}

// ServeHTTP serves the given request with the server's mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.serveMux.ServeHTTP(w, r)
}

// Start starts this server by opening the rpc port.
func (s *Server) Start() error {
	go func() {
		logging.DefaultLogger().Infof("serving RPC on %d", s.conf.Port)

		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logging.DefaultLogger().Errorf("HTTP server ListenAndServe: %v", err)
		}
	}()
	return nil
}

// Shutdown shuts down this server.
func (s *Server) Shutdown(graceful bool) {
	if graceful {
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			logging.DefaultLogger().Errorf("HTTP server Shutdown: %v", err)
		}
		return
	}

	if err := s.httpServer.Close(); err != nil {
		logging.DefaultLogger().Errorf("HTTP server close: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleCreateDocument creates a fresh document owned by the caller
// and returns its identifier with the shareable path.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "use POST")
		return
	}

	owner, err := participantFromHeaders(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", err.Error())
		return
	}

	ctx := logging.With(r.Context(), logging.New(owner.UserID))
	info, err := documents.Create(ctx, s.backend, owner)
	if err != nil {
		writeStatusError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(CreateDocumentResponse{
		ID:        info.ID,
		SharePath: fmt.Sprintf("/documents?id=%s", info.ID),
	})
}

// handleWatchDocument upgrades the connection, joins the caller to the
// document and relays snapshots until the client leaves or disconnects.
func (s *Server) handleWatchDocument(w http.ResponseWriter, r *http.Request) {
	docID := types.ID(r.URL.Query().Get("id"))
	if err := docID.Validate(); err != nil {
		writeStatusError(w, err)
		return
	}

	participant, err := participantFromQuery(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", err.Error())
		return
	}

	ctx := logging.With(context.Background(), logging.New(participant.UserID))

	// Resolve the document before the upgrade so a bad id still gets a
	// proper HTTP status instead of an immediate websocket close.
	if _, err := documents.FindDocInfo(ctx, s.backend, docID); err != nil {
		writeStatusError(w, err)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.From(ctx).Warnf("websocket upgrade: %v", err)
		return
	}

	// The join happens only once a live connection exists. Joining
	// before the upgrade would strand a phantom entry in the active set
	// whenever the upgrade fails: no connection loss could ever trigger
	// the leave path for it.
	if _, err := documents.Join(ctx, s.backend, docID, participant); err != nil {
		logging.From(ctx).Warnf("join %s: %v", docID, err)
		_ = ws.Close()
		return
	}

	sub, snapshot, err := documents.Watch(ctx, s.backend, docID, participant)
	if err != nil {
		if err := documents.Leave(ctx, s.backend, docID, participant.UserID); err != nil {
			logging.From(ctx).Warnf("leave %s: %v", docID, err)
		}
		_ = ws.Close()
		return
	}

	conn := newConnection(ws, s.conf.ParsePingInterval())
	go conn.writeLoop()
	conn.enqueue(ServerFrame{Type: FrameSnapshot, Snapshot: snapshot})

	// Relay broadcast snapshots to the socket. The subscription channel
	// closes on unwatch, which ends the relay.
	go func() {
		for event := range sub.Events() {
			snapshot := event.Snapshot
			if !conn.enqueue(ServerFrame{
				Type:     FrameSnapshot,
				Event:    event.Type,
				Snapshot: &snapshot,
			}) {
				return
			}
		}
	}()

	s.readLoop(ctx, conn, docID, participant)

	if err := documents.Unwatch(ctx, s.backend, docID, sub); err != nil {
		logging.From(ctx).Warnf("unwatch %s: %v", docID, err)
	}
	conn.close()
}

// readLoop consumes client frames until the client leaves, the
// connection errors out, or the read deadline passes. Pings are sent by
// the writer; each pong pushes the deadline forward.
func (s *Server) readLoop(
	ctx context.Context,
	conn *connection,
	docID types.ID,
	participant types.Participant,
) {
	pongWait := 2 * s.conf.ParsePingInterval()

	if s.conf.MaxRequestBytes > 0 {
		conn.ws.SetReadLimit(int64(s.conf.MaxRequestBytes))
	}
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame ClientFrame
		if err := conn.ws.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.From(ctx).Warnf("watch %s: %v", docID, err)
			}
			return
		}

		switch frame.Type {
		case FrameEdit:
			snapshot, err := documents.ApplyEdit(ctx, s.backend, documents.EditIntent{
				DocID:           docID,
				UserID:          participant.UserID,
				Content:         frame.Content,
				BasedOnRevision: frame.BasedOnRevision,
			})
			if err != nil {
				conn.enqueue(ServerFrame{
					Type:    FrameError,
					Code:    pkgerrors.CodeOf(err),
					Message: err.Error(),
				})
				continue
			}
			conn.enqueue(ServerFrame{Type: FrameAck, Snapshot: snapshot})
		case FrameLeave:
			return
		default:
			conn.enqueue(ServerFrame{
				Type:    FrameError,
				Code:    "ErrUnknownFrame",
				Message: fmt.Sprintf("unknown frame type: %s", frame.Type),
			})
		}
	}
}

func participantFromHeaders(r *http.Request) (types.Participant, error) {
	return newParticipant(r.Header.Get(headerUser), r.Header.Get(headerDisplay))
}

func participantFromQuery(r *http.Request) (types.Participant, error) {
	query := r.URL.Query()
	return newParticipant(query.Get("user_id"), query.Get("display_name"))
}

// newParticipant builds the caller's identity. The display name falls
// back to the user id when the gateway did not supply one.
func newParticipant(userID, displayName string) (types.Participant, error) {
	if userID == "" {
		return types.Participant{}, fmt.Errorf("missing user identity")
	}
	if displayName == "" {
		displayName = userID
	}
	return types.Participant{UserID: userID, DisplayName: displayName}, nil
}

// writeStatusError maps a server error to an HTTP response.
func writeStatusError(w http.ResponseWriter, err error) {
	writeError(w, httpStatusOf(err), pkgerrors.CodeOf(err), err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: message})
}

func httpStatusOf(err error) int {
	switch pkgerrors.StatusOf(err) {
	case pkgerrors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case pkgerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case pkgerrors.ErrCodeAlreadyExists:
		return http.StatusConflict
	case pkgerrors.ErrCodeFailedPrecondition:
		return http.StatusPreconditionFailed
	case pkgerrors.ErrCodeResourceExhausted:
		return http.StatusTooManyRequests
	case pkgerrors.ErrCodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case pkgerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
