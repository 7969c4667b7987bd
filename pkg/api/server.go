// Zaparoo Ambience
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Ambience.
//
// Zaparoo Ambience is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Ambience is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Ambience.  If not, see <http://www.gnu.org/licenses/>.

// Package api serves the JSON-RPC 2.0 API over WebSocket and HTTP POST and
// broadcasts notifications to every connected WebSocket client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"slices"
	"time"

	apimiddleware "github.com/ZaparooProject/zaparoo-ambience/pkg/api/middleware"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/library"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/broker"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/scenes"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	maxRequestSize      = 1 << 20
	broadcastBuffer     = 256
	shutdownTimeout     = 5 * time.Second
	readHeaderTimeout   = 5 * time.Second
	pingMessage         = "ping"
	pongMessage         = "pong"
	jsonContentType     = "application/json"
	jsonRPCVersion      = "2.0"
	defaultAllowOrigins = "http://localhost:*"
)

// Deps are the services API methods act on.
type Deps struct {
	Config        *config.Instance
	Library       *scenes.Library
	DB            requests.SceneDB
	Documents     *library.Store
	Files         afero.Fs
	Notifications chan<- models.Notification
	Broker        *broker.Broker
	Clock         clockwork.Clock
}

type Server struct {
	deps    Deps
	methods *MethodMap
	melody  *melody.Melody
	filter  *apimiddleware.IPFilter
	limiter *apimiddleware.IPRateLimiter
	router  chi.Router
}

// NewServer builds the router. A nil method map uses NewMethodMap.
func NewServer(deps Deps, methodMap *MethodMap) *Server {
	if methodMap == nil {
		methodMap = NewMethodMap()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	s := &Server{
		deps:    deps,
		methods: methodMap,
		melody:  melody.New(),
		filter:  apimiddleware.NewIPFilter(deps.Config.AllowedIPs()),
		limiter: apimiddleware.NewIPRateLimiter(deps.Clock),
	}
	s.melody.Config.MaxMessageSize = maxRequestSize
	s.melody.Upgrader.CheckOrigin = s.checkOrigin
	s.melody.HandleMessage(apimiddleware.WebSocketRateLimitHandler(s.limiter, s.handleWSMessage))
	s.melody.HandleConnect(func(session *melody.Session) {
		log.Debug().Str("addr", session.Request.RemoteAddr).Msg("api: client connected")
	})
	s.melody.HandleDisconnect(func(session *melody.Session) {
		log.Debug().Str("addr", session.Request.RemoteAddr).Msg("api: client disconnected")
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(apimiddleware.HTTPIPFilterMiddleware(s.filter))
	r.Use(apimiddleware.HTTPRateLimitMiddleware(s.limiter))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{},
	}))

	r.Get(config.APIPath, func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("api: handling websocket request")
		}
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(config.APIRequestTimeout))
		r.Post(config.APIPath, s.handlePostRequest)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) allowedOrigins() []string {
	origins := s.deps.Config.AllowedOrigins()
	if len(origins) == 0 {
		return []string{defaultAllowOrigins, "http://127.0.0.1:*"}
	}
	return origins
}

// checkOrigin accepts clients which send no origin, local pages and any
// configured origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	origins := s.deps.Config.AllowedOrigins()
	return slices.Contains(origins, "*") || slices.Contains(origins, origin)
}

func (s *Server) env(ctx context.Context, remoteAddr string) requests.RequestEnv {
	return requests.RequestEnv{
		Context:       ctx,
		Config:        s.deps.Config,
		Library:       s.deps.Library,
		DB:            s.deps.DB,
		Documents:     s.deps.Documents,
		Files:         s.deps.Files,
		Notifications: s.deps.Notifications,
		IsLocal:       apimiddleware.IsLoopbackAddr(remoteAddr),
	}
}

func errorResponse(id models.RPCID, code int, msg string) models.ResponseErrorObject {
	return models.ResponseErrorObject{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &models.ErrorObject{Code: code, Message: msg},
	}
}

// methodError maps a handler error to a JSON-RPC error object.
func methodError(err error) *models.ErrorObject {
	var ve *validation.Error
	switch {
	case errors.As(err, &ve),
		errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams):
		return &models.ErrorObject{Code: models.ErrorCodeInvalidParams, Message: err.Error()}
	default:
		return &models.ErrorObject{Code: models.ErrorCodeServer, Message: err.Error()}
	}
}

// processRequest runs one JSON-RPC message and returns the reply to send,
// or nil for notifications, which get no reply.
//
//nolint:gocritic // env is built per message
func (s *Server) processRequest(env requests.RequestEnv, msg []byte) any {
	if !json.Valid(msg) {
		log.Warn().Msg("api: message is not valid JSON")
		return errorResponse(models.NullRPCID, models.ErrorCodeParse, "Parse error")
	}

	var req models.RequestObject
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Warn().Err(err).Msg("api: invalid request object")
		return errorResponse(models.NullRPCID, models.ErrorCodeInvalidRequest, "Invalid Request")
	}

	id := models.NullRPCID
	if req.ID != nil {
		id = *req.ID
	}

	if req.JSONRPC != jsonRPCVersion {
		log.Warn().Str("jsonrpc", req.JSONRPC).Msg("api: unsupported payload version")
		return errorResponse(id, models.ErrorCodeInvalidRequest, "Invalid Request")
	}
	if req.Method == "" {
		return errorResponse(id, models.ErrorCodeInvalidRequest, "Invalid Request")
	}

	fn, ok := s.methods.GetMethod(req.Method)
	if !ok {
		log.Warn().Str("method", req.Method).Msg("api: unknown method")
		if req.ID == nil {
			return nil
		}
		return errorResponse(id, models.ErrorCodeMethodNotFound, "Method not found")
	}

	env.ID = id
	env.Params = req.Params
	log.Debug().Str("method", req.Method).Str("id", id.String()).Msg("api: received request")

	result, err := fn(env)
	if req.ID == nil {
		if err != nil {
			log.Warn().Err(err).Str("method", req.Method).Msg("api: notification failed")
		}
		return nil
	}
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Msg("api: method failed")
		return models.ResponseErrorObject{
			JSONRPC: jsonRPCVersion,
			ID:      id,
			Error:   methodError(err),
		}
	}
	return models.ResponseObject{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Result:  result,
	}
}

func (s *Server) handleWSMessage(session *melody.Session, msg []byte) {
	if string(msg) == pingMessage {
		if err := session.Write([]byte(pongMessage)); err != nil {
			log.Error().Err(err).Msg("api: sending pong")
		}
		return
	}

	ctx := session.Request.Context()
	resp := s.processRequest(s.env(ctx, session.Request.RemoteAddr), msg)
	if resp == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("api: marshalling response")
		return
	}
	if err := session.Write(data); err != nil {
		log.Error().Err(err).Msg("api: sending response")
	}
}

func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != jsonContentType {
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err != nil {
		http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
		return
	}

	resp := s.processRequest(s.env(r.Context(), r.RemoteAddr), body)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("api: marshalling response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", jsonContentType)
	if _, err := w.Write(data); err != nil {
		log.Debug().Err(err).Msg("api: writing response")
	}
}

// broadcastNotifications sends every broker notification to all WebSocket
// clients until the subscription closes.
func (s *Server) broadcastNotifications(sub *broker.Subscription) {
	for n := range sub.C {
		data, err := json.Marshal(models.NotificationObject{
			JSONRPC: jsonRPCVersion,
			Method:  n.Method,
			Params:  n.Params,
		})
		if err != nil {
			log.Error().Err(err).Msg("api: marshalling notification")
			continue
		}
		if err := s.melody.Broadcast(data); err != nil {
			log.Debug().Err(err).Msg("api: broadcasting notification")
		}
	}
	log.Debug().Msg("api: notification broadcast stopped")
}

// Start listens on the configured address and serves until ctx is done.
// ready, if set, is called with the bound address once connections are
// accepted.
func (s *Server) Start(ctx context.Context, ready func(net.Addr)) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.deps.Config.APIListen())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.deps.Config.APIListen(), err)
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("api: server listening")

	if s.deps.Broker != nil {
		sub := s.deps.Broker.Subscribe(broadcastBuffer)
		defer s.deps.Broker.Unsubscribe(sub)
		go s.broadcastNotifications(sub)
	}
	s.limiter.StartCleanup(ctx)

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		if err := s.melody.Close(); err != nil {
			log.Debug().Err(err).Msg("api: closing websocket sessions")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("api: server shutdown")
		}
	}()

	if ready != nil {
		ready(ln.Addr())
	}

	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		log.Info().Msg("api: server stopped")
		return nil
	}
	return fmt.Errorf("api server failed: %w", err)
}
