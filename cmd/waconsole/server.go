package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"waconsole/internal/auth"
	"waconsole/internal/constants"
	"waconsole/internal/metrics"
	"waconsole/internal/middleware"
	"waconsole/internal/models"
	"waconsole/internal/service"
	"waconsole/pkg/whatsapp"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router     *mux.Router
	logger     *logrus.Logger
	cfg        *models.Config
	webhookSvc *service.WebhookService
	chatSvc    *service.ChatService
	sendSvc    *service.SendService
	hub        *service.Hub
	sessions   *auth.Store
	server     *http.Server
}

func NewServer(cfg *models.Config, webhookSvc *service.WebhookService, chatSvc *service.ChatService, sendSvc *service.SendService, hub *service.Hub, sessions *auth.Store, logger *logrus.Logger) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		logger:     logger,
		cfg:        cfg,
		webhookSvc: webhookSvc,
		chatSvc:    chatSvc,
		sendSvc:    sendSvc,
		hub:        hub,
		sessions:   sessions,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Observability(s.logger))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	// Provider webhook: verification handshake and event delivery
	s.router.HandleFunc("/webhook", s.handleVerifyWebhook()).Methods(http.MethodGet)
	s.router.HandleFunc("/webhook", s.handleWebhook()).Methods(http.MethodPost)

	// Console auth
	s.router.HandleFunc("/login", s.handleLogin()).Methods(http.MethodPost)
	s.router.HandleFunc("/logout", s.handleLogout()).Methods(http.MethodPost)

	// Console API, session-gated
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.sessions.Middleware)
	api.HandleFunc("/chats", s.handleChats()).Methods(http.MethodGet)
	api.HandleFunc("/messages/{contact}", s.handleMessages()).Methods(http.MethodGet)
	api.HandleFunc("/reply", s.handleReply()).Methods(http.MethodPost)
	api.HandleFunc("/media", s.handleSendMedia()).Methods(http.MethodPost)

	// Live updates and stored media, session-gated
	s.router.Handle("/ws", s.sessions.Middleware(http.HandlerFunc(s.hub.ServeWS))).Methods(http.MethodGet)
	s.router.PathPrefix("/media/").Handler(s.sessions.Middleware(
		http.StripPrefix("/media/", http.FileServer(http.Dir(s.cfg.Media.Dir)))))
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.cfg.Server.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetRegistry().Export())
	}
}

func (s *Server) handleVerifyWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		challenge, err := whatsapp.VerifyWebhook(
			s.cfg.WhatsApp.VerifyToken,
			q.Get("hub.mode"),
			q.Get("hub.verify_token"),
			q.Get("hub.challenge"),
		)
		if err != nil {
			s.logger.Warn("Webhook verification rejected")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
	}
}

func (s *Server) handleWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload models.WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.logger.WithError(err).Warn("Failed to decode webhook payload")
		} else if err := s.webhookSvc.ProcessEvent(r.Context(), &payload); err != nil {
			s.logger.WithError(err).Error("Webhook event processing failed")
		}

		// The upstream sender is acknowledged in every case; see AckAlways.
		if service.AckAlways {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		}
	}
}

func (s *Server) handleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PostFormValue("username")
		password := r.PostFormValue("password")

		token, err := s.sessions.Login(username, password)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid login"})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *Server) handleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
			s.sessions.Logout(cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:   auth.SessionCookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *Server) handleChats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chats, err := s.chatSvc.ListChats(r.Context())
		if err != nil {
			s.logger.WithError(err).Error("Failed to list chats")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chats"})
			return
		}
		writeJSON(w, http.StatusOK, chats)
	}
}

func (s *Server) handleMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contact := mux.Vars(r)["contact"]
		messages, err := s.chatSvc.GetConversation(r.Context(), contact)
		if err != nil {
			s.logger.WithError(err).Error("Failed to load conversation")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load conversation"})
			return
		}
		if messages == nil {
			messages = []models.Message{}
		}
		writeJSON(w, http.StatusOK, messages)
	}
}

type replyRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func (s *Server) handleReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		msg, err := s.sendSvc.SendText(r.Context(), req.To, req.Message)
		if err != nil {
			s.logger.WithError(err).Error("Failed to send reply")
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to send message"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": msg})
	}
}

func (s *Server) handleSendMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(constants.MaxMultipartMemoryBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file"})
			return
		}
		defer file.Close()

		to := r.FormValue("to")
		caption := r.FormValue("caption")
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		msg, err := s.sendSvc.SendMedia(r.Context(), to, header.Filename, mimeType, file, caption)
		if err != nil {
			s.logger.WithError(err).Error("Failed to send media")
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to send media"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": msg})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
