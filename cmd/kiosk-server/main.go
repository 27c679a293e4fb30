package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"kiosk/internal/catalog"
	"kiosk/internal/config"
	"kiosk/internal/db"
	"kiosk/internal/listening"
	"kiosk/internal/llm"
	"kiosk/internal/session"
	"kiosk/internal/speech"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := db.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Error("connect db failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Error("migrate db failed", "error", err)
		os.Exit(1)
	}
	if cfg.SeedMenu {
		if err := store.SeedMenu(ctx, db.DefaultMenu()); err != nil {
			logger.Error("seed menu failed", "error", err)
			os.Exit(1)
		}
	}

	locale := language.Make(cfg.Locale)
	menuItems, err := store.ListMenu(ctx, "")
	if err != nil {
		logger.Error("load menu failed", "error", err)
		os.Exit(1)
	}
	sessionCatalog := catalog.New(menuItems, locale)
	logger.Info("catalog loaded", "items", sessionCatalog.Len(), "locale", cfg.Locale)

	provider, err := llm.NewProvider(llm.Config{
		Provider: strings.ToLower(cfg.IntentProvider),
		Model:    cfg.IntentModel,
		BaseURL:  cfg.OpenAIBaseURL,
		APIKey:   cfg.OpenAIAPIKey,
	})
	if err != nil {
		logger.Error("init intent provider failed", "error", err)
		os.Exit(1)
	}

	publisher := speech.NewPublisher(speech.PublisherConfig{
		BrokerURL:   cfg.MQTTBrokerURL,
		ClientID:    cfg.MQTTClientID,
		Username:    cfg.MQTTUsername,
		Password:    cfg.MQTTPassword,
		TopicPrefix: cfg.MQTTTopicPrefix,
	}, logger)
	if err := publisher.Start(ctx); err != nil {
		logger.Error("start mqtt publisher failed", "error", err)
		os.Exit(1)
	}

	sessions := session.NewManager(provider, sessionCatalog, publisher, listening.Config{
		SilenceWindow:   cfg.SilenceWindow,
		TextClearWindow: cfg.TextClearWindow,
	}, logger)
	gateway := speech.NewGateway(sessions, logger)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Get("/menu", func(w http.ResponseWriter, req *http.Request) {
		items, err := store.ListMenu(req.Context(), req.URL.Query().Get("category"))
		if err != nil {
			logger.Error("list menu failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not load menu"})
			return
		}
		writeJSON(w, http.StatusOK, catalog.New(items, locale).ListSorted(""))
	})

	r.Get("/menu/{id}", func(w http.ResponseWriter, req *http.Request) {
		item, err := store.GetMenuItem(req.Context(), chi.URLParam(req, "id"))
		if errors.Is(err, db.ErrMenuNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "menu item not found"})
			return
		}
		if err != nil {
			logger.Error("get menu item failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not load menu item"})
			return
		}
		writeJSON(w, http.StatusOK, item)
	})

	r.Patch("/menu/{id}/priority", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Priority *int `json:"priority"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		err := store.UpdatePriority(req.Context(), chi.URLParam(req, "id"), body.Priority)
		if errors.Is(err, db.ErrMenuNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "menu item not found"})
			return
		}
		if err != nil {
			logger.Error("update priority failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not update priority"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Post("/orders", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.SessionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "session_id is required"})
			return
		}
		sess, ok := sessions.Get(body.SessionID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown session"})
			return
		}
		items := sess.Interpreter().Cart().Items()
		if len(items) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "cart is empty"})
			return
		}
		order, err := store.CreateOrder(req.Context(), items)
		if err != nil {
			logger.Error("create order failed", "session_id", body.SessionID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not record the order"})
			return
		}
		sess.Interpreter().Cart().Clear()
		logger.Info("order recorded", "order_id", order.ID, "total", order.Total, "items", len(order.Items))
		writeJSON(w, http.StatusCreated, order)
	})

	r.Post("/v1/command", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			SessionID string `json:"session_id"`
			Text      string `json:"text"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if body.SessionID == "" || strings.TrimSpace(body.Text) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "session_id and text are required"})
			return
		}

		sess := sessions.GetOrCreate(body.SessionID)
		cmdCtx, cmdCancel := context.WithTimeout(req.Context(), cfg.IntentTimeout)
		defer cmdCancel()

		result, err := sess.SubmitText(cmdCtx, body.Text)
		if errors.Is(err, listening.ErrBusy) {
			writeJSON(w, http.StatusConflict, map[string]any{"error": "previous command is still processing"})
			return
		}
		// Intent failures still carry a speakable fallback message.
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/v1/cart", func(w http.ResponseWriter, req *http.Request) {
		sessionID := req.URL.Query().Get("session_id")
		if sessionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "session_id is required"})
			return
		}
		sess, ok := sessions.Get(sessionID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown session"})
			return
		}
		store := sess.Interpreter().Cart()
		writeJSON(w, http.StatusOK, map[string]any{
			"items": store.Items(),
			"total": store.Total(),
		})
	})

	r.Get("/v1/kiosk/{id}/speech", func(w http.ResponseWriter, req *http.Request) {
		gateway.Handle(w, req, chi.URLParam(req, "id"))
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("kiosk server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
