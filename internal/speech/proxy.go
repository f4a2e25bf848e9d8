// Package speech proxies browser audio to Deepgram so the API key stays on
// the server.
package speech

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrNoAPIKey is sent to clients when the server has no Deepgram key.
var ErrNoAPIKey = errors.New("deepgram API key not configured")

// Config controls the upstream connection.
type Config struct {
	URL           string
	APIKey        string
	Model         string
	Language      string
	AllowedOrigin string
}

// Proxy pumps audio from a client websocket to Deepgram and transcripts back.
type Proxy struct {
	cfg      Config
	upgrader websocket.Upgrader
	dialer   *websocket.Dialer
	logger   *slog.Logger
}

// NewProxy builds a Proxy. A nil logger uses slog.Default.
func NewProxy(cfg Config, logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		cfg.URL = "wss://api.deepgram.com/v1/listen"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.Language == "" {
		cfg.Language = "nl"
	}
	p := &Proxy{cfg: cfg, dialer: websocket.DefaultDialer, logger: logger}
	p.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     p.checkOrigin,
	}
	return p
}

// HasAPIKey reports whether an upstream key is configured.
func (p *Proxy) HasAPIKey() bool {
	return strings.TrimSpace(p.cfg.APIKey) != ""
}

// Health reports whether an upstream key is configured. It does not dial
// Deepgram.
func (p *Proxy) Health(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if !p.HasAPIKey() {
		status = "not_configured"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      status,
		"has_api_key": p.HasAPIKey(),
	})
}

// Transcribe upgrades the request and proxies until either side closes.
func (p *Proxy) Transcribe(w http.ResponseWriter, r *http.Request) {
	client, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.WarnContext(r.Context(), "speech upgrade failed", "error", err)
		return
	}
	defer func() {
		_ = client.Close()
	}()

	if !p.HasAPIKey() {
		p.sendError(client, ErrNoAPIKey)
		return
	}

	listenURL, err := BuildListenURL(p.cfg)
	if err != nil {
		p.sendError(client, err)
		return
	}
	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.cfg.APIKey)
	upstream, _, err := p.dialer.DialContext(r.Context(), listenURL, headers)
	if err != nil {
		p.logger.ErrorContext(r.Context(), "failed to connect to Deepgram", "error", err)
		p.sendError(client, fmt.Errorf("failed to connect to Deepgram: %w", err))
		return
	}
	defer func() {
		_ = upstream.Close()
	}()
	p.logger.InfoContext(r.Context(), "speech stream connected")

	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = client.Close()
			_ = upstream.Close()
		})
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer stop()
		for {
			kind, msg, err := upstream.ReadMessage()
			if err != nil {
				return
			}
			if kind != websocket.TextMessage {
				continue
			}
			if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		defer stop()
		for {
			kind, msg, err := client.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					p.logger.DebugContext(r.Context(), "speech client read ended", "error", err)
				}
				_ = upstream.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
				return
			}
			if kind != websocket.BinaryMessage {
				continue
			}
			if err := upstream.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				return
			}
		}
	}()
	wg.Wait()
	p.logger.InfoContext(r.Context(), "speech stream closed")
}

func (p *Proxy) sendError(conn *websocket.Conn, err error) {
	if werr := conn.WriteJSON(map[string]string{"error": err.Error()}); werr != nil {
		p.logger.Warn("failed to send speech error", "error", werr)
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (p *Proxy) checkOrigin(r *http.Request) bool {
	allowed := strings.TrimSpace(p.cfg.AllowedOrigin)
	if allowed == "" || allowed == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == allowed
}

// BuildListenURL adds the model and language parameters to the upstream URL.
func BuildListenURL(cfg Config) (string, error) {
	base := strings.TrimSpace(cfg.URL)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	listenURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram URL: %w", err)
	}
	if listenURL.Scheme != "ws" && listenURL.Scheme != "wss" {
		return "", fmt.Errorf("invalid Deepgram URL scheme %q", listenURL.Scheme)
	}
	query := listenURL.Query()
	query.Set("model", cfg.Model)
	query.Set("language", cfg.Language)
	query.Set("smart_format", "true")
	query.Set("interim_results", "false")
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
