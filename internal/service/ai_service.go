package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/homehub/panel/internal/config"
	"github.com/homehub/panel/internal/model"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"github.com/homehub/panel/internal/repository"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// OpenAIConfig is the config blob stored for the openai connection
type OpenAIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// OllamaConfig is the config blob stored for the ollama connection
type OllamaConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// ProviderStatus is the probed health of one AI provider
type ProviderStatus struct {
	Service   string    `json:"service"`
	Enabled   bool      `json:"enabled"`
	Reachable bool      `json:"reachable"`
	Detail    string    `json:"detail,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type AIService struct {
	connRepo *repository.ConnectionRepository
	client   *http.Client
	status   *gocache.Cache
	logger   *zap.Logger
}

func NewAIService(connRepo *repository.ConnectionRepository, cfg *config.AIConfig, logger *zap.Logger) *AIService {
	return &AIService{
		connRepo: connRepo,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		status:   gocache.New(cfg.StatusTTL, 2*cfg.StatusTTL),
		logger:   logger,
	}
}

// Reply produces an assistant reply, preferring OpenAI and falling back to
// Ollama. Returns ErrAIUnavailable when no enabled provider answered.
func (s *AIService) Reply(ctx context.Context, history []*model.MessageWithUser, prompt string) (string, error) {
	if text, err := s.replyOpenAI(ctx, history, prompt); err == nil {
		return text, nil
	} else if !errors.Is(err, errProviderDisabled) {
		s.logger.Warn("OpenAI reply failed", zap.Error(err))
	}

	if text, err := s.replyOllama(ctx, history, prompt); err == nil {
		return text, nil
	} else if !errors.Is(err, errProviderDisabled) {
		s.logger.Warn("Ollama reply failed", zap.Error(err))
	}

	return "", apperrors.ErrAIUnavailable
}

var errProviderDisabled = errors.New("provider disabled")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func buildChatMessages(history []*model.MessageWithUser, prompt string) []chatMessage {
	messages := []chatMessage{
		{Role: "system", Content: "You are the household assistant. Keep replies short and practical."},
	}
	for _, m := range history {
		role := "user"
		if m.Sender == "assistant" {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})
	return messages
}

func (s *AIService) replyOpenAI(ctx context.Context, history []*model.MessageWithUser, prompt string) (string, error) {
	conn, err := s.connRepo.GetByService(ctx, model.ServiceOpenAI)
	if err != nil || !conn.Enabled {
		return "", errProviderDisabled
	}

	var cfg OpenAIConfig
	if err := conn.DecodeConfig(&cfg); err != nil {
		return "", fmt.Errorf("bad openai config: %w", err)
	}
	if cfg.APIKey == "" {
		return "", errProviderDisabled
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":    cfg.Model,
		"messages": buildChatMessages(history, prompt),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.markStatus(model.ServiceOpenAI, conn.Enabled, false, err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.markStatus(model.ServiceOpenAI, conn.Enabled, false, resp.Status)
		return "", fmt.Errorf("openai returned %s", resp.Status)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	s.markStatus(model.ServiceOpenAI, conn.Enabled, true, "")
	return out.Choices[0].Message.Content, nil
}

func (s *AIService) replyOllama(ctx context.Context, history []*model.MessageWithUser, prompt string) (string, error) {
	conn, err := s.connRepo.GetByService(ctx, model.ServiceOllama)
	if err != nil || !conn.Enabled {
		return "", errProviderDisabled
	}

	var cfg OllamaConfig
	if err := conn.DecodeConfig(&cfg); err != nil {
		return "", fmt.Errorf("bad ollama config: %w", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":    cfg.Model,
		"messages": buildChatMessages(history, prompt),
		"stream":   false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(cfg.BaseURL, "/")+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.markStatus(model.ServiceOllama, conn.Enabled, false, err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.markStatus(model.ServiceOllama, conn.Enabled, false, resp.Status)
		return "", fmt.Errorf("ollama returned %s", resp.Status)
	}

	var out struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	s.markStatus(model.ServiceOllama, conn.Enabled, true, "")
	return out.Message.Content, nil
}

// Status reports provider health. Probes are cached, so a dashboard polling
// every few seconds does not hammer the providers.
func (s *AIService) Status(ctx context.Context) ([]*ProviderStatus, error) {
	statuses := make([]*ProviderStatus, 0, 2)
	for _, service := range []string{model.ServiceOpenAI, model.ServiceOllama} {
		if cached, ok := s.status.Get(service); ok {
			statuses = append(statuses, cached.(*ProviderStatus))
			continue
		}
		statuses = append(statuses, s.probe(ctx, service))
	}
	return statuses, nil
}

func (s *AIService) probe(ctx context.Context, service string) *ProviderStatus {
	status := &ProviderStatus{Service: service, CheckedAt: time.Now().UTC()}

	conn, err := s.connRepo.GetByService(ctx, service)
	if err != nil || !conn.Enabled {
		s.status.SetDefault(service, status)
		return status
	}
	status.Enabled = true

	var probeURL string
	switch service {
	case model.ServiceOpenAI:
		var cfg OpenAIConfig
		if err := conn.DecodeConfig(&cfg); err != nil || cfg.APIKey == "" {
			status.Detail = "not configured"
			s.status.SetDefault(service, status)
			return status
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.openai.com/v1"
		}
		probeURL = strings.TrimRight(cfg.BaseURL, "/") + "/models"
	case model.ServiceOllama:
		var cfg OllamaConfig
		if err := conn.DecodeConfig(&cfg); err != nil {
			status.Detail = "not configured"
			s.status.SetDefault(service, status)
			return status
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:11434"
		}
		probeURL = strings.TrimRight(cfg.BaseURL, "/") + "/api/tags"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		status.Detail = err.Error()
		s.status.SetDefault(service, status)
		return status
	}
	if service == model.ServiceOpenAI {
		var cfg OpenAIConfig
		_ = conn.DecodeConfig(&cfg)
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		status.Detail = err.Error()
	} else {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		status.Reachable = resp.StatusCode < 500 && resp.StatusCode != http.StatusUnauthorized
		if !status.Reachable {
			status.Detail = resp.Status
		}
	}

	s.persistStatus(ctx, service, status)
	s.status.SetDefault(service, status)
	return status
}

func (s *AIService) markStatus(service string, enabled, reachable bool, detail string) {
	status := &ProviderStatus{
		Service:   service,
		Enabled:   enabled,
		Reachable: reachable,
		Detail:    detail,
		CheckedAt: time.Now().UTC(),
	}
	s.status.SetDefault(service, status)
	s.persistStatus(context.Background(), service, status)
}

func (s *AIService) persistStatus(ctx context.Context, service string, status *ProviderStatus) {
	state := "unreachable"
	if status.Reachable {
		state = "connected"
	} else if !status.Enabled {
		state = "disabled"
	}
	if err := s.connRepo.UpdateStatus(ctx, service, state); err != nil &&
		!errors.Is(err, repository.ErrConnectionNotFound) {
		s.logger.Warn("Failed to persist provider status", zap.Error(err))
	}
}

// ConfigureInput represents provider configuration input
type ConfigureInput struct {
	Actor   *Actor
	Service string
	Enabled bool
	Config  map[string]interface{}
}

// Configure stores a provider connection. Global admins only.
func (s *AIService) Configure(ctx context.Context, input *ConfigureInput) (*model.Connection, error) {
	if !input.Actor.Role.IsGlobalAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}
	if input.Service != model.ServiceOpenAI && input.Service != model.ServiceOllama {
		return nil, apperrors.ErrValidation.WithDetails("unknown AI service")
	}

	conn := &model.Connection{
		Service: input.Service,
		Enabled: input.Enabled,
		Status:  "unconfigured",
	}
	if input.Config != nil {
		raw, err := json.Marshal(input.Config)
		if err != nil {
			return nil, apperrors.ErrValidation.WithDetails("config is not serializable")
		}
		conn.Config.String = string(raw)
		conn.Config.Valid = true
	}

	if err := s.connRepo.Upsert(ctx, conn); err != nil {
		s.logger.Error("Failed to store provider config", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	s.status.Delete(input.Service)

	s.logger.Info("AI provider configured",
		zap.String("service", input.Service),
		zap.Bool("enabled", input.Enabled),
		zap.Int64("configured_by", input.Actor.UserID),
	)

	return conn, nil
}
