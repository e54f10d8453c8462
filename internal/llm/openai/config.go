package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/DanielDi/agent-tech-mining/constants"
)

// Config for the OpenAI client.
type Config struct {
	APIKey            string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL           string        // default https://api.openai.com/v1
	Model             string        // e.g., "gpt-4o-mini"
	Temperature       float32       // 0..2
	MaxTokens         int           // completion budget
	Timeout           time.Duration // per request
	RequestsPerSecond float64       // <= 0 disables rate limiting
	Burst             int
	MaxRetries        int           // retries on 429 and 5xx
	RetryBackoff      time.Duration // first retry delay, doubled each attempt
	MaxInputChars     int           // article text cut-off in the prompt
}

type Client struct {
	cfg     Config
	api     *goopenai.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = constants.DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		cfg:     cfg,
		api:     goopenai.NewClientWithConfig(clientConfig),
		limiter: rate.NewLimiter(limit, burst),
		log:     logger,
	}
}

// Model implements llm.FieldExtractor.
func (c *Client) Model() string { return c.cfg.Model }
