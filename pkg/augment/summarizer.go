// Package augment attaches a human-readable summary to uploaded workflows
// using an OpenAI-compatible chat completion model.
package augment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/flowgate/pkg/metrics"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/patrickmn/go-cache"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	DefaultTimeout  = 60 * time.Second
	DefaultModel    = "gpt-4o-mini"
	DefaultCacheTTL = 24 * time.Hour

	maxPromptNodes = 50
	temperature    = 0.2
)

const systemInstruction = `You describe automation workflows. Reply with a single JSON object and nothing else, ` +
	`using exactly these keys: "purpose" (one sentence), "description" (two or three sentences) ` +
	`and "suggested_endpoints" (array of URL path patterns a caller could use).`

var (
	ErrCompletionFailed = errors.New("completion request failed")
	ErrMalformedSummary = errors.New("completion did not contain a summary object")
)

type Options struct {
	URL      string
	APIKey   string
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
	// LLM replaces the OpenAI-compatible model built from URL, APIKey and Model.
	LLM     llms.Model
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Summarizer never fails: every error path produces Fallback. Successful
// completions are cached by graph fingerprint.
type Summarizer struct {
	llm     llms.Model
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	cache   *cache.Cache
}

func NewSummarizer(opts Options) *Summarizer {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	logger := opts.Logger.With("module", "augment")

	model := opts.LLM
	if model == nil && strings.TrimSpace(opts.URL) != "" {
		var err error

		model, err = NewModel(opts)
		if err != nil {
			logger.Warn("completion model unavailable, summaries use the fallback", "error", err)
		}
	}

	return &Summarizer{
		llm:     model,
		timeout: opts.Timeout,
		logger:  logger,
		metrics: opts.Metrics,
		cache:   cache.New(opts.CacheTTL, 2*opts.CacheTTL),
	}
}

// NewModel builds an OpenAI-compatible chat model. URL is the API base, with
// or without a trailing /chat/completions.
func NewModel(opts Options) (llms.Model, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	llm, err := openai.New(
		openai.WithBaseURL(baseURL(opts.URL)),
		openai.WithToken(opts.APIKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}

	return llm, nil
}

// Enabled reports whether a completion model is configured.
func (s *Summarizer) Enabled() bool {
	return s != nil && s.llm != nil
}

func (s *Summarizer) Summarize(ctx context.Context, graph models.WorkflowGraph, triggers []models.TriggerDescriptor) models.Summary {
	if !s.Enabled() {
		return Fallback(graph, triggers)
	}

	key, err := Fingerprint(graph)
	if err == nil {
		if cached, found := s.cache.Get(key); found {
			return cached.(models.Summary)
		}
	}

	summary, err := s.complete(ctx, graph, triggers)
	s.metrics.ObserveRemoteCall("completion", err)

	if err != nil {
		s.logger.WarnContext(ctx, "using fallback summary", "workflow_name", graph.Name, "error", err)

		return Fallback(graph, triggers)
	}

	if key != "" {
		s.cache.SetDefault(key, summary)
	}

	return summary
}

type summaryDocument struct {
	Purpose            string   `json:"purpose"`
	Description        string   `json:"description"`
	SuggestedEndpoints []string `json:"suggested_endpoints"`
}

func (s *Summarizer) complete(ctx context.Context, graph models.WorkflowGraph, triggers []models.TriggerDescriptor) (models.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemInstruction),
		llms.TextParts(llms.ChatMessageTypeHuman, buildPrompt(graph, triggers)),
	}

	resp, err := s.llm.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return models.Summary{}, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return models.Summary{}, ErrMalformedSummary
	}

	return ParseSummary(resp.Choices[0].Content)
}

// ParseSummary extracts the summary object from completion text, tolerating
// ```json fences and prose around the object.
func ParseSummary(content string) (models.Summary, error) {
	content = StripFences(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")

	if start < 0 || end <= start {
		return models.Summary{}, ErrMalformedSummary
	}

	var document summaryDocument

	err := json.Unmarshal([]byte(content[start:end+1]), &document)
	if err != nil {
		return models.Summary{}, fmt.Errorf("%w: %w", ErrMalformedSummary, err)
	}

	if strings.TrimSpace(document.Purpose) == "" {
		return models.Summary{}, ErrMalformedSummary
	}

	endpoints := make([]string, 0, len(document.SuggestedEndpoints))
	for _, endpoint := range document.SuggestedEndpoints {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			endpoints = append(endpoints, endpoint)
		}
	}

	return models.Summary{
		Purpose:            strings.TrimSpace(document.Purpose),
		Description:        strings.TrimSpace(document.Description),
		SuggestedEndpoints: endpoints,
	}, nil
}

func StripFences(content string) string {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if newline := strings.Index(content, "\n"); newline >= 0 {
		content = content[newline+1:]
	}

	content = strings.TrimSuffix(strings.TrimSpace(content), "```")

	return strings.TrimSpace(content)
}

// Fingerprint identifies a graph by the hash of its canonical JSON encoding.
func Fingerprint(graph models.WorkflowGraph) (string, error) {
	data, err := json.Marshal(graph)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:]), nil
}

func buildPrompt(graph models.WorkflowGraph, triggers []models.TriggerDescriptor) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "Workflow name: %s\n", graph.Name)
	fmt.Fprintf(&prompt, "Node count: %d\n", len(graph.Nodes))
	fmt.Fprintf(&prompt, "Has triggers: %t\n", len(triggers) > 0)

	for _, trigger := range triggers {
		fmt.Fprintf(&prompt, "Trigger: %s (%s)\n", trigger.NodeName, trigger.Type)
	}

	prompt.WriteString("Nodes:\n")

	for i, node := range graph.Nodes {
		if i == maxPromptNodes {
			fmt.Fprintf(&prompt, "- ... %d more\n", len(graph.Nodes)-maxPromptNodes)

			break
		}

		fmt.Fprintf(&prompt, "- %s: %s\n", node.Name, node.Type)
	}

	return prompt.String()
}

func baseURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(strings.TrimRight(url, "/"), "/chat/completions")

	return strings.TrimRight(url, "/")
}
