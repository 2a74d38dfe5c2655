// Package provider calls an OpenAI-compatible chat completions endpoint.
package provider

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

	"github.com/sirupsen/logrus"

	"github.com/roach88/samvada/internal/chat"
)

const (
	defaultTimeout    = 600 * time.Second
	maxErrorBodyBytes = 2048
	systemRole        = "system"
)

// ErrNoAnswer is returned when a response carries no message content.
var ErrNoAnswer = errors.New("failed to extract answer from API response")

// Message is one entry of the request's message list.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat completions request body.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Response is the subset of the chat completions response that samvada uses.
type Response struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Created int64    `json:"created"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Message Message `json:"message"`
}

type Usage struct {
	TotalTokens int64 `json:"total_tokens"`
}

// Answer returns the content of the first choice.
func (r *Response) Answer() (string, error) {
	if len(r.Choices) == 0 || r.Choices[0].Message.Content == "" {
		return "", ErrNoAnswer
	}
	return r.Choices[0].Message.Content, nil
}

// Metadata converts the response into the comments appended to a chat file.
func (r *Response) Metadata() chat.ResponseMetadata {
	meta := chat.ResponseMetadata{
		Model:       r.Model,
		ID:          r.ID,
		TotalTokens: r.Usage.TotalTokens,
	}
	if r.Created > 0 {
		meta.Created = time.Unix(r.Created, 0)
	}
	return meta
}

// BuildMessages prepends the system prompt to the conversation turns.
func BuildMessages(systemPrompt string, turns []chat.Turn) []Message {
	messages := make([]Message, 0, len(turns)+1)
	messages = append(messages, Message{Role: systemRole, Content: systemPrompt})
	for _, t := range turns {
		messages = append(messages, Message{Role: string(t.Role), Content: t.Content})
	}
	return messages
}

// Completer sends a chat completion request.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Body)
}

// Client posts requests to a single endpoint with bearer authentication.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      *logrus.Entry
}

// NewClient creates a Client. A nil log discards output.
func NewClient(endpoint, apiKey string, log *logrus.Entry) *Client {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = logrus.NewEntry(discard)
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: defaultTimeout},
		log:      log,
	}
}

// Complete implements Completer.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	c.log.WithFields(logrus.Fields{
		"endpoint": c.endpoint,
		"model":    req.Model,
		"messages": len(req.Messages),
	}).Info("sending chat completion request")
	c.log.WithField("payload", string(body)).Debug("request payload")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"id":           out.ID,
		"model":        out.Model,
		"total_tokens": out.Usage.TotalTokens,
	}).Info("received chat completion")
	return &out, nil
}
