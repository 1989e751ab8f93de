// Package oracle answers a question with a keyword, a shape and a short
// message. Consult never fails: callers always get something to display.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pthm-cable/oracle/components"
	"github.com/pthm-cable/oracle/config"
	"github.com/pthm-cable/oracle/shape"
)

// Response is what the oracle shows.
type Response struct {
	Keyword string
	Shape   shape.ID
	Message string
	Source  Source
}

// Source records where a response came from.
type Source uint8

const (
	SourceModel Source = iota
	SourceMock
	SourceFallback
)

// String returns the lower-case source name used in telemetry.
func (s Source) String() string {
	switch s {
	case SourceModel:
		return "model"
	case SourceMock:
		return "mock"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Mock is returned when no API key is configured.
var Mock = Response{
	Keyword: "IL VUOTO FERTILE",
	Shape:   shape.Star,
	Message: "L'energia segue l'attenzione. Dove poni il tuo sguardo, lì nasce la realtà.",
	Source:  SourceMock,
}

// Fallback is returned when the call or its answer is unusable.
var Fallback = Response{
	Keyword: "SILENZIO",
	Shape:   shape.Sphere,
	Message: "L'Universo sta meditando. Respira e riprova.",
	Source:  SourceFallback,
}

var errEmptyQuestion = errors.New("empty question")

// Consulter is the contract the frame driver depends on.
type Consulter interface {
	Consult(ctx context.Context, text string, mode components.Mode) Response
}

// Client consults a Generator, or answers with Mock when it has none.
type Client struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
	group   singleflight.Group
}

// New creates a client. A nil generator makes every consult return Mock.
func New(gen Generator, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{gen: gen, timeout: timeout, logger: logger}
}

// NewFromConfig builds a Gemini-backed client when an API key is present
// and a mock client otherwise.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	timeout := time.Duration(cfg.Oracle.TimeoutSec * float64(time.Second))
	if cfg.Derived.OracleKey == "" {
		if logger != nil {
			logger.Warn("no oracle API key, using mock response", "env", cfg.Oracle.APIKeyEnv)
		}
		return New(nil, timeout, logger), nil
	}
	gen, err := NewGeminiGenerator(ctx, cfg.Derived.OracleKey, cfg.Oracle.Model, cfg.Oracle.Temperature, timeout)
	if err != nil {
		return nil, err
	}
	return New(gen, timeout, logger), nil
}

// Consult asks one question. Identical questions in flight at the same
// time share a single call. The shared call is bounded by the client
// timeout, not by any one caller's ctx; a caller whose ctx ends first gets
// Fallback while the others keep waiting.
func (c *Client) Consult(ctx context.Context, text string, mode components.Mode) Response {
	if c.gen == nil {
		return Mock
	}

	key := mode.String() + "\x00" + text
	flight := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.consult(flight, text, mode)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.logger.Warn("oracle consult abandoned", "mode", mode.String(), "error", ctx.Err())
		return Fallback
	}
	if res.Err != nil {
		c.logger.Error("oracle consult failed", "mode", mode.String(), "error", res.Err)
		return Fallback
	}
	resp := res.Val.(Response)
	c.logger.Info("oracle answered",
		"mode", mode.String(),
		"keyword", resp.Keyword,
		"shape", resp.Shape.String(),
		"shared", res.Shared,
	)
	return resp
}

func (c *Client) consult(ctx context.Context, text string, mode components.Mode) (Response, error) {
	if strings.TrimSpace(text) == "" {
		return Response{}, errEmptyQuestion
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.gen.Generate(ctx, buildRequest(text, mode))
	if err != nil {
		return Response{}, err
	}
	return parseResponse(raw)
}

type wireResponse struct {
	Keyword string `json:"keyword"`
	Shape   string `json:"shape"`
	Message string `json:"message"`
}

// parseResponse decodes the model's JSON answer. Every field is required and
// the shape must be one the oracle may choose.
func parseResponse(raw string) (Response, error) {
	var w wireResponse
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Response{}, fmt.Errorf("decoding oracle answer: %w", err)
	}
	if w.Keyword == "" || w.Message == "" {
		return Response{}, fmt.Errorf("oracle answer missing fields: %q", raw)
	}
	id := shape.Parse(w.Shape)
	if id == shape.Unknown || id == shape.Random {
		return Response{}, fmt.Errorf("oracle answer has unusable shape %q", w.Shape)
	}
	return Response{Keyword: w.Keyword, Shape: id, Message: w.Message, Source: SourceModel}, nil
}
