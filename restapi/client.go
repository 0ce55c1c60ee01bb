// Package restapi talks to the pin backend over HTTP: pins, questionnaire,
// translations and the language list.
package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/phanxgames/pinfield"
)

// HTTPError is returned for non-2xx responses. Message is the "error" field
// of a JSON body, the raw body, or the status text, in that order.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Language is one entry of the backend's language list.
type Language struct {
	Lang  string `json:"lang"`
	Label string `json:"label"`
}

// Client implements pinfield.PinBackend and pinfield.QuestionnaireSource.
type Client struct {
	BaseURL    string
	StationKey string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewClient returns a client for cfg. A nil logger discards.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		StationKey: cfg.StationKey,
		Timeout:    cfg.Timeout,
		Logger:     logger,
	}
}

var (
	_ pinfield.PinBackend          = (*Client)(nil)
	_ pinfield.QuestionnaireSource = (*Client)(nil)
)

// --- Pins ---

// List fetches all pins.
func (c *Client) List(ctx context.Context) ([]pinfield.Pin, error) {
	return c.listPins(ctx, nil)
}

// ListFloor fetches the pins of one floor.
func (c *Client) ListFloor(ctx context.Context, floor int) ([]pinfield.Pin, error) {
	return c.listPins(ctx, url.Values{"floor": {strconv.Itoa(floor)}})
}

func (c *Client) listPins(ctx context.Context, q url.Values) ([]pinfield.Pin, error) {
	body, err := c.do(ctx, fiber.MethodGet, "pins.php", q, nil)
	if err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	pins := make([]pinfield.Pin, 0, len(records))
	var errs []error
	for i, rec := range records {
		var p pinfield.Pin
		if err := json.Unmarshal(rec, &p); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		pins = append(pins, p)
	}
	if len(errs) > 0 {
		c.Logger.Warn("pin records skipped", "count", len(errs), "err", errors.Join(errs...))
	}
	return pins, nil
}

// Create posts a submission and returns the stored pin. The station key is
// added when the submission has none.
func (c *Client) Create(ctx context.Context, sub pinfield.Submission) (pinfield.Pin, error) {
	if sub.StationKey == "" {
		sub.StationKey = c.StationKey
	}
	body, err := c.do(ctx, fiber.MethodPost, "pins.php", nil, sub)
	if err != nil {
		return pinfield.Pin{}, fmt.Errorf("create pin: %w", err)
	}
	var pin pinfield.Pin
	if err := json.Unmarshal(body, &pin); err != nil {
		return pinfield.Pin{}, fmt.Errorf("create pin: %w", err)
	}
	return pin, nil
}

// --- Questionnaire and translations ---

// Questions fetches the questionnaire in lang. Records that fail to decode
// are logged and skipped unless nothing decodes.
func (c *Client) Questions(ctx context.Context, lang string) ([]pinfield.Question, error) {
	body, err := c.do(ctx, fiber.MethodGet, "questions.php", url.Values{"lang": {lang}}, nil)
	if err != nil {
		return nil, fmt.Errorf("questions: %w", err)
	}
	qs, err := pinfield.ParseQuestionnaire(body)
	if err != nil {
		if len(qs) == 0 {
			return nil, fmt.Errorf("questions: %w", err)
		}
		c.Logger.Warn("questionnaire records skipped", "lang", lang, "err", err)
	}
	return qs, nil
}

// Translations fetches translation entries for lang whose keys start with
// prefix. An empty prefix fetches all.
func (c *Client) Translations(ctx context.Context, lang, prefix string) (map[string]string, error) {
	q := url.Values{"lang": {lang}}
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	body, err := c.do(ctx, fiber.MethodGet, "translations.php", q, nil)
	if err != nil {
		return nil, fmt.Errorf("translations: %w", err)
	}
	out := map[string]string{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("translations: %w", err)
	}
	return out, nil
}

// Languages fetches the languages the backend offers.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	body, err := c.do(ctx, fiber.MethodGet, "languages.php", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}
	var out []Language
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}
	return out, nil
}

// --- Transport ---

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.BaseURL + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, payload any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a *fiber.Agent
	switch method {
	case fiber.MethodPost:
		a = fiber.Post(c.endpoint(path, q))
	default:
		a = fiber.Get(c.endpoint(path, q))
	}
	reqID := uuid.NewString()
	a.Set("X-Request-ID", reqID)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if method == fiber.MethodGet {
		a.Set(fiber.HeaderCacheControl, "no-store")
	}
	if payload != nil {
		a.JSON(payload)
	}
	if timeout := c.timeout(ctx); timeout > 0 {
		a.Timeout(timeout)
	}

	start := time.Now()
	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		c.Logger.Debug("request failed", "method", method, "path", path, "id", reqID, "err", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	c.Logger.Debug("request",
		"method", method,
		"path", path,
		"status", status,
		"size", humanize.Bytes(uint64(len(body))),
		"took", time.Since(start),
		"id", reqID,
	)
	if status < 200 || status > 299 {
		return nil, &HTTPError{Status: status, Message: errorMessage(status, body)}
	}
	return body, nil
}

// timeout is the smaller of the client timeout and the context deadline.
func (c *Client) timeout(ctx context.Context) time.Duration {
	t := c.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); t <= 0 || left < t {
			t = left
		}
	}
	return t
}

func errorMessage(status int, body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fiber.StatusMessage(status)
}
