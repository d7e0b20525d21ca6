package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/bookcatalogue/catalogue/internal/web/config"
	"go.uber.org/zap"
)

const unavailableMessage = "unable to connect to the management service"

// BookClient calls the management service's catalogue API and classifies
// every outcome into the closed APIError taxonomy. No raw transport errors
// escape its methods.
type BookClient struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	log        *zap.Logger
}

// NewBookClient creates a catalogue client for the configured management
// service. Both the connect and the overall request timeout are finite so
// a slow backend cannot hang a caller indefinitely.
func NewBookClient(cfg *config.Config, log *zap.Logger) *BookClient {
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
	}

	log.Info("Book client initialized", zap.String("base_url", cfg.ManagementURL))

	return &BookClient{
		httpClient: &http.Client{
			Timeout:   cfg.ReadTimeout,
			Transport: transport,
		},
		baseURL:  cfg.ManagementURL,
		username: cfg.Username,
		password: cfg.Password,
		log:      log,
	}
}

// List fetches every book in the catalogue.
func (c *BookClient) List(ctx context.Context) ([]BookResponse, error) {
	c.log.Debug("Fetching all books")

	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/all", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classify(resp, "")
	}

	var books []BookResponse
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		c.log.Error("Failed to decode book list", zap.Error(err))
		return nil, Unavailable(unavailableMessage)
	}

	c.log.Info("Fetched books", zap.Int("count", len(books)))
	return books, nil
}

// Get fetches a single book by ISBN.
func (c *BookClient) Get(ctx context.Context, isbn string) (*BookResponse, error) {
	c.log.Debug("Fetching book", zap.String("isbn", isbn))

	endpoint := fmt.Sprintf("%s?isbn=%s", c.baseURL, url.QueryEscape(isbn))
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classify(resp, isbn)
	}

	book, err := c.decodeBook(resp.Body)
	if err != nil {
		return nil, err
	}

	c.log.Info("Fetched book", zap.String("isbn", isbn))
	return book, nil
}

// Create asks the management service to create (or merge) a book and
// returns the full record including the allocated ISBN.
func (c *BookClient) Create(ctx context.Context, req BookCreateRequest) (*BookResponse, error) {
	c.log.Debug("Creating book", zap.String("name", req.Name))

	resp, err := c.doJSON(ctx, http.MethodPost, c.baseURL, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, c.classify(resp, "")
	}

	book, err := c.decodeBook(resp.Body)
	if err != nil {
		return nil, err
	}

	c.log.Info("Created book", zap.String("isbn", book.ISBN))
	return book, nil
}

// Update applies a sparse patch to the book with the given ISBN.
func (c *BookClient) Update(ctx context.Context, isbn string, patch BookPatch) (*BookResponse, error) {
	c.log.Debug("Updating book", zap.String("isbn", isbn))

	resp, err := c.doJSON(ctx, http.MethodPatch, c.baseURL+"/"+url.PathEscape(isbn), patch)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classify(resp, isbn)
	}

	book, err := c.decodeBook(resp.Body)
	if err != nil {
		return nil, err
	}

	c.log.Info("Updated book", zap.String("isbn", isbn))
	return book, nil
}

// Delete removes the book with the given ISBN.
func (c *BookClient) Delete(ctx context.Context, isbn string) error {
	c.log.Debug("Deleting book", zap.String("isbn", isbn))

	resp, err := c.do(ctx, http.MethodDelete, c.baseURL+"/"+url.PathEscape(isbn), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return c.classify(resp, isbn)
	}

	c.log.Info("Deleted book", zap.String("isbn", isbn))
	return nil
}

// doJSON marshals body and issues the request. Marshal failures degrade to
// Unavailable so no raw error reaches the caller.
func (c *BookClient) doJSON(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		c.log.Error("Failed to encode request body", zap.Error(err))
		return nil, Unavailable(unavailableMessage)
	}
	return c.do(ctx, method, endpoint, bytes.NewReader(payload))
}

// do issues one authenticated request. A transport-level failure, which
// includes connect and read timeouts, classifies as Unavailable.
func (c *BookClient) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		c.log.Error("Failed to build request", zap.String("url", endpoint), zap.Error(err))
		return nil, Unavailable(unavailableMessage)
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Failed to reach management service",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Error(err),
		)
		return nil, Unavailable(unavailableMessage)
	}
	return resp, nil
}

// classify maps a non-success response to the domain error taxonomy, in
// precedence order: not found, conflict, bad request, then upstream.
func (c *BookClient) classify(resp *http.Response, isbn string) *APIError {
	message := remoteMessage(resp)

	switch resp.StatusCode {
	case http.StatusNotFound:
		c.log.Warn("Book not found", zap.String("isbn", isbn))
		if isbn != "" {
			return NotFound(isbn)
		}
		return &APIError{Kind: KindNotFound, Status: resp.StatusCode, Message: message}
	case http.StatusConflict:
		c.log.Warn("Conflict from management service", zap.String("message", message))
		return Conflict(message)
	case http.StatusBadRequest:
		c.log.Warn("Bad request rejected by management service", zap.String("message", message))
		return BadRequest(message)
	default:
		c.log.Error("Unexpected status from management service",
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return Upstream(resp.StatusCode, message)
	}
}

func (c *BookClient) decodeBook(body io.Reader) (*BookResponse, error) {
	var book BookResponse
	if err := json.NewDecoder(body).Decode(&book); err != nil {
		c.log.Error("Failed to decode book", zap.Error(err))
		return nil, Unavailable(unavailableMessage)
	}
	return &book, nil
}

// remoteMessage pulls the error message out of a management service error
// body, falling back to the HTTP status text.
func remoteMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		return body.Message
	}
	return http.StatusText(resp.StatusCode)
}
