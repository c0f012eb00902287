package services

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

	"github.com/google/uuid"
)

var (
	// ErrDocumentService wraps any non-2xx answer from the document backend.
	ErrDocumentService = errors.New("document service error")

	// ErrDocumentServiceDisabled is returned when no backend URL is configured.
	ErrDocumentServiceDisabled = errors.New("document service is not configured")
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// EmailReceipt is the backend's acknowledgement of a sent email.
type EmailReceipt struct {
	MessageID string `json:"message_id"`
}

// DocumentService renders LPO PDFs and sends emails on our behalf.
type DocumentService interface {
	RenderLPO(ctx context.Context, doc LPODocument) ([]byte, error)
	SendEmail(ctx context.Context, msg VendorEmail) (EmailReceipt, error)
}

// DocumentClient is the HTTP implementation of DocumentService.
type DocumentClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewDocumentClient returns a client for the backend at baseURL. An empty
// baseURL yields a client whose calls fail with ErrDocumentServiceDisabled.
func NewDocumentClient(baseURL, apiKey string, timeout time.Duration) *DocumentClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DocumentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a backend URL is configured.
func (c *DocumentClient) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// RenderLPO posts the document to {base}/lpo/pdf and returns the PDF bytes.
func (c *DocumentClient) RenderLPO(ctx context.Context, doc LPODocument) ([]byte, error) {
	resp, err := c.post(ctx, "/lpo/pdf", doc)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read LPO PDF: %w", err)
	}
	return pdf, nil
}

// SendEmail posts the message to {base}/emails.
func (c *DocumentClient) SendEmail(ctx context.Context, msg VendorEmail) (EmailReceipt, error) {
	resp, err := c.post(ctx, "/emails", msg)
	if err != nil {
		return EmailReceipt{}, err
	}
	defer resp.Body.Close()

	var receipt EmailReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil && !errors.Is(err, io.EOF) {
		return EmailReceipt{}, fmt.Errorf("decode email receipt: %w", err)
	}
	return receipt, nil
}

// post sends payload as JSON. On success the caller owns resp.Body.
func (c *DocumentClient) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	if !c.Enabled() {
		return nil, ErrDocumentServiceDisabled
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentService, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrDocumentService, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
