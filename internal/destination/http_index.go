package destination

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/observability"
)

// uploadResponse is the destination's answer to a document upload
type uploadResponse struct {
	OperationID string `json:"operationId"`
	Done        bool   `json:"done"`
	DocumentID  string `json:"documentId"`
}

// operationResponse is the destination's answer to an operation poll
type operationResponse struct {
	Done       bool   `json:"done"`
	DocumentID string `json:"documentId"`
	Error      string `json:"error"`
}

// HTTPIndex talks to the hosted document index over HTTP. Uploads return an
// asynchronous operation which is polled until done or the bounded wait
// expires.
type HTTPIndex struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
}

// HTTPIndexOptions configures an HTTPIndex
type HTTPIndexOptions struct {
	APIKey       string
	PollInterval time.Duration
	MaxWait      time.Duration
	Client       *http.Client
}

// NewHTTPIndex creates an HTTPIndex for the given base URL
func NewHTTPIndex(baseURL string, opts HTTPIndexOptions) *HTTPIndex {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 120 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 60 * time.Second}
	}

	return &HTTPIndex{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       opts.APIKey,
		client:       opts.Client,
		pollInterval: opts.PollInterval,
		maxWait:      opts.MaxWait,
	}
}

// Upload sends the content as multipart form data and waits for indexing
func (x *HTTPIndex) Upload(ctx context.Context, storeID string, content io.Reader, filename string, metadata map[string]string) (string, error) {
	ctx, span := observability.StartDestinationSpan(ctx, "upload", storeID)
	defer span.End()

	documentID, err := x.upload(ctx, storeID, content, filename, metadata)
	if err != nil {
		observability.RecordError(span, err)
		return "", err
	}
	span.SetAttributes(observability.DocumentID(documentID))
	observability.SetSuccess(span)
	return documentID, nil
}

func (x *HTTPIndex) upload(ctx context.Context, storeID string, content io.Reader, filename string, metadata map[string]string) (string, error) {
	body := &strings.Builder{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}

	if metadata != nil {
		metaJSON, err := json.Marshal(metadata)
		if err != nil {
			return "", err
		}
		if err := writer.WriteField("metadata", string(metaJSON)); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1/stores/%s/documents", x.baseURL, url.PathEscape(storeID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	x.setAuth(req)

	resp, err := x.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", models.ErrUploadFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var upload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", models.ErrUploadFailed, err)
	}

	if upload.Done && upload.DocumentID != "" {
		return upload.DocumentID, nil
	}

	return x.waitForOperation(ctx, upload.OperationID)
}

// waitForOperation polls the operation until done or the bounded wait expires
func (x *HTTPIndex) waitForOperation(ctx context.Context, operationID string) (string, error) {
	deadline := time.Now().Add(x.maxWait)
	ticker := time.NewTicker(x.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		op, err := x.getOperation(ctx, operationID)
		if err != nil {
			return "", err
		}
		if op.Done {
			if op.Error != "" {
				return "", fmt.Errorf("%w: %s", models.ErrUploadFailed, op.Error)
			}
			return op.DocumentID, nil
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: operation %s still pending after %s", models.ErrUploadTimeout, operationID, x.maxWait)
		}
	}
}

func (x *HTTPIndex) getOperation(ctx context.Context, operationID string) (*operationResponse, error) {
	endpoint := fmt.Sprintf("%s/v1/operations/%s", x.baseURL, url.PathEscape(operationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	x.setAuth(req)

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: polling operation: %v", models.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: operation poll status %d", models.ErrUploadFailed, resp.StatusCode)
	}

	var op operationResponse
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("%w: decoding operation: %v", models.ErrUploadFailed, err)
	}
	return &op, nil
}

// Delete removes a document from the store. A 404 means the document is
// already gone and is treated as success.
func (x *HTTPIndex) Delete(ctx context.Context, storeID, documentID string) error {
	ctx, span := observability.StartDestinationSpan(ctx, "delete", storeID)
	defer span.End()
	span.SetAttributes(observability.DocumentID(documentID))

	if err := x.delete(ctx, storeID, documentID); err != nil {
		observability.RecordError(span, err)
		return err
	}
	observability.SetSuccess(span)
	return nil
}

func (x *HTTPIndex) delete(ctx context.Context, storeID, documentID string) error {
	endpoint := fmt.Sprintf("%s/v1/stores/%s/documents/%s",
		x.baseURL, url.PathEscape(storeID), url.PathEscape(documentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	x.setAuth(req)

	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("delete returned status %d", resp.StatusCode)
	}
}

func (x *HTTPIndex) setAuth(req *http.Request) {
	if x.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+x.apiKey)
	}
}
