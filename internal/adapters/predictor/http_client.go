package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/logging"
	"github.com/kamal-hamza/grassfier/internal/telemetry"
)

const operationPredict = "predictor.predict"

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Options configures an HTTPClient
type Options struct {
	Endpoint  string
	FieldName string        // multipart field holding the file; "file" when empty
	Timeout   time.Duration // 0 means no timeout
	Logger    *zap.Logger
	Transport http.RoundTripper // base transport; instrumented with otelhttp
}

// HTTPClient uploads images to the prediction endpoint.
// It never retries and never caches.
type HTTPClient struct {
	endpoint  string
	fieldName string
	client    *http.Client
	logger    *zap.Logger
}

// NewHTTPClient creates a new prediction client
func NewHTTPClient(opts Options) *HTTPClient {
	fieldName := opts.FieldName
	if fieldName == "" {
		fieldName = "file"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPClient{
		endpoint:  opts.Endpoint,
		fieldName: fieldName,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: telemetry.WrapTransport(opts.Transport),
		},
		logger: logger,
	}
}

// Predict posts the file as multipart/form-data and decodes the JSON reply
// whatever the HTTP status. Any failure to obtain a readable reply is
// returned as an error.
func (c *HTTPClient) Predict(ctx context.Context, file domain.SourceFile) (*domain.PredictionResponse, error) {
	requestID := uuid.NewString()
	logger := logging.WithOperation(c.logger, operationPredict, requestID)
	fail := func(err error) (*domain.PredictionResponse, error) {
		logger.Warn("prediction request failed", zap.Error(err))
		return nil, logging.NewOperationError(operationPredict, requestID, err)
	}

	// 1. Build the multipart body
	body, contentType, err := c.buildBody(file)
	if err != nil {
		return fail(err)
	}

	// 2. Send
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	// 3. Decode regardless of status
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}

	var out domain.PredictionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fail(fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err))
	}

	logger.Debug("prediction response",
		zap.Int("status", resp.StatusCode),
		zap.Bool("success", out.Success),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &out, nil
}

func (c *HTTPClient) buildBody(file domain.SourceFile) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	contentType := file.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(c.fieldName), quoteEscaper.Replace(file.Name)))
	hdr.Set("Content-Type", contentType)

	part, err := writer.CreatePart(hdr)
	if err != nil {
		writer.Close()
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		writer.Close()
		return nil, "", fmt.Errorf("failed to write file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}
