package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/SAP-F-2025/survey-engine/internal/errors"
	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/validator"
)

const maxResponseBytes = 1 << 20

// SurveyClient fetches the current survey definition from the backend.
// A nil definition with a nil error means no survey is available.
type SurveyClient interface {
	GetSurveyDefinition(ctx context.Context) (*models.SurveyDefinition, error)
}

// HTTPClientConfig holds configuration for the HTTP survey client
type HTTPClientConfig struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// HTTPSurveyClient implements SurveyClient against the survey backend REST API
type HTTPSurveyClient struct {
	baseURL   string
	apiKey    string
	userAgent string
	http      *http.Client
	validator *validator.Validator
	logger    *slog.Logger
}

func NewHTTPSurveyClient(config HTTPClientConfig, v *validator.Validator) *HTTPSurveyClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSurveyClient{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		apiKey:    config.APIKey,
		userAgent: config.UserAgent,
		http:      httpClient,
		validator: v,
		logger:    logger.With("component", "survey_client"),
	}
}

// GetSurveyDefinition performs GET {base}/surveys and decodes the first survey.
func (c *HTTPSurveyClient) GetSurveyDefinition(ctx context.Context) (*models.SurveyDefinition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/surveys", nil)
	if err != nil {
		return nil, &apperrors.FetchError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "OAuth "+c.apiKey)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperrors.FetchError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("Survey request completed",
		"status_code", resp.StatusCode,
		"duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &apperrors.FetchError{Op: "request", Err: fmt.Errorf("unexpected status code %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &apperrors.FetchError{Op: "read body", Err: err}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	def, err := DecodeSurveyDefinition(body, c.validator)
	if err != nil {
		return nil, &apperrors.FetchError{Op: "decode", Err: err}
	}
	if def != nil {
		c.logger.Info("Fetched survey definition",
			"survey_id", def.ID(),
			"questions", def.Len())
	}
	return def, nil
}
