package ml

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

	"allumino/internal/pkg/logger"
)

// ErrUpstream wraps every prediction-service failure surfaced to callers.
var ErrUpstream = errors.New("ml service request failed")

// StudentFeatures is the camelCase shape the API accepts.
type StudentFeatures struct {
	ID                 string  `json:"id,omitempty"`
	MathScore          float64 `json:"mathScore"`
	ScienceScore       float64 `json:"scienceScore"`
	ProjectScore       float64 `json:"projectScore"`
	Gender             string  `json:"gender"`
	SocioeconomicIndex float64 `json:"socioeconomicIndex"`
}

// wireFeatures is the snake_case contract of the prediction service.
type wireFeatures struct {
	ID                 string  `json:"id,omitempty"`
	MathScore          float64 `json:"math_score"`
	ScienceScore       float64 `json:"science_score"`
	ProjectScore       float64 `json:"project_score"`
	Gender             string  `json:"gender"`
	SocioeconomicIndex float64 `json:"socioeconomic_index"`
}

type HealthStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Client interface {
	Predict(ctx context.Context, in StudentFeatures) (json.RawMessage, error)
	BatchPredict(ctx context.Context, in []StudentFeatures) (json.RawMessage, error)
	Health(ctx context.Context) HealthStatus
}

type httpClient struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func toWire(in StudentFeatures) wireFeatures {
	return wireFeatures{
		ID:                 in.ID,
		MathScore:          in.MathScore,
		ScienceScore:       in.ScienceScore,
		ProjectScore:       in.ProjectScore,
		Gender:             in.Gender,
		SocioeconomicIndex: in.SocioeconomicIndex,
	}
}

// Predict forwards a single feature payload and relays the upstream JSON
// verbatim. No retries: the caller gets exactly one upstream attempt.
func (c *httpClient) Predict(ctx context.Context, in StudentFeatures) (json.RawMessage, error) {
	return c.post(ctx, "/predict", toWire(in))
}

func (c *httpClient) BatchPredict(ctx context.Context, in []StudentFeatures) (json.RawMessage, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrUpstream)
	}

	students := make([]wireFeatures, 0, len(in))
	for _, s := range in {
		students = append(students, toWire(s))
	}
	return c.post(ctx, "/batch-predict", map[string]any{"students": students})
}

// Health is the one operation that degrades instead of failing: any error
// becomes an unhealthy report.
func (c *httpClient) Health(ctx context.Context) HealthStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthStatus{Status: "unhealthy", Error: err.Error()}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("ml health check failed", "error", err)
		return HealthStatus{Status: "unhealthy", Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthStatus{Status: "unhealthy", Error: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	var out HealthStatus
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&out); err != nil {
		return HealthStatus{Status: "unhealthy", Error: err.Error()}
	}
	if out.Status == "" {
		out.Status = "healthy"
	}
	return out
}

func (c *httpClient) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("ml request failed", "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamMessage(body)
		c.log.Error("ml request rejected", "endpoint", endpoint, "status", resp.StatusCode, "message", msg)
		return nil, fmt.Errorf("%w: status=%d message=%s", ErrUpstream, resp.StatusCode, msg)
	}

	return json.RawMessage(body), nil
}

func upstreamMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}

var _ Client = (*httpClient)(nil)
