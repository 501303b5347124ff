package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"codebuds/internal/models"
)

// Runner forwards execution requests to the external sandbox service. The
// session core never calls it; only the run endpoint used by the terminal
// panel does.
type Runner struct {
	baseURL string
	client  *http.Client
}

func NewRunner(baseURL string) *Runner {
	return &Runner{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *Runner) Run(ctx context.Context, req models.RunRequest) (models.RunResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.RunResult{}, fmt.Errorf("failed to encode run request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/run", bytes.NewReader(body))
	if err != nil {
		return models.RunResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return models.RunResult{}, fmt.Errorf("failed to call sandbox service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.RunResult{}, fmt.Errorf("sandbox service returned status %d", resp.StatusCode)
	}

	var out models.RunResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.RunResult{}, fmt.Errorf("failed to decode sandbox response: %w", err)
	}
	return out, nil
}
