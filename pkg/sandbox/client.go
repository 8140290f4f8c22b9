package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/codeduel/codeduel-backend/pkg/logger"
)

// Status codes reported by the execution service.
const (
	StatusAccepted          = 3
	StatusWrongAnswer       = 4
	StatusTimeLimitExceeded = 5
	StatusCompilationError  = 6
	StatusRuntimeError      = 11
	StatusInternalError     = 13
)

// Resource limits applied to every run.
const (
	cpuTimeLimitSec  = 2.0
	wallTimeLimitSec = 5.0
	memoryLimitKB    = 128000
	maxOutputKB      = 64
)

// Client talks to the external code-execution sandbox over HTTP. The sandbox
// compiles and runs one submission against one stdin and reports the outcome;
// it never shares state between runs.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a sandbox client. caseTimeout bounds the total wait for a
// single run, including compilation.
func NewClient(baseURL string, caseTimeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: caseTimeout,
		},
	}
}

// RunRequest is one execution: source in the given language fed with stdin.
type RunRequest struct {
	LanguageID     int    `json:"language_id"`
	SourceCode     string `json:"source_code"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output,omitempty"`

	CPUTimeLimit  float64 `json:"cpu_time_limit"`
	WallTimeLimit float64 `json:"wall_time_limit"`
	MemoryLimit   int     `json:"memory_limit"`
	MaxFileSize   int     `json:"max_file_size"`
}

// RunResult is the sandbox's verdict for one run.
type RunResult struct {
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compile_output"`
	StatusID      int     `json:"status_id"`
	StatusName    string  `json:"status_name"`
	Time          float64 `json:"time"`   // seconds
	Memory        int     `json:"memory"` // KB
}

// Passed reports whether the run was accepted.
func (r *RunResult) Passed() bool {
	return r.StatusID == StatusAccepted
}

// Run executes one submission against one test input and waits for the
// verdict. The wait is bounded by the client timeout; hitting it returns an
// error rather than blocking the caller indefinitely.
func (c *Client) Run(ctx context.Context, languageID int, sourceCode, stdin, expectedOutput string) (*RunResult, error) {
	req := RunRequest{
		LanguageID:     languageID,
		SourceCode:     sourceCode,
		Stdin:          stdin,
		ExpectedOutput: expectedOutput,
		CPUTimeLimit:   cpuTimeLimitSec,
		WallTimeLimit:  wallTimeLimitSec,
		MemoryLimit:    memoryLimitKB,
		MaxFileSize:    maxOutputKB,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run request: %w", err)
	}

	url := fmt.Sprintf("%s/submissions?wait=true", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build run request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sandbox request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("sandbox returned status %d", resp.StatusCode)
	}

	var result RunResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode sandbox response: %w", err)
	}

	return &result, nil
}

// HealthCheck verifies the sandbox is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sandbox health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sandbox is not healthy: status %d", resp.StatusCode)
	}

	logger.Info("Sandbox health check passed", "url", c.baseURL)
	return nil
}
