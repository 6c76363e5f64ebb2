// Package judge implements clients for external competitive-programming
// judges. A client reduces a user's judge-reported submission history to
// the set of solved-problem keys consumed by the reconciliation engine.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/cp-ladders/backend/internal/domain"
	"github.com/cp-ladders/backend/internal/infrastructure"
)

// verdictAccepted is the only Codeforces verdict counted as a solve
const verdictAccepted = "OK"

// SubmissionFetcher is the contract the reconciliation engine consumes:
// given a judge handle, the set of solved-problem keys.
type SubmissionFetcher interface {
	FetchSolvedKeys(ctx context.Context, handle string) (map[string]struct{}, error)
}

// CodeforcesClient fetches a user's submission history from the
// Codeforces user.status endpoint. Requests carry an explicit timeout
// and a bounded retry on transient transport failure; a judge-reported
// failure is returned immediately with the judge's comment.
type CodeforcesClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewCodeforcesClient creates a Codeforces submission fetcher
func NewCodeforcesClient(config *infrastructure.JudgeConfig, logger *zap.Logger) *CodeforcesClient {
	return &CodeforcesClient{
		baseURL: config.CodeforcesBaseURL,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		maxRetries: config.MaxRetries,
		backoff:    config.RetryBackoff,
		logger:     logger,
	}
}

// submissionProblem is the problem reference inside a submission
type submissionProblem struct {
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
}

// submission is one judge-reported submission
type submission struct {
	ID      int64             `json:"id"`
	Verdict string            `json:"verdict"`
	Problem submissionProblem `json:"problem"`
}

// userStatusResponse is the envelope of the user.status endpoint
type userStatusResponse struct {
	Status  string       `json:"status"`
	Comment string       `json:"comment"`
	Result  []submission `json:"result"`
}

// FetchSolvedKeys returns the deduplicated set of solved keys for every
// submission of the handle with an accepted verdict
func (c *CodeforcesClient) FetchSolvedKeys(ctx context.Context, handle string) (map[string]struct{}, error) {
	if handle == "" {
		return nil, domain.ErrNoJudgeHandle
	}

	endpoint := fmt.Sprintf("%s/user.status?handle=%s", c.baseURL, url.QueryEscape(handle))

	body, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, domain.WrapError(domain.ErrJudgeUnavailable, err.Error())
	}

	if body.Status != "OK" {
		c.logger.Warn("Codeforces reported failure",
			zap.String("handle", handle),
			zap.String("comment", body.Comment),
		)
		return nil, domain.WrapError(domain.ErrJudgeUnavailable, body.Comment)
	}

	solved := make(map[string]struct{})
	for _, sub := range body.Result {
		if sub.Verdict != verdictAccepted {
			continue
		}
		solved[SolvedKey(sub.Problem.ContestID, sub.Problem.Index)] = struct{}{}
	}

	c.logger.Debug("Fetched solved set",
		zap.String("handle", handle),
		zap.Int("submissions", len(body.Result)),
		zap.Int("solved", len(solved)),
	)

	return solved, nil
}

// getWithRetry performs the GET with one bounded retry on transport
// failure. A response the judge produced, success or not, is never
// retried.
func (c *CodeforcesClient) getWithRetry(ctx context.Context, endpoint string) (*userStatusResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
			c.logger.Debug("Retrying judge request", zap.Int("attempt", attempt))
		}

		resp, err := c.get(ctx, endpoint)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("judge request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *CodeforcesClient) get(ctx context.Context, endpoint string) (*userStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Codeforces sends its FAILED envelope with a 4xx status, so the
	// body is decoded regardless of the HTTP status code.
	var body userStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("malformed judge response: %w", err)
	}

	if body.Status == "" {
		return nil, fmt.Errorf("unexpected judge response (http %d)", resp.StatusCode)
	}

	return &body, nil
}
