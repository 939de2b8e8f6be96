package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTP status code constants.
const (
	StatusOK      = 200
	StatusCreated = 201
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body and optional bearer token
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}, bearer string) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.client.Do(req)
}

// marshalBatch marshals a batch to JSON.
func marshalBatch(b VoteBatch) ([]byte, error) {
	return json.Marshal(b)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// registerAndLogin registers every judge and exchanges its credentials for
// a bearer token. Judges are processed concurrently.
func registerAndLogin(ctx context.Context, config *Config, judges []Judge, stats *Stats) error {
	log.Printf("👥 Registering %d judges with %d workers...", len(judges), config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		registered int64
		loggedIn   int64
	)

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					if err := registerSingleJudge(ctx, client, config.BaseURL, &judges[idx]); err != nil {
						if config.Verbose {
							log.Printf("register failed for %s: %v", judges[idx].Handle, err)
						}
						continue
					}
					atomic.AddInt64(&registered, 1)

					if err := loginSingleJudge(ctx, client, config.BaseURL, &judges[idx]); err != nil {
						if config.Verbose {
							log.Printf("login failed for %s: %v", judges[idx].Handle, err)
						}
						continue
					}
					atomic.AddInt64(&loggedIn, 1)
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range judges {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	stats.JudgesRegistered = int(atomic.LoadInt64(&registered))
	stats.JudgesLoggedIn = int(atomic.LoadInt64(&loggedIn))

	if stats.JudgesLoggedIn != len(judges) {
		return fmt.Errorf("only %d/%d judges have sessions", stats.JudgesLoggedIn, len(judges))
	}

	log.Printf("✅ %d judges registered and logged in", stats.JudgesLoggedIn)
	return nil
}

func registerSingleJudge(ctx context.Context, client *HTTPClient, baseURL string, judge *Judge) error {
	resp, err := client.Post(ctx, baseURL+"/register", map[string]string{
		"handle":   judge.Handle,
		"password": judge.Password,
	}, "")
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusCreated {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return err
	}
	judge.UserID = out.ID
	return nil
}

func loginSingleJudge(ctx context.Context, client *HTTPClient, baseURL string, judge *Judge) error {
	resp, err := client.Post(ctx, baseURL+"/login", map[string]string{
		"handle":   judge.Handle,
		"password": judge.Password,
	}, "")
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return err
	}
	judge.Token = out.Token
	return nil
}

// submitBatches submits vote batches concurrently using a worker pool. A
// configurable share of batches is submitted twice to exercise the
// overwrite path; the leaderboard must stay consistent either way.
func submitBatches(ctx context.Context, config *Config, judges []Judge, batches []VoteBatch, stats *Stats) error {
	log.Printf("📤 Submitting %d vote batches with %d workers...", len(batches), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/vote"

	var (
		successful    int64
		failed        int64
		submitted     int64
		resubmissions int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	batchChan := make(chan VoteBatch, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batchChan {
				select {
				case <-ctx.Done():
					return
				default:
					token := judges[batch.JudgeIndex].Token
					ok := submitSingleBatch(ctx, client, url, token, batch)

					atomic.AddInt64(&submitted, 1)
					if ok {
						atomic.AddInt64(&successful, 1)
					} else {
						atomic.AddInt64(&failed, 1)
					}

					if ok && getRandomFloat() < config.ResubmitShare {
						// Overwrite with fresh scores for the same pair
						for category := range batch.Votes {
							batch.Votes[category] = generateVariedScore()
						}
						if submitSingleBatch(ctx, client, url, token, batch) {
							atomic.AddInt64(&resubmissions, 1)
						}
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (success: %d, failed: %d)",
								total, len(batches), succ, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (success: %d, failed: %d)",
								total, len(batches), succ, fail)
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(batchChan)
		for _, batch := range batches {
			select {
			case <-ctx.Done():
				return
			case batchChan <- batch:
			}
		}
	}()

	wg.Wait()

	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	stats.BatchesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.BatchesSuccess = int(atomic.LoadInt64(&successful))
	stats.BatchesFailed = int(atomic.LoadInt64(&failed))
	stats.Resubmissions = int(atomic.LoadInt64(&resubmissions))

	log.Printf(`✅ Batch submission completed:
   Successful: %d
   Failed: %d
   Resubmitted: %d
`, stats.BatchesSuccess, stats.BatchesFailed, stats.Resubmissions)

	return nil
}

// submitSingleBatch submits one batch and reports success.
func submitSingleBatch(ctx context.Context, client *HTTPClient, url, token string, batch VoteBatch) bool {
	resp, err := client.Post(ctx, url, map[string]interface{}{
		"teamName": batch.TeamName,
		"votes":    batch.Votes,
	}, token)
	if err != nil {
		return false
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return false
	}
	if resp.StatusCode != StatusOK {
		return false
	}

	var ack struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &ack); err == nil && ack.Status == "recorded" {
		return true
	}
	return true // Assume success for 200 even if parsing fails
}

// fetchResults retrieves the current leaderboard.
func fetchResults(ctx context.Context, config *Config, stats *Stats) ([]TeamResult, error) {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/results")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("results request failed with status: %d", resp.StatusCode)
	}

	var results []TeamResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	stats.ResultEntries = len(results)
	return results, nil
}
