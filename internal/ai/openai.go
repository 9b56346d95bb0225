package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

const openAIURL = "https://api.openai.com/v1/chat/completions"

// cooldown suppresses further backend calls after a rate-limit signal so a
// throttled key doesn't stall every question in the apply flow.
const cooldown = 5 * time.Minute

type openAIClient struct {
	apiKey     string
	model      string
	httpClient *http.Client

	mu      sync.Mutex
	last429 time.Time
}

// NewOpenAIClient creates a chat-completions client. Returns nil when no API
// key is configured, which callers treat as "no AI backend".
func NewOpenAIClient(apiKey, model string) Client {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &openAIClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *openAIClient) ScoreCompatibility(ctx context.Context, jobText, resumeText string) (int, error) {
	user := fmt.Sprintf("Job Description:\n%s\n\nResume:\n%s\n\nScore:", jobText, resumeText)
	reply, err := c.ask(ctx, scoringSystemPrompt(), user)
	if err != nil {
		return 0, err
	}
	score, err := ParseScore(reply)
	if err != nil {
		return 0, err
	}
	return score, nil
}

func (c *openAIClient) AnswerQuestion(ctx context.Context, question, resumeText string) (string, error) {
	user := fmt.Sprintf("Resume Context: %s\n\nQuestion: %s\n\nAnswer:", resumeText, question)
	return c.ask(ctx, answerSystemPrompt(), user)
}

var errCoolingDown = errors.New("ai backend on rate-limit cooldown")

func (c *openAIClient) ask(ctx context.Context, system, user string) (string, error) {
	c.mu.Lock()
	coolingDown := time.Since(c.last429) < cooldown
	c.mu.Unlock()
	if coolingDown {
		return "", errCoolingDown
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	respBytes, err := retry.DoWithData(
		func() ([]byte, error) { return c.post(ctx, body) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxJitter(250*time.Millisecond),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("⚠️ Retrying AI request (attempt %d): %v", n+1, err)
		}),
	)
	if err != nil {
		var httpErr *httpError
		if errors.As(err, &httpErr) && httpErr.status == http.StatusTooManyRequests {
			c.mu.Lock()
			c.last429 = time.Now()
			c.mu.Unlock()
			log.Printf("🧊 AI backend rate-limited (429). Cooling down for %s.", cooldown)
		}
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("no choices in chat response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (c *openAIClient) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpError{status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

type httpError struct {
	status int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("ai backend returned status %d", e.status)
}

func isRetryable(err error) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.status >= 500
	}
	// Network-level failures are worth one more try; context cancellation
	// and rate limits are not.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

var scoreRegex = regexp.MustCompile(`\d{1,3}`)

// ParseScore extracts an integer score from a model reply such as "85" or
// "Score: 85/100" and clamps it to [0,100].
func ParseScore(reply string) (int, error) {
	match := scoreRegex.FindString(reply)
	if match == "" {
		return 0, fmt.Errorf("no integer in reply %q", reply)
	}
	score, err := strconv.Atoi(match)
	if err != nil {
		return 0, err
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
