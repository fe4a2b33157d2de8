// Package quran implements the quran.com content API client.
// The client feeds the content seeder: chapter metadata, Uthmani verse text
// and word-by-word breakdowns with transliteration and translation.
package quran

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
	"github.com/hifz-hub/hifz-progress-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultBaseURL is the public quran.com API endpoint.
const DefaultBaseURL = "https://api.quran.com/api/v4"

// DefaultTranslationID selects the English translation resource.
const DefaultTranslationID = 85

// DefaultWordFields are the word attributes requested alongside verses.
const DefaultWordFields = "text_uthmani"

// ClientConfig contains configuration for the content API client.
type ClientConfig struct {
	// BaseURL is the API base URL.
	BaseURL string

	// TranslationID selects the verse translation resource.
	TranslationID int

	// Language is the language code for translated names and word data.
	Language string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimiterConfig for API rate limiting.
	RateLimiterConfig RateLimiterConfig

	// Logger for structured logging.
	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           DefaultBaseURL,
		TranslationID:     DefaultTranslationID,
		Language:          "en",
		Timeout:           30 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the quran.com content API client.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	log         *logger.Logger
	rateLimiter *RateLimiter
	retrier     *retry.Retrier
	mapper      *Mapper
}

// NewClient creates a new content API client.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.TranslationID == 0 {
		config.TranslationID = DefaultTranslationID
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = logger.Default()
	}

	log := config.Logger.With(logger.Component("quran_client"))

	// Conservative backoff to stay clear of the public API's rate limits.
	retrier := retry.New(
		retry.WithMaxAttempts(3),
		retry.WithInitialDelay(500*time.Millisecond),
		retry.WithMaxDelay(10*time.Second),
		retry.WithMultiplier(2.0),
		retry.WithJitter(0.2),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("content API call failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err))
		}),
	)

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		log:         log,
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		retrier:     retrier,
		mapper:      NewMapper(),
	}
}

// Mapper returns the DTO-to-domain mapper used by the client.
func (c *Client) Mapper() *Mapper {
	return c.mapper
}

// ══════════════════════════════════════════════════════════════════════════════
// CHAPTER OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetChapters fetches all 114 chapters with localized names.
func (c *Client) GetChapters(ctx context.Context) ([]ChapterDTO, error) {
	params := url.Values{}
	params.Set("language", c.config.Language)

	var response ChaptersResponseDTO
	if err := c.doRequest(ctx, "/chapters?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("get chapters: %w", err)
	}

	return response.Chapters, nil
}

// GetChapter fetches a single chapter by number.
func (c *Client) GetChapter(ctx context.Context, number int) (*ChapterDTO, error) {
	params := url.Values{}
	params.Set("language", c.config.Language)

	path := fmt.Sprintf("/chapters/%d?%s", number, params.Encode())

	var response ChapterResponseDTO
	if err := c.doRequest(ctx, path, &response); err != nil {
		return nil, fmt.Errorf("get chapter %d: %w", number, err)
	}

	return &response.Chapter, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// VERSE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetVersesByChapter fetches one page of verses for a chapter, with words
// and the configured translation.
func (c *Client) GetVersesByChapter(ctx context.Context, chapterNumber, page, perPage int) (*VersesResponseDTO, error) {
	params := url.Values{}
	params.Set("language", c.config.Language)
	params.Set("words", "true")
	params.Set("word_fields", DefaultWordFields)
	params.Set("fields", "text_uthmani")
	params.Set("translations", strconv.Itoa(c.config.TranslationID))
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	path := fmt.Sprintf("/verses/by_chapter/%d?%s", chapterNumber, params.Encode())

	var response VersesResponseDTO
	if err := c.doRequest(ctx, path, &response); err != nil {
		return nil, fmt.Errorf("get verses for chapter %d page %d: %w", chapterNumber, page, err)
	}

	return &response, nil
}

// GetAllVersesByChapter fetches every verse of a chapter, following pagination.
func (c *Client) GetAllVersesByChapter(ctx context.Context, chapterNumber int) ([]VerseDTO, error) {
	const perPage = 50

	var all []VerseDTO
	page := 1

	for {
		response, err := c.GetVersesByChapter(ctx, chapterNumber, page, perPage)
		if err != nil {
			return nil, err
		}

		all = append(all, response.Verses...)

		if response.Pagination == nil || response.Pagination.NextPage == nil {
			break
		}
		page = *response.Pagination.NextPage
	}

	return all, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs a GET request with rate limiting and retries.
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) error {
	return c.retrier.Do(ctx, func(ctx context.Context) error {
		if err := c.rateLimiter.Allow(ctx); err != nil {
			return retry.Retryable(err)
		}

		err := c.doSingleRequest(ctx, path, result)
		if err == nil {
			return nil
		}

		if isRetryable(err) {
			c.log.Warn("content api request failed, will retry",
				logger.String("path", path), logger.Err(err))
			return retry.Retryable(err)
		}

		return retry.Permanent(err)
	})
}

// doSingleRequest performs a single HTTP GET request.
func (c *Client) doSingleRequest(ctx context.Context, path string, result interface{}) error {
	fullURL := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "rate limit exceeded",
		}
	}

	if resp.StatusCode >= 400 {
		var apiErr APIErrorDTO
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			apiErr.Status = resp.StatusCode
			return &apiErr
		}
		return &APIErrorDTO{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// isRetryable checks if an error is worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}

	// Network errors are generally transient.
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy checks if the content API is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	var response ChapterResponseDTO
	err := c.doSingleRequest(ctx, "/chapters/1", &response)
	return err == nil && response.Chapter.ID == 1
}
