package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/marketbat/marketbat/internal/config"
	"github.com/rs/zerolog"
)

const defaultTweetEndpoint = "https://api.twitter.com/2/tweets"

// XClient posts messages via the X API v2 create-post endpoint using
// OAuth 1.0a user-context authentication.
type XClient struct {
	endpoint   string
	signer     *oauthSigner
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewXClient creates an XClient from the given credentials.
func NewXClient(logger zerolog.Logger, creds config.Credentials) *XClient {
	return &XClient{
		endpoint:   defaultTweetEndpoint,
		signer:     newOAuthSigner(creds.XAPIKey, creds.XAPISecret, creds.XAccessToken, creds.XAccessTokenSecret),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Publish posts message, truncating it to the platform limit first.
func (c *XClient) Publish(ctx context.Context, message string) error {
	message = Truncate(message)

	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	// JSON bodies are not form parameters, so only oauth_* params are
	// part of the signature base string.
	req.Header.Set("Authorization", c.signer.authorizationHeader(http.MethodPost, c.endpoint, url.Values{}))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to X: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("X API returned status %d: %s", resp.StatusCode, snippet)
	}

	c.logger.Info().Int("chars", len([]rune(message))).Msg("posted to X")
	return nil
}
