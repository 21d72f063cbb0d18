// Package meeting provisions Zoom classrooms for confirmed bookings through
// Zoom's server-to-server OAuth API.
package meeting

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Sem-Five-Project/edimy/models"
)

const (
	tokenURL   = "https://zoom.us/oauth/token"
	apiBaseURL = "https://api.zoom.us/v2"
)

// ZoomClient creates meetings under one Zoom account.
type ZoomClient struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewZoomClient constructs a client for a server-to-server OAuth app.
func NewZoomClient(accountID, clientID, clientSecret string) *ZoomClient {
	return &ZoomClient{
		AccountID:    accountID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateMeeting schedules a meeting on the given date at startMinute
// (minutes from midnight) and returns the join/start links.
func (z *ZoomClient) CreateMeeting(ctx context.Context, topic, startDate string, startMinute, durationMinutes int) (*models.ZoomMeeting, error) {
	token, err := z.token(ctx)
	if err != nil {
		return nil, err
	}

	startTime := fmt.Sprintf("%sT%02d:%02d:00", startDate, startMinute/60, startMinute%60)
	body := map[string]interface{}{
		"topic":      topic,
		"type":       2, // scheduled meeting
		"start_time": startTime,
		"duration":   durationMinutes,
		"settings": map[string]interface{}{
			"join_before_host": false,
			"waiting_room":     true,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBaseURL+"/users/me/meetings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zoom meeting request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("zoom meeting creation returned status %d", resp.StatusCode)
	}

	var meeting models.ZoomMeeting
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return nil, fmt.Errorf("failed to decode zoom response: %w", err)
	}
	return &meeting, nil
}

// token returns a cached access token, refreshing it when within a minute
// of expiry.
func (z *ZoomClient) token(ctx context.Context) (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.accessToken != "" && time.Now().Add(time.Minute).Before(z.tokenExpiry) {
		return z.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", z.AccountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(z.ClientID + ":" + z.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := z.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("zoom token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zoom token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode zoom token response: %w", err)
	}

	z.accessToken = tokenResp.AccessToken
	z.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return z.accessToken, nil
}
