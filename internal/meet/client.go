package meet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client talks to the conferencing provider's REST API. The provider creates
// a calendar event with an attached video meeting and returns the join URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createMeetingRequest struct {
	RequestID       string    `json:"request_id"`
	Summary         string    `json:"summary"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

type createMeetingResponse struct {
	JoinURL string `json:"join_url"`
}

func (c *Client) CreateMeeting(ctx context.Context, appointmentID uuid.UUID, startTime time.Time, duration time.Duration) (string, error) {
	body, err := json.Marshal(createMeetingRequest{
		RequestID:       appointmentID.String(),
		Summary:         "Medical Consultation",
		StartTime:       startTime,
		DurationMinutes: int(duration.Minutes()),
	})
	if err != nil {
		return "", fmt.Errorf("marshal meeting request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/meetings", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build meeting request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call conferencing api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("conferencing api returned %d: %s", resp.StatusCode, b)
	}

	var parsed createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode meeting response: %w", err)
	}
	if parsed.JoinURL == "" {
		return "", fmt.Errorf("conferencing api returned no join url")
	}

	return parsed.JoinURL, nil
}
