package pms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"casamar/config"

	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient builds a client from the loaded configuration.
func NewHTTPClient(logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: config.AppConfig.PMSBaseURL,
		token:   config.AppConfig.PMSAPIToken,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// FetchRoomIndex calls the availability endpoint once and decodes the flat
// index-to-room-number object it returns.
func (c *HTTPClient) FetchRoomIndex(ctx context.Context, checkIn, checkOut string) (map[string]string, error) {
	endpoint := fmt.Sprintf("%s/availability?checkin=%s&checkout=%s",
		c.baseURL, url.QueryEscape(checkIn), url.QueryEscape(checkOut))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build availability request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("availability request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("availability request returned status %d", resp.StatusCode)
	}

	var index map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to parse availability response: %w", err)
	}
	return index, nil
}

type reservationResponse struct {
	ReservationID string `json:"reservation_id"`
}

// SubmitReservation posts one form-encoded reservation covering every room
// in the request. A response without a 2xx status or without an
// extractable reservation reference is a failure.
func (c *HTTPClient) SubmitReservation(ctx context.Context, r ReservationRequest) (string, error) {
	form := url.Values{}
	form.Set("checkin", r.CheckIn)
	form.Set("checkout", r.CheckOut)
	form.Set("firstname", r.FirstName)
	form.Set("lastname", r.LastName)
	form.Set("email", r.Email)
	form.Set("phone", r.Phone)
	form.Set("reserverooms", r.ReserveRooms)
	form.Set("adultcount", r.AdultCount)
	form.Set("childrencount", r.ChildrenCount)

	endpoint := c.baseURL + "/reservations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build reservation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reservation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("reservation rejected by booking API",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", fmt.Errorf("reservation request returned status %d", resp.StatusCode)
	}

	var parsed reservationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse reservation response: %w", err)
	}
	if parsed.ReservationID == "" {
		return "", fmt.Errorf("reservation response contained no reservation reference")
	}
	return parsed.ReservationID, nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
