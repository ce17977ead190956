// Package apiclient is a thin HTTP client for the backend's REST surface,
// used by the mobile shell alongside the realtime session.
package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"amoura/backend/internal/models"
	"amoura/backend/internal/pairing"
	"amoura/backend/internal/roomphase"
)

var httpTimeout = 5 * time.Second

// ErrUnauthorized is returned when the server rejects the bearer token.
var ErrUnauthorized = errors.New("apiclient: unauthorized")

// Client talks to one backend instance with one member's token.
type Client struct {
	BaseURL string
	Token   string

	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
}

// TokenResponse is the body of POST /auth/token.
type TokenResponse struct {
	Token    string `json:"token"`
	MemberID int64  `json:"memberId"`
	DeviceID string `json:"deviceId"`
	Nickname string `json:"nickname"`
}

// IssueToken registers the device and stores the returned token on the client.
func (c *Client) IssueToken(deviceID, nickname, gender string) (*TokenResponse, error) {
	payload := map[string]string{"deviceId": deviceID, "nickname": nickname, "gender": gender}
	var resp TokenResponse
	if err := c.doJSON(http.MethodPost, "/auth/token", payload, &resp); err != nil {
		return nil, err
	}
	c.Token = resp.Token
	return &resp, nil
}

// JoinResponse is the body of POST /matching/join. ChatRoomID is zero while
// the search is still running; the lobby topic carries the eventual result.
type JoinResponse struct {
	Message    string `json:"message"`
	ChatRoomID int64  `json:"chatRoomId"`
}

func (c *Client) JoinMatching() (*JoinResponse, error) {
	var resp JoinResponse
	if err := c.doJSON(http.MethodPost, "/matching/join", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RoomResponse is the body of GET /chat-room/{id}.
type RoomResponse struct {
	ChatRoom         models.ChatRoom      `json:"chatRoom"`
	Phase            roomphase.Phase      `json:"phase"`
	RemainingSeconds int                  `json:"remainingSeconds"`
	Messages         []models.ChatMessage `json:"messages"`
}

func (c *Client) Room(roomID int64) (*RoomResponse, error) {
	var resp RoomResponse
	if err := c.doJSON(http.MethodGet, fmt.Sprintf("/chat-room/%d", roomID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RoomEventsResponse is the body of GET /room-event/chat-room/{id}. Match is
// set only after the cupid window closed and the pick was reciprocal.
type RoomEventsResponse struct {
	ChatRoomID int64              `json:"chatRoomId"`
	Events     []models.RoomEvent `json:"events"`
	Match      *pairing.Match     `json:"match,omitempty"`
}

func (c *Client) RoomEvents(roomID int64) (*RoomEventsResponse, error) {
	var resp RoomEventsResponse
	if err := c.doJSON(http.MethodGet, fmt.Sprintf("/room-event/chat-room/%d", roomID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateRoomEvent submits a secret message or a cupid pick.
func (c *Client) CreateRoomEvent(roomID, receiverID int64, eventType, message string) (*models.RoomEvent, error) {
	payload := map[string]any{
		"chatRoomId":    roomID,
		"receiverId":    receiverID,
		"roomEventType": eventType,
		"message":       message,
	}
	var resp models.RoomEvent
	if err := c.doJSON(http.MethodPost, "/room-event", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Report files a report against another member of the room.
func (c *Client) Report(roomID, targetID int64, reportType, reason string) error {
	payload := map[string]any{
		"chatRoomId": roomID,
		"targetId":   targetID,
		"reportType": reportType,
		"reason":     reason,
	}
	return c.doJSON(http.MethodPost, "/report", payload, nil)
}

func (c *Client) doJSON(method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(buf)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, readResponseError(resp.Body))
	}
	if out != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if len(data) > 0 {
			return json.Unmarshal(data, out)
		}
	}
	return nil
}

func readResponseError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "request failed"
	}
	var parsed map[string]string
	if err := json.Unmarshal(data, &parsed); err == nil {
		if msg, ok := parsed["error"]; ok {
			return msg
		}
	}
	return strings.TrimSpace(string(data))
}
