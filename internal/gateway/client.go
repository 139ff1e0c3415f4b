package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/moon-community/fto-queue-service/internal/config"
)

// ErrNotConfigured is returned when no gateway base URL is set.
var ErrNotConfigured = errors.New("gateway not configured")

// Client talks to the chat-platform gateway: the bot process that owns the
// platform connection, knows member roles and can deliver direct messages.
type Client struct {
	baseURL string
	token   string
	guildID int64
	http    *http.Client
}

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		guildID: cfg.GuildID,
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// Configured reports whether a gateway endpoint is available.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

type memberRolesResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Roles   []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"roles"`
}

// MemberRoles returns the role names the member currently holds.
func (c *Client) MemberRoles(ctx context.Context, actorID int64) ([]string, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("guild_id", strconv.FormatInt(c.guildID, 10))
	query.Set("user_id", strconv.FormatInt(actorID, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/roles?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed memberRolesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode roles response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !parsed.Success {
		return nil, fmt.Errorf("gateway roles lookup failed: status %d: %s", resp.StatusCode, parsed.Error)
	}

	names := make([]string, 0, len(parsed.Roles))
	for _, role := range parsed.Roles {
		names = append(names, role.Name)
	}
	return names, nil
}

type directMessageRequest struct {
	UserID  int64  `json:"user_id"`
	Content string `json:"content"`
}

// SendDirect asks the gateway to deliver a direct message. Callers treat
// failures as best-effort: the queue state is already committed.
func (c *Client) SendDirect(ctx context.Context, actorID int64, content string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(directMessageRequest{UserID: actorID, Content: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/direct-messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway direct message failed: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
