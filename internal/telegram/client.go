package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/umarovdev/konkurs-backend/internal/service"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client covering the two calls the
// backend needs: getChatMember (membership oracle) and sendMessage
// (broadcast / notification delivery).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(token string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: defaultBaseURL, token: token, httpClient: httpClient, log: log}
}

// NewClientWithBaseURL exists for tests against a stub API server.
func NewClientWithBaseURL(token, baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	c := NewClient(token, httpClient, log)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type chatMember struct {
	Status string `json:"status"`
}

// StatusOf implements service.MembershipOracle. Telegram reports member,
// administrator and creator as belonging; everything else (left, kicked,
// restricted-without-membership) counts as not a member.
func (c *Client) StatusOf(ctx context.Context, channelID string, userID int64) (service.MembershipStatus, error) {
	q := url.Values{}
	q.Set("chat_id", channelID)
	q.Set("user_id", strconv.FormatInt(userID, 10))

	var resp apiResponse
	if err := c.call(ctx, "getChatMember", q, &resp); err != nil {
		return service.StatusUnknown, err
	}
	if !resp.OK {
		return service.StatusUnknown, fmt.Errorf("getChatMember: telegram error %d: %s", resp.ErrorCode, resp.Description)
	}
	var m chatMember
	if err := json.Unmarshal(resp.Result, &m); err != nil {
		return service.StatusUnknown, fmt.Errorf("getChatMember: decode result: %w", err)
	}
	switch m.Status {
	case "member", "administrator", "creator":
		return service.StatusMember, nil
	default:
		return service.StatusNotMember, nil
	}
}

// SendMessage implements service.MessageSender.
func (c *Client) SendMessage(ctx context.Context, userID int64, text string) error {
	q := url.Values{}
	q.Set("chat_id", strconv.FormatInt(userID, 10))
	q.Set("text", text)

	var resp apiResponse
	if err := c.call(ctx, "sendMessage", q, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("sendMessage: telegram error %d: %s", resp.ErrorCode, resp.Description)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, q url.Values, out *apiResponse) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s?%s", c.baseURL, c.token, method, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", method, err)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	return nil
}
