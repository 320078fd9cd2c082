package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketbot/internal/config"
	"marketbot/internal/domain"
)

// Client talks to the marketplace with the seller's session cookies. Every
// method performs a single request with the configured timeout; retry policy
// belongs to the workflows driving it.
type Client struct {
	baseURL    string
	sessionKey string
	sessionID  string
	csrfToken  string
	userAgent  string
	http       *http.Client
	logger     *slog.Logger
}

func NewClient(cfg config.MarketplaceConfig, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.RequestTimeoutS) * time.Second
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		sessionKey: cfg.SessionKey,
		sessionID:  cfg.SessionID,
		csrfToken:  cfg.CSRFToken,
		userAgent:  cfg.UserAgent,
		http:       &http.Client{Timeout: timeout, Transport: transport},
		logger:     logger,
	}
}

func (c *Client) cookie() string {
	cookie := "golden_key=" + c.sessionKey
	if c.sessionID != "" {
		cookie += "; PHPSESSID=" + c.sessionID
	}
	return cookie
}

// postForm sends an x-www-form-urlencoded POST and returns the raw body.
func (c *Client) postForm(ctx context.Context, op, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Cookie", c.cookie())
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.TransportError{Op: op, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Cookie", c.cookie())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.TransportError{Op: op, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	return body, nil
}

// SendMessage posts text into conversation channelID through the runner endpoint.
func (c *Client) SendMessage(ctx context.Context, channelID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyMessage
	}

	request, err := json.Marshal(map[string]any{
		"action": "chat_message",
		"data": map[string]any{
			"node":         channelID,
			"last_message": -1,
			"content":      text,
		},
	})
	if err != nil {
		return fmt.Errorf("send message: encode: %w", err)
	}

	form := url.Values{
		"objects":    {""},
		"request":    {string(request)},
		"csrf_token": {c.csrfToken},
	}
	body, err := c.postForm(ctx, "send message", "/runner/", form)
	if err != nil {
		return err
	}

	var reply struct {
		Response *struct {
			Error *string `json:"error"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return fmt.Errorf("send message: decode: %w", err)
	}
	if reply.Response == nil || reply.Response.Error != nil {
		msg := "rejected"
		if reply.Response != nil && reply.Response.Error != nil {
			msg = *reply.Response.Error
		}
		return &domain.TransportError{Op: "send message", Err: fmt.Errorf("%s", msg)}
	}
	return nil
}

// ResolveChannelForUser scans the chat list page for the conversation with
// username. Returns ErrNoChannel when no conversation exists.
func (c *Client) ResolveChannelForUser(ctx context.Context, username string) (int64, error) {
	body, err := c.get(ctx, "resolve channel", "/chat/")
	if err != nil {
		return 0, err
	}
	id, ok := findChatNode(string(body), username)
	if !ok {
		return 0, domain.ErrNoChannel
	}
	return id, nil
}

func raisePath(cat domain.Category) string {
	if cat.Type == domain.CategoryCurrency {
		return "/chips/raise"
	}
	return "/lots/raise"
}

// RequestCategoryRaise issues the initial raise request for cat.
// Requires cat.GameID to be resolved.
func (c *Client) RequestCategoryRaise(ctx context.Context, cat domain.Category) (domain.RaiseResponse, error) {
	form := url.Values{
		"game_id": {strconv.FormatInt(cat.GameID, 10)},
		"node_id": {strconv.FormatInt(cat.ID, 10)},
	}
	body, err := c.postForm(ctx, "request raise", raisePath(cat), form)
	if err != nil {
		return domain.RaiseResponse{}, err
	}
	return ClassifyRaiseResponse(body)
}

// SubmitCategoryRaise answers a raise modal with the selected category ids.
func (c *Client) SubmitCategoryRaise(ctx context.Context, cat domain.Category, ids []int64) (domain.RaiseResponse, error) {
	form := url.Values{
		"game_id": {strconv.FormatInt(cat.GameID, 10)},
		"node_id": {strconv.FormatInt(cat.ID, 10)},
	}
	for _, id := range ids {
		form.Add("node_ids[]", strconv.FormatInt(id, 10))
	}
	body, err := c.postForm(ctx, "submit raise", raisePath(cat), form)
	if err != nil {
		return domain.RaiseResponse{}, err
	}
	return ClassifyRaiseResponse(body)
}

// ResolveGameID looks up the game a category belongs to via its trade page.
func (c *Client) ResolveGameID(ctx context.Context, cat domain.Category) (int64, error) {
	path := fmt.Sprintf("/lots/%d/trade", cat.ID)
	if cat.Type == domain.CategoryCurrency {
		path = fmt.Sprintf("/chips/%d/trade", cat.ID)
	}
	body, err := c.get(ctx, "resolve game id", path)
	if err != nil {
		return 0, err
	}
	id, ok := findGameID(string(body), cat.Type)
	if !ok {
		return 0, fmt.Errorf("resolve game id: no game marker on page for category %d", cat.ID)
	}
	return id, nil
}

// ListAccountListings returns the listings currently active on the account.
func (c *Client) ListAccountListings(ctx context.Context) ([]domain.ListingRef, error) {
	body, err := c.get(ctx, "list listings", "/lots/")
	if err != nil {
		return nil, err
	}
	return parseListings(string(body)), nil
}

// SetListingActive re-saves a listing with its active flag flipped. The save
// endpoint requires every current field value, so the edit form is fetched
// first and echoed back.
func (c *Client) SetListingActive(ctx context.Context, listingID, gameID int64, active bool) error {
	fields, err := c.listingFields(ctx, listingID, gameID)
	if err != nil {
		return err
	}

	form := url.Values{}
	for name, value := range fields {
		if name == "active" {
			continue
		}
		form.Set(name, value)
	}
	if active {
		form.Set("active", "on")
	}
	form.Set("location", "trade")
	form.Set("csrf_token", c.csrfToken)

	_, err = c.postForm(ctx, "save listing", "/lots/offerSave", form)
	return err
}

// listingFields fetches the listing edit form and returns its field values.
func (c *Client) listingFields(ctx context.Context, listingID, gameID int64) (map[string]string, error) {
	path := fmt.Sprintf("/lots/offerEdit?offer=%d&node=%d", listingID, gameID)
	body, err := c.get(ctx, "listing fields", path)
	if err != nil {
		return nil, err
	}

	var reply struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("listing fields: decode: %w", err)
	}
	return parseFormFields(reply.HTML), nil
}
