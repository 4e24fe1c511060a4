// internal/gateway/http.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"groupcart/internal/domain"
	"groupcart/internal/util"
)

// DefaultTimeout bounds every request. The backing contract defines no
// timeout of its own, so a hung request would otherwise hang the session;
// expiry surfaces as ErrNetwork.
const DefaultTimeout = 10 * time.Second

// Client is the HTTP implementation of Gateway, speaking JSON against the
// groupcart API. Responses are decoded strictly into domain types here, at
// the boundary, so nothing loosely-typed ever reaches the core.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL. A non-positive timeout
// selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: trimSlash(baseURL),
		http:    &http.Client{Timeout: timeout},
	}
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// do issues one request and decodes the response into out (skipped when out
// is nil). Transport failures and unclassified statuses map to ErrNetwork,
// 404 to ErrNotFound, 409 to ErrConflict, 400/422 to ErrValidation. A body
// that does not decode into the expected shape is a contract violation and
// maps to ErrValidation.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode %s %s request: %v", util.ErrValidation, method, path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%w: build %s %s: %v", util.ErrNetwork, method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", util.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, method, path); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s response: %v", util.ErrValidation, method, path, err)
	}
	return nil
}

func classifyStatus(status int, method, path string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", util.ErrNotFound, method, path)
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s %s", util.ErrConflict, method, path)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s %s", util.ErrValidation, method, path)
	default:
		return fmt.Errorf("%w: %s %s returned status %d", util.ErrNetwork, method, path, status)
	}
}

func userPath(username string) string {
	return "/users/" + url.PathEscape(domain.Slugify(username))
}

func (c *Client) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, userPath(username), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var created domain.User
	if err := c.do(ctx, http.MethodPost, "/users", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var updated domain.User
	if err := c.do(ctx, http.MethodPatch, userPath(user.Username), user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	var group domain.Group
	if err := c.do(ctx, http.MethodGet, "/groups/"+url.PathEscape(domain.Slugify(id)), nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// createGroupRequest mirrors the backend's group creation payload.
type createGroupRequest struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

func (c *Client) CreateGroup(ctx context.Context, id, name string, usernames []string) (*domain.Group, error) {
	var created domain.Group
	req := createGroupRequest{ID: id, Name: name, Users: usernames}
	if err := c.do(ctx, http.MethodPost, "/groups", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetUserList(ctx context.Context, username string) ([]domain.ListItem, error) {
	var items []domain.ListItem
	if err := c.do(ctx, http.MethodGet, userPath(username)+"/list", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// listItemRequest mirrors the backend's item create/update payload.
type listItemRequest struct {
	Item     string `json:"item"`
	Priority int    `json:"priority"`
}

func (c *Client) CreateListItem(ctx context.Context, username, item string, priority int) (*domain.ListItem, error) {
	var created domain.ListItem
	req := listItemRequest{Item: item, Priority: priority}
	if err := c.do(ctx, http.MethodPost, userPath(username)+"/list", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateListItem(ctx context.Context, username string, itemID int64, item string, priority int) (*domain.ListItem, error) {
	var updated domain.ListItem
	req := listItemRequest{Item: item, Priority: priority}
	path := fmt.Sprintf("%s/list/%d", userPath(username), itemID)
	if err := c.do(ctx, http.MethodPatch, path, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteListItem(ctx context.Context, username string, itemID int64) error {
	path := fmt.Sprintf("%s/list/%d", userPath(username), itemID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) GetGroupSharedList(ctx context.Context, groupID string) ([]domain.SharedShoppingItem, error) {
	var cart []domain.SharedShoppingItem
	path := "/groups/" + url.PathEscape(domain.Slugify(groupID)) + "/cart"
	if err := c.do(ctx, http.MethodGet, path, nil, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (c *Client) GetFavorsFor(ctx context.Context, username string) ([]domain.Favor, error) {
	var favors []domain.Favor
	if err := c.do(ctx, http.MethodGet, userPath(username)+"/favors/for", nil, &favors); err != nil {
		return nil, err
	}
	return favors, nil
}

func (c *Client) GetFavorsBy(ctx context.Context, username string) ([]domain.Favor, error) {
	var favors []domain.Favor
	if err := c.do(ctx, http.MethodGet, userPath(username)+"/favors/by", nil, &favors); err != nil {
		return nil, err
	}
	return favors, nil
}

func (c *Client) FulfillFavor(ctx context.Context, req FulfillRequest) (*domain.Favor, error) {
	var favor domain.Favor
	if err := c.do(ctx, http.MethodPost, "/favors/fulfill", req, &favor); err != nil {
		return nil, err
	}
	return &favor, nil
}

func (c *Client) VoidFavor(ctx context.Context, favorID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/favors/%d/void", favorID), nil, nil)
}

// updateFavorRequest mirrors the backend's favor update payload.
type updateFavorRequest struct {
	Reimbursed bool             `json:"reimbursed"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

func (c *Client) UpdateFavor(ctx context.Context, favorID int64, reimbursed bool, amount *decimal.Decimal) (*domain.Favor, error) {
	var favor domain.Favor
	req := updateFavorRequest{Reimbursed: reimbursed, Amount: amount}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/favors/%d", favorID), req, &favor); err != nil {
		return nil, err
	}
	return &favor, nil
}
