package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sablewing/pocketbook/pkg/domain"
)

// check it meets the interface
var _ API = &Client{}

// NewClient builds a client for the transaction service rooted at the given
// base URL (scheme + host, no path).
func NewClient(base string) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base needs scheme and host, got %q", base)
	}
	u.Path = ""

	return &Client{
		base: u,
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type Client struct {
	base *url.URL
	http *http.Client
}

func (c *Client) List(ctx context.Context, q ListQuery) (*Page, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Add("category", q.Category)
	}
	if q.Page > 0 {
		params.Add("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Add("limit", strconv.Itoa(q.Limit))
	}
	if q.UserID != 0 {
		params.Add("user_id", strconv.FormatInt(q.UserID, 10))
	}

	body, err := c.doGet(ctx, "/api/transactions", params)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	if err := json.Unmarshal(body, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	body, err := c.doGet(ctx, "/api/transactions/stats", nil)
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{}
	if err := json.Unmarshal(body, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	body, err := c.doGet(ctx, "/api/users", nil)
	if err != nil {
		return nil, err
	}

	users := []domain.User{}
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Create(ctx context.Context, d domain.Draft) (*domain.Transaction, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, "POST", "/api/transactions", nil, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}

	created := &domain.Transaction{}
	if err := json.Unmarshal(body, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) Update(ctx context.Context, t domain.Transaction) error {
	id, ok := t.ID.Remote()
	if !ok {
		return fmt.Errorf("refusing to update %v, the server has never seen it", t.ID)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	_, err = c.doRequest(ctx, "PUT", fmt.Sprintf("/api/transactions/%d", id), nil, bytes.NewBuffer(data))
	return err
}

func (c *Client) Delete(ctx context.Context, id domain.ID) error {
	n, ok := id.Remote()
	if !ok {
		return fmt.Errorf("refusing to delete %v, the server has never seen it", id)
	}

	_, err := c.doRequest(ctx, "DELETE", fmt.Sprintf("/api/transactions/%d", n), nil, nil)
	return err
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doGet(ctx, "/ping", nil)
	return err
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.doRequest(ctx, "GET", path, params, nil)
}

// doRequest performs one request and returns the body. There is deliberately
// no retry loop here: a failed direct mutation is reported to the caller, and
// queued work is retried on the next reachability edge instead.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, data io.Reader) ([]byte, error) {
	u := *c.base
	u.Path = path
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequest(method, u.String(), data)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	body := []byte{}
	if resp.Body != nil {
		defer resp.Body.Close()
		body, err = ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return body, nil
	}
	return nil, fmt.Errorf("got status code: %d (%s)", resp.StatusCode, string(body))
}
