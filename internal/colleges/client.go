package colleges

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pathfinder-backend/internal/shared/apperr"
)

const serviceName = "colleges-api"

// Source is the upstream region/institution search service.
type Source interface {
	States(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, state string) ([]string, error)
	Search(ctx context.Context, q Query) (RemotePage, error)
}

// Client implements Source over the colleges REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a colleges API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("COLLEGES_API_BASE is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type remoteCollege struct {
	Name         string `json:"Name"`
	State        string `json:"State"`
	City         string `json:"City"`
	AddressLine1 string `json:"Address_line1"`
	AddressLine2 string `json:"Address_line2"`
}

type remoteSearchResponse struct {
	Colleges    []remoteCollege `json:"colleges"`
	Count       int             `json:"count"`
	CurrentPage int             `json:"currentPage"`
	Pages       int             `json:"pages"`
}

// States fetches the reference state list.
func (c *Client) States(ctx context.Context) ([]string, error) {
	var states []string
	if err := c.getJSON(ctx, "states", c.baseURL+"/states", &states); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, apperr.EmptyResult(serviceName, "states")
	}
	return states, nil
}

// Districts fetches the districts of state.
func (c *Client) Districts(ctx context.Context, state string) ([]string, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(state) + "/districts"
	var districts []string
	if err := c.getJSON(ctx, "districts", endpoint, &districts); err != nil {
		return nil, err
	}
	if len(districts) == 0 {
		return nil, apperr.EmptyResult(serviceName, "districts")
	}
	return districts, nil
}

// Search fetches one page of colleges for a state and city.
func (c *Client) Search(ctx context.Context, q Query) (RemotePage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Text != "" {
		params.Set("search", q.Text)
	}
	endpoint := c.baseURL + "/" + url.PathEscape(q.State) + "/" + url.PathEscape(q.City) + "?" + params.Encode()

	var parsed remoteSearchResponse
	if err := c.getJSON(ctx, "search", endpoint, &parsed); err != nil {
		return RemotePage{}, err
	}
	if len(parsed.Colleges) == 0 {
		return RemotePage{}, apperr.EmptyResult(serviceName, "search")
	}

	items := make([]Institution, 0, len(parsed.Colleges))
	for _, rc := range parsed.Colleges {
		items = append(items, Institution{
			Name:         rc.Name,
			State:        rc.State,
			City:         rc.City,
			AddressLine1: rc.AddressLine1,
			AddressLine2: rc.AddressLine2,
		})
	}
	return RemotePage{
		Items:       items,
		Count:       parsed.Count,
		CurrentPage: parsed.CurrentPage,
		Pages:       parsed.Pages,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperr.Transport(serviceName, op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return apperr.Transport(serviceName, op, fmt.Errorf("request timeout: %w", err))
		}
		return apperr.Transport(serviceName, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Transport(serviceName, op, err)
	}
	if resp.StatusCode >= 400 {
		return &apperr.TransportError{
			Service:    serviceName,
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        errors.New(truncate(strings.TrimSpace(string(body)), 200)),
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Transport(serviceName, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var _ Source = (*Client)(nil)
