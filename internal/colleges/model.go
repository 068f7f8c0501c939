package colleges

import (
	"net/url"
	"strings"
)

// Institution is a single college record.
type Institution struct {
	Name         string `json:"name" yaml:"name"`
	State        string `json:"state" yaml:"state"`
	City         string `json:"city" yaml:"city"`
	AddressLine1 string `json:"addressLine1" yaml:"address_line1"`
	AddressLine2 string `json:"addressLine2" yaml:"address_line2"`
}

// DirectionsURL returns a maps search link for the institution.
func (i Institution) DirectionsURL() string {
	query := strings.Join([]string{i.Name, i.City, i.State}, ", ")
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}

// ResultPage is one page of search results.
type ResultPage struct {
	Items       []Institution `json:"items"`
	TotalCount  int           `json:"totalCount"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
}

// SearchRequest carries the inputs of a college search.
type SearchRequest struct {
	State string `json:"state"`
	City  string `json:"city"`
	Query string `json:"query"`
	Page  int    `json:"page"`
}

func (r SearchRequest) normalized() SearchRequest {
	r.State = strings.TrimSpace(r.State)
	r.City = strings.TrimSpace(r.City)
	r.Query = strings.TrimSpace(r.Query)
	if r.Page == 0 {
		r.Page = 1
	}
	return r
}

// Query is the upstream search query.
type Query struct {
	State string
	City  string
	Text  string
	Page  int
	Limit int
}

// RemotePage is a page of results as reported by the colleges API.
type RemotePage struct {
	Items       []Institution
	Count       int
	CurrentPage int
	Pages       int
}

func fallbackPage(items []Institution) ResultPage {
	if items == nil {
		items = []Institution{}
	}
	return ResultPage{
		Items:       items,
		TotalCount:  len(items),
		CurrentPage: 1,
		TotalPages:  1,
	}
}

func remoteToPage(remote RemotePage, requested int) ResultPage {
	pages := remote.Pages
	if pages < 1 {
		pages = 1
	}
	current := remote.CurrentPage
	if current < 1 {
		current = requested
	}
	if current < 1 {
		current = 1
	}
	if current > pages {
		current = pages
	}
	count := remote.Count
	if count < len(remote.Items) {
		count = len(remote.Items)
	}
	return ResultPage{
		Items:       remote.Items,
		TotalCount:  count,
		CurrentPage: current,
		TotalPages:  pages,
	}
}
