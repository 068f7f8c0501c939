package colleges

import "time"

// InstitutionResponse is the outward-facing representation of a college.
type InstitutionResponse struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	City          string `json:"city"`
	AddressLine1  string `json:"addressLine1"`
	AddressLine2  string `json:"addressLine2"`
	DirectionsURL string `json:"directionsUrl"`
}

// PageResponse is one page of results.
type PageResponse struct {
	Items       []InstitutionResponse `json:"items"`
	TotalCount  int                   `json:"totalCount"`
	CurrentPage int                   `json:"currentPage"`
	TotalPages  int                   `json:"totalPages"`
}

// SessionResponse is the outward-facing representation of a search session.
type SessionResponse struct {
	SessionID     string       `json:"sessionId"`
	States        []string     `json:"states"`
	Districts     []string     `json:"districts"`
	SelectedState string       `json:"selectedState"`
	SelectedCity  string       `json:"selectedCity"`
	Query         string       `json:"query"`
	Page          int          `json:"page"`
	Result        PageResponse `json:"result"`
	Degraded      bool         `json:"degraded"`
	Message       string       `json:"message,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

type selectStateRequest struct {
	State string `json:"state"`
}

type searchRequest struct {
	State string `json:"state"`
	City  string `json:"city"`
	Query string `json:"query"`
	Page  int    `json:"page"`
}

type pageRequest struct {
	Page int `json:"page"`
}

type locateResponse struct {
	State   string          `json:"state"`
	City    string          `json:"city"`
	Notice  string          `json:"notice,omitempty"`
	Session SessionResponse `json:"session"`
}

func toPageResponse(page ResultPage) PageResponse {
	items := make([]InstitutionResponse, 0, len(page.Items))
	for _, it := range page.Items {
		items = append(items, InstitutionResponse{
			Name:          it.Name,
			State:         it.State,
			City:          it.City,
			AddressLine1:  it.AddressLine1,
			AddressLine2:  it.AddressLine2,
			DirectionsURL: it.DirectionsURL(),
		})
	}
	return PageResponse{
		Items:       items,
		TotalCount:  page.TotalCount,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
	}
}

func toSessionResponse(v SessionView) SessionResponse {
	states := v.States
	if states == nil {
		states = []string{}
	}
	return SessionResponse{
		SessionID:     v.ID,
		States:        states,
		Districts:     v.Districts,
		SelectedState: v.SelectedState,
		SelectedCity:  v.SelectedCity,
		Query:         v.Query,
		Page:          v.Page,
		Result:        toPageResponse(v.Result),
		Degraded:      v.Degraded,
		Message:       v.Message,
		UpdatedAt:     v.UpdatedAt,
	}
}
