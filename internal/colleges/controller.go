package colleges

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pathfinder-backend/internal/geo"
	"pathfinder-backend/internal/shared/apperr"
	"pathfinder-backend/internal/shared/metrics"
	"pathfinder-backend/internal/shared/telemetry"
)

const defaultPageSize = 10

// ErrSuperseded is returned to a search whose response arrived after a newer search was issued.
var ErrSuperseded = errors.New("search superseded by a newer request")

// Location failure reasons reported by the device.
const (
	LocationDenied      = "denied"
	LocationUnavailable = "unavailable"
	LocationUnsupported = "unsupported"
)

const validationMessage = "Please select both state and city."

// Controller runs the college search flow with its fallback ladder.
type Controller struct {
	Source   Source
	Geocoder geo.ReverseGeocoder
	Fallback *Fallback
	Sessions SessionRepo
	PageSize int
	Default  geo.Locality

	now func() time.Time
}

// LocationFix is the outcome of a device geolocation attempt.
type LocationFix struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Failure   string   `json:"failure"`
}

// LocateResult describes how a location request was resolved.
type LocateResult struct {
	Locality geo.Locality `json:"locality"`
	Notice   string       `json:"notice,omitempty"`
	Page     ResultPage   `json:"page"`
}

func (c *Controller) clock() time.Time {
	if c.now != nil {
		return c.now().UTC()
	}
	return time.Now().UTC()
}

func (c *Controller) pageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return defaultPageSize
}

// NewSession creates a session seeded with the static state list, then loads the
// remote state list and, when a default state is configured, its districts.
func (c *Controller) NewSession(ctx context.Context) (*Session, error) {
	sess := newSession(uuid.NewString(), c.Fallback.StateList(), c.clock())
	if c.Sessions != nil {
		if err := c.Sessions.Put(ctx, sess); err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.LoadStates(gctx, sess)
		return nil
	})
	if c.Default.State != "" {
		g.Go(func() error {
			return c.SelectState(gctx, sess, c.Default.State)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sess, nil
}

// ResolveStates returns the remote state list, or the static list and degraded=true.
func (c *Controller) ResolveStates(ctx context.Context) ([]string, bool) {
	states, err := c.Source.States(ctx)
	if err == nil && len(states) > 0 {
		return states, false
	}
	if err == nil {
		err = apperr.EmptyResult(serviceName, "states")
	}
	metrics.IncReferenceFallback("states")
	telemetry.Warn("colleges.states.fallback", map[string]any{"error": err})
	return c.Fallback.StateList(), true
}

// ResolveDistricts returns the remote districts of state, or its static table entry (possibly empty).
func (c *Controller) ResolveDistricts(ctx context.Context, state string) ([]string, bool) {
	districts, err := c.Source.Districts(ctx, state)
	if err == nil && len(districts) > 0 {
		return districts, false
	}
	if err == nil {
		err = apperr.EmptyResult(serviceName, "districts")
	}
	metrics.IncReferenceFallback("districts")
	telemetry.Warn("colleges.districts.fallback", map[string]any{"state": state, "error": err})
	return c.Fallback.DistrictList(state), true
}

// LoadStates refreshes the session's state list. On failure the current list is
// kept and the session is flagged degraded. It never fails.
func (c *Controller) LoadStates(ctx context.Context, sess *Session) {
	states, degraded := c.ResolveStates(ctx)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if degraded {
		if len(sess.states) == 0 {
			sess.states = states
		}
		sess.degraded = true
	} else {
		sess.states = states
		sess.degraded = false
	}
	sess.updatedAt = c.clock()
}

// LoadDistricts fetches the districts of state and stores them on the session if
// state is still the selected one. It never fails.
func (c *Controller) LoadDistricts(ctx context.Context, sess *Session, state string) []string {
	districts, _ := c.ResolveDistricts(ctx, state)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.selectedState == state {
		sess.districts = append([]string{}, districts...)
		sess.updatedAt = c.clock()
	}
	return districts
}

// SelectState changes the selected state and waits for its districts to load.
// Selecting the default state pre-selects the default city.
func (c *Controller) SelectState(ctx context.Context, sess *Session, state string) error {
	state = strings.TrimSpace(state)
	if state == "" {
		return apperr.Validation("state", "state is required")
	}

	sess.mu.Lock()
	changed := sess.selectedState != state || len(sess.districts) == 0
	sess.selectedState = state
	if state == c.Default.State && c.Default.City != "" {
		sess.selectedCity = c.Default.City
	}
	sess.updatedAt = c.clock()
	sess.mu.Unlock()

	if changed {
		c.LoadDistricts(ctx, sess, state)
	}
	return nil
}

// Search runs a college search and commits the result to the session.
// Missing state or city fails with a ValidationError before any upstream call.
func (c *Controller) Search(ctx context.Context, sess *Session, req SearchRequest) (ResultPage, error) {
	req = req.normalized()

	sess.mu.Lock()
	if req.State == "" || req.City == "" {
		sess.message = validationMessage
		sess.updatedAt = c.clock()
		sess.mu.Unlock()
		return ResultPage{}, apperr.Validation("state,city", "state and city are required")
	}
	if req.Page < 1 {
		sess.mu.Unlock()
		return ResultPage{}, apperr.Validation("page", "page must be at least 1")
	}
	if sess.cancel != nil {
		sess.cancel()
	}
	sess.generation++
	token := sess.generation
	searchCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel
	sess.selectedState = req.State
	sess.selectedCity = req.City
	sess.query = req.Query
	sess.page = req.Page
	sess.message = ""
	sess.mu.Unlock()
	defer cancel()

	page, degraded, message := c.fetchPage(searchCtx, req)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if token != sess.generation {
		metrics.IncCollegeSearch(metrics.SourceSuperseded)
		return ResultPage{}, ErrSuperseded
	}
	sess.cancel = nil
	if err := ctx.Err(); err != nil {
		return ResultPage{}, err
	}
	sess.result = page
	sess.degraded = degraded
	sess.message = message
	sess.updatedAt = c.clock()
	return page, nil
}

func (c *Controller) fetchPage(ctx context.Context, req SearchRequest) (ResultPage, bool, string) {
	remote, err := c.Source.Search(ctx, Query{
		State: req.State,
		City:  req.City,
		Text:  req.Query,
		Page:  req.Page,
		Limit: c.pageSize(),
	})
	if err == nil && len(remote.Items) == 0 {
		err = apperr.EmptyResult(serviceName, "search")
	}
	if err == nil {
		metrics.IncCollegeSearch(metrics.SourceRemote)
		return remoteToPage(remote, req.Page), false, ""
	}
	if ctx.Err() != nil {
		return ResultPage{}, false, ""
	}

	items := c.Fallback.MatchColleges(req.State, req.City)
	fields := map[string]any{
		"state":   req.State,
		"city":    req.City,
		"page":    req.Page,
		"matches": len(items),
		"error":   err,
	}
	if apperr.IsEmptyResult(err) {
		metrics.IncCollegeSearch(metrics.SourceFallbackEmpty)
		telemetry.Warn("colleges.search.empty", fields)
		return fallbackPage(items), true, ""
	}
	metrics.IncCollegeSearch(metrics.SourceFallbackError)
	telemetry.Error("colleges.search.failed", fields)
	message := fmt.Sprintf("API temporarily unavailable. Showing sample data for %s, %s.", req.City, req.State)
	return fallbackPage(items), true, message
}

// ChangePage re-runs the last search for page. Pages outside [1, TotalPages]
// leave the session untouched and report changed=false.
func (c *Controller) ChangePage(ctx context.Context, sess *Session, page int) (ResultPage, bool, error) {
	sess.mu.Lock()
	current := sess.viewLocked().Result
	if page < 1 || page > sess.result.TotalPages || sess.selectedState == "" || sess.selectedCity == "" {
		sess.mu.Unlock()
		return current, false, nil
	}
	req := SearchRequest{
		State: sess.selectedState,
		City:  sess.selectedCity,
		Query: sess.query,
		Page:  page,
	}
	sess.mu.Unlock()

	result, err := c.Search(ctx, sess, req)
	if err != nil {
		return ResultPage{}, false, err
	}
	return result, true, nil
}

// UseCurrentLocation resolves a device fix to a locality (falling back to the
// default locality on any failure), loads that state's districts and then searches.
func (c *Controller) UseCurrentLocation(ctx context.Context, sess *Session, fix LocationFix) (LocateResult, error) {
	locality, notice := c.resolveLocality(ctx, fix)

	if err := c.SelectState(ctx, sess, locality.State); err != nil {
		return LocateResult{}, err
	}

	sess.mu.Lock()
	sess.selectedCity = locality.City
	query := sess.query
	sess.mu.Unlock()

	page, err := c.Search(ctx, sess, SearchRequest{State: locality.State, City: locality.City, Query: query, Page: 1})
	if err != nil {
		return LocateResult{}, err
	}

	if notice != "" {
		sess.mu.Lock()
		if sess.message == "" {
			sess.message = notice
		}
		sess.mu.Unlock()
	}
	return LocateResult{Locality: locality, Notice: notice, Page: page}, nil
}

func (c *Controller) resolveLocality(ctx context.Context, fix LocationFix) (geo.Locality, string) {
	def := c.Default
	usingDefault := fmt.Sprintf("Using default: %s, %s.", def.State, def.City)

	if reason := strings.TrimSpace(fix.Failure); reason != "" {
		if reason == LocationUnsupported {
			return def, "Geolocation is not supported. " + usingDefault
		}
		return def, fmt.Sprintf("Failed to get location: %s. %s", reason, usingDefault)
	}
	if fix.Latitude == nil || fix.Longitude == nil {
		return def, "Geolocation is not supported. " + usingDefault
	}
	if c.Geocoder == nil {
		return def, "Failed to determine location. " + usingDefault
	}

	addr, err := c.Geocoder.Reverse(ctx, *fix.Latitude, *fix.Longitude)
	if err != nil {
		telemetry.Warn("colleges.locate.geocode_failed", map[string]any{"error": err})
		return def, "Failed to determine location. " + usingDefault
	}
	return addr.Resolve(def), ""
}
