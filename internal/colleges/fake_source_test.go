package colleges

import (
	"context"
	"sync"
	"sync/atomic"

	"pathfinder-backend/internal/geo"
)

type fakeSource struct {
	statesFn    func(ctx context.Context) ([]string, error)
	districtsFn func(ctx context.Context, state string) ([]string, error)
	searchFn    func(ctx context.Context, q Query) (RemotePage, error)

	statesCalls    atomic.Int32
	districtsCalls atomic.Int32

	mu      sync.Mutex
	queries []Query
}

func (f *fakeSource) States(ctx context.Context) ([]string, error) {
	f.statesCalls.Add(1)
	if f.statesFn == nil {
		return []string{"Telangana", "Karnataka"}, nil
	}
	return f.statesFn(ctx)
}

func (f *fakeSource) Districts(ctx context.Context, state string) ([]string, error) {
	f.districtsCalls.Add(1)
	if f.districtsFn == nil {
		return []string{state + " District"}, nil
	}
	return f.districtsFn(ctx, state)
}

func (f *fakeSource) Search(ctx context.Context, q Query) (RemotePage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.searchFn == nil {
		return RemotePage{Items: []Institution{{Name: "Remote College", State: q.State, City: q.City}}, Count: 1, CurrentPage: q.Page, Pages: 1}, nil
	}
	return f.searchFn(ctx, q)
}

func (f *fakeSource) lastQuery() Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return Query{}
	}
	return f.queries[len(f.queries)-1]
}

type fakeGeocoder struct {
	addr geo.Address
	err  error
}

func (f fakeGeocoder) Reverse(ctx context.Context, lat, lon float64) (geo.Address, error) {
	return f.addr, f.err
}

func newTestController(src Source) *Controller {
	return &Controller{
		Source:   src,
		Fallback: DefaultFallback(),
		Sessions: NewMemoryRepo(0),
		PageSize: 10,
		Default:  geo.Locality{State: "Telangana", City: "Hyderabad"},
	}
}
