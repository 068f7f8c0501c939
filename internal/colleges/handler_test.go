package colleges

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"pathfinder-backend/internal/shared/server/respond"
)

func newTestRouter(ctrl *Controller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(ctrl).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHandlerSessionSearchFlow(t *testing.T) {
	router := newTestRouter(newTestController(&fakeSource{}))

	resp := doJSON(t, router, http.MethodPost, "/api/v1/colleges/sessions", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if created.SessionID == "" || created.SelectedCity != "Hyderabad" {
		t.Fatalf("unexpected session %+v", created)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/colleges/sessions/"+created.SessionID+"/search",
		map[string]any{"state": "Telangana", "city": "Hyderabad", "page": 1})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var searched SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&searched); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(searched.Result.Items) != 1 || searched.Result.Items[0].DirectionsURL == "" {
		t.Fatalf("unexpected result %+v", searched.Result)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/colleges/sessions/"+created.SessionID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestHandlerSearchValidation(t *testing.T) {
	ctrl := newTestController(&fakeSource{})
	router := newTestRouter(ctrl)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/colleges/sessions", nil)
	var created SessionResponse
	_ = json.NewDecoder(resp.Body).Decode(&created)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/colleges/sessions/"+created.SessionID+"/search",
		map[string]any{"state": "Telangana"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Error.Code != "validation_error" || body.Error.Message != validationMessage {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestHandlerUnknownSession(t *testing.T) {
	router := newTestRouter(newTestController(&fakeSource{}))
	resp := doJSON(t, router, http.MethodGet, "/api/v1/colleges/sessions/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestHandlerSearchAbandonedByClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &fakeSource{searchFn: func(searchCtx context.Context, q Query) (RemotePage, error) {
		cancel()
		<-searchCtx.Done()
		return RemotePage{}, searchCtx.Err()
	}}
	ctrl := newTestController(src)
	router := newTestRouter(ctrl)

	sess, err := ctrl.NewSession(context.Background())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	body, _ := json.Marshal(map[string]any{"state": "Telangana", "city": "Hyderabad", "page": 1})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/colleges/sessions/"+sess.ID()+"/search", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != respond.StatusClientClosedRequest {
		t.Fatalf("expected status 499, got %d: %s", resp.Code, resp.Body.String())
	}
	if view := sess.View(); view.Degraded || len(view.Result.Items) != 0 {
		t.Fatalf("abandoned search must not commit, got %+v", view.Result)
	}
}

func TestHandlerStatelessReference(t *testing.T) {
	router := newTestRouter(newTestController(&fakeSource{}))

	resp := doJSON(t, router, http.MethodGet, "/api/v1/colleges/states", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var states struct {
		States   []string `json:"states"`
		Degraded bool     `json:"degraded"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&states)
	if len(states.States) != 2 || states.Degraded {
		t.Fatalf("unexpected states %+v", states)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/colleges/states/Goa/districts", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestHandlerLocateUsesDefault(t *testing.T) {
	router := newTestRouter(newTestController(&fakeSource{}))

	resp := doJSON(t, router, http.MethodPost, "/api/v1/colleges/sessions", nil)
	var created SessionResponse
	_ = json.NewDecoder(resp.Body).Decode(&created)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/colleges/sessions/"+created.SessionID+"/locate",
		map[string]any{"failure": "denied"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var located locateResponse
	if err := json.NewDecoder(resp.Body).Decode(&located); err != nil {
		t.Fatalf("decode locate: %v", err)
	}
	if located.State != "Telangana" || located.City != "Hyderabad" || located.Notice == "" {
		t.Fatalf("unexpected locate response %+v", located)
	}
}
