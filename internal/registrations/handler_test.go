package registrations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherhq/events-api/pkg/database"
)

// unavailableStore simulates a store whose transactions keep hitting
// transient contention until the retry budget runs out.
type unavailableStore struct{ *fakeStore }

func (s unavailableStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.ErrUnavailable
}

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewService(store, nil), nil)
	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/events/:id/register", handler.Register)
	api.GET("/events/:id/attendees", handler.List)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHandlerRegister(t *testing.T) {
	t.Run("fills an event to capacity", func(t *testing.T) {
		e := testEvent(2)
		r := newTestRouter(newFakeStore(e))
		base := "/api/v1/events/" + e.ID.String() + "/register"

		w := doJSON(t, r, http.MethodPost, base, `{"name": "Jane", "email": "jane@example.com"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("first registration: expected 201, got %d: %s", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["email"] != "jane@example.com" {
			t.Fatalf("unexpected body: %v", body)
		}

		// Same email again.
		w = doJSON(t, r, http.MethodPost, base, `{"name": "Jane", "email": "jane@example.com"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("duplicate: expected 409, got %d", w.Code)
		}
		if msg := decodeBody(t, w)["message"]; msg != "You are already registered for this event with this email" {
			t.Fatalf("unexpected duplicate message: %v", msg)
		}

		w = doJSON(t, r, http.MethodPost, base, `{"name": "John", "email": "john@example.com"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("second registration: expected 201, got %d", w.Code)
		}

		// Capacity reached.
		w = doJSON(t, r, http.MethodPost, base, `{"name": "Kim", "email": "kim@example.com"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("full: expected 409, got %d", w.Code)
		}
		if msg := decodeBody(t, w)["message"]; msg != "Event is at full capacity" {
			t.Fatalf("unexpected full message: %v", msg)
		}
	})

	t.Run("renders timestamps in requested timezone", func(t *testing.T) {
		e := testEvent(5)
		r := newTestRouter(newFakeStore(e))

		w := doJSON(t, r, http.MethodPost,
			"/api/v1/events/"+e.ID.String()+"/register?tz=Asia/Kolkata",
			`{"name": "Jane", "email": "jane@example.com"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		created, _ := decodeBody(t, w)["created_at"].(string)
		if !strings.HasSuffix(created, "+05:30") {
			t.Fatalf("expected IST offset in created_at, got %q", created)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		e := testEvent(5)
		r := newTestRouter(newFakeStore(e))

		w := doJSON(t, r, http.MethodPost,
			"/api/v1/events/"+e.ID.String()+"/register",
			`{"name": "Jane", "email": "not-an-email"}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		e := testEvent(5)
		r := newTestRouter(newFakeStore(e))

		w := doJSON(t, r, http.MethodPost,
			"/api/v1/events/"+e.ID.String()+"/register",
			`{"email": "jane@example.com"}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		r := newTestRouter(newFakeStore())
		w := doJSON(t, r, http.MethodPost,
			"/api/v1/events/"+uuid.NewString()+"/register",
			`{"name": "Jane", "email": "jane@example.com"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("persistent contention maps to 503", func(t *testing.T) {
		e := testEvent(5)
		r := newTestRouter(unavailableStore{newFakeStore(e)})

		w := doJSON(t, r, http.MethodPost,
			"/api/v1/events/"+e.ID.String()+"/register",
			`{"name": "Jane", "email": "jane@example.com"}`)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
		}
		if msg := decodeBody(t, w)["message"]; msg != "temporary contention, please retry" {
			t.Fatalf("unexpected message: %v", msg)
		}
	})

	t.Run("malformed event id", func(t *testing.T) {
		r := newTestRouter(newFakeStore())
		w := doJSON(t, r, http.MethodPost, "/api/v1/events/42/register",
			`{"name": "Jane", "email": "jane@example.com"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestHandlerList(t *testing.T) {
	register := func(t *testing.T, r *gin.Engine, eventID uuid.UUID, name, email string) {
		t.Helper()
		w := doJSON(t, r, http.MethodPost,
			"/api/v1/events/"+eventID.String()+"/register",
			`{"name": "`+name+`", "email": "`+email+`"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("seed %s: got %d: %s", email, w.Code, w.Body.String())
		}
	}

	t.Run("paginated envelope with search and sort", func(t *testing.T) {
		e := testEvent(0)
		r := newTestRouter(newFakeStore(e))
		register(t, r, e.ID, "Charlie", "charlie@example.com")
		register(t, r, e.ID, "Alice Smith", "alice@example.com")
		register(t, r, e.ID, "Bob Jones", "bob@example.com")

		w := doJSON(t, r, http.MethodGet,
			"/api/v1/events/"+e.ID.String()+"/attendees?sort=name_asc", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decodeBody(t, w)
		data := body["data"].([]any)
		if len(data) != 3 {
			t.Fatalf("expected 3 attendees, got %d", len(data))
		}
		if first := data[0].(map[string]any)["name"]; first != "Alice Smith" {
			t.Fatalf("expected Alice Smith first, got %v", first)
		}
		meta := body["meta"].(map[string]any)
		if meta["total"].(float64) != 3 || meta["last_page"].(float64) != 1 {
			t.Fatalf("unexpected meta: %v", meta)
		}

		w = doJSON(t, r, http.MethodGet,
			"/api/v1/events/"+e.ID.String()+"/attendees?q=alice", "")
		body = decodeBody(t, w)
		if body["meta"].(map[string]any)["total"].(float64) != 1 {
			t.Fatalf("expected single search match, got %v", body["meta"])
		}
	})

	t.Run("pagination meta across pages", func(t *testing.T) {
		e := testEvent(0)
		r := newTestRouter(newFakeStore(e))
		for i := 0; i < 25; i++ {
			register(t, r, e.ID, "User "+string(rune('A'+i)), "user"+string(rune('a'+i))+"@example.com")
		}

		w := doJSON(t, r, http.MethodGet,
			"/api/v1/events/"+e.ID.String()+"/attendees?page=2&per_page=10", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if len(body["data"].([]any)) != 10 {
			t.Fatalf("expected 10 items on page 2")
		}
		meta := body["meta"].(map[string]any)
		if meta["current_page"].(float64) != 2 || meta["per_page"].(float64) != 10 ||
			meta["total"].(float64) != 25 || meta["last_page"].(float64) != 3 {
			t.Fatalf("unexpected meta: %v", meta)
		}
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		e := testEvent(0)
		r := newTestRouter(newFakeStore(e))
		w := doJSON(t, r, http.MethodGet, "/api/v1/events/"+e.ID.String()+"/attendees", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"data":[]`) {
			t.Fatalf("expected empty data array, got %s", w.Body.String())
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		r := newTestRouter(newFakeStore())
		w := doJSON(t, r, http.MethodGet, "/api/v1/events/"+uuid.NewString()+"/attendees", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}
