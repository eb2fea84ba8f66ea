package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/SiteForge/internal/adapter/memory"
	"github.com/Strob0t/SiteForge/internal/adapter/ristretto"
	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/domain/task"
	"github.com/Strob0t/SiteForge/internal/domain/template"
	"github.com/Strob0t/SiteForge/internal/middleware"
	"github.com/Strob0t/SiteForge/internal/service"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	events := memory.NewEventStore()

	cache, err := ristretto.New(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cache.Close)

	views := service.NewViewService(store, cache, time.Minute)
	generation := service.NewGenerationService(store, events, nil, nil, template.DefaultCatalog())
	generation.SetInvalidator(views)
	lifecycle := service.NewLifecycleService(store, events, nil, nil)
	lifecycle.SetInvalidator(views)
	boqSvc := service.NewBOQService(store, nil, nil)
	boqSvc.SetInvalidator(views)

	h := &Handlers{
		Generation: generation,
		Lifecycle:  lifecycle,
		Field:      service.NewFieldService(lifecycle),
		Views:      views,
		Activity:   service.NewActivityService(events),
		BOQ:        boqSvc,
	}

	r := chi.NewRouter()
	r.Use(middleware.Actor)
	MountRoutes(r, h)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "u1")
	req.Header.Set("X-Actor-Name", "Dana")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func seedItem(t *testing.T, store *memory.Store, item boq.Item) {
	t.Helper()
	if err := store.CreateBOQItem(context.Background(), &item); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	seedItem(t, store, boq.Item{ID: "boq-001", ProjectID: "p1", Name: "Keypad KP-8", Category: "Controls", Quantity: 4})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/projects/p1/generate", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	result := decode[service.SyncResult](t, resp)
	if result.Created == 0 || result.Created != result.Total {
		t.Fatalf("unexpected sync result %+v", result)
	}

	// Second run is a no-op.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/projects/p1/generate", nil)
	again := decode[service.SyncResult](t, resp)
	if again.Created != 0 || again.Skipped != result.Total {
		t.Fatalf("regeneration not idempotent: %+v", again)
	}
}

func TestListTasksEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/projects/p1/tasks", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	tasks := decode[[]task.Task](t, resp)
	if len(tasks) != 0 {
		t.Fatalf("expected empty list, got %d", len(tasks))
	}
}

func TestCreateManualTaskEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/projects/p1/tasks",
		map[string]string{"title": "Chase cable schedule"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decode[task.Task](t, resp)
	if created.CreatedFrom != task.OriginManual || created.Title != "Chase cable schedule" {
		t.Fatalf("unexpected task %+v", created)
	}

	// Missing title is rejected.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/projects/p1/tasks", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTaskCommandFlow(t *testing.T) {
	srv, store := newTestServer(t)
	tk := task.Task{ID: "t1", ProjectID: "p1", Title: "Install", Status: task.StatusNotStarted}
	if err := store.InsertTask(context.Background(), &tk); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/t1/status", map[string]string{"status": "IN_PROGRESS"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/t1/block",
		map[string]any{"is_blocked": true, "reason": "awaiting joinery"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("block: expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/t1/complete",
		map[string]any{"media_ids": []string{"media-1"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d", resp.StatusCode)
	}
	done := decode[task.Task](t, resp)
	if done.Status != task.StatusDone || done.Block.IsBlocked {
		t.Fatalf("unexpected completed task %+v", done)
	}

	// The full trail is visible in the events endpoint.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/tasks/t1/events", nil)
	events := decode[[]json.RawMessage](t, resp)
	if len(events) != 5 {
		t.Fatalf("expected 5 events (status, block, status, photo, unblock), got %d", len(events))
	}
}

func TestInvalidStatusRejected(t *testing.T) {
	srv, store := newTestServer(t)
	tk := task.Task{ID: "t1", ProjectID: "p1", Title: "Install"}
	if err := store.InsertTask(context.Background(), &tk); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/t1/status", map[string]string{"status": "SHIPPED"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTaskNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/tasks/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestFlagEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	tk := task.Task{ID: "t1", ProjectID: "p1", Title: "Install"}
	if err := store.InsertTask(context.Background(), &tk); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/t1/flag",
		map[string]any{"flagged": true, "reason": "damaged", "media_ids": []string{"media-9"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	flagged := decode[task.Task](t, resp)
	if !flagged.Flagged || len(flagged.Images) != 1 {
		t.Fatalf("unexpected task %+v", flagged)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/t1/flag", map[string]any{"flagged": false})
	cleared := decode[task.Task](t, resp)
	if cleared.Flagged || cleared.FlagReason != "" {
		t.Fatalf("flag not cleared %+v", cleared)
	}
}

func TestBOQUnitFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/projects/p1/boq",
		map[string]any{"name": "Keypad KP-8", "category": "Controls", "quantity": 2})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d", resp.StatusCode)
	}
	item := decode[boq.Item](t, resp)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/boq/"+item.ID+"/units", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ensure units: expected 200, got %d", resp.StatusCode)
	}
	withUnits := decode[boq.Item](t, resp)
	if len(withUnits.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(withUnits.Units))
	}

	resp = doJSON(t, http.MethodPost,
		srv.URL+"/api/v1/boq/"+item.ID+"/units/"+withUnits.Units[0].UnitID+"/stage",
		map[string]any{"stage": "ordered", "value": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set stage: expected 200, got %d", resp.StatusCode)
	}

	// One of two units ordered: the line's bottleneck stays at ordering.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/projects/p1/views/rollups", nil)
	rollups := decode[[]boq.Rollup](t, resp)
	if len(rollups) != 1 || rollups[0].Bottleneck != "Not Ordered" {
		t.Fatalf("unexpected rollups %+v", rollups)
	}
}

func TestViewsAndFeed(t *testing.T) {
	srv, store := newTestServer(t)
	seedItem(t, store, boq.Item{ID: "boq-001", ProjectID: "p1", Name: "Keypad", Category: "Controls", Quantity: 1})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/projects/p1/generate", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatal("generate failed")
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/projects/p1/views/stats", nil)
	stats := decode[task.Stats](t, resp)
	if stats.Total == 0 || stats.NotStarted != stats.Total {
		t.Fatalf("unexpected stats %+v", stats)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/projects/p1/activity?limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("feed: expected 200, got %d", resp.StatusCode)
	}
	page := decode[map[string]json.RawMessage](t, resp)
	if _, ok := page["events"]; !ok {
		t.Fatalf("feed page missing events: %v", page)
	}
}

func TestRoomEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/projects/p1/rooms", map[string]string{"name": "Boardroom"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	room := decode[boq.Room](t, resp)
	if room.ID == "" || room.Name != "Boardroom" {
		t.Fatalf("unexpected room %+v", room)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/projects/p1/rooms", nil)
	rooms := decode[[]boq.Room](t, resp)
	if len(rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(rooms))
	}

	// Empty name is rejected.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/projects/p1/rooms", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
