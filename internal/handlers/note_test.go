package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GunarsK-portfolio/notes-service/internal/apperror"
	"github.com/GunarsK-portfolio/notes-service/internal/models"
	"github.com/GunarsK-portfolio/notes-service/internal/service"
	"github.com/gin-gonic/gin"
)

// =============================================================================
// Mock NoteService
// =============================================================================

type mockNoteService struct {
	createFunc               func(ctx context.Context, req service.CreateNoteRequest, owner *models.User) (*service.NoteResponse, error)
	getByIDFunc              func(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error)
	updateFunc               func(ctx context.Context, id int64, req service.UpdateNoteRequest, owner *models.User) (*service.NoteResponse, error)
	deleteFunc               func(ctx context.Context, id int64, owner *models.User) error
	completeFunc             func(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error)
	archiveFunc              func(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error)
	activateFunc             func(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error)
	getAllFunc               func(ctx context.Context, owner *models.User) ([]service.NoteResponse, error)
	listFunc                 func(ctx context.Context, owner *models.User, q service.PageQuery) (*service.PageResponse, error)
	listByStatusFunc         func(ctx context.Context, status models.Status, owner *models.User, q service.PageQuery) (*service.PageResponse, error)
	listByPriorityFunc       func(ctx context.Context, priority models.Priority, owner *models.User, q service.PageQuery) (*service.PageResponse, error)
	listByCategoryFunc       func(ctx context.Context, category string, owner *models.User, q service.PageQuery) (*service.PageResponse, error)
	searchFunc               func(ctx context.Context, term string, owner *models.User, q service.PageQuery) (*service.PageResponse, error)
	getCreatedBetweenFunc    func(ctx context.Context, start, end time.Time, owner *models.User) ([]service.NoteResponse, error)
	getCategoriesFunc        func(ctx context.Context, owner *models.User) ([]string, error)
	countTotalFunc           func(ctx context.Context, owner *models.User) (int64, error)
	countByStatusFunc        func(ctx context.Context, status models.Status, owner *models.User) (int64, error)
	getAllAdminFunc          func(ctx context.Context, q service.PageQuery) (*service.PageResponse, error)
	getByIDAdminFunc         func(ctx context.Context, id int64) (*service.NoteResponse, error)
	deleteAdminFunc          func(ctx context.Context, id int64) error
	countByPriorityAdminFunc func(ctx context.Context, priority models.Priority) (int64, error)
}

func (m *mockNoteService) Create(ctx context.Context, req service.CreateNoteRequest, owner *models.User) (*service.NoteResponse, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req, owner)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) GetByID(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id, owner)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) Update(ctx context.Context, id int64, req service.UpdateNoteRequest, owner *models.User) (*service.NoteResponse, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req, owner)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) Delete(ctx context.Context, id int64, owner *models.User) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, owner)
	}
	return errors.New("not implemented")
}

func (m *mockNoteService) Complete(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, id, owner)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) Archive(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error) {
	if m.archiveFunc != nil {
		return m.archiveFunc(ctx, id, owner)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) Activate(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error) {
	if m.activateFunc != nil {
		return m.activateFunc(ctx, id, owner)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) GetAll(ctx context.Context, owner *models.User) ([]service.NoteResponse, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, owner)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) List(ctx context.Context, owner *models.User, q service.PageQuery) (*service.PageResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, owner, q)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) ListByStatus(ctx context.Context, status models.Status, owner *models.User, q service.PageQuery) (*service.PageResponse, error) {
	if m.listByStatusFunc != nil {
		return m.listByStatusFunc(ctx, status, owner, q)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) ListByPriority(ctx context.Context, priority models.Priority, owner *models.User, q service.PageQuery) (*service.PageResponse, error) {
	if m.listByPriorityFunc != nil {
		return m.listByPriorityFunc(ctx, priority, owner, q)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) ListByCategory(ctx context.Context, category string, owner *models.User, q service.PageQuery) (*service.PageResponse, error) {
	if m.listByCategoryFunc != nil {
		return m.listByCategoryFunc(ctx, category, owner, q)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) Search(ctx context.Context, term string, owner *models.User, q service.PageQuery) (*service.PageResponse, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, term, owner, q)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) GetCreatedBetween(ctx context.Context, start, end time.Time, owner *models.User) ([]service.NoteResponse, error) {
	if m.getCreatedBetweenFunc != nil {
		return m.getCreatedBetweenFunc(ctx, start, end, owner)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) GetCategories(ctx context.Context, owner *models.User) ([]string, error) {
	if m.getCategoriesFunc != nil {
		return m.getCategoriesFunc(ctx, owner)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) CountTotal(ctx context.Context, owner *models.User) (int64, error) {
	if m.countTotalFunc != nil {
		return m.countTotalFunc(ctx, owner)
	}
	return 0, errors.New("not implemented")
}

func (m *mockNoteService) CountByStatus(ctx context.Context, status models.Status, owner *models.User) (int64, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx, status, owner)
	}
	return 0, errors.New("not implemented")
}

func (m *mockNoteService) GetAllAdmin(ctx context.Context, q service.PageQuery) (*service.PageResponse, error) {
	if m.getAllAdminFunc != nil {
		return m.getAllAdminFunc(ctx, q)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) GetByIDAdmin(ctx context.Context, id int64) (*service.NoteResponse, error) {
	if m.getByIDAdminFunc != nil {
		return m.getByIDAdminFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNoteService) DeleteAdmin(ctx context.Context, id int64) error {
	if m.deleteAdminFunc != nil {
		return m.deleteAdminFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockNoteService) CountByPriorityAdmin(ctx context.Context, priority models.Priority) (int64, error) {
	if m.countByPriorityAdminFunc != nil {
		return m.countByPriorityAdminFunc(ctx, priority)
	}
	return 0, errors.New("not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

// fakeAuth injects a fixed user the way the auth middleware would.
func fakeAuth(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("auth_user", user)
		c.Next()
	}
}

func setupNoteRouter(notes *mockNoteService, user *models.User) *gin.Engine {
	handler := NewNoteHandler(notes)
	router := gin.New()

	group := router.Group("/notes")
	group.Use(fakeAuth(user))
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/all", handler.GetAll)
		group.GET("/search", handler.Search)
		group.GET("/date-range", handler.DateRange)
		group.GET("/categories", handler.Categories)
		group.GET("/status/:status", handler.ListByStatus)
		group.GET("/stats/count", handler.CountTotal)
		group.GET("/:id", handler.GetByID)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
		group.PATCH("/:id/complete", handler.Complete)
		group.PATCH("/:id/archive", handler.Archive)
		group.PATCH("/:id/activate", handler.Activate)

		admin := group.Group("/admin")
		{
			admin.GET("", handler.ListAdmin)
			admin.GET("/:id", handler.GetByIDAdmin)
			admin.DELETE("/:id", handler.DeleteAdmin)
		}
	}
	return router
}

func noteOwner() *models.User {
	return &models.User{ID: 7, Username: "owner", Role: models.RoleUser, Enabled: true}
}

func sampleResponse(id int64) *service.NoteResponse {
	return &service.NoteResponse{
		ID:       id,
		Title:    "Buy milk",
		Content:  "Half a gallon",
		Priority: models.PriorityMedium,
		Status:   models.StatusActive,
		UserID:   7,
	}
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// CRUD Tests
// =============================================================================

func TestCreateNoteHandler(t *testing.T) {
	notes := &mockNoteService{
		createFunc: func(ctx context.Context, req service.CreateNoteRequest, owner *models.User) (*service.NoteResponse, error) {
			resp := sampleResponse(101)
			resp.Title = req.Title
			return resp, nil
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	w := doRequest(router, http.MethodPost, "/notes", map[string]string{
		"title":   "Buy milk",
		"content": "Half a gallon",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestCreateNoteHandler_BindError(t *testing.T) {
	router := setupNoteRouter(&mockNoteService{}, noteOwner())

	w := doRequest(router, http.MethodPost, "/notes", map[string]string{
		"content": "body without title",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeResponse(t, w)
	if _, ok := resp.Errors["title"]; !ok {
		t.Errorf("errors = %v, want entry for title", resp.Errors)
	}
}

func TestGetNoteHandler(t *testing.T) {
	notes := &mockNoteService{
		getByIDFunc: func(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error) {
			return sampleResponse(id), nil
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	w := doRequest(router, http.MethodGet, "/notes/42", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestGetNoteHandler_InvalidID(t *testing.T) {
	router := setupNoteRouter(&mockNoteService{}, noteOwner())

	for _, path := range []string{"/notes/abc", "/notes/-1", "/notes/0"} {
		w := doRequest(router, http.MethodGet, path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want %d", path, w.Code, http.StatusBadRequest)
		}
	}
}

func TestGetNoteHandler_NotFound(t *testing.T) {
	notes := &mockNoteService{
		getByIDFunc: func(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error) {
			return nil, apperror.NewNotFound(fmt.Sprintf("note not found with id %d", id))
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	w := doRequest(router, http.MethodGet, "/notes/99", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUpdateNoteHandler(t *testing.T) {
	var gotReq service.UpdateNoteRequest
	notes := &mockNoteService{
		updateFunc: func(ctx context.Context, id int64, req service.UpdateNoteRequest, owner *models.User) (*service.NoteResponse, error) {
			gotReq = req
			return sampleResponse(id), nil
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	w := doRequest(router, http.MethodPut, "/notes/1", map[string]string{
		"title": "Buy oat milk",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotReq.Title == nil || *gotReq.Title != "Buy oat milk" {
		t.Errorf("req.Title = %v, want pointer to %q", gotReq.Title, "Buy oat milk")
	}
	if gotReq.Content != nil {
		t.Error("req.Content should stay nil when omitted from the payload")
	}
}

func TestDeleteNoteHandler(t *testing.T) {
	deleted := int64(0)
	notes := &mockNoteService{
		deleteFunc: func(ctx context.Context, id int64, owner *models.User) error {
			deleted = id
			return nil
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	w := doRequest(router, http.MethodDelete, "/notes/5", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if deleted != 5 {
		t.Errorf("deleted id = %d, want 5", deleted)
	}
}

// =============================================================================
// Transition Tests
// =============================================================================

func TestTransitionHandlers(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status models.Status
	}{
		{"complete", "/notes/1/complete", models.StatusCompleted},
		{"archive", "/notes/1/archive", models.StatusArchived},
		{"activate", "/notes/1/activate", models.StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transition := func(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error) {
				resp := sampleResponse(id)
				resp.Status = tt.status
				return resp, nil
			}
			notes := &mockNoteService{
				completeFunc: transition,
				archiveFunc:  transition,
				activateFunc: transition,
			}
			router := setupNoteRouter(notes, noteOwner())

			w := doRequest(router, http.MethodPatch, tt.path, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
			}

			var resp struct {
				Data service.NoteResponse `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Data.Status != tt.status {
				t.Errorf("status = %q, want %q", resp.Data.Status, tt.status)
			}
		})
	}
}

// =============================================================================
// List / Query Tests
// =============================================================================

func TestListNotesHandler_QueryParams(t *testing.T) {
	var gotQuery service.PageQuery
	notes := &mockNoteService{
		listFunc: func(ctx context.Context, owner *models.User, q service.PageQuery) (*service.PageResponse, error) {
			gotQuery = q
			return &service.PageResponse{Content: []service.NoteResponse{}}, nil
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	w := doRequest(router, http.MethodGet, "/notes?page=2&size=5&sortBy=title&sortDirection=asc", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	want := service.PageQuery{Page: 2, Size: 5, SortBy: "title", SortDirection: "asc"}
	if gotQuery != want {
		t.Errorf("query = %+v, want %+v", gotQuery, want)
	}
}

func TestListNotesHandler_Defaults(t *testing.T) {
	var gotQuery service.PageQuery
	notes := &mockNoteService{
		listFunc: func(ctx context.Context, owner *models.User, q service.PageQuery) (*service.PageResponse, error) {
			gotQuery = q
			return &service.PageResponse{}, nil
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	if w := doRequest(router, http.MethodGet, "/notes", nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	want := service.PageQuery{Page: 0, Size: 10, SortBy: "createdAt", SortDirection: "desc"}
	if gotQuery != want {
		t.Errorf("query = %+v, want defaults %+v", gotQuery, want)
	}
}

func TestSearchHandler_PassesTerm(t *testing.T) {
	var gotTerm string
	notes := &mockNoteService{
		searchFunc: func(ctx context.Context, term string, owner *models.User, q service.PageQuery) (*service.PageResponse, error) {
			gotTerm = term
			return &service.PageResponse{}, nil
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	if w := doRequest(router, http.MethodGet, "/notes/search?q=milk", nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotTerm != "milk" {
		t.Errorf("term = %q, want %q", gotTerm, "milk")
	}
}

func TestDateRangeHandler(t *testing.T) {
	var gotStart, gotEnd time.Time
	notes := &mockNoteService{
		getCreatedBetweenFunc: func(ctx context.Context, start, end time.Time, owner *models.User) ([]service.NoteResponse, error) {
			gotStart, gotEnd = start, end
			return []service.NoteResponse{}, nil
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	w := doRequest(router, http.MethodGet,
		"/notes/date-range?start=2026-01-01T00:00:00Z&end=2026-02-01T00:00:00Z", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if gotStart.IsZero() || gotEnd.IsZero() || !gotEnd.After(gotStart) {
		t.Errorf("parsed range = %v..%v", gotStart, gotEnd)
	}
}

func TestDateRangeHandler_BadTimestamps(t *testing.T) {
	router := setupNoteRouter(&mockNoteService{}, noteOwner())

	tests := []string{
		"/notes/date-range?start=yesterday&end=2026-02-01T00:00:00Z",
		"/notes/date-range?start=2026-01-01T00:00:00Z&end=tomorrow",
		"/notes/date-range",
	}
	for _, path := range tests {
		if w := doRequest(router, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want %d", path, w.Code, http.StatusBadRequest)
		}
	}
}

func TestCountTotalHandler(t *testing.T) {
	notes := &mockNoteService{
		countTotalFunc: func(ctx context.Context, owner *models.User) (int64, error) {
			return 12, nil
		},
	}
	router := setupNoteRouter(notes, noteOwner())

	w := doRequest(router, http.MethodGet, "/notes/stats/count", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Data struct {
			Count int64 `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Count != 12 {
		t.Errorf("count = %d, want 12", resp.Data.Count)
	}
}

// =============================================================================
// Admin Tests
// =============================================================================

func TestAdminHandlers(t *testing.T) {
	notes := &mockNoteService{
		getAllAdminFunc: func(ctx context.Context, q service.PageQuery) (*service.PageResponse, error) {
			return &service.PageResponse{TotalElements: 3}, nil
		},
		getByIDAdminFunc: func(ctx context.Context, id int64) (*service.NoteResponse, error) {
			resp := sampleResponse(id)
			resp.UserID = 99
			return resp, nil
		},
		deleteAdminFunc: func(ctx context.Context, id int64) error {
			return nil
		},
	}
	admin := &models.User{ID: 1, Username: "root", Role: models.RoleAdmin, Enabled: true}
	router := setupNoteRouter(notes, admin)

	if w := doRequest(router, http.MethodGet, "/notes/admin", nil); w.Code != http.StatusOK {
		t.Errorf("list: status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := doRequest(router, http.MethodGet, "/notes/admin/4", nil); w.Code != http.StatusOK {
		t.Errorf("get: status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := doRequest(router, http.MethodDelete, "/notes/admin/4", nil); w.Code != http.StatusOK {
		t.Errorf("delete: status = %d, want %d", w.Code, http.StatusOK)
	}
}
