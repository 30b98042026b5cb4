package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/GunarsK-portfolio/notes-service/internal/apperror"
	"github.com/GunarsK-portfolio/notes-service/internal/cache"
	"github.com/GunarsK-portfolio/notes-service/internal/models"
	"github.com/GunarsK-portfolio/notes-service/internal/repository"
	"gorm.io/gorm"
)

// Cache TTLs per operation.
const (
	noteCacheTTL       = 30 * time.Minute
	ownerNotesCacheTTL = 15 * time.Minute
	categoriesCacheTTL = 30 * time.Minute
	countCacheTTL      = 10 * time.Minute
)

// sortColumns maps API sort field names to database columns. Anything
// not listed here is rejected before it reaches the query builder.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"priority":  "priority",
	"status":    "status",
}

// CreateNoteRequest represents the note creation payload.
type CreateNoteRequest struct {
	Title    string          `json:"title" binding:"required,max=100"`
	Content  string          `json:"content" binding:"required,max=5000"`
	Priority models.Priority `json:"priority,omitempty"`
	Category string          `json:"category,omitempty" binding:"max=50"`
}

// UpdateNoteRequest represents a partial note update. Nil fields are
// left untouched.
type UpdateNoteRequest struct {
	Title    *string          `json:"title,omitempty"`
	Content  *string          `json:"content,omitempty"`
	Priority *models.Priority `json:"priority,omitempty"`
	Status   *models.Status   `json:"status,omitempty"`
	Category *string          `json:"category,omitempty"`
}

// NoteResponse is the note representation returned to clients and
// stored in the cache.
type NoteResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Priority    models.Priority `json:"priority"`
	Status      models.Status   `json:"status"`
	Category    string          `json:"category,omitempty"`
	UserID      int64           `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// PageQuery carries pagination parameters from the HTTP layer.
type PageQuery struct {
	Page          int
	Size          int
	SortBy        string
	SortDirection string
}

// PageResponse is one page of notes plus paging metadata.
type PageResponse struct {
	Content       []NoteResponse `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"total_elements"`
	TotalPages    int            `json:"total_pages"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
	HasNext       bool           `json:"has_next"`
	HasPrevious   bool           `json:"has_previous"`
}

// NoteService mediates all note access through ownership checks and a
// cache-aside strategy. Owner-scoped operations resolve rows only via
// the compound (id, owner) lookup, so an id owned by someone else is
// indistinguishable from one that does not exist. Admin operations skip
// the ownership filter and are never cached.
type NoteService interface {
	Create(ctx context.Context, req CreateNoteRequest, owner *models.User) (*NoteResponse, error)
	GetByID(ctx context.Context, id int64, owner *models.User) (*NoteResponse, error)
	Update(ctx context.Context, id int64, req UpdateNoteRequest, owner *models.User) (*NoteResponse, error)
	Delete(ctx context.Context, id int64, owner *models.User) error
	Complete(ctx context.Context, id int64, owner *models.User) (*NoteResponse, error)
	Archive(ctx context.Context, id int64, owner *models.User) (*NoteResponse, error)
	Activate(ctx context.Context, id int64, owner *models.User) (*NoteResponse, error)

	GetAll(ctx context.Context, owner *models.User) ([]NoteResponse, error)
	List(ctx context.Context, owner *models.User, q PageQuery) (*PageResponse, error)
	ListByStatus(ctx context.Context, status models.Status, owner *models.User, q PageQuery) (*PageResponse, error)
	ListByPriority(ctx context.Context, priority models.Priority, owner *models.User, q PageQuery) (*PageResponse, error)
	ListByCategory(ctx context.Context, category string, owner *models.User, q PageQuery) (*PageResponse, error)
	Search(ctx context.Context, term string, owner *models.User, q PageQuery) (*PageResponse, error)
	GetCreatedBetween(ctx context.Context, start, end time.Time, owner *models.User) ([]NoteResponse, error)
	GetCategories(ctx context.Context, owner *models.User) ([]string, error)
	CountTotal(ctx context.Context, owner *models.User) (int64, error)
	CountByStatus(ctx context.Context, status models.Status, owner *models.User) (int64, error)

	GetAllAdmin(ctx context.Context, q PageQuery) (*PageResponse, error)
	GetByIDAdmin(ctx context.Context, id int64) (*NoteResponse, error)
	DeleteAdmin(ctx context.Context, id int64) error
	CountByPriorityAdmin(ctx context.Context, priority models.Priority) (int64, error)
}

type noteService struct {
	notes  repository.NoteRepository
	cache  *cache.Service
	logger *slog.Logger
}

// NewNoteService creates a new NoteService instance.
func NewNoteService(notes repository.NoteRepository, cacheService *cache.Service, logger *slog.Logger) NoteService {
	return &noteService{
		notes:  notes,
		cache:  cacheService,
		logger: logger,
	}
}

func (s *noteService) Create(ctx context.Context, req CreateNoteRequest, owner *models.User) (*NoteResponse, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	note := &models.Note{
		Title:    req.Title,
		Content:  req.Content,
		Priority: req.Priority,
		Status:   models.StatusActive,
		UserID:   owner.ID,
	}
	if note.Priority == "" {
		note.Priority = models.PriorityMedium
	}
	if req.Category != "" {
		category := req.Category
		note.Category = &category
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, apperror.NewDatabase("failed to create note", err)
	}
	s.logger.Info("note created", "note_id", note.ID, "user_id", owner.ID)

	resp := s.writeThrough(ctx, note)
	s.invalidateOwner(ctx, owner.ID)
	return &resp, nil
}

func (s *noteService) GetByID(ctx context.Context, id int64, owner *models.User) (*NoteResponse, error) {
	key := cache.NoteKey(id)
	var cached NoteResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("cache read failed, falling back to database", "key", key, "error", err)
	}
	// A cached entry for a note the caller does not own behaves exactly
	// like a miss whose database lookup comes back empty.
	if hit && cached.UserID == owner.ID {
		return &cached, nil
	}

	note, err := s.loadOwned(ctx, id, owner.ID)
	if err != nil {
		return nil, err
	}
	resp := s.writeThrough(ctx, note)
	return &resp, nil
}

func (s *noteService) Update(ctx context.Context, id int64, req UpdateNoteRequest, owner *models.User) (*NoteResponse, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	note, err := s.loadOwned(ctx, id, owner.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Priority != nil {
		note.Priority = *req.Priority
	}
	if req.Status != nil {
		note.Status = *req.Status
		if *req.Status == models.StatusCompleted {
			if note.CompletedAt == nil {
				now := time.Now()
				note.CompletedAt = &now
			}
		} else {
			note.CompletedAt = nil
		}
	}
	if req.Category != nil {
		if *req.Category == "" {
			note.Category = nil
		} else {
			category := *req.Category
			note.Category = &category
		}
	}

	if err := s.notes.Save(ctx, note); err != nil {
		return nil, apperror.NewDatabase("failed to update note", err)
	}
	s.logger.Info("note updated", "note_id", note.ID, "user_id", owner.ID)

	resp := s.writeThrough(ctx, note)
	s.invalidateOwner(ctx, owner.ID)
	return &resp, nil
}

func (s *noteService) Delete(ctx context.Context, id int64, owner *models.User) error {
	note, err := s.loadOwned(ctx, id, owner.ID)
	if err != nil {
		return err
	}

	if err := s.notes.Delete(ctx, note); err != nil {
		return apperror.NewDatabase("failed to delete note", err)
	}
	s.logger.Info("note deleted", "note_id", id, "user_id", owner.ID)

	if err := s.cache.Delete(ctx, cache.NoteKey(id)); err != nil {
		s.logger.Warn("cache delete failed", "note_id", id, "error", err)
	}
	s.invalidateOwner(ctx, owner.ID)
	return nil
}

func (s *noteService) Complete(ctx context.Context, id int64, owner *models.User) (*NoteResponse, error) {
	return s.transition(ctx, id, owner, models.StatusCompleted)
}

func (s *noteService) Archive(ctx context.Context, id int64, owner *models.User) (*NoteResponse, error) {
	return s.transition(ctx, id, owner, models.StatusArchived)
}

func (s *noteService) Activate(ctx context.Context, id int64, owner *models.User) (*NoteResponse, error) {
	return s.transition(ctx, id, owner, models.StatusActive)
}

// transition applies a single-field status change. COMPLETED stamps
// completed_at if it is not already set, ACTIVE clears it, ARCHIVED
// leaves it untouched. Transitions invalidate the owner's cached
// collections just like Update does.
func (s *noteService) transition(ctx context.Context, id int64, owner *models.User, status models.Status) (*NoteResponse, error) {
	note, err := s.loadOwned(ctx, id, owner.ID)
	if err != nil {
		return nil, err
	}

	note.Status = status
	switch status {
	case models.StatusCompleted:
		if note.CompletedAt == nil {
			now := time.Now()
			note.CompletedAt = &now
		}
	case models.StatusActive:
		note.CompletedAt = nil
	}

	if err := s.notes.Save(ctx, note); err != nil {
		return nil, apperror.NewDatabase("failed to update note status", err)
	}
	s.logger.Info("note status changed", "note_id", note.ID, "user_id", owner.ID, "status", status)

	resp := s.writeThrough(ctx, note)
	s.invalidateOwner(ctx, owner.ID)
	return &resp, nil
}

func (s *noteService) GetAll(ctx context.Context, owner *models.User) ([]NoteResponse, error) {
	key := cache.OwnerNotesKey(owner.ID)
	var cached []NoteResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("cache read failed, falling back to database", "key", key, "error", err)
	}
	if hit {
		return cached, nil
	}

	notes, err := s.notes.FindByOwner(ctx, owner.ID)
	if err != nil {
		return nil, apperror.NewDatabase("failed to list notes", err)
	}

	responses := toResponses(notes)
	if err := s.cache.Set(ctx, key, responses, ownerNotesCacheTTL); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return responses, nil
}

func (s *noteService) List(ctx context.Context, owner *models.User, q PageQuery) (*PageResponse, error) {
	p, err := toPagination(q)
	if err != nil {
		return nil, err
	}
	notes, total, err := s.notes.FindByOwnerPaged(ctx, owner.ID, p)
	if err != nil {
		return nil, apperror.NewDatabase("failed to list notes", err)
	}
	return buildPage(notes, total, p), nil
}

func (s *noteService) ListByStatus(ctx context.Context, status models.Status, owner *models.User, q PageQuery) (*PageResponse, error) {
	if !status.IsValid() {
		return nil, apperror.NewValidation("invalid status", map[string]string{
			"status": fmt.Sprintf("unknown status %q", status),
		})
	}
	p, err := toPagination(q)
	if err != nil {
		return nil, err
	}
	notes, total, err := s.notes.FindByStatusAndOwner(ctx, status, owner.ID, p)
	if err != nil {
		return nil, apperror.NewDatabase("failed to list notes by status", err)
	}
	return buildPage(notes, total, p), nil
}

func (s *noteService) ListByPriority(ctx context.Context, priority models.Priority, owner *models.User, q PageQuery) (*PageResponse, error) {
	if !priority.IsValid() {
		return nil, apperror.NewValidation("invalid priority", map[string]string{
			"priority": fmt.Sprintf("unknown priority %q", priority),
		})
	}
	p, err := toPagination(q)
	if err != nil {
		return nil, err
	}
	notes, total, err := s.notes.FindByPriorityAndOwner(ctx, priority, owner.ID, p)
	if err != nil {
		return nil, apperror.NewDatabase("failed to list notes by priority", err)
	}
	return buildPage(notes, total, p), nil
}

func (s *noteService) ListByCategory(ctx context.Context, category string, owner *models.User, q PageQuery) (*PageResponse, error) {
	p, err := toPagination(q)
	if err != nil {
		return nil, err
	}
	notes, total, err := s.notes.FindByCategoryAndOwner(ctx, category, owner.ID, p)
	if err != nil {
		return nil, apperror.NewDatabase("failed to list notes by category", err)
	}
	return buildPage(notes, total, p), nil
}

func (s *noteService) Search(ctx context.Context, term string, owner *models.User, q PageQuery) (*PageResponse, error) {
	if term == "" {
		return nil, apperror.NewValidation("search term is required", map[string]string{
			"q": "must not be empty",
		})
	}
	p, err := toPagination(q)
	if err != nil {
		return nil, err
	}
	notes, total, err := s.notes.SearchByOwner(ctx, term, owner.ID, p)
	if err != nil {
		return nil, apperror.NewDatabase("failed to search notes", err)
	}
	return buildPage(notes, total, p), nil
}

func (s *noteService) GetCreatedBetween(ctx context.Context, start, end time.Time, owner *models.User) ([]NoteResponse, error) {
	if end.Before(start) {
		return nil, apperror.NewValidation("invalid date range", map[string]string{
			"end": "must not be before start",
		})
	}
	notes, err := s.notes.FindCreatedBetweenAndOwner(ctx, start, end, owner.ID)
	if err != nil {
		return nil, apperror.NewDatabase("failed to list notes by date range", err)
	}
	return toResponses(notes), nil
}

func (s *noteService) GetCategories(ctx context.Context, owner *models.User) ([]string, error) {
	key := cache.OwnerCategoriesKey(owner.ID)
	var cached []string
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("cache read failed, falling back to database", "key", key, "error", err)
	}
	if hit {
		return cached, nil
	}

	categories, err := s.notes.DistinctCategoriesByOwner(ctx, owner.ID)
	if err != nil {
		return nil, apperror.NewDatabase("failed to list categories", err)
	}

	if err := s.cache.Set(ctx, key, categories, categoriesCacheTTL); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return categories, nil
}

func (s *noteService) CountTotal(ctx context.Context, owner *models.User) (int64, error) {
	key := cache.OwnerCountTotalKey(owner.ID)
	var cached int64
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("cache read failed, falling back to database", "key", key, "error", err)
	}
	if hit {
		return cached, nil
	}

	count, err := s.notes.CountByOwner(ctx, owner.ID)
	if err != nil {
		return 0, apperror.NewDatabase("failed to count notes", err)
	}

	if err := s.cache.Set(ctx, key, count, countCacheTTL); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return count, nil
}

// CountByStatus is always computed live.
func (s *noteService) CountByStatus(ctx context.Context, status models.Status, owner *models.User) (int64, error) {
	if !status.IsValid() {
		return 0, apperror.NewValidation("invalid status", map[string]string{
			"status": fmt.Sprintf("unknown status %q", status),
		})
	}
	count, err := s.notes.CountByStatusAndOwner(ctx, status, owner.ID)
	if err != nil {
		return 0, apperror.NewDatabase("failed to count notes by status", err)
	}
	return count, nil
}

func (s *noteService) GetAllAdmin(ctx context.Context, q PageQuery) (*PageResponse, error) {
	p, err := toPagination(q)
	if err != nil {
		return nil, err
	}
	notes, total, err := s.notes.FindAll(ctx, p)
	if err != nil {
		return nil, apperror.NewDatabase("failed to list notes", err)
	}
	return buildPage(notes, total, p), nil
}

func (s *noteService) GetByIDAdmin(ctx context.Context, id int64) (*NoteResponse, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound(fmt.Sprintf("note not found with id %d", id))
		}
		return nil, apperror.NewDatabase("failed to find note", err)
	}
	resp := toResponse(note)
	return &resp, nil
}

func (s *noteService) DeleteAdmin(ctx context.Context, id int64) error {
	exists, err := s.notes.ExistsByID(ctx, id)
	if err != nil {
		return apperror.NewDatabase("failed to check note", err)
	}
	if !exists {
		return apperror.NewNotFound(fmt.Sprintf("note not found with id %d", id))
	}

	if err := s.notes.DeleteByID(ctx, id); err != nil {
		return apperror.NewDatabase("failed to delete note", err)
	}
	s.logger.Info("note deleted by admin", "note_id", id)

	// Drop the per-id entry so the owner does not keep reading a deleted
	// note from cache for up to its TTL.
	if err := s.cache.Delete(ctx, cache.NoteKey(id)); err != nil {
		s.logger.Warn("cache delete failed", "note_id", id, "error", err)
	}
	return nil
}

func (s *noteService) CountByPriorityAdmin(ctx context.Context, priority models.Priority) (int64, error) {
	if !priority.IsValid() {
		return 0, apperror.NewValidation("invalid priority", map[string]string{
			"priority": fmt.Sprintf("unknown priority %q", priority),
		})
	}
	count, err := s.notes.CountByPriority(ctx, priority)
	if err != nil {
		return 0, apperror.NewDatabase("failed to count notes by priority", err)
	}
	return count, nil
}

// loadOwned resolves a note through the compound (id, owner) lookup. An
// id that exists under a different owner produces the same NotFound as
// a missing row.
func (s *noteService) loadOwned(ctx context.Context, id, ownerID int64) (*models.Note, error) {
	note, err := s.notes.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound(fmt.Sprintf("note not found with id %d", id))
		}
		return nil, apperror.NewDatabase("failed to find note", err)
	}
	return note, nil
}

// writeThrough replaces the per-id cache entry with the current row. A
// cache failure is logged and absorbed; the persistence write already
// committed and must not be rolled back.
func (s *noteService) writeThrough(ctx context.Context, note *models.Note) NoteResponse {
	resp := toResponse(note)
	key := cache.NoteKey(note.ID)
	if err := s.cache.Set(ctx, key, resp, noteCacheTTL); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return resp
}

// invalidateOwner drops the owner's cached list, categories and count so
// the next read recomputes them. Only this owner's entries are touched.
func (s *noteService) invalidateOwner(ctx context.Context, ownerID int64) {
	if err := s.cache.Delete(ctx, cache.OwnerKeys(ownerID)...); err != nil {
		s.logger.Warn("cache invalidation failed", "user_id", ownerID, "error", err)
	}
}

func validateCreate(req CreateNoteRequest) error {
	fields := map[string]string{}
	if req.Title == "" {
		fields["title"] = "title is required"
	} else if len(req.Title) > models.MaxTitleLength {
		fields["title"] = fmt.Sprintf("title must not exceed %d characters", models.MaxTitleLength)
	}
	if req.Content == "" {
		fields["content"] = "content is required"
	} else if len(req.Content) > models.MaxContentLength {
		fields["content"] = fmt.Sprintf("content must not exceed %d characters", models.MaxContentLength)
	}
	if len(req.Category) > models.MaxCategoryLength {
		fields["category"] = fmt.Sprintf("category must not exceed %d characters", models.MaxCategoryLength)
	}
	if req.Priority != "" && !req.Priority.IsValid() {
		fields["priority"] = fmt.Sprintf("unknown priority %q", req.Priority)
	}
	if len(fields) > 0 {
		return apperror.NewValidation("validation failed", fields)
	}
	return nil
}

func validateUpdate(req UpdateNoteRequest) error {
	fields := map[string]string{}
	if req.Title != nil {
		if *req.Title == "" {
			fields["title"] = "title must not be empty"
		} else if len(*req.Title) > models.MaxTitleLength {
			fields["title"] = fmt.Sprintf("title must not exceed %d characters", models.MaxTitleLength)
		}
	}
	if req.Content != nil {
		if *req.Content == "" {
			fields["content"] = "content must not be empty"
		} else if len(*req.Content) > models.MaxContentLength {
			fields["content"] = fmt.Sprintf("content must not exceed %d characters", models.MaxContentLength)
		}
	}
	if req.Category != nil && len(*req.Category) > models.MaxCategoryLength {
		fields["category"] = fmt.Sprintf("category must not exceed %d characters", models.MaxCategoryLength)
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		fields["priority"] = fmt.Sprintf("unknown priority %q", *req.Priority)
	}
	if req.Status != nil && !req.Status.IsValid() {
		fields["status"] = fmt.Sprintf("unknown status %q", *req.Status)
	}
	if len(fields) > 0 {
		return apperror.NewValidation("validation failed", fields)
	}
	return nil
}

func toPagination(q PageQuery) (repository.Pagination, error) {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 {
		q.Size = 10
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	column, ok := sortColumns[q.SortBy]
	if !ok {
		return repository.Pagination{}, apperror.NewValidation("invalid sort field", map[string]string{
			"sortBy": fmt.Sprintf("unknown sort field %q", q.SortBy),
		})
	}
	return repository.Pagination{
		Page:     q.Page,
		Size:     q.Size,
		SortBy:   column,
		SortDesc: q.SortDirection != "asc",
	}, nil
}

func toResponse(note *models.Note) NoteResponse {
	resp := NoteResponse{
		ID:          note.ID,
		Title:       note.Title,
		Content:     note.Content,
		Priority:    note.Priority,
		Status:      note.Status,
		UserID:      note.UserID,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
		CompletedAt: note.CompletedAt,
	}
	if note.Category != nil {
		resp.Category = *note.Category
	}
	return resp
}

func toResponses(notes []models.Note) []NoteResponse {
	responses := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		responses = append(responses, toResponse(&notes[i]))
	}
	return responses
}

func buildPage(notes []models.Note, total int64, p repository.Pagination) *PageResponse {
	totalPages := 0
	if p.Size > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.Size)))
	}
	return &PageResponse{
		Content:       toResponses(notes),
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         p.Page == 0,
		Last:          p.Page >= totalPages-1,
		HasNext:       p.Page < totalPages-1,
		HasPrevious:   p.Page > 0,
	}
}
