package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/GunarsK-portfolio/notes-service/internal/apperror"
	"github.com/GunarsK-portfolio/notes-service/internal/middleware"
	"github.com/GunarsK-portfolio/notes-service/internal/models"
	"github.com/GunarsK-portfolio/notes-service/internal/service"
	"github.com/gin-gonic/gin"
)

// NoteHandler handles note HTTP requests.
type NoteHandler struct {
	noteService service.NoteService
}

// NewNoteHandler creates a new NoteHandler instance.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// Create godoc
// @Summary Create a note
// @Description Create a new note owned by the authenticated user
// @Tags notes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.CreateNoteRequest true "Note data"
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var req service.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	note, err := h.noteService.Create(c.Request.Context(), req, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "note created successfully", note)
}

// GetByID godoc
// @Summary Get note by ID
// @Description Retrieve one of the authenticated user's notes
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /notes/{id} [get]
func (h *NoteHandler) GetByID(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	note, err := h.noteService.GetByID(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "note retrieved successfully", note)
}

// Update godoc
// @Summary Update note
// @Description Partially update one of the authenticated user's notes
// @Tags notes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Note ID"
// @Param request body service.UpdateNoteRequest true "Fields to update"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req service.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	note, err := h.noteService.Update(c.Request.Context(), id, req, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "note updated successfully", note)
}

// Delete godoc
// @Summary Delete note
// @Description Delete one of the authenticated user's notes
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.noteService.Delete(c.Request.Context(), id, user); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "note deleted successfully", nil)
}

// Complete godoc
// @Summary Complete note
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /notes/{id}/complete [patch]
func (h *NoteHandler) Complete(c *gin.Context) {
	h.transition(c, h.noteService.Complete, "note completed successfully")
}

// Archive godoc
// @Summary Archive note
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /notes/{id}/archive [patch]
func (h *NoteHandler) Archive(c *gin.Context) {
	h.transition(c, h.noteService.Archive, "note archived successfully")
}

// Activate godoc
// @Summary Activate note
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /notes/{id}/activate [patch]
func (h *NoteHandler) Activate(c *gin.Context) {
	h.transition(c, h.noteService.Activate, "note activated successfully")
}

// List godoc
// @Summary List notes
// @Description Paginated list of the authenticated user's notes
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number (0-based)"
// @Param size query int false "Page size"
// @Param sortBy query string false "Sort field"
// @Param sortDirection query string false "Sort direction (asc or desc)"
// @Success 200 {object} APIResponse
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	page, err := h.noteService.List(c.Request.Context(), user, parsePageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "notes retrieved successfully", page)
}

// GetAll godoc
// @Summary Get all notes
// @Description Unpaginated list of the authenticated user's notes
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Success 200 {object} APIResponse
// @Router /notes/all [get]
func (h *NoteHandler) GetAll(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	notes, err := h.noteService.GetAll(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "notes retrieved successfully", notes)
}

// ListByStatus godoc
// @Summary List notes by status
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param status path string true "Status (ACTIVE, COMPLETED, ARCHIVED)"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /notes/status/{status} [get]
func (h *NoteHandler) ListByStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	status := models.Status(c.Param("status"))
	page, err := h.noteService.ListByStatus(c.Request.Context(), status, user, parsePageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "notes retrieved successfully", page)
}

// ListByPriority godoc
// @Summary List notes by priority
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param priority path string true "Priority (LOW, MEDIUM, HIGH, URGENT)"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /notes/priority/{priority} [get]
func (h *NoteHandler) ListByPriority(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	priority := models.Priority(c.Param("priority"))
	page, err := h.noteService.ListByPriority(c.Request.Context(), priority, user, parsePageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "notes retrieved successfully", page)
}

// ListByCategory godoc
// @Summary List notes by category
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} APIResponse
// @Router /notes/category/{category} [get]
func (h *NoteHandler) ListByCategory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	page, err := h.noteService.ListByCategory(c.Request.Context(), c.Param("category"), user, parsePageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "notes retrieved successfully", page)
}

// Search godoc
// @Summary Search notes
// @Description Case-insensitive substring search across title and content
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /notes/search [get]
func (h *NoteHandler) Search(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	page, err := h.noteService.Search(c.Request.Context(), c.Query("q"), user, parsePageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "notes retrieved successfully", page)
}

// DateRange godoc
// @Summary List notes by creation date range
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param start query string true "Range start (RFC 3339)"
// @Param end query string true "Range end (RFC 3339)"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /notes/date-range [get]
func (h *NoteHandler) DateRange(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "validation failed",
			Errors:  map[string]string{"start": "must be an RFC 3339 timestamp"},
		})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "validation failed",
			Errors:  map[string]string{"end": "must be an RFC 3339 timestamp"},
		})
		return
	}

	notes, err := h.noteService.GetCreatedBetween(c.Request.Context(), start, end, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "notes retrieved successfully", notes)
}

// Categories godoc
// @Summary List categories
// @Description Distinct categories used by the authenticated user
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Success 200 {object} APIResponse
// @Router /notes/categories [get]
func (h *NoteHandler) Categories(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	categories, err := h.noteService.GetCategories(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "categories retrieved successfully", categories)
}

// CountTotal godoc
// @Summary Total note count
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Success 200 {object} APIResponse
// @Router /notes/stats/count [get]
func (h *NoteHandler) CountTotal(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	count, err := h.noteService.CountTotal(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "count retrieved successfully", gin.H{"count": count})
}

// CountByStatus godoc
// @Summary Note count by status
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Param status path string true "Status"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /notes/stats/count/{status} [get]
func (h *NoteHandler) CountByStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	status := models.Status(c.Param("status"))
	count, err := h.noteService.CountByStatus(c.Request.Context(), status, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "count retrieved successfully", gin.H{"count": count})
}

// ListAdmin godoc
// @Summary List all notes (admin)
// @Description Paginated list of every user's notes
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Router /notes/admin [get]
func (h *NoteHandler) ListAdmin(c *gin.Context) {
	page, err := h.noteService.GetAllAdmin(c.Request.Context(), parsePageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "notes retrieved successfully", page)
}

// GetByIDAdmin godoc
// @Summary Get any note by ID (admin)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /notes/admin/{id} [get]
func (h *NoteHandler) GetByIDAdmin(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	note, err := h.noteService.GetByIDAdmin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "note retrieved successfully", note)
}

// DeleteAdmin godoc
// @Summary Delete any note (admin)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /notes/admin/{id} [delete]
func (h *NoteHandler) DeleteAdmin(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.noteService.DeleteAdmin(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "note deleted successfully", nil)
}

// CountByPriorityAdmin godoc
// @Summary Note count by priority across all users (admin)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param priority path string true "Priority"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Router /notes/admin/stats/priority/{priority} [get]
func (h *NoteHandler) CountByPriorityAdmin(c *gin.Context) {
	priority := models.Priority(c.Param("priority"))
	count, err := h.noteService.CountByPriorityAdmin(c.Request.Context(), priority)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "count retrieved successfully", gin.H{"count": count})
}

type transitionFunc func(ctx context.Context, id int64, owner *models.User) (*service.NoteResponse, error)

func (h *NoteHandler) transition(c *gin.Context, fn transitionFunc, message string) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	note, err := fn(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, message, note)
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidation("validation failed", map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}

func parsePageQuery(c *gin.Context) service.PageQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return service.PageQuery{
		Page:          page,
		Size:          size,
		SortBy:        c.DefaultQuery("sortBy", "createdAt"),
		SortDirection: c.DefaultQuery("sortDirection", "desc"),
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, APIResponse{
		Success: false,
		Message: "authentication required",
	})
}
