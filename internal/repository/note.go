package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/notes-service/internal/models"
	"gorm.io/gorm"
)

// Pagination carries page, size and sort order for list queries.
// Page numbering is zero-based. SortBy must be a validated column name.
type Pagination struct {
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int {
	return p.Page * p.Size
}

// Order returns the ORDER BY clause for the page.
func (p Pagination) Order() string {
	dir := "ASC"
	if p.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", p.SortBy, dir)
}

// NoteRepository defines the interface for note data operations.
//
// Owner-scoped code paths must resolve rows exclusively through the
// *AndOwner methods: a row whose id matches but whose owner does not is
// reported as gorm.ErrRecordNotFound, indistinguishable from absence.
// The unscoped FindByID/FindAll/DeleteByID accessors exist for admin
// operations only.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	Save(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, note *models.Note) error

	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Note, error)
	FindByOwner(ctx context.Context, ownerID int64) ([]models.Note, error)
	FindByOwnerPaged(ctx context.Context, ownerID int64, p Pagination) ([]models.Note, int64, error)
	FindByStatusAndOwner(ctx context.Context, status models.Status, ownerID int64, p Pagination) ([]models.Note, int64, error)
	FindByPriorityAndOwner(ctx context.Context, priority models.Priority, ownerID int64, p Pagination) ([]models.Note, int64, error)
	FindByCategoryAndOwner(ctx context.Context, category string, ownerID int64, p Pagination) ([]models.Note, int64, error)
	SearchByOwner(ctx context.Context, term string, ownerID int64, p Pagination) ([]models.Note, int64, error)
	FindCreatedBetweenAndOwner(ctx context.Context, start, end time.Time, ownerID int64) ([]models.Note, error)
	DistinctCategoriesByOwner(ctx context.Context, ownerID int64) ([]string, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
	CountByStatusAndOwner(ctx context.Context, status models.Status, ownerID int64) (int64, error)

	FindByID(ctx context.Context, id int64) (*models.Note, error)
	FindAll(ctx context.Context, p Pagination) ([]models.Note, int64, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
	CountByPriority(ctx context.Context, priority models.Priority) (int64, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new NoteRepository instance.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *noteRepository) Save(ctx context.Context, note *models.Note) error {
	if err := r.db.WithContext(ctx).Save(note).Error; err != nil {
		return fmt.Errorf("failed to save note id %d: %w", note.ID, err)
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, note *models.Note) error {
	if err := r.db.WithContext(ctx).Delete(note).Error; err != nil {
		return fmt.Errorf("failed to delete note id %d: %w", note.ID, err)
	}
	return nil
}

func (r *noteRepository) FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&note).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find note by id %d for owner %d: %w", id, ownerID, err)
	}
	return &note, nil
}

func (r *noteRepository) FindByOwner(ctx context.Context, ownerID int64) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find notes for owner %d: %w", ownerID, err)
	}
	return notes, nil
}

func (r *noteRepository) FindByOwnerPaged(ctx context.Context, ownerID int64, p Pagination) ([]models.Note, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Note{}).Where("user_id = ?", ownerID)
	return r.paginate(q, p)
}

func (r *noteRepository) FindByStatusAndOwner(ctx context.Context, status models.Status, ownerID int64, p Pagination) ([]models.Note, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("user_id = ? AND status = ?", ownerID, status)
	return r.paginate(q, p)
}

func (r *noteRepository) FindByPriorityAndOwner(ctx context.Context, priority models.Priority, ownerID int64, p Pagination) ([]models.Note, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("user_id = ? AND priority = ?", ownerID, priority)
	return r.paginate(q, p)
}

func (r *noteRepository) FindByCategoryAndOwner(ctx context.Context, category string, ownerID int64, p Pagination) ([]models.Note, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("user_id = ? AND category = ?", ownerID, category)
	return r.paginate(q, p)
}

func (r *noteRepository) SearchByOwner(ctx context.Context, term string, ownerID int64, p Pagination) ([]models.Note, int64, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	q := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("user_id = ? AND (LOWER(title) LIKE ? OR LOWER(content) LIKE ?)", ownerID, pattern, pattern)
	return r.paginate(q, p)
}

func (r *noteRepository) FindCreatedBetweenAndOwner(ctx context.Context, start, end time.Time, ownerID int64) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at BETWEEN ? AND ?", ownerID, start, end).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find notes created between %s and %s for owner %d: %w",
			start.Format(time.RFC3339), end.Format(time.RFC3339), ownerID, err)
	}
	return notes, nil
}

func (r *noteRepository) DistinctCategoriesByOwner(ctx context.Context, ownerID int64) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("user_id = ? AND category IS NOT NULL", ownerID).
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find categories for owner %d: %w", ownerID, err)
	}
	return categories, nil
}

func (r *noteRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("user_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notes for owner %d: %w", ownerID, err)
	}
	return count, nil
}

func (r *noteRepository) CountByStatusAndOwner(ctx context.Context, status models.Status, ownerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("user_id = ? AND status = ?", ownerID, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notes by status %s for owner %d: %w", status, ownerID, err)
	}
	return count, nil
}

func (r *noteRepository) FindByID(ctx context.Context, id int64) (*models.Note, error) {
	var note models.Note
	if err := r.db.WithContext(ctx).First(&note, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find note by id %d: %w", id, err)
	}
	return &note, nil
}

func (r *noteRepository) FindAll(ctx context.Context, p Pagination) ([]models.Note, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Note{})
	return r.paginate(q, p)
}

func (r *noteRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Note{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check note id %d: %w", id, err)
	}
	return count > 0, nil
}

func (r *noteRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Note{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete note id %d: %w", id, err)
	}
	return nil
}

func (r *noteRepository) CountByPriority(ctx context.Context, priority models.Priority) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("priority = ?", priority).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notes by priority %s: %w", priority, err)
	}
	return count, nil
}

func (r *noteRepository) paginate(q *gorm.DB, p Pagination) ([]models.Note, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	var notes []models.Note
	err := q.Order(p.Order()).
		Offset(p.Offset()).
		Limit(p.Size).
		Find(&notes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, total, nil
}
