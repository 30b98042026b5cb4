package cache

import (
	"fmt"
	"strings"
)

// Cache key namespaces. Keys are derived deterministically from the
// entity id or the owning user's id so that invalidation can stay scoped
// to a single owner.
const (
	noteNamespace            = "note"
	ownerNotesNamespace      = "user:notes"
	ownerCategoriesNamespace = "user:categories"
	ownerCountTotalNamespace = "user:count:total"
)

// NoteKey returns the per-id cache key for a note.
func NoteKey(noteID int64) string {
	return fmt.Sprintf("%s:%d", noteNamespace, noteID)
}

// OwnerNotesKey returns the cache key for an owner's full note list.
func OwnerNotesKey(ownerID int64) string {
	return fmt.Sprintf("%s:%d", ownerNotesNamespace, ownerID)
}

// OwnerCategoriesKey returns the cache key for an owner's distinct categories.
func OwnerCategoriesKey(ownerID int64) string {
	return fmt.Sprintf("%s:%d", ownerCategoriesNamespace, ownerID)
}

// OwnerCountTotalKey returns the cache key for an owner's total note count.
func OwnerCountTotalKey(ownerID int64) string {
	return fmt.Sprintf("%s:%d", ownerCountTotalNamespace, ownerID)
}

// OwnerKeys returns every owner-scoped collection and aggregate key for
// one owner. Mutating operations invalidate exactly this set.
func OwnerKeys(ownerID int64) []string {
	return []string{
		OwnerNotesKey(ownerID),
		OwnerCategoriesKey(ownerID),
		OwnerCountTotalKey(ownerID),
	}
}

// Namespace strips the trailing id segment from a key, leaving the
// namespace prefix used as a metrics label.
func Namespace(key string) string {
	if i := strings.LastIndex(key, ":"); i > 0 {
		return key[:i]
	}
	return key
}
