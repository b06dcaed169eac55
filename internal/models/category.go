package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PathSeparator joins the identifier segments of a category's materialized path.
const PathSeparator = "/"

type Category struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Slug        string     `json:"slug" db:"slug"`
	Description string     `json:"description" db:"description"`
	ParentID    *uuid.UUID `json:"parent_id" db:"parent_id"`
	Level       int        `json:"level" db:"level"`
	Path        string     `json:"path" db:"path"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	Children []*Category `json:"children,omitempty" db:"-"` // For nested responses
}

// ChildPath builds the materialized path for a child of parent. A nil parent
// produces a root path consisting solely of the child's own identifier.
func ChildPath(parent *Category, id uuid.UUID) string {
	if parent == nil {
		return id.String()
	}
	return parent.Path + PathSeparator + id.String()
}

// PathSegments splits the materialized path into its identifier segments,
// ordered root first and ending with the category's own identifier.
func (c *Category) PathSegments() []string {
	if c.Path == "" {
		return nil
	}
	return strings.Split(c.Path, PathSeparator)
}

// AncestorIDs returns the identifiers of every ancestor, root first. The
// category's own trailing segment is excluded.
func (c *Category) AncestorIDs() ([]uuid.UUID, error) {
	segments := c.PathSegments()
	if len(segments) <= 1 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(segments)-1)
	for _, seg := range segments[:len(segments)-1] {
		id, err := uuid.Parse(seg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// IsDescendantOf reports whether c sits anywhere below other in the tree,
// using the strict-prefix property of materialized paths.
func (c *Category) IsDescendantOf(other *Category) bool {
	return strings.HasPrefix(c.Path, other.Path+PathSeparator)
}

// Slugify converts a category or product name into a URL-safe slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
