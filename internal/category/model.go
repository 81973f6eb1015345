package category

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description *string     `json:"description,omitempty"`
	ParentID    *uuid.UUID  `json:"parentId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	Children    []*Category `json:"children,omitempty"`
}
