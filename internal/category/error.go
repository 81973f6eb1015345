package category

import "errors"

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrFailedGetCategories = errors.New("failed to get categories")
)
