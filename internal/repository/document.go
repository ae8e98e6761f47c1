// Package repository contains data access abstractions for the document catalogue.
// Implementations live in subpackages (e.g., postgres).
package repository

import (
	"context"

	"docinspect/internal/model"
)

// DocumentRepository defines read access to catalogued documents.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// FindByID returns a document by its ID. It returns sql.ErrNoRows when the row is missing.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents and the total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
