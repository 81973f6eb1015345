package product

import "errors"

var (
	// -- Resource State --
	ErrProductNotFound = errors.New("product not found")
	ErrSKUExists       = errors.New("product with this sku already exists")
	ErrUnknownCategory = errors.New("category does not exist")

	// -- Database & Operation Failures --
	ErrFailedListProducts  = errors.New("failed to list products")
	ErrFailedCreateProduct = errors.New("failed to create product")

	// -- Constants (External Systems) --
	PgUniqueViolation     = "23505"
	PgForeignKeyViolation = "23503"
)
