package ingestion

import "errors"

var (
	// ErrObjectRepositoryRequired is returned when an object repository is not provided.
	ErrObjectRepositoryRequired = errors.New("object repository required")

	// ErrBackendRequired is returned when a vector backend is not provided.
	ErrBackendRequired = errors.New("vector backend required")

	// ErrMissingDocumentID is returned when a loaded document has no id.
	ErrMissingDocumentID = errors.New("document is missing an id")

	// ErrMissingDocumentType is returned when a loaded document has no type.
	ErrMissingDocumentType = errors.New("document is missing a type")

	// ErrDuplicateDocumentID is returned when two documents share an id.
	ErrDuplicateDocumentID = errors.New("duplicate document id")

	// ErrUnknownRef is returned when a $ref points at no known document.
	ErrUnknownRef = errors.New("reference to unknown document")
)
