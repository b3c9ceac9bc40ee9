package service

import (
	"errors"
	"fmt"

	"github.com/radieske/odds-cache-service/internal/odds-service/repo"
)

// Error kinds exposed to the request layer. Match them with errors.Is.
// Cache failures are never reported.
var (
	ErrNotFound            = errors.New("odds not found")
	ErrInvalidOdds         = errors.New("invalid odds")
	ErrInvalidInput        = errors.New("invalid input")
	ErrCollaboratorFailure = errors.New("store failure")
)

func notFound(id int64) error {
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// storeErr translates a store error into the service taxonomy.
func storeErr(op string, id int64, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound(id)
	}
	return fmt.Errorf("%w: %s: %w", ErrCollaboratorFailure, op, err)
}
