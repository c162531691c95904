package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/inventory-service/domain/product"
)

// Errors returned by the product service. Callers check them with errors.Is.
var (
	ErrNotFound     = product.ErrNotFound
	ErrConflict     = product.ErrDuplicateArticle
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("database error")
)

// classify keeps domain errors as they are and marks every other
// repository failure as ErrStorage.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

// invalid marks err as ErrInvalidInput and keeps it reachable with errors.As.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// mapServiceError converts service errors back to sentinel errors
// by checking the error message content. This is necessary because
// errors lose their type information when sent over NATS.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, ErrStorage.Error()):
		return fmt.Errorf("%w: %s", ErrStorage, err.Error())
	case strings.Contains(msg, ErrConflict.Error()):
		return ErrConflict
	case strings.Contains(msg, ErrNotFound.Error()):
		return ErrNotFound
	case strings.Contains(msg, ErrInvalidInput.Error()):
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return err
}
