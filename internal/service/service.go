// Package service implements the catalog's business operations on top of the
// repository: validation, authorization rules, error remapping and search
// index maintenance.
package service

import (
	"errors"
	"log/slog"

	domainerrors "github.com/catalogd/catalog-server/internal/errors"
	"github.com/catalogd/catalog-server/internal/store"
	"github.com/catalogd/catalog-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// storeFailure turns an unclassified repository error into a generic Internal
// error. The engine text goes to the log, never to the caller.
func storeFailure(logger *slog.Logger, msg string, err error) error {
	logger.Error(msg, "error", err)
	return domainerrors.Internal(msg).WithCause(err)
}

// mapNotFound returns NotFound(msg) for store.ErrNotFound and storeFailure otherwise.
func mapNotFound(logger *slog.Logger, err error, notFoundMsg, failMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(notFoundMsg)
	}
	return storeFailure(logger, failMsg, err)
}
