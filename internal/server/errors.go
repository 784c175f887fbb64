package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-site/internal/types"
)

// ErrStorageDisabled indicates a stored-build endpoint was called without a database
var ErrStorageDisabled = errors.New("build storage is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrResolution), errors.Is(err, ErrStorageDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the text shown to clients for err. Internal details stay in the log.
func publicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusNotFound:
		if errors.Is(err, ErrStorageDisabled) {
			return ErrStorageDisabled.Error()
		}
		return "resume not found"
	default:
		return "failed to load resume"
	}
}
