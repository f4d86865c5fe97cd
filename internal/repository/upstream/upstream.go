// Package upstream translates driver errors into domain errors.
package upstream

import (
	"errors"

	"github.com/kailas-cloud/searchgate/internal/db"
	"github.com/kailas-cloud/searchgate/internal/domain"
)

// Wrap maps *db.StatusError and *db.Error onto *domain.UpstreamError. Other errors pass through.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var se *db.StatusError
	if errors.As(err, &se) {
		return domain.NewUpstreamError(se.Op, se.StatusCode, se.Type, se.Reason, se.Body)
	}
	var de *db.Error
	if errors.As(err, &de) {
		return domain.NewUnavailable(de.Op, de.Err)
	}
	return err
}
