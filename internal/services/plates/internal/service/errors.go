package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/serr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/store"
)

func regionNotFound(regionID string) *serr.ServiceError {
	return serr.NewServiceError(store.ErrNotFound, http.StatusNotFound, "region not found").
		WithCode(serr.CodeNotFound).
		With("region_id", regionID)
}

// accessError maps the store's access verdict onto client errors. The kind
// is decided by the sentinel, never by message text.
func accessError(err error, viewerID, ownerID string) error {
	switch {
	case errors.Is(err, store.ErrPermissionDenied):
		return serr.NewServiceError(err, http.StatusForbidden, "this data is private").
			WithCode(serr.CodePrivate).
			With("viewer_id", viewerID).
			With("owner_id", ownerID)
	case errors.Is(err, store.ErrNotFound):
		return serr.NewServiceError(err, http.StatusNotFound, "user not found").
			WithCode(serr.CodeNotFound).
			With("owner_id", ownerID)
	default:
		return fmt.Errorf("check access: %w", err)
	}
}
