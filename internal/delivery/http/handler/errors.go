package handler

import (
	"errors"
	"net/http"
	"strconv"

	"healthsure/internal/infrastructure/storage"
	"healthsure/pkg/response"

	"github.com/gorilla/mux"
)

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeImageError answers upload failures. It reports false when err is not
// an upload error.
func writeImageError(w http.ResponseWriter, err error) bool {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, storage.ErrImageTooLarge), errors.As(err, &maxErr):
		response.PayloadTooLarge(w, "Image is too large")
	case errors.Is(err, storage.ErrUnsupportedImage):
		response.BadRequest(w, "Only JPEG, PNG, GIF and WebP images are allowed")
	case errors.Is(err, storage.ErrEmptyImage):
		response.BadRequest(w, "Image file is empty")
	default:
		return false
	}
	return true
}
