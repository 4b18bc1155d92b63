package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/shoplist/internal/access"
	"github.com/patric-chuzhbe/shoplist/internal/db/storage"
	"github.com/patric-chuzhbe/shoplist/internal/logger"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/service"
)

var errInvalidBody = errors.New("invalid request body")

// knownErrors is walked in order, so specific errors go before the generic
// storage classes they wrap.
var knownErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
	{access.ErrForbidden, http.StatusForbidden, "you do not have access to this resource"},
	{access.ErrListNotFound, http.StatusNotFound, "shopping list not found"},
	{service.ErrItemNotFound, http.StatusNotFound, "list item not found"},
	{service.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{service.ErrParticipantNotFound, http.StatusNotFound, "participant not found"},
	{service.ErrUsernameTaken, http.StatusBadRequest, "username already taken"},
	{service.ErrEmailTaken, http.StatusBadRequest, "email already taken"},
	{service.ErrSelfShare, http.StatusBadRequest, "a list cannot be shared with its owner"},
	{service.ErrAlreadyShared, http.StatusBadRequest, "the list is already shared with this user"},
	{service.ErrNothingToUpdate, http.StatusBadRequest, "nothing to update"},
	{errInvalidBody, http.StatusBadRequest, "invalid request body"},
	{storage.ErrNotFound, http.StatusNotFound, "not found"},
	{storage.ErrConflict, http.StatusBadRequest, "conflict"},
	{storage.ErrInvalidArgument, http.StatusBadRequest, "invalid argument"},
}

func writeJSON(response http.ResponseWriter, status int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugw("Error calling the `json.NewEncoder(response).Encode()`", zap.Error(err))
	}
}

func writeMessage(response http.ResponseWriter, status int, message string) {
	writeJSON(response, status, models.MessageResponse{Message: message})
}

// writeError maps err onto a status code. Unknown errors are logged and
// reported as a bare 500 so no internals leak to the client.
func writeError(response http.ResponseWriter, request *http.Request, err error) {
	var validationErr *validationError
	if errors.As(err, &validationErr) {
		writeJSON(response, http.StatusBadRequest, models.ErrorResponse{
			Message: "validation failed",
			Errors:  validationErr.fields,
		})
		return
	}

	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			writeJSON(response, known.status, models.ErrorResponse{Message: known.message})
			return
		}
	}

	logger.FromContext(request.Context()).Errorw(
		"Unhandled error",
		"method", request.Method,
		"uri", request.RequestURI,
		zap.Error(err),
	)
	writeJSON(response, http.StatusInternalServerError, models.ErrorResponse{Message: "internal server error"})
}

// decodeBody reads a JSON object into dest and validates it.
func (router *Router) decodeBody(request *http.Request, dest any) error {
	decoder := json.NewDecoder(request.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errInvalidBody
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return invalidField(typeErr.Field, "has a wrong type")
		}
		return errInvalidBody
	}

	return router.validateStruct(dest)
}

// pathID parses a positive integer path parameter.
func pathID(request *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidField(name, "must be a positive integer")
	}

	return id, nil
}
