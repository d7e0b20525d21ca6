package api

import (
	"errors"
	"net/http"

	"github.com/bookcatalogue/catalogue/internal/web/client"
)

// ViewState tells the presentation layer how to render a failed operation.
// Recoverable outcomes surface a correctable message against the current
// page; the rest render a dedicated error state identified by ErrorType.
type ViewState struct {
	Status      int
	ErrorType   string // "404", "500" or "503"; empty for recoverable outcomes
	Message     string
	Recoverable bool
}

// Translate maps any error coming out of the remote catalogue client (or a
// locally raised failure) to a ViewState. The switch over the error kinds
// is exhaustive; anything unanticipated renders a generic failure state
// rather than propagating.
func Translate(err error) ViewState {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return ViewState{Status: http.StatusInternalServerError, ErrorType: "500", Message: "An unexpected error occurred"}
	}

	switch apiErr.Kind {
	case client.KindNotFound:
		return ViewState{Status: http.StatusNotFound, ErrorType: "404", Message: apiErr.Message}
	case client.KindConflict:
		return ViewState{Status: http.StatusConflict, Message: apiErr.Message, Recoverable: true}
	case client.KindBadRequest:
		return ViewState{Status: http.StatusBadRequest, Message: apiErr.Message, Recoverable: true}
	case client.KindUnavailable:
		return ViewState{Status: http.StatusServiceUnavailable, ErrorType: "503", Message: apiErr.Message}
	case client.KindUpstream:
		if apiErr.Status >= http.StatusInternalServerError {
			return ViewState{Status: http.StatusInternalServerError, ErrorType: "500", Message: apiErr.Message}
		}
		return ViewState{Status: apiErr.Status, Message: apiErr.Message, Recoverable: true}
	default:
		return ViewState{Status: http.StatusInternalServerError, ErrorType: "500", Message: "An unexpected error occurred"}
	}
}
