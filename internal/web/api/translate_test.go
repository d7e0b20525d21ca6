package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bookcatalogue/catalogue/internal/web/client"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ViewState
	}{
		{
			name: "not found",
			err:  client.NotFound("A000000000001"),
			want: ViewState{
				Status:    http.StatusNotFound,
				ErrorType: "404",
				Message:   "book with ISBN A000000000001 not found",
			},
		},
		{
			name: "conflict is recoverable",
			err:  client.Conflict("isbn space exhausted"),
			want: ViewState{
				Status:      http.StatusConflict,
				Message:     "isbn space exhausted",
				Recoverable: true,
			},
		},
		{
			name: "bad request is recoverable",
			err:  client.BadRequest("name is required"),
			want: ViewState{
				Status:      http.StatusBadRequest,
				Message:     "name is required",
				Recoverable: true,
			},
		},
		{
			name: "unavailable",
			err:  client.Unavailable("unable to connect to the management service"),
			want: ViewState{
				Status:    http.StatusServiceUnavailable,
				ErrorType: "503",
				Message:   "unable to connect to the management service",
			},
		},
		{
			name: "upstream server error",
			err:  client.Upstream(502, "bad gateway"),
			want: ViewState{
				Status:    http.StatusInternalServerError,
				ErrorType: "500",
				Message:   "bad gateway",
			},
		},
		{
			name: "upstream non-server status stays recoverable",
			err:  client.Upstream(422, "unprocessable"),
			want: ViewState{
				Status:      422,
				Message:     "unprocessable",
				Recoverable: true,
			},
		},
		{
			name: "plain error renders the generic failure state",
			err:  errors.New("boom"),
			want: ViewState{
				Status:    http.StatusInternalServerError,
				ErrorType: "500",
				Message:   "An unexpected error occurred",
			},
		},
		{
			name: "unknown kind renders the generic failure state",
			err:  &client.APIError{Kind: client.Kind(99), Message: "mystery"},
			want: ViewState{
				Status:    http.StatusInternalServerError,
				ErrorType: "500",
				Message:   "An unexpected error occurred",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.err))
		})
	}
}
