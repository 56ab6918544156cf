package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/backstage/internal/tabs"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: widgets", types.ErrTableNotFound), http.StatusNotFound},
		{tabs.ErrNotOpen, http.StatusNotFound},
		{fmt.Errorf("%w: nickname", types.ErrInvalidData), http.StatusBadRequest},
		{types.ErrInvalidStatus, http.StatusBadRequest},
		{types.ErrInvalidFilter, http.StatusBadRequest},
		{types.ErrInvalidID, http.StatusBadRequest},
		{tabs.ErrInvalidPage, http.StatusBadRequest},
		{types.ErrConsoleDetached, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestWantsMsgpack(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   bool
	}{
		{"default json", "/x", "", false},
		{"accept header", "/x", "application/msgpack", true},
		{"rt wins over header", "/x?rt=application/json", "application/msgpack", false},
		{"rt param", "/x?rt=application/msgpack", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			assert.Equal(t, tt.want, wantsMsgpack(r))
		})
	}
}
