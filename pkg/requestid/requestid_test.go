package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/enclavekit/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		supplied string
		reused   bool
	}{
		{"generates when absent", "", false},
		{"reuses valid client id", "client-id_42", true},
		{"replaces invalid id", "bad id with spaces", false},
		{"replaces oversized id", string(make([]byte, 200)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = requestid.FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.supplied != "" {
				req.Header.Set(requestid.Header, tt.supplied)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(requestid.Header))
			if tt.reused {
				assert.Equal(t, tt.supplied, seen)
			} else if tt.supplied != "" {
				assert.NotEqual(t, tt.supplied, seen)
			}
		})
	}
}

func TestFromContext_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(t.Context()))
}
