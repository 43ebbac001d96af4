package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestExtractParam(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want string
	}{
		{name: "Numeric line", line: "409", want: "409"},
		{name: "Line with suffix letter", line: "428X", want: "428X"},
		{name: "Line with JSON extension", line: "71T.json", want: "71T"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := httprouter.New()

			var result string
			router.HandlerFunc(http.MethodGet, "/api/lines/:line/departures", func(w http.ResponseWriter, r *http.Request) {
				result = ExtractParam(r, "line")
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/lines/"+tc.line+"/departures", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.want, result)
		})
	}
}
