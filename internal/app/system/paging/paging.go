// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
)

// PageSize is the default number of rows returned by list endpoints.
const PageSize = 50

// MaxPageSize caps client-requested page sizes.
const MaxPageSize = 200

// Params holds normalized pagination values for Mongo Find options.
type Params struct {
	Limit  int64
	Offset int64
}

// Parse reads the "limit" and "offset" query parameters, applying the
// default page size and clamping out-of-range values.
func Parse(r *http.Request) Params {
	p := Params{Limit: PageSize}

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			if n > MaxPageSize {
				n = MaxPageSize
			}
			p.Limit = int64(n)
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.Offset = int64(n)
		}
	}
	return p
}
