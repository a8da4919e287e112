package feed

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ErrInvalidParameter marks a malformed query parameter supplied by the caller.
var ErrInvalidParameter = errors.New("invalid parameter")

func (r Request) withDefaults() Request {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	switch {
	case r.PageSize == 0:
		r.PageSize = DefaultPerPage
	case r.PageSize < 1:
		r.PageSize = 1
	case r.PageSize > MaxPerPage:
		r.PageSize = MaxPerPage
	}
	return r
}

// ParseRequest reads filters and paging from query values. Legacy names
// location, type and page_size are accepted as aliases. Non-numeric paging
// values are rejected with ErrInvalidParameter; out-of-range ones are clamped.
func ParseRequest(q url.Values) (Request, error) {
	req := Request{
		Filters: Filters{
			Severity: first(q, "severity"),
			Zone:     first(q, "zone", "location"),
			Category: first(q, "category", "type"),
		},
	}

	page, err := intParam(q, DefaultPage, "page")
	if err != nil {
		return Request{}, err
	}
	perPage, err := intParam(q, DefaultPerPage, "per_page", "page_size")
	if err != nil {
		return Request{}, err
	}

	req.Page = page
	req.PageSize = perPage
	if req.PageSize < 1 {
		req.PageSize = 1
	}
	return req.withDefaults(), nil
}

func first(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

func intParam(q url.Values, def int, keys ...string) (int, error) {
	for _, k := range keys {
		raw := strings.TrimSpace(q.Get(k))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidParameter, k, raw)
		}
		return n, nil
	}
	return def, nil
}
