package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	appErrors "github.com/Developer-Chandan-Dev/first-sass-app-sub000/apperrors"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/storage"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	dateParamLayout = "2006-01-02"
)

type listParams struct {
	filter   storage.RecordFilter
	page     int
	pageSize int
}

func listValidateParams(params url.Values) (listParams, error) {
	out := listParams{page: 1, pageSize: defaultPageSize}

	domain := ledger.Domain(params.Get("domain"))
	if !domain.Valid() {
		return out, fmt.Errorf("unknown domain: %q", params.Get("domain"))
	}
	out.filter.Domain = domain
	out.filter.Category = params.Get("category")
	out.filter.Search = params.Get("search")

	if raw := params.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return out, fmt.Errorf("invalid page: %q", raw)
		}
		out.page = page
	}
	if raw := params.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxPageSize {
			return out, fmt.Errorf("invalid pageSize: %q, allowed range is 1..%d", raw, maxPageSize)
		}
		out.pageSize = size
	}

	if raw := params.Get("from"); raw != "" {
		from, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return out, fmt.Errorf("invalid from date: %q", raw)
		}
		out.filter.From = from
	}
	if raw := params.Get("to"); raw != "" {
		to, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return out, fmt.Errorf("invalid to date: %q", raw)
		}
		out.filter.To = to
	}
	return out, nil
}

func totalPages(totalCount, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	pages := totalCount / pageSize
	if totalCount%pageSize != 0 {
		pages++
	}
	return pages
}

func httpStatusFromError(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrNotFound):
		return 404 // not found
	case errors.Is(err, appErrors.ErrInvalidInput):
		return 400 // bad request
	case errors.Is(err, appErrors.ErrConflict):
		return 409 // conflict
	default:
		return 500 //internal error
	}
}
