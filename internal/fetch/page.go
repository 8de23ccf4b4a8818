// Package fetch covers the paginated member list boundary: the page
// contract, an upstream HTTP source, and an orchestrator that lets a newer
// request supersede one still in flight.
package fetch

import (
	"context"
	"errors"

	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/scope"
)

var (
	// ErrSuperseded reports that a newer request replaced this one. Callers
	// swallow it; it is never shown to the user.
	ErrSuperseded = errors.New("fetch superseded")
	// ErrUpstream wraps failures of the external member source.
	ErrUpstream = errors.New("member source unavailable")
)

// PageRequest asks for one zero-based page of a scoped member list.
type PageRequest struct {
	Page  int
	Size  int
	Scope scope.Scope
}

// Page is one page of results. PageNumber is zero-based, as on the wire.
type Page struct {
	Content       []domain.Member
	PageNumber    int
	TotalPages    int
	TotalElements int64
}

// PageSource serves member pages.
type PageSource interface {
	FetchPage(ctx context.Context, req PageRequest) (Page, error)
}

// DisplayPage converts a zero-based API page into the one-based number users see.
func DisplayPage(apiPage int) int {
	if apiPage < 0 {
		return 1
	}
	return apiPage + 1
}

// APIPage converts a one-based display page into the zero-based API index.
func APIPage(displayPage int) int {
	if displayPage < 1 {
		return 0
	}
	return displayPage - 1
}

// TotalPages returns how many pages of size hold total elements.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// All walks every page of the source and returns the concatenated content.
func All(ctx context.Context, source PageSource, s scope.Scope, size int) ([]domain.Member, error) {
	var members []domain.Member
	for page := 0; ; page++ {
		result, err := source.FetchPage(ctx, PageRequest{Page: page, Size: size, Scope: s})
		if err != nil {
			return nil, err
		}
		members = append(members, result.Content...)
		if len(result.Content) == 0 || page+1 >= result.TotalPages {
			return members, nil
		}
	}
}
