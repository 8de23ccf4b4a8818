package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/cache"
	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/export"
	"github.com/spec-kit/membership-portal/internal/fetch"
	"github.com/spec-kit/membership-portal/internal/observability"
	"github.com/spec-kit/membership-portal/internal/scope"
	apperrors "github.com/spec-kit/membership-portal/pkg/util/errorutil"
)

// Fetch results recorded in metrics.
const (
	fetchOK         = "ok"
	fetchSuperseded = "superseded"
	fetchError      = "error"
)

// MemberService serves scoped member views.
type MemberService struct {
	source   fetch.PageSource
	registry *fetch.Registry
	resolver *scope.Resolver
	cache    *cache.SummaryCache
	pageSize int
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// MemberDependencies bundles collaborators for the member service.
type MemberDependencies struct {
	Source   fetch.PageSource
	Resolver *scope.Resolver
	Cache    *cache.SummaryCache
	PageSize int
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// MemberPage is a page of scoped members with one-based numbering. Content
// is re-filtered against the viewer's scope; the totals are the source's.
type MemberPage struct {
	Content       []domain.Member
	PageNumber    int
	TotalPages    int
	TotalElements int64
}

// StalePageError reports a failed fetch together with the last page the
// viewer successfully loaded, which stays the visible state.
type StalePageError struct {
	Page MemberPage
	Err  error
}

func (e *StalePageError) Error() string {
	return e.Err.Error()
}

func (e *StalePageError) Unwrap() error {
	return e.Err
}

// MemberSummary describes what an identity may see without the records.
type MemberSummary struct {
	Tier         string            `json:"tier"`
	Description  string            `json:"description"`
	Capabilities []auth.Capability `json:"capabilities"`
	Counts       scope.Counts      `json:"counts"`
}

// NewMemberService constructs the service.
func NewMemberService(deps MemberDependencies) *MemberService {
	if deps.PageSize <= 0 {
		deps.PageSize = 20
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &MemberService{
		source:   deps.Source,
		registry: fetch.NewRegistry(deps.Source, 0),
		resolver: deps.Resolver,
		cache:    deps.Cache,
		pageSize: deps.PageSize,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// Page fetches one display page (one-based) of the identity's members. A
// newer Page call for the same identity supersedes this one, which then
// fails with a Cancelled DomainError. When the source fails after an earlier
// page loaded, the error is a *StalePageError carrying that page.
func (s *MemberService) Page(ctx context.Context, identity domain.Identity, displayPage int) (MemberPage, error) {
	sc := scope.ForIdentity(identity)
	if sc.Tier == scope.TierNone {
		return MemberPage{Content: []domain.Member{}, PageNumber: fetch.DisplayPage(fetch.APIPage(displayPage))}, nil
	}

	orchestrator := s.registry.For(sessionKey(identity))
	page, err := orchestrator.Fetch(ctx, fetch.PageRequest{
		Page:  fetch.APIPage(displayPage),
		Size:  s.pageSize,
		Scope: sc,
	})
	if err != nil {
		mapped := s.fetchError(err)
		if apperrors.IsCancelled(mapped) {
			return MemberPage{}, mapped
		}
		if last, _, ok := orchestrator.Latest(); ok {
			return MemberPage{}, &StalePageError{Page: s.scopedPage(sc, last), Err: mapped}
		}
		return MemberPage{}, mapped
	}
	s.metrics.RecordFetch(fetchOK)
	return s.scopedPage(sc, page), nil
}

func (s *MemberService) scopedPage(sc scope.Scope, page fetch.Page) MemberPage {
	content := sc.Filter(page.Content)
	if dropped := len(page.Content) - len(content); dropped > 0 {
		s.logger.Warn("member source returned records outside scope",
			zap.String("scope", sc.Key()),
			zap.Int("dropped", dropped),
			zap.Int64("total_elements", page.TotalElements),
		)
	}
	return MemberPage{
		Content:       content,
		PageNumber:    fetch.DisplayPage(page.PageNumber),
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}
}

// Summary resolves counts and capabilities over the identity's whole scope.
func (s *MemberService) Summary(ctx context.Context, identity domain.Identity) (MemberSummary, error) {
	sc := scope.ForIdentity(identity)
	key := identity.ScopeKey()

	var cached MemberSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("scope summary cache read failed", zap.String("scope", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	members, err := s.scopedMembers(ctx, sc)
	if err != nil {
		return MemberSummary{}, err
	}
	result := s.resolver.Resolve(identity, members)
	summary := MemberSummary{
		Tier:         result.Scope.Tier.String(),
		Description:  result.Description,
		Capabilities: result.Capabilities,
		Counts:       result.Counts,
	}
	if err := s.cache.Set(ctx, key, summary); err != nil {
		s.logger.Warn("scope summary cache write failed", zap.String("scope", key), zap.Error(err))
	}
	return summary, nil
}

// Export writes every member of the identity's scope to w as CSV.
func (s *MemberService) Export(ctx context.Context, identity domain.Identity, w io.Writer) error {
	sc := scope.ForIdentity(identity)
	members, err := s.scopedMembers(ctx, sc)
	if err != nil {
		return err
	}
	if err := export.WriteMembers(w, sc.Filter(members)); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *MemberService) scopedMembers(ctx context.Context, sc scope.Scope) ([]domain.Member, error) {
	if sc.Tier == scope.TierNone {
		return nil, nil
	}
	members, err := fetch.All(ctx, s.source, sc, s.pageSize)
	if err != nil {
		return nil, s.fetchError(err)
	}
	return members, nil
}

func (s *MemberService) fetchError(err error) error {
	switch {
	case errors.Is(err, fetch.ErrSuperseded), errors.Is(err, context.Canceled):
		s.metrics.RecordFetch(fetchSuperseded)
		s.logger.Debug("member fetch superseded", zap.Error(err))
		return apperrors.NewCancelled(err)
	case errors.Is(err, fetch.ErrUpstream):
		s.metrics.RecordFetch(fetchError)
		s.logger.Warn("member source unavailable", zap.Error(err))
		return apperrors.NewTransportError(err)
	default:
		s.metrics.RecordFetch(fetchError)
		return apperrors.NewTransportError(err)
	}
}

// sessionKey names the orchestrator of one signed-in account. Identities
// without a subject fall back to their display name.
func sessionKey(identity domain.Identity) string {
	viewer := identity.Subject
	if viewer == "" {
		viewer = "name:" + identity.Name
	}
	return viewer + "|" + identity.ScopeKey()
}
