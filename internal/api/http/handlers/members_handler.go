package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/membership-portal/internal/api/dto"
	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/clock"
	"github.com/spec-kit/membership-portal/internal/export"
	"github.com/spec-kit/membership-portal/internal/service"
	apperrors "github.com/spec-kit/membership-portal/pkg/util/errorutil"
)

// MembersHandler serves the scoped member views.
type MembersHandler struct {
	service *service.MemberService
	clock   clock.Clock
}

// NewMembersHandler constructs handler.
func NewMembersHandler(memberService *service.MemberService, clk clock.Clock) *MembersHandler {
	if clk == nil {
		clk = clock.Real()
	}
	return &MembersHandler{service: memberService, clock: clk}
}

// ListMembers GET /api/members?page=N (one-based).
func (h *MembersHandler) ListMembers(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return err
	}
	page, err := h.service.Page(c.UserContext(), identity, c.QueryInt("page", 1))
	var stale *service.StalePageError
	if errors.As(err, &stale) {
		return withLastGoodPage(stale)
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.MemberPageFromService(page))
}

// withLastGoodPage keeps the failure's code and message and attaches the
// page the viewer still has on screen.
func withLastGoodPage(stale *service.StalePageError) error {
	cause := apperrors.ToDomainError(stale.Err)
	details := make(map[string]any, len(cause.Details)+1)
	for k, v := range cause.Details {
		details[k] = v
	}
	details["lastGoodPage"] = dto.MemberPageFromService(stale.Page)
	return &apperrors.DomainError{
		Code:       cause.Code,
		Message:    cause.Message,
		HTTPStatus: cause.HTTPStatus,
		Details:    details,
		Err:        stale,
	}
}

// Summary GET /api/members/summary.
func (h *MembersHandler) Summary(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return err
	}
	summary, err := h.service.Summary(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// Export GET /api/members/export.
func (h *MembersHandler) Export(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.service.Export(c.UserContext(), identity, &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, export.FileName("members", h.clock.Now())))
	return c.Send(buf.Bytes())
}
