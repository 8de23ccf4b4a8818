package auth

import (
	"net/url"
	"strings"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// DefaultSignInPath is where unauthenticated visitors are sent.
const DefaultSignInPath = "/signin"

// AccessDeniedNotice is rendered in place of content the identity may not see.
const AccessDeniedNotice = "आपको इस पृष्ठ को देखने की अनुमति नहीं है (access denied)"

// Requirement constrains which roles may see a protected view. The zero
// value admits any authenticated identity.
type Requirement struct {
	roles []domain.Role
}

// AnyAuthenticated admits every signed-in identity.
func AnyAuthenticated() Requirement {
	return Requirement{}
}

// RequireRole admits exactly one role, in bare or namespaced form.
func RequireRole(role string) Requirement {
	return RequireAnyOf(role)
}

// RequireAnyOf admits any of the listed roles.
func RequireAnyOf(roles ...string) Requirement {
	req := Requirement{roles: make([]domain.Role, 0, len(roles))}
	for _, role := range roles {
		req.roles = append(req.roles, domain.ParseRole(role))
	}
	return req
}

// Roles returns the admitted roles; empty means any authenticated identity.
func (r Requirement) Roles() []domain.Role {
	return append([]domain.Role(nil), r.roles...)
}

// SatisfiedBy reports whether the identity's role is admitted. There is no
// inheritance: ADMIN only passes where ADMIN is listed.
func (r Requirement) SatisfiedBy(identity domain.Identity) bool {
	if len(r.roles) == 0 {
		return true
	}
	role := domain.ParseRole(string(identity.Role))
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Outcome is the render decision for a protected view.
type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeRedirect
	OutcomeDenied
	OutcomeAllowed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeDenied:
		return "denied"
	case OutcomeAllowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// Decision is the gate's verdict. RedirectTo is set only for OutcomeRedirect.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
}

// Gate decides whether a protected view renders for a session.
type Gate struct {
	signInPath string
}

// NewGate builds a gate that redirects to signInPath.
func NewGate(signInPath string) *Gate {
	if strings.TrimSpace(signInPath) == "" {
		signInPath = DefaultSignInPath
	}
	return &Gate{signInPath: signInPath}
}

// Evaluate never fails: loading and denial are ordinary outcomes.
func (g *Gate) Evaluate(session domain.Session, req Requirement, requested string) Decision {
	switch {
	case session.Loading:
		return Decision{Outcome: OutcomeLoading}
	case !session.Authenticated || session.User == nil:
		return Decision{Outcome: OutcomeRedirect, RedirectTo: g.SignInURL(requested)}
	case req.SatisfiedBy(*session.User):
		return Decision{Outcome: OutcomeAllowed}
	default:
		return Decision{Outcome: OutcomeDenied}
	}
}

// SignInURL carries the requested location so sign-in can return there.
func (g *Gate) SignInURL(requested string) string {
	if requested == "" {
		return g.signInPath
	}
	sep := "?"
	if strings.Contains(g.signInPath, "?") {
		sep = "&"
	}
	return g.signInPath + sep + "next=" + url.QueryEscape(requested)
}
