package usecases

import "blip.dashboard/internal/domain/entities"

// GuardAction is what a protected view should do.
type GuardAction string

const (
	GuardLoading  GuardAction = "loading"
	GuardRedirect GuardAction = "redirect"
	GuardRender   GuardAction = "render"
)

// GuardDecision is the outcome for one protected view.
type GuardDecision struct {
	Action     GuardAction          `json:"action"`
	Navigation *entities.Navigation `json:"navigation,omitempty"`
}

// RouteGuard gates protected views on the session state.
type RouteGuard struct {
	session *SessionStore
}

func NewRouteGuard(session *SessionStore) *RouteGuard {
	return &RouteGuard{session: session}
}

// Check decides for the current session.
func (g *RouteGuard) Check() GuardDecision {
	return Decide(g.session.Snapshot())
}

// Decide never redirects while the session is still loading. A linked
// wallet is not required to render.
func Decide(s entities.Session) GuardDecision {
	switch {
	case s.Loading:
		return GuardDecision{Action: GuardLoading}
	case s.User == nil:
		return GuardDecision{
			Action:     GuardRedirect,
			Navigation: &entities.Navigation{To: RouteLogin, Replace: true},
		}
	case !s.User.EmailVerified:
		return GuardDecision{
			Action: GuardRedirect,
			Navigation: &entities.Navigation{
				To:      RouteVerifyEmail,
				Replace: true,
				State:   map[string]string{"email": s.User.Email},
			},
		}
	}
	return GuardDecision{Action: GuardRender}
}
