// Package access decides, per route, whether a request may proceed given the
// caller's session.
package access

import (
	"strings"

	"github.com/hoadb/memberwall/internal/models"
	"github.com/hoadb/memberwall/internal/session"
)

// Route names a guarded page or action.
type Route string

const (
	RouteRoot        Route = "root"
	RouteLogin       Route = "login"
	RouteRegister    Route = "register"
	RouteLogout      Route = "logout"
	RouteHealth      Route = "health"
	RouteHome        Route = "home"
	RouteCreatePost  Route = "createPost"
	RouteAdminDelete Route = "adminDelete"
	RouteAdminUpdate Route = "adminUpdate"
	RouteDelete      Route = "delete"
	RouteUpdate      Route = "update"
	RouteDebugger    Route = "debugger"
	RouteMetrics     Route = "metrics"
	RouteSecurity    Route = "security"
	RouteUnknown     Route = ""
)

// Decision is the outcome of Authorize.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectHome
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Authorize maps a route and the caller's session (nil when anonymous) to a
// decision:
//   - login and register pages are for anonymous visitors; signed-in users go home
//   - home needs a session
//   - admin pages, user mutations, the debug toggle, metrics and the security
//     overview need an ADMIN session
//   - createPost needs a DEFAULT session
//   - root, logout and health are always allowed
//   - anything else is not found, whoever asks
func Authorize(route Route, s *session.Session) Decision {
	switch route {
	case RouteLogin, RouteRegister:
		if s != nil {
			return RedirectHome
		}
		return Allow
	case RouteRoot, RouteLogout, RouteHealth:
		return Allow
	case RouteHome:
		if s == nil {
			return RedirectLogin
		}
		return Allow
	case RouteAdminDelete, RouteAdminUpdate, RouteDelete, RouteUpdate, RouteDebugger, RouteMetrics, RouteSecurity:
		return requireRole(s, models.RoleAdmin)
	case RouteCreatePost:
		return requireRole(s, models.RoleDefault)
	default:
		return NotFound
	}
}

// AuthorizePath resolves path to a route and authorizes it.
func AuthorizePath(path string, s *session.Session) Decision {
	return Authorize(Resolve(path), s)
}

func requireRole(s *session.Session, role string) Decision {
	if s == nil {
		return RedirectLogin
	}
	if s.UserType != role {
		return RedirectHome
	}
	return Allow
}

var staticRoutes = map[string]Route{
	"/":            RouteRoot,
	"/login":       RouteLogin,
	"/register":    RouteRegister,
	"/logout":      RouteLogout,
	"/healthz":     RouteHealth,
	"/home":        RouteHome,
	"/createPost":  RouteCreatePost,
	"/adminDelete": RouteAdminDelete,
	"/adminUpdate": RouteAdminUpdate,
	"/debugger":    RouteDebugger,
	"/metrics":     RouteMetrics,
	"/security":    RouteSecurity,
}

// Resolve maps a request path to its Route. Paths of the form /delete/:id and
// /update/:id resolve to RouteDelete and RouteUpdate.
func Resolve(path string) Route {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if r, ok := staticRoutes[path]; ok {
		return r
	}
	if id, ok := strings.CutPrefix(path, "/delete/"); ok && isParam(id) {
		return RouteDelete
	}
	if id, ok := strings.CutPrefix(path, "/update/"); ok && isParam(id) {
		return RouteUpdate
	}
	return RouteUnknown
}

func isParam(s string) bool {
	return s != "" && !strings.Contains(s, "/")
}
