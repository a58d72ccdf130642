package guard

import (
	"net/url"
	"strings"

	"event-link-gateway/internal/model"
)

// Kind 路由使用的 guard 種類
type Kind int

const (
	Public Kind = iota
	PublicOnlyKind
	AuthenticatedKind
	OrganizerOnlyKind
)

type Route struct {
	Pattern string
	Kind    Kind
	Meta    Meta
}

// Routes 路由表，未列出的路徑一律公開
var Routes = []Route{
	{Pattern: "/", Kind: Public},
	{Pattern: "/login", Kind: PublicOnlyKind},
	{Pattern: "/register", Kind: PublicOnlyKind},
	{Pattern: "/events/:id", Kind: Public},
	{Pattern: "/events/:id/edit", Kind: OrganizerOnlyKind},
	{Pattern: "/create-event", Kind: OrganizerOnlyKind},
	{Pattern: "/organizer/events", Kind: OrganizerOnlyKind},
	{Pattern: "/organizer/events/:id/participants", Kind: OrganizerOnlyKind},
	{Pattern: "/my-events", Kind: AuthenticatedKind, Meta: Meta{Role: model.RoleStudent}},
	{Pattern: "/organizer/upgrade", Kind: AuthenticatedKind},
	{Pattern: "/forbidden", Kind: Public},
}

// Match 找出 path 對應的路由，":id" 之類的片段可對應任意非空值
func Match(path string) (Route, bool) {
	path = normalize(path)
	for _, r := range Routes {
		if matchPattern(r.Pattern, path) {
			return r, true
		}
	}
	return Route{Pattern: path, Kind: Public}, false
}

// Lookup 依 pattern 取得路由設定
func Lookup(pattern string) (Route, bool) {
	for _, r := range Routes {
		if r.Pattern == pattern {
			return r, true
		}
	}
	return Route{Pattern: pattern, Kind: Public}, false
}

// Evaluate 依目標 URL 選擇 guard 並執行
func Evaluate(session model.Session, nav Navigation) Result {
	route, _ := Match(pathOf(nav.Target))
	return route.Check(session, nav)
}

// Check 執行路由對應的 guard
func (r Route) Check(session model.Session, nav Navigation) Result {
	switch r.Kind {
	case PublicOnlyKind:
		return PublicOnly(session)
	case AuthenticatedKind:
		return Authenticated(session, r.Meta, nav)
	case OrganizerOnlyKind:
		return OrganizerOnly(session, nav)
	default:
		return Allow()
	}
}

func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func pathOf(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	return u.Path
}
