package guard_test

import (
	"testing"

	"event-link-gateway/internal/guard"
	"event-link-gateway/internal/model"

	"github.com/stretchr/testify/assert"
)

var (
	anonymous = model.Session{}
	student   = model.Session{Token: "tok", Role: model.RoleStudent, UserID: "1"}
	organizer = model.Session{Token: "tok", Role: model.RoleOrganizer, UserID: "2"}
)

func TestOrganizerOnly(t *testing.T) {
	nav := guard.Navigation{Target: "/organizer/events"}

	t.Run("Failed - unauthenticated redirects to login", func(t *testing.T) {
		res := guard.Evaluate(anonymous, nav)
		assert.False(t, res.Allowed())
		assert.Equal(t, "/login?redirect=%2Forganizer%2Fevents", res.Location())
		assert.Equal(t, "/organizer/events", res.Query.Get("redirect"))
	})

	t.Run("Failed - student redirects to forbidden", func(t *testing.T) {
		res := guard.Evaluate(student, nav)
		assert.Equal(t, "/forbidden", res.Location())
	})

	t.Run("Success - organizer", func(t *testing.T) {
		assert.True(t, guard.Evaluate(organizer, nav).Allowed())
	})

	t.Run("Success - uses current url when known", func(t *testing.T) {
		res := guard.OrganizerOnly(anonymous, guard.Navigation{Target: "/create-event", Current: "/events/3"})
		assert.Equal(t, "/events/3", res.Query.Get("redirect"))
	})

	t.Run("Success - role from loaded profile wins", func(t *testing.T) {
		s := student
		s.User = &model.User{ID: 1, Role: model.RoleOrganizer}
		assert.True(t, guard.OrganizerOnly(s, nav).Allowed())
	})
}

func TestAuthenticated(t *testing.T) {
	t.Run("Failed - unauthenticated keeps original url with query", func(t *testing.T) {
		res := guard.Evaluate(anonymous, guard.Navigation{Target: "/my-events?x=1", Current: "/"})
		assert.Equal(t, guard.LoginPath, res.Path)
		assert.Equal(t, "/my-events?x=1", res.Query.Get("redirect"))
	})

	t.Run("Failed - role mismatch redirects home", func(t *testing.T) {
		res := guard.Evaluate(organizer, guard.Navigation{Target: "/my-events"})
		assert.Equal(t, "/", res.Location())
	})

	t.Run("Success - role match", func(t *testing.T) {
		assert.True(t, guard.Evaluate(student, guard.Navigation{Target: "/my-events"}).Allowed())
	})

	t.Run("Success - no role required", func(t *testing.T) {
		assert.True(t, guard.Evaluate(organizer, guard.Navigation{Target: "/organizer/upgrade"}).Allowed())
		assert.True(t, guard.Evaluate(student, guard.Navigation{Target: "/organizer/upgrade"}).Allowed())
	})
}

func TestPublicOnly(t *testing.T) {
	assert.True(t, guard.Evaluate(anonymous, guard.Navigation{Target: "/login"}).Allowed())
	assert.True(t, guard.Evaluate(anonymous, guard.Navigation{Target: "/register"}).Allowed())
	assert.Equal(t, "/", guard.Evaluate(student, guard.Navigation{Target: "/login"}).Location())
}

func TestPublicRoutes(t *testing.T) {
	for _, target := range []string{"/", "/events/12", "/forbidden", "/no/such/page"} {
		assert.True(t, guard.Evaluate(anonymous, guard.Navigation{Target: target}).Allowed(), target)
	}
}

func TestMatch(t *testing.T) {
	r, ok := guard.Match("/organizer/events/5/participants")
	assert.True(t, ok)
	assert.Equal(t, guard.OrganizerOnlyKind, r.Kind)

	r, ok = guard.Match("/events/5/edit/")
	assert.True(t, ok)
	assert.Equal(t, "/events/:id/edit", r.Pattern)

	_, ok = guard.Match("/events/")
	assert.False(t, ok)
}
