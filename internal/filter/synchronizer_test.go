package filter_test

import (
	"net/url"
	"testing"

	"event-link-gateway/internal/filter"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	calls []url.Values
}

func (r *recorder) navigate(q url.Values) {
	r.calls = append(r.calls, q)
}

func (r *recorder) last() url.Values {
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func newSync(t *testing.T, query string) (*filter.Synchronizer, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := filter.NewSynchronizer(rec.navigate)
	q, err := url.ParseQuery(query)
	assert.NoError(t, err)
	s.Sync(q)
	return s, rec
}

func TestSynchronizer_FilterChangesResetPage(t *testing.T) {
	changes := map[string]func(s *filter.Synchronizer){
		"search":    func(s *filter.Synchronizer) { s.SetSearch("rock") },
		"category":  func(s *filter.Synchronizer) { s.SetCategory("Music") },
		"dates":     func(s *filter.Synchronizer) { s.SetDateRange("2026-05-01", "") },
		"location":  func(s *filter.Synchronizer) { s.SetLocation("Cluj") },
		"page size": func(s *filter.Synchronizer) { s.ChangePageSize(20) },
		"reset":     func(s *filter.Synchronizer) { s.Reset() },
		"remove":    func(s *filter.Synchronizer) { s.RemoveTag("ai") },
	}
	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			s, rec := newSync(t, "page=4&tags=ai")
			change(s)
			assert.Equal(t, 1, s.State().Page)
			assert.Len(t, rec.calls, 1)
			assert.Empty(t, rec.last().Get("page"))
		})
	}
}

func TestSynchronizer_AddTag(t *testing.T) {
	t.Run("Success - trims and appends", func(t *testing.T) {
		s, rec := newSync(t, "page=2&tags=ai")
		s.SetTagInput("  cloud ")
		assert.True(t, s.AddTag())
		assert.Equal(t, []string{"ai", "cloud"}, s.State().Tags)
		assert.Equal(t, "", s.TagInput())
		assert.Equal(t, 1, s.State().Page)
		assert.Equal(t, "ai,cloud", rec.last().Get("tags"))
	})

	t.Run("Failed - duplicate", func(t *testing.T) {
		s, rec := newSync(t, "tags=ai")
		s.SetTagInput("ai")
		assert.False(t, s.AddTag())
		assert.Equal(t, []string{"ai"}, s.State().Tags)
		assert.Equal(t, "", s.TagInput())
		assert.Len(t, rec.calls, 1)
	})

	t.Run("Failed - empty and comma", func(t *testing.T) {
		s, _ := newSync(t, "")
		s.SetTagInput("   ")
		assert.False(t, s.AddTag())
		s.SetTagInput("a,b")
		assert.False(t, s.AddTag())
		assert.Empty(t, s.State().Tags)
	})
}

func TestSynchronizer_RemoveTag(t *testing.T) {
	s, rec := newSync(t, "tags=ai,cloud")
	s.RemoveTag("ai")
	assert.Equal(t, []string{"cloud"}, s.State().Tags)
	s.RemoveTag("cloud")
	assert.Empty(t, s.State().Tags)
	assert.Empty(t, rec.last().Get("tags"))
}

func TestSynchronizer_ChangePage(t *testing.T) {
	t.Run("Success - keeps filters", func(t *testing.T) {
		s, rec := newSync(t, "search=jazz&page=2")
		assert.True(t, s.ChangePage(1, 95))
		assert.Equal(t, "3", rec.last().Get("page"))
		assert.Equal(t, "jazz", rec.last().Get("search"))
	})

	t.Run("Failed - no navigation past end", func(t *testing.T) {
		s, rec := newSync(t, "page=10")
		assert.False(t, s.ChangePage(1, 95))
		assert.Empty(t, rec.calls)
		assert.Equal(t, 10, s.State().Page)
	})

	t.Run("Success - back to first page omits key", func(t *testing.T) {
		s, rec := newSync(t, "page=2")
		assert.True(t, s.ChangePage(-1, 95))
		assert.Empty(t, rec.last())
	})
}

func TestSynchronizer_ResetKeepsPageSize(t *testing.T) {
	s, rec := newSync(t, "search=x&category=y&page_size=25&page=3")
	s.SetTagInput("pending")
	s.Reset()
	state := s.State()
	assert.Equal(t, "", state.Search)
	assert.Equal(t, 25, state.PageSize)
	assert.Equal(t, "", s.TagInput())
	assert.Equal(t, url.Values{"page_size": {"25"}}, rec.last())
}
