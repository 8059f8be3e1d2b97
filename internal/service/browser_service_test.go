package service

import (
	"fmt"
	"testing"
	"time"

	apperrors "github.com/ecosystem-hub/internal/errors"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/storage"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBrowser(store storage.KeyValueStore, awarder PointsAwarder) *BrowserService {
	svc := NewBrowserService(store, awarder, logging.Discard())
	clock := newFixedClock(day0)
	svc.now = func() time.Time {
		clock.Advance(time.Millisecond)
		return clock.Now()
	}
	return svc
}

func TestResolveInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://helixapp.com/", "https://helixapp.com/"},
		{"ipfs://bafy", "ipfs://bafy"},
		{"  helixapp.com  ", "https://helixapp.com"},
		{"docs.injective.network/guides", "https://docs.injective.network/guides"},
		{"injective staking", SearchURLPrefix + "injective%20staking"},
		{"what is inj?", SearchURLPrefix + "what%20is%20inj%3F"},
		{"a.b c", SearchURLPrefix + "a.b%20c"},
		{"helix", SearchURLPrefix + "helix"},
		{"café & co", SearchURLPrefix + "caf%C3%A9%20%26%20co"},
		{"(it's)*!~", SearchURLPrefix + "(it's)*!~"},
	}

	for _, tt := range tests {
		got, err := ResolveInput(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ResolveInput("   ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestBrowserService_Tabs(t *testing.T) {
	svc := newTestBrowser(newTestStore(), nil)

	first := svc.ActiveTab()
	assert.Equal(t, NewTabTitle, first.Title)
	assert.Len(t, svc.Tabs(), 1)

	second := svc.AddTab()
	assert.Equal(t, second.ID, svc.ActiveTab().ID)
	assert.Len(t, svc.Tabs(), 2)

	require.NoError(t, svc.ActivateTab(first.ID))
	assert.Equal(t, first.ID, svc.ActiveTab().ID)

	require.NoError(t, svc.CloseTab(first.ID))
	assert.Equal(t, second.ID, svc.ActiveTab().ID)

	require.NoError(t, svc.CloseTab(second.ID))
	tabs := svc.Tabs()
	require.Len(t, tabs, 1)
	assert.NotEqual(t, second.ID, tabs[0].ID)
	assert.Equal(t, tabs[0].ID, svc.ActiveTab().ID)

	assert.True(t, apperrors.IsNotFound(svc.CloseTab("missing")))
	assert.True(t, apperrors.IsNotFound(svc.ActivateTab("missing")))
}

func TestBrowserService_CloseInactiveTabKeepsActive(t *testing.T) {
	svc := newTestBrowser(newTestStore(), nil)
	first := svc.ActiveTab()
	svc.AddTab()
	third := svc.AddTab()

	require.NoError(t, svc.CloseTab(first.ID))
	assert.Equal(t, third.ID, svc.ActiveTab().ID)
}

func TestBrowserService_NavigateAwardsPoints(t *testing.T) {
	ctx := testContext(t)
	awarder := &recordingAwarder{}
	svc := newTestBrowser(newTestStore(), awarder)

	tab, err := svc.Navigate(ctx, "helixapp.com")
	require.NoError(t, err)
	assert.Equal(t, "https://helixapp.com", tab.URL)
	assert.Equal(t, "https://helixapp.com", svc.ActiveTab().URL)
	assert.Equal(t, []string{"browser_navigate"}, awarder.actions())

	_, err = svc.Navigate(ctx, "")
	assert.Error(t, err)
	assert.Len(t, awarder.actions(), 1)

	assert.Empty(t, svc.History(), "history is written when the page loads")
}

func TestBrowserService_RecordVisit(t *testing.T) {
	ctx := testContext(t)
	svc := newTestBrowser(newTestStore(), nil)

	tab, err := svc.RecordVisit(ctx, "https://helixapp.com/", "Helix")
	require.NoError(t, err)
	assert.Equal(t, "Helix", tab.Title)

	history := svc.History()
	require.Len(t, history, 1)
	assert.Equal(t, "https://helixapp.com/", history[0].URL)
	assert.Equal(t, "Helix", history[0].Title)
	assert.Positive(t, history[0].Timestamp)

	_, err = svc.RecordVisit(ctx, " ", "")
	assert.True(t, apperrors.IsValidation(err))
}

func TestBrowserService_History(t *testing.T) {
	ctx := testContext(t)
	store := newTestStore()
	svc := newTestBrowser(store, nil)

	svc.AddHistory(ctx, "https://a.example", "A")
	svc.AddHistory(ctx, "https://b.example", "B")
	svc.AddHistory(ctx, "https://a.example", "A again")

	history := svc.History()
	require.Len(t, history, 2)
	assert.Equal(t, "A again", history[0].Title)
	assert.Equal(t, "https://b.example", history[1].URL)

	for i := 0; i < MaxHistoryEntries+20; i++ {
		svc.AddHistory(ctx, fmt.Sprintf("https://site%d.example", i), "")
	}
	history = svc.History()
	require.Len(t, history, MaxHistoryEntries)
	assert.Equal(t, fmt.Sprintf("https://site%d.example", MaxHistoryEntries+19), history[0].URL)

	reloaded := newTestBrowser(store, nil)
	reloaded.Load(ctx)
	assert.Equal(t, history, reloaded.History())

	svc.ClearHistory(ctx)
	assert.Empty(t, svc.History())
	reloaded.Load(ctx)
	assert.Empty(t, reloaded.History())
}

func TestBrowserService_Bookmarks(t *testing.T) {
	ctx := testContext(t)
	store := newTestStore()
	awarder := &recordingAwarder{}
	svc := newTestBrowser(store, awarder)

	added, err := svc.ToggleBookmark(ctx, "https://helixapp.com/", "Helix")
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, svc.IsBookmarked("https://helixapp.com/"))

	added, err = svc.ToggleBookmark(ctx, "https://injhub.com/", "INJHub")
	require.NoError(t, err)
	assert.True(t, added)

	assert.Equal(t, []models.Bookmark{
		{URL: "https://helixapp.com/", Title: "Helix"},
		{URL: "https://injhub.com/", Title: "INJHub"},
	}, svc.Bookmarks())

	added, err = svc.ToggleBookmark(ctx, "https://helixapp.com/", "ignored")
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, svc.IsBookmarked("https://helixapp.com/"))
	assert.Equal(t, []string{"bookmark_add", "bookmark_add"}, awarder.actions(), "only additions earn points")

	svc.RemoveBookmark(ctx, "https://injhub.com/")
	svc.RemoveBookmark(ctx, "https://not-there.example/")
	assert.Empty(t, svc.Bookmarks())

	_, err = svc.ToggleBookmark(ctx, "", "x")
	assert.True(t, apperrors.IsValidation(err))
}

func TestBrowserService_LoadToleratesCorruptLists(t *testing.T) {
	ctx := testContext(t)
	store := newTestStore()
	store.Set(ctx, storage.KeyBookmarks, "[{")
	store.Set(ctx, storage.KeyHistory, `[{"url":"https://legacy.example","title":"Legacy","timestamp":1}]`)

	svc := newTestBrowser(store, nil)
	svc.Load(ctx)

	assert.Empty(t, svc.Bookmarks())
	require.Len(t, svc.History(), 1)
	assert.Equal(t, "https://legacy.example", svc.History()[0].URL)
}

func TestBrowserService_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	ctx := testContext(t)

	urls := gen.OneConstOf("https://a.example", "https://b.example", "https://c.example", "https://d.example")

	properties.Property("history is capped, unique and most recent first", prop.ForAll(
		func(visits []string) bool {
			svc := newTestBrowser(newTestStore(), nil)
			for _, u := range visits {
				svc.AddHistory(ctx, u, "")
			}
			history := svc.History()
			if len(history) > MaxHistoryEntries {
				return false
			}
			seen := map[string]bool{}
			for _, h := range history {
				if seen[h.URL] {
					return false
				}
				seen[h.URL] = true
			}
			if len(visits) > 0 && history[0].URL != visits[len(visits)-1] {
				return false
			}
			for i := 1; i < len(history); i++ {
				if history[i-1].Timestamp < history[i].Timestamp {
					return false
				}
			}
			return true
		},
		gen.SliceOf(urls),
	))

	properties.Property("toggling a bookmark twice restores the list", prop.ForAll(
		func(existing []string, target string) bool {
			svc := newTestBrowser(newTestStore(), nil)
			for _, u := range existing {
				if !svc.IsBookmarked(u) {
					if _, err := svc.ToggleBookmark(ctx, u, u); err != nil {
						return false
					}
				}
			}
			before := svc.Bookmarks()
			if _, err := svc.ToggleBookmark(ctx, target, "t"); err != nil {
				return false
			}
			if _, err := svc.ToggleBookmark(ctx, target, "t"); err != nil {
				return false
			}
			after := svc.Bookmarks()
			if svc.IsBookmarked(target) != containsBookmark(before, target) {
				return false
			}
			if containsBookmark(before, target) {
				return len(after) == len(before)
			}
			if len(after) != len(before) {
				return false
			}
			for i := range before {
				if before[i] != after[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(urls),
		urls,
	))

	properties.Property("there is always exactly one active open tab", prop.ForAll(
		func(ops []int) bool {
			svc := newTestBrowser(newTestStore(), nil)
			for i, op := range ops {
				tabs := svc.Tabs()
				switch op {
				case 0:
					svc.AddTab()
				case 1:
					if err := svc.CloseTab(tabs[i%len(tabs)].ID); err != nil {
						return false
					}
				case 2:
					if err := svc.ActivateTab(tabs[i%len(tabs)].ID); err != nil {
						return false
					}
				}
				tabs = svc.Tabs()
				if len(tabs) < 1 {
					return false
				}
				active := svc.ActiveTab()
				found := false
				for _, tab := range tabs {
					if tab.ID == active.ID {
						found = true
					}
				}
				if !found {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}

func containsBookmark(list []models.Bookmark, url string) bool {
	for _, b := range list {
		if b.URL == url {
			return true
		}
	}
	return false
}
