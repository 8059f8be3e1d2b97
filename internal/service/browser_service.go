package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ecosystem-hub/internal/errors"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/storage"
	"github.com/ecosystem-hub/internal/types"
	"github.com/google/uuid"
)

const (
	// MaxHistoryEntries caps the visit history
	MaxHistoryEntries = 100
	// NewTabTitle is the title of a blank tab
	NewTabTitle = "New Tab"
	// SearchURLPrefix turns free text into a search
	SearchURLPrefix = "https://www.google.com/search?q="
)

var quickLinks = []models.QuickLink{
	{Name: "Helix", URL: "https://helixapp.com/", Icon: "🧬"},
	{Name: "Bridge", URL: "https://bridge.injective.network/", Icon: "🌉"},
	{Name: "INJHub", URL: "https://injhub.com/", Icon: "🏛️"},
	{Name: "Talis", URL: "https://injective.talis.art/", Icon: "🖼️"},
	{Name: "Neptune", URL: "https://www.nept.finance/", Icon: "🔱"},
	{Name: "Paradyze", URL: "https://paradyze.io/", Icon: "🤖"},
}

// QuickLinks returns the shortcuts shown on a blank tab
func QuickLinks() []models.QuickLink {
	return append([]models.QuickLink(nil), quickLinks...)
}

// BrowserService holds tabs (memory only) plus persisted bookmarks and history
type BrowserService struct {
	store   storage.KeyValueStore
	awarder PointsAwarder
	logger  *logging.Logger
	now     func() time.Time

	mu        sync.Mutex
	tabs      []models.Tab
	activeID  string
	bookmarks []models.Bookmark
	history   []models.HistoryEntry
}

// NewBrowserService creates a browser with one blank tab. awarder may be nil.
func NewBrowserService(store storage.KeyValueStore, awarder PointsAwarder, logger *logging.Logger) *BrowserService {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &BrowserService{
		store:     store,
		awarder:   awarder,
		logger:    logger.WithComponent("browser"),
		now:       time.Now,
		bookmarks: []models.Bookmark{},
		history:   []models.HistoryEntry{},
	}
	s.resetTabsLocked()
	return s
}

func newBlankTab() models.Tab {
	return models.Tab{ID: uuid.NewString(), Title: NewTabTitle}
}

func (s *BrowserService) resetTabsLocked() {
	tab := newBlankTab()
	s.tabs = []models.Tab{tab}
	s.activeID = tab.ID
}

// Load reads bookmarks and history; corrupt values are replaced with empty lists
func (s *BrowserService) Load(ctx context.Context) {
	var bookmarks []models.Bookmark
	if raw, ok := s.store.Get(ctx, storage.KeyBookmarks); ok {
		if _, err := storage.DecodeVersioned(raw, &bookmarks); err != nil {
			s.logger.WithField("key", storage.KeyBookmarks).WithError(err).Warn("Ignoring corrupt stored bookmarks")
			bookmarks = nil
		}
	}
	var history []models.HistoryEntry
	if raw, ok := s.store.Get(ctx, storage.KeyHistory); ok {
		if _, err := storage.DecodeVersioned(raw, &history); err != nil {
			s.logger.WithField("key", storage.KeyHistory).WithError(err).Warn("Ignoring corrupt stored history")
			history = nil
		}
	}
	if bookmarks == nil {
		bookmarks = []models.Bookmark{}
	}
	if history == nil {
		history = []models.HistoryEntry{}
	}
	if len(history) > MaxHistoryEntries {
		history = history[:MaxHistoryEntries]
	}

	s.mu.Lock()
	s.bookmarks = bookmarks
	s.history = history
	s.mu.Unlock()
}

// Tabs returns a copy of the open tabs
func (s *BrowserService) Tabs() []models.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Tab(nil), s.tabs...)
}

// ActiveTab returns the active tab
func (s *BrowserService) ActiveTab() models.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[s.activeIndexLocked()]
}

func (s *BrowserService) activeIndexLocked() int {
	for i, t := range s.tabs {
		if t.ID == s.activeID {
			return i
		}
	}
	return 0
}

// AddTab appends a blank tab and activates it
func (s *BrowserService) AddTab() models.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab := newBlankTab()
	s.tabs = append(s.tabs, tab)
	s.activeID = tab.ID
	return tab
}

// CloseTab removes a tab. Closing the active tab activates the first
// remaining one; closing the only tab replaces it with a blank active tab.
func (s *BrowserService) CloseTab(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.tabs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NewNotFoundError("tab", id)
	}

	if len(s.tabs) == 1 {
		s.resetTabsLocked()
		return nil
	}

	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)
	if s.activeID == id {
		s.activeID = s.tabs[0].ID
	}
	return nil
}

// ActivateTab makes id the active tab
func (s *BrowserService) ActivateTab(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tabs {
		if t.ID == id {
			s.activeID = id
			return nil
		}
	}
	return errors.NewNotFoundError("tab", id)
}

// ResolveInput classifies raw address-bar input. Input with a scheme is
// kept, a bare domain gets https://, anything else becomes a search.
func ResolveInput(raw string) (string, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", errors.NewValidationError("url", "enter a URL or search term")
	}
	if hasScheme(input) {
		return input, nil
	}
	if strings.Contains(input, ".") && !strings.ContainsAny(input, " \t\n") {
		return "https://" + input, nil
	}
	return SearchURLPrefix + encodeURIComponent(input), nil
}

// hasScheme reports whether s starts with "<scheme>://"
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// encodeURIComponent percent-encodes every byte outside A-Z a-z 0-9 - _ . ! ~ * ' ( )
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || strings.IndexByte("-_.!~*'()", c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

// Navigate points the active tab at the resolved input and awards points
func (s *BrowserService) Navigate(ctx context.Context, raw string) (models.Tab, error) {
	target, err := ResolveInput(raw)
	if err != nil {
		return models.Tab{}, err
	}

	s.mu.Lock()
	idx := s.activeIndexLocked()
	s.tabs[idx].URL = target
	tab := s.tabs[idx]
	s.mu.Unlock()

	s.award(ctx, types.ActionBrowserNavigate)
	return tab, nil
}

// RecordVisit is called when a page finishes loading in the active tab
func (s *BrowserService) RecordVisit(ctx context.Context, url, title string) (models.Tab, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return models.Tab{}, errors.NewValidationError("url", "url is required")
	}

	s.mu.Lock()
	idx := s.activeIndexLocked()
	s.tabs[idx].URL = url
	if title != "" {
		s.tabs[idx].Title = title
	}
	tab := s.tabs[idx]
	s.mu.Unlock()

	s.AddHistory(ctx, url, tab.Title)
	return tab, nil
}

// ToggleBookmark adds url if absent (awarding points) or removes it if
// present. It reports whether the bookmark now exists.
func (s *BrowserService) ToggleBookmark(ctx context.Context, url, title string) (bool, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return false, errors.NewValidationError("url", "url is required")
	}

	s.mu.Lock()
	removed := false
	next := make([]models.Bookmark, 0, len(s.bookmarks)+1)
	for _, b := range s.bookmarks {
		if b.URL == url {
			removed = true
			continue
		}
		next = append(next, b)
	}
	if !removed {
		next = append(next, models.Bookmark{URL: url, Title: title})
	}
	s.bookmarks = next
	s.saveBookmarksLocked(ctx)
	s.mu.Unlock()

	if removed {
		return false, nil
	}
	s.award(ctx, types.ActionBookmarkAdd)
	return true, nil
}

// RemoveBookmark deletes url from the bookmarks; absent urls are a no-op
func (s *BrowserService) RemoveBookmark(ctx context.Context, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.Bookmark, 0, len(s.bookmarks))
	for _, b := range s.bookmarks {
		if b.URL != url {
			next = append(next, b)
		}
	}
	if len(next) == len(s.bookmarks) {
		return
	}
	s.bookmarks = next
	s.saveBookmarksLocked(ctx)
}

// IsBookmarked reports whether url is bookmarked
func (s *BrowserService) IsBookmarked(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}

// Bookmarks returns the bookmarks in insertion order
func (s *BrowserService) Bookmarks() []models.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Bookmark{}, s.bookmarks...)
}

// AddHistory puts url at the front of the history, dropping any older entry
// for the same url and keeping at most MaxHistoryEntries.
func (s *BrowserService) AddHistory(ctx context.Context, url, title string) {
	entry := models.HistoryEntry{URL: url, Title: title, Timestamp: s.now().UnixMilli()}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.HistoryEntry, 0, len(s.history)+1)
	next = append(next, entry)
	for _, h := range s.history {
		if h.URL != url {
			next = append(next, h)
		}
	}
	if len(next) > MaxHistoryEntries {
		next = next[:MaxHistoryEntries]
	}
	s.history = next
	s.saveHistoryLocked(ctx)
}

// History returns the history, most recent first
func (s *BrowserService) History() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.HistoryEntry{}, s.history...)
}

// ClearHistory empties the history
func (s *BrowserService) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = []models.HistoryEntry{}
	s.saveHistoryLocked(ctx)
}

// Reset restores a single blank tab and empty lists in memory only
func (s *BrowserService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetTabsLocked()
	s.bookmarks = []models.Bookmark{}
	s.history = []models.HistoryEntry{}
}

func (s *BrowserService) saveBookmarksLocked(ctx context.Context) {
	raw, err := storage.EncodeVersioned(s.bookmarks)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode bookmarks")
		return
	}
	s.store.Set(ctx, storage.KeyBookmarks, raw)
}

func (s *BrowserService) saveHistoryLocked(ctx context.Context) {
	raw, err := storage.EncodeVersioned(s.history)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode history")
		return
	}
	s.store.Set(ctx, storage.KeyHistory, raw)
}

func (s *BrowserService) award(ctx context.Context, action types.Action) {
	if s.awarder == nil {
		return
	}
	if _, err := s.awarder.AddPoints(ctx, types.ActionPoints[action], string(action)); err != nil {
		s.logger.WithField("action", string(action)).WithError(err).Warn("Failed to award points")
	}
}
