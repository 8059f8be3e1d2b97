package models

// Bookmark is a saved page, unique by URL
type Bookmark struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// HistoryEntry is a visited page. Timestamp is unix milliseconds.
type HistoryEntry struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
}

// Tab is an in-memory browser tab
type Tab struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// QuickLink is a shortcut shown on a blank tab
type QuickLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon"`
}
