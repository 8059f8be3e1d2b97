// Package types provides common type definitions for the ecosystem hub core.
package types

// Theme represents the app colour scheme
type Theme string

const (
	// ThemeDark is the default scheme
	ThemeDark Theme = "dark"
	// ThemeLight is the light scheme
	ThemeLight Theme = "light"
)

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// GlassIntensity represents how strong the frosted-glass effect is rendered
type GlassIntensity string

const (
	GlassLow    GlassIntensity = "low"
	GlassMedium GlassIntensity = "medium"
	GlassHigh   GlassIntensity = "high"
)

// Valid reports whether g is a known intensity
func (g GlassIntensity) Valid() bool {
	switch g {
	case GlassLow, GlassMedium, GlassHigh:
		return true
	default:
		return false
	}
}

// Action identifies a user action that earns points
type Action string

const (
	ActionBrowserNavigate Action = "browser_navigate"
	ActionBookmarkAdd     Action = "bookmark_add"
	ActionDAppVisit       Action = "dapp_visit"
	ActionRefresh         Action = "refresh"
	ActionWalletRefresh   Action = "wallet_refresh"
	ActionWalletCreate    Action = "wallet_create"
	ActionWalletImport    Action = "wallet_import"
	ActionTransactionSend Action = "transaction_send"
)

// ActionPoints is the fixed award per action used by callers of AddPoints.
var ActionPoints = map[Action]int{
	ActionBrowserNavigate: 5,
	ActionBookmarkAdd:     10,
	ActionDAppVisit:       10,
	ActionRefresh:         5,
	ActionWalletRefresh:   5,
	ActionWalletCreate:    100,
	ActionWalletImport:    50,
	ActionTransactionSend: 20,
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
