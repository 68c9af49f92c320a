// Package common contains constants and sentinel errors shared by the
// client packages.
package common

// Outbound request headers.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
	RequestIDHeaderName     = "X-Request-ID"

	// BypassHeaderName tells the tunnelling proxy in front of the API to skip
	// its browser interstitial page.
	BypassHeaderName  = "ngrok-skip-browser-warning"
	BypassHeaderValue = "true"
)

// Durable storage keys.
const (
	AuthTokenKey       = "auth_token"
	SelectedCompanyKey = "selectedCompany"
	SelectedStationKey = "selectedStation"
)

// LoginPath is where the session-expiry handler navigates to.
const LoginPath = "/login"
