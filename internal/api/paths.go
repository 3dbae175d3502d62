package api

import "fmt"

// REST paths for the DevTinder API. These are wire-compatible with the
// production backend and must not drift.
const (
	PathLogin    = "/login"
	PathRegister = "/auth/register"
	PathLogout   = "/logout"
	PathMe       = "/auth/me"

	PathProfileView = "/profile/view"
	PathProfileEdit = "/profile/edit"

	PathFeed              = "/feed"
	PathConnections       = "/user/connections"
	PathRequestsReceived  = "/user/requests/received"
	pathRequestSendBase   = "/request/send"
	pathRequestReviewBase = "/request/review"
)

// SendPath builds the feed action path, status one of "interested"/"ignored".
func SendPath(status, userID string) string {
	return fmt.Sprintf("%s/%s/%s", pathRequestSendBase, status, userID)
}

// ReviewPath builds the request review path, status one of "accepted"/"rejected".
func ReviewPath(status, userID string) string {
	return fmt.Sprintf("%s/%s/%s", pathRequestReviewBase, status, userID)
}
