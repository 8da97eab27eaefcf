package common

import "time"

// AuthorizationHeader carries "Bearer <access token>" on API requests.
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// TitleLayout renders transcript titles as "Recording 2006-01-02 15:04:05".
const TitleLayout = "2006-01-02 15:04:05"

// MakeTitle returns the default transcript title for a recording saved at t.
func MakeTitle(t time.Time) string {
	return "Recording " + t.Local().Format(TitleLayout)
}
