package reddit

import "encoding/base64"

// redditHeaderOrder is the header order used for all API requests.
var redditHeaderOrder = []string{
	"authorization",
	"content-type",
	"user-agent",
	"accept",
	"accept-language",
	"accept-encoding",
}

// authHeaders returns the headers required by the OAuth API: the bearer-style
// Authorization composed from the token's own type, plus the configured
// User-Agent (Reddit rejects default library agents).
func authHeaders(tokenType, token, userAgent string) map[string]string {
	return map[string]string{
		"authorization":   tokenType + " " + token,
		"user-agent":      userAgent,
		"accept":          "application/json",
		"accept-language": "en-US,en;q=0.9",
		"accept-encoding": "gzip, deflate, br",
	}
}

// tokenRequestHeaders returns the headers for the token endpoint: HTTP basic
// auth with the app's client id/secret and a form content type.
func tokenRequestHeaders(clientID, clientSecret, userAgent string) map[string]string {
	cred := base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
	return map[string]string{
		"authorization": "Basic " + cred,
		"content-type":  "application/x-www-form-urlencoded",
		"user-agent":    userAgent,
		"accept":        "application/json",
	}
}
