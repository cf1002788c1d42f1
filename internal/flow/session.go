package flow

import (
	"net/http"
	"net/url"
	"time"
)

// SessionStore is the authorization endpoint's narrow view of the
// browser session: a login event, if any, and the last-seen login id
// used to detect whether a requested re-authentication has actually
// happened.
type SessionStore interface {
	// LoginEvent reports the current session's login, if the browser
	// is authenticated at all.
	LoginEvent(r *http.Request) (uid string, loginTime time.Time, ok bool)
	// LastLoginUID reads back a previously stashed last_login_uid.
	LastLoginUID(r *http.Request) (uid string, ok bool)
	// SetLastLoginUID stashes uid as last_login_uid for a later request
	// to compare against once re-authentication completes.
	SetLastLoginUID(w http.ResponseWriter, r *http.Request, uid string)
}

// Restart builds the redirect location used when the login requirement
// isn't satisfied: loginURL (the configured login page, the same for
// every provider), with the original request parameters reattached as a
// query string so
// the login flow can hand control back to /authorize once it completes.
func Restart(loginURL string, params url.Values) (string, error) {
	u, err := url.Parse(loginURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
