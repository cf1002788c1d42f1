package oauth2

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
)

// Payload is the ordered field set to deliver to the RP: an authorization
// code, implicit/hybrid tokens, or an OAuth error — never more than one
// of these at once.
type Payload struct {
	Values url.Values
}

// NewPayload starts an empty payload with state already set (coerced to
// the empty string when absent — see DESIGN.md's state="None" decision,
// never omitted, so the RP always receives the field it sent).
func NewPayload(state string) *Payload {
	p := &Payload{Values: url.Values{}}
	p.Values.Set("state", state)
	return p
}

func (p *Payload) Set(key, value string) *Payload {
	if value != "" {
		p.Values.Set(key, value)
	}
	return p
}

// SetError fills the payload with an OAuth-formatted error.
func SetError(state, code, description string) *Payload {
	p := NewPayload(state)
	p.Values.Set("error", code)
	if description != "" {
		p.Values.Set("error_description", description)
	}
	return p
}

// formPostTemplate is the auto-submitting HTML form used for the
// form_post response mode. html/template's contextual escaping is load-
// bearing here: action and field values both carry attacker-influenced
// input (redirect_uri, state, error text).
var formPostTemplate = template.Must(template.New("form_post").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorizing...</title></head>
<body onload="document.forms[0].submit()">
<form method="post" action="{{.Action}}">
{{range $k, $vs := .Fields}}{{range $vs}}<input type="hidden" name="{{$k}}" value="{{.}}">
{{end}}{{end}}<noscript><input type="submit" value="Continue"></noscript>
</form>
</body>
</html>`))

type formPostData struct {
	Action string
	Fields url.Values
}

// Deliver writes the payload to w using the effective response_mode.
// For form_post the field map is built directly from payload.Values and
// rendered — no detour through the redirect URI's query string (see
// DESIGN.md Open Question #2).
func Deliver(w http.ResponseWriter, redirectURI, responseMode string, payload *Payload) error {
	switch responseMode {
	case ResponseModeFragment:
		u, err := url.Parse(redirectURI)
		if err != nil {
			return err
		}
		frag := payload.Values.Encode()
		if u.Fragment != "" {
			frag = u.Fragment + "&" + frag
		}
		u.Fragment = ""
		loc := u.String() + "#" + frag
		Redirect303(w, loc)
		return nil
	case ResponseModeFormPost:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		return formPostTemplate.Execute(w, formPostData{Action: redirectURI, Fields: payload.Values})
	default: // query
		u, err := url.Parse(redirectURI)
		if err != nil {
			return err
		}
		q := u.Query()
		for k, vs := range payload.Values {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
		Redirect303(w, u.String())
		return nil
	}
}

// Redirect303 writes a 302 redirect to loc. Used instead of http.Redirect
// when there is no inbound *http.Request handy (Deliver builds the
// location itself rather than relative to a request).
func Redirect303(w http.ResponseWriter, loc string) {
	w.Header().Set("Location", loc)
	w.WriteHeader(http.StatusFound)
}

// badRequestTemplate renders the HTTP 400 page used when no trusted
// redirect_uri is known to redirect the user agent back to.
var badRequestTemplate = template.Must(template.New("bad_request").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
</body>
</html>`))

type badRequestData struct {
	Title       string
	Description string
}

// WriteBadRequestPage renders an HTTP 400 HTML page carrying the error
// identifier and description, never redirecting to an untrusted URI.
func WriteBadRequestPage(w http.ResponseWriter, code, description string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_ = badRequestTemplate.Execute(w, badRequestData{Title: code, Description: description})
}

// noPermissionTemplate renders the page shown when the provider's
// authorization flow is not applicable to the caller. This is distinct
// from both an OAuth redirect error and the untrusted-redirect bad
// request page: the RP-level decision (whether the code/token request
// is even well-formed) has not been reached yet.
var noPermissionTemplate = template.Must(template.New("no_permission").Parse(`<!DOCTYPE html>
<html>
<head><title>No permission</title></head>
<body>
<h1>No permission</h1>
<p>You don't have permission to access this application.</p>
</body>
</html>`))

// WriteNoPermissionPage renders the HTTP 403 page used when a
// provider's authorization flow is not applicable to the current user,
// never redirecting to an untrusted URI and never shaped as an OAuth
// error.
func WriteNoPermissionPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_ = noPermissionTemplate.Execute(w, nil)
}

// ExpiresIn renders a duration in whole seconds for the expires_in field.
func ExpiresIn(seconds int) string {
	return strconv.Itoa(seconds)
}
