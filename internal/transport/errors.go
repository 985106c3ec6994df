package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RequestError is a non-2xx response. Kind is derived from the response
// text: "post not found" becomes "PostNotFoundError".
type RequestError struct {
	Kind       string
	Message    string
	StatusCode int
	StatusText string
	URL        string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Is matches another *RequestError by Kind, so callers can compare against
// a template: errors.Is(err, &RequestError{Kind: "UnauthorizedError"}).
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	if !ok {
		return false
	}
	return t.Kind != "" && t.Kind == e.Kind
}

// AsRequestError unwraps err to a *RequestError.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

func newRequestError(res *http.Response, body []byte) *RequestError {
	statusText := strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)+" ")
	if statusText == "" {
		statusText = http.StatusText(res.StatusCode)
	}

	msg := errorText(body)
	if msg == "" {
		msg = statusText
	}
	msg = strings.ToLower(strings.TrimSpace(msg))

	var requestURL string
	if res.Request != nil && res.Request.URL != nil {
		u := *res.Request.URL
		u.RawQuery = redactQuery(u.Query())
		requestURL = u.String()
	}

	return &RequestError{
		Kind:       errorKind(msg),
		Message:    msg,
		StatusCode: res.StatusCode,
		StatusText: statusText,
		URL:        requestURL,
	}
}

// errorText unquotes JSON string bodies and otherwise keeps the raw text.
func errorText(body []byte) string {
	text := strings.TrimSpace(string(body))
	var s string
	if strings.HasPrefix(text, `"`) && json.Unmarshal([]byte(text), &s) == nil {
		return s
	}
	return text
}

// errorKind upper-cases the first letter of each space separated word and
// leaves the rest of the word alone, so "invalid user-id" becomes
// "InvalidUser-idError".
func errorKind(msg string) string {
	upper := cases.Upper(language.Und)
	var b strings.Builder
	for _, word := range strings.Split(msg, " ") {
		if word == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(word)
		b.WriteString(upper.String(word[:size]))
		b.WriteString(word[size:])
	}
	b.WriteString("Error")
	return b.String()
}

func redactQuery(q url.Values) string {
	if q.Has("auth_token") {
		q.Set("auth_token", "redacted")
	}
	return q.Encode()
}
