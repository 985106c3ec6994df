package router

import "regexp"

// Matcher decides whether a route applies to a path.
type Matcher interface {
	Match(path string) (Params, bool)
}

type exact string

func (m exact) Match(path string) (Params, bool) {
	return nil, string(m) == path
}

// Exact matches one path literally.
func Exact(path string) Matcher {
	return exact(path)
}

type pattern struct {
	re *regexp.Regexp
}

func (m pattern) Match(path string) (Params, bool) {
	sub := m.re.FindStringSubmatch(path)
	if sub == nil {
		return nil, false
	}
	params := Params{}
	for i, name := range m.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		params[name] = sub[i]
	}
	return params, true
}

// Pattern matches paths against re; named groups become params. Anchor
// the expression, a partial match counts as a match.
func Pattern(re *regexp.Regexp) Matcher {
	return pattern{re: re}
}

type catchAll struct{}

func (catchAll) Match(path string) (Params, bool) {
	return Params{"path": path}, true
}

// CatchAll matches every path. It must be the last route.
func CatchAll() Matcher {
	return catchAll{}
}

func isCatchAll(m Matcher) bool {
	_, ok := m.(catchAll)
	return ok
}
