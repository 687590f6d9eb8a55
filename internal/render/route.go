package render

import (
	"fmt"
	"net/url"
	"strings"
)

// Route binds a serverless route name to a permalink pattern and a page template.
// Pattern segments starting with ':' capture path parameters, e.g. "/thanks/:site/".
type Route struct {
	Name     string
	Pattern  string
	Template string
}

type compiledRoute struct {
	Route
	segments []string
}

func compileRoute(r Route) (compiledRoute, error) {
	if r.Name == "" {
		return compiledRoute{}, fmt.Errorf("route name is required")
	}
	if !strings.HasPrefix(r.Pattern, "/") {
		return compiledRoute{}, fmt.Errorf("route %q: pattern must start with /", r.Name)
	}
	if r.Template == "" {
		return compiledRoute{}, fmt.Errorf("route %q: template is required", r.Name)
	}
	segments := splitPath(r.Pattern)
	seen := make(map[string]struct{}, len(segments))
	for _, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		if name == "" {
			return compiledRoute{}, fmt.Errorf("route %q: empty parameter name", r.Name)
		}
		if _, dup := seen[name]; dup {
			return compiledRoute{}, fmt.Errorf("route %q: duplicate parameter %q", r.Name, name)
		}
		seen[name] = struct{}{}
	}
	return compiledRoute{Route: r, segments: segments}, nil
}

// match reports whether path fits the pattern and returns the captured parameters.
func (c compiledRoute) match(path string) (map[string]string, bool) {
	parts := splitPath(path)
	if len(parts) != len(c.segments) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range c.segments {
		if strings.HasPrefix(seg, ":") {
			value, err := url.PathUnescape(parts[i])
			if err != nil || value == "" {
				return nil, false
			}
			params[seg[1:]] = value
			continue
		}
		if seg != parts[i] {
			return nil, false
		}
	}
	return params, true
}

// splitPath drops the leading and trailing slash so "/a/b/" and "/a/b" match alike.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
