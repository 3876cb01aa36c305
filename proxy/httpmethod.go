package proxy

import "strings"

// HttpMethod is an enum of the standard Http Methods.
type HttpMethod int

const (
	GET HttpMethod = iota
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

var httpMethodNames = [...]string{"GET", "HEAD", "POST", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH"}

// String returns the canonical upper case name of the method.
func (m HttpMethod) String() string {
	if m < 0 || int(m) >= len(httpMethodNames) {
		return "UNKNOWN"
	}
	return httpMethodNames[m]
}

// ParseHttpMethod maps a method name, in any case, to its HttpMethod. The
// second return value is false for names that are not standard methods.
func ParseHttpMethod(s string) (HttpMethod, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range httpMethodNames {
		if name == upper {
			return HttpMethod(i), true
		}
	}
	return GET, false
}
