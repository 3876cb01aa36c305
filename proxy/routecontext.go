package proxy

import (
	"context"
)

// RouteContext contains all the request information for a route when matched.
type RouteContext struct {
	Context context.Context
	Request Request
	Params  map[string]string
}

// Body returns the request body. The event adapter has already decoded any
// base64 payload, and an absent body is reported as "{}".
func (ctx *RouteContext) Body() string {
	if ctx.Request.Body == "" {
		return emptyBody
	}
	return ctx.Request.Body
}

// Param returns the named path parameter captured by the route's pattern.
func (ctx *RouteContext) Param(name string) string {
	return ctx.Params[name]
}

// QueryParam returns the named query string parameter.
func (ctx *RouteContext) QueryParam(name string) string {
	return ctx.Request.QueryParam(name)
}
