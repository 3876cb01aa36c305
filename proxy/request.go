package proxy

// EventShape identifies which api gateway payload shape a Request was built
// from.
type EventShape int

const (
	// ShapeNone is used for the default request built from a malformed event.
	ShapeNone EventShape = iota
	// ShapeLegacy is the REST api (payload v1) shape: httpMethod, path,
	// queryStringParameters.
	ShapeLegacy
	// ShapeHTTP is the HTTP api (payload v2) shape: requestContext.http,
	// rawPath, rawQueryString.
	ShapeHTTP
)

func (s EventShape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeHTTP:
		return "http"
	default:
		return "none"
	}
}

const emptyBody = "{}"

// Request is the canonical request every route sees regardless of the event
// shape it arrived in.
type Request struct {
	Shape      EventShape
	Method     string
	Path       string
	Body       string
	Query      map[string]string
	PathParams map[string]string
}

// DefaultRequest is the request used whenever the inbound event cannot be
// interpreted at all.
func DefaultRequest() Request {
	return Request{
		Shape:      ShapeNone,
		Method:     GET.String(),
		Path:       "/",
		Body:       emptyBody,
		Query:      map[string]string{},
		PathParams: map[string]string{},
	}
}

// QueryParam returns the named query string parameter or "".
func (r Request) QueryParam(name string) string {
	return r.Query[name]
}
