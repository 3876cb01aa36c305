package proxy

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// StageSet holds the deployment stage names that may prefix a request path,
// e.g. /prod/forms.
type StageSet map[string]struct{}

// DefaultStageNames are the stage prefixes stripped when nothing else is
// configured.
var DefaultStageNames = []string{"prod", "dev", "stage", "v1", "default"}

// NewStageSet returns a StageSet for the given names. Blank names are ignored.
func NewStageSet(names ...string) StageSet {
	s := StageSet{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Contains reports whether name is a known stage.
func (s StageSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// StripStage removes a leading stage segment from path when the path has more
// than one segment. /prod/forms becomes /forms while /prod is left alone.
func (s StageSet) StripStage(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 1 && s.Contains(segments[0]) {
		return "/" + strings.Join(segments[1:], "/")
	}
	return path
}

// NormalizeEvent builds the canonical Request from a raw lambda event. It
// never fails: anything that is not a JSON object yields DefaultRequest and
// malformed fields fall back to their defaults one by one.
func NormalizeEvent(raw []byte, stages StageSet) Request {
	var event map[string]interface{}
	if err := json.Unmarshal(raw, &event); err != nil || event == nil {
		return DefaultRequest()
	}

	req := DefaultRequest()

	shape, httpInfo := detectShape(event)
	req.Shape = shape

	switch shape {
	case ShapeHTTP:
		req.Method = firstString(GET.String(), httpInfo["method"], event["httpMethod"])
		req.Path = firstString("/", httpInfo["path"], event["rawPath"], event["path"])
	default:
		req.Method = firstString(GET.String(), event["httpMethod"])
		req.Path = firstString("/", event["path"], event["rawPath"])
	}

	req.Method = strings.ToUpper(req.Method)
	req.Path = stages.StripStage(req.Path)
	req.Body = eventBody(event)
	req.Query = eventQuery(event)

	if params, ok := event["pathParameters"].(map[string]interface{}); ok {
		req.PathParams = stringMap(params)
	}

	return req
}

// FromProxyRequest builds the canonical Request from a typed REST api event.
func FromProxyRequest(event events.APIGatewayProxyRequest, stages StageSet) Request {
	return fromTyped(event, stages)
}

// FromHTTPRequest builds the canonical Request from a typed HTTP api event.
func FromHTTPRequest(event events.APIGatewayV2HTTPRequest, stages StageSet) Request {
	return fromTyped(event, stages)
}

func fromTyped(event interface{}, stages StageSet) Request {
	raw, err := json.Marshal(event)
	if err != nil {
		return DefaultRequest()
	}
	return NormalizeEvent(raw, stages)
}

// detectShape reports ShapeHTTP, together with the requestContext.http
// object, when that object is present.
func detectShape(event map[string]interface{}) (EventShape, map[string]interface{}) {
	if rc, ok := event["requestContext"].(map[string]interface{}); ok {
		if info, ok := rc["http"].(map[string]interface{}); ok {
			return ShapeHTTP, info
		}
	}
	return ShapeLegacy, nil
}

// firstString returns the first candidate that is a non empty string, or def.
func firstString(def string, candidates ...interface{}) string {
	for _, c := range candidates {
		if s, ok := c.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func eventBody(event map[string]interface{}) string {
	body, ok := event["body"].(string)
	if !ok || body == "" {
		return emptyBody
	}

	if encoded, _ := event["isBase64Encoded"].(bool); encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil || len(decoded) == 0 {
			return emptyBody
		}
		return string(decoded)
	}

	return body
}

func eventQuery(event map[string]interface{}) map[string]string {
	if params, ok := event["queryStringParameters"].(map[string]interface{}); ok {
		return stringMap(params)
	}

	raw, _ := event["rawQueryString"].(string)
	return parseRawQuery(raw)
}

// parseRawQuery parses a raw query string keeping the first value of every
// key. A malformed query string yields an empty map.
func parseRawQuery(raw string) map[string]string {
	out := map[string]string{}
	if raw == "" {
		return out
	}

	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return map[string]string{}
	}

	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// stringMap keeps string values and stringifies numbers and bools. Anything
// else is dropped.
func stringMap(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	return out
}
