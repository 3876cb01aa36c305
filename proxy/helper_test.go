package proxy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func testHandler(context *RouteContext) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

func testRequest(method HttpMethod, path string) Request {
	req := DefaultRequest()
	req.Shape = ShapeHTTP
	req.Method = method.String()
	req.Path = path
	return req
}

func testStages() StageSet {
	return NewStageSet(DefaultStageNames...)
}

func loadEvent(t *testing.T, name string) []byte {
	t.Helper()

	content, err := os.ReadFile(filepath.Join("testdata", "events", name))
	if err != nil {
		t.Fatal(err)
	}

	return content
}
