package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/prognoshealth/formsapi/proxy"
	"github.com/prognoshealth/formsapi/store"
)

type failingStore struct {
	err error
}

func (s *failingStore) GetForm(context.Context, string) (*store.Form, error) { return nil, s.err }
func (s *failingStore) PutForm(context.Context, *store.Form) error           { return s.err }
func (s *failingStore) UpdateForm(context.Context, *store.Form) error        { return s.err }
func (s *failingStore) GetResponse(context.Context, string, string) (*store.Response, error) {
	return nil, s.err
}
func (s *failingStore) PutResponse(context.Context, *store.Response) error { return s.err }
func (s *failingStore) UpdateAnswers(context.Context, string, string, map[string]interface{}) error {
	return s.err
}

type panickingStore struct {
	failingStore
}

func (s *panickingStore) GetForm(context.Context, string) (*store.Form, error) {
	panic("store exploded")
}

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type testAPI struct {
	handler *Handler
	memory  *store.Memory
	hook    *test.Hook
}

func newTestHandlers(forms FormStore, responses ResponseStore) (*Handlers, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	h := NewHandlers(forms, responses, logger)
	h.NewFormID = sequence("form")
	h.NewResponseID = sequence("resp")
	h.NewEditToken = sequence("token")

	return h, hook
}

func newTestAPI() *testAPI {
	memory := store.NewMemory()
	h, hook := newTestHandlers(memory, memory)

	return &testAPI{
		handler: NewHandler(h, proxy.NewStageSet(proxy.DefaultStageNames...)),
		memory:  memory,
		hook:    hook,
	}
}

func restEvent(method, path, body string, query map[string]string) json.RawMessage {
	raw, _ := json.Marshal(events.APIGatewayProxyRequest{
		HTTPMethod:            method,
		Path:                  path,
		Body:                  body,
		QueryStringParameters: query,
	})
	return raw
}

func httpEvent(method, path, body, rawQuery string) json.RawMessage {
	raw, _ := json.Marshal(events.APIGatewayV2HTTPRequest{
		RawPath:        path,
		RawQueryString: rawQuery,
		Body:           body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method,
				Path:   path,
			},
		},
	})
	return raw
}

func invoke(t *testing.T, h *Handler, raw json.RawMessage) (events.APIGatewayProxyResponse, map[string]interface{}) {
	t.Helper()

	response, err := h.Invoke(context.Background(), raw)
	require.NoError(t, err)

	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(response.Body), &body), response.Body)

	return response, body
}

func (api *testAPI) do(t *testing.T, method, path, body string, query map[string]string) (int, map[string]interface{}) {
	t.Helper()

	response, decoded := invoke(t, api.handler, restEvent(method, path, body, query))
	return response.StatusCode, decoded
}
