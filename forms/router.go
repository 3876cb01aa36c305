package forms

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/formsapi/lambdautils"
	"github.com/prognoshealth/formsapi/proxy"
)

const (
	formPattern     = `/forms/(?P<form_id>[^/]+)`
	responsePattern = formPattern + `/responses/(?P<response_id>[^/]+)`
)

type notFoundBody struct {
	Error  string `json:"error"`
	Path   string `json:"path"`
	Method string `json:"method"`
}

// NewRouter returns the route table of the API. Routes are matched in the
// order they are added here.
func NewRouter(h *Handlers) *proxy.Router {
	router := &proxy.Router{}

	// reads also accept the singular /response/ segment
	router.GET(formPattern+`/responses?/(?P<response_id>[^/]+)`, h.GetResponse)
	router.PUT(responsePattern, h.UpdateResponse)
	router.POST(`/forms`, h.CreateForm)
	router.GET(formPattern, h.GetForm)
	router.PUT(formPattern, h.UpdateForm)
	router.POST(`/submit/(?P<form_id>[^/]+)`, h.Submit)

	router.AddCatchAllHandler(notFound)
	router.AddErrorHandler(func(ctx context.Context, request proxy.Request, err error) (events.APIGatewayProxyResponse, error) {
		lambdautils.Logger(ctx, h.Logger).WithFields(logrus.Fields{
			"method": request.Method,
			"path":   request.Path,
			"kind":   proxy.ErrorKind(err),
		}).WithError(err).Error("request failed")

		return proxy.Failure(err), nil
	})

	return router
}

func notFound(_ context.Context, request proxy.Request) (events.APIGatewayProxyResponse, error) {
	return proxy.Respond(http.StatusNotFound, notFoundBody{
		Error:  "Not found",
		Path:   request.Path,
		Method: request.Method,
	}), nil
}
