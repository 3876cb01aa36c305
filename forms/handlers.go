// Package forms implements the form builder API: creating, reading and
// replacing forms, submitting responses and editing a response with its edit
// token.
package forms

import (
	"crypto/subtle"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/formsapi/proxy"
	"github.com/prognoshealth/formsapi/store"
)

// maxIDAttempts bounds retries when a freshly generated id is already taken.
const maxIDAttempts = 3

// Handlers holds the route handlers and their dependencies.
type Handlers struct {
	Forms     FormStore
	Responses ResponseStore
	Logger    logrus.FieldLogger

	NewFormID     func() string
	NewResponseID func() string
	NewEditToken  func() string
}

// NewHandlers returns Handlers backed by the given stores.
func NewHandlers(forms FormStore, responses ResponseStore, logger logrus.FieldLogger) *Handlers {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Handlers{
		Forms:         forms,
		Responses:     responses,
		Logger:        logger,
		NewFormID:     uuid.NewString,
		NewResponseID: func() string { return ksuid.New().String() },
		NewEditToken:  uuid.NewString,
	}
}

type formIDBody struct {
	FormID string `json:"form_id"`
}

type formBody struct {
	FormID string        `json:"form_id"`
	Title  string        `json:"title"`
	Fields []interface{} `json:"fields"`
}

type submittedBody struct {
	Status     string `json:"status"`
	ResponseID string `json:"response_id"`
	EditToken  string `json:"edit_token"`
}

type responseBody struct {
	FormID     string                 `json:"form_id"`
	Answers    map[string]interface{} `json:"answers"`
	ResponseID string                 `json:"response_id"`
}

type updatedBody struct {
	Status     string `json:"status"`
	ResponseID string `json:"response_id"`
}

type errorBody struct {
	Error string `json:"error"`
}

// CreateForm handles POST /forms.
func (h *Handlers) CreateForm(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	body, err := parseObject(ctx.Body())
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	for attempt := 1; ; attempt++ {
		form := formFromBody(h.NewFormID(), body)

		err = h.Forms.PutForm(ctx.Context, form)
		if err == nil {
			return proxy.Respond(http.StatusCreated, formIDBody{FormID: form.FormID}), nil
		}

		if !store.IsConditionFailed(err) || attempt >= maxIDAttempts {
			return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed creating form")
		}

		h.Logger.WithField("attempt", attempt).Warn("generated form id already taken")
	}
}

// GetForm handles GET /forms/{form_id}.
func (h *Handlers) GetForm(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	form, err := h.Forms.GetForm(ctx.Context, ctx.Param("form_id"))
	if store.IsNoSuchItem(err) {
		return proxy.Respond(http.StatusNotFound, errorBody{Error: "Form not found"}), nil
	}
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed reading form")
	}

	return proxy.Respond(http.StatusOK, formBody{
		FormID: form.FormID,
		Title:  form.DisplayTitle(),
		Fields: form.FieldList(),
	}), nil
}

// UpdateForm handles PUT /forms/{form_id}. The form is created when it does
// not exist yet.
func (h *Handlers) UpdateForm(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	body, err := parseObject(ctx.Body())
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	form := formFromBody(ctx.Param("form_id"), body)
	if err := h.Forms.UpdateForm(ctx.Context, form); err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed updating form")
	}

	return proxy.Respond(http.StatusOK, formIDBody{FormID: form.FormID}), nil
}

// Submit handles POST /submit/{form_id}. The form is not required to exist.
func (h *Handlers) Submit(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	answers, err := parseAnswers(ctx.Body())
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	for attempt := 1; ; attempt++ {
		response := &store.Response{
			FormID:     ctx.Param("form_id"),
			ResponseID: h.NewResponseID(),
			EditToken:  h.NewEditToken(),
			Answers:    answers,
		}

		err = h.Responses.PutResponse(ctx.Context, response)
		if err == nil {
			return proxy.Respond(http.StatusCreated, submittedBody{
				Status:     "submitted",
				ResponseID: response.ResponseID,
				EditToken:  response.EditToken,
			}), nil
		}

		if !store.IsConditionFailed(err) || attempt >= maxIDAttempts {
			return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed submitting response")
		}

		h.Logger.WithField("attempt", attempt).Warn("generated response id already taken")
	}
}

// GetResponse handles GET /forms/{form_id}/responses/{response_id}?token=.
func (h *Handlers) GetResponse(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	response, denied, err := h.authorize(ctx, ctx.QueryParam("token"))
	if err != nil || denied != nil {
		return derefOr(denied), err
	}

	return proxy.Respond(http.StatusOK, responseBody{
		FormID:     response.FormID,
		Answers:    response.AnswerMap(),
		ResponseID: response.ResponseID,
	}), nil
}

// UpdateResponse handles PUT /forms/{form_id}/responses/{response_id}. Only
// the answers of the response change.
func (h *Handlers) UpdateResponse(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	body, err := parseObject(ctx.Body())
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	response, denied, err := h.authorize(ctx, tokenFromBody(body))
	if err != nil || denied != nil {
		return derefOr(denied), err
	}

	err = h.Responses.UpdateAnswers(ctx.Context, response.FormID, response.ResponseID, answersFromBody(body))
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed updating response")
	}

	return proxy.Respond(http.StatusOK, updatedBody{
		Status:     "updated",
		ResponseID: response.ResponseID,
	}), nil
}

// authorize loads the response addressed by the route and checks token
// against its edit token. When access is refused the response to send is
// returned instead.
func (h *Handlers) authorize(ctx *proxy.RouteContext, token string) (*store.Response, *events.APIGatewayProxyResponse, error) {
	if token == "" {
		denied := proxy.Respond(http.StatusForbidden, errorBody{Error: "Edit token required"})
		return nil, &denied, nil
	}

	response, err := h.Responses.GetResponse(ctx.Context, ctx.Param("form_id"), ctx.Param("response_id"))
	if err != nil && !store.IsNoSuchItem(err) {
		return nil, nil, errors.Wrap(err, "failed reading response")
	}

	if err != nil || !tokensMatch(response.EditToken, token) {
		denied := proxy.Respond(http.StatusNotFound, errorBody{Error: "Response not found or invalid token"})
		return nil, &denied, nil
	}

	return response, nil, nil
}

func tokensMatch(stored, given string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func derefOr(response *events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if response == nil {
		return events.APIGatewayProxyResponse{}
	}
	return *response
}
