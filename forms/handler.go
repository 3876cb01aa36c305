package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/formsapi/config"
	"github.com/prognoshealth/formsapi/lambdautils"
	"github.com/prognoshealth/formsapi/proxy"
)

// KindPanic is the failure kind reported for a recovered panic.
const KindPanic = "Panic"

// Handler answers lambda invocations. Every invocation produces a response
// envelope and a nil error.
type Handler struct {
	router *proxy.Router
	stages proxy.StageSet
	logger logrus.FieldLogger

	// initErr, when set, is reported by every invocation.
	initErr error
}

// NewHandler returns a Handler routing to h. Paths are stripped of any of the
// given stage names.
func NewHandler(h *Handlers, stages proxy.StageSet) *Handler {
	handler := &Handler{
		router: NewRouter(h),
		stages: stages,
		logger: h.Logger,
	}

	if !handler.router.Valid() {
		handler.initErr = handler.router.BuildErrors()
	}

	return handler
}

// FailingHandler returns a Handler answering every invocation with a failure
// envelope for err.
func FailingHandler(err error, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Handler{
		stages:  proxy.NewStageSet(proxy.DefaultStageNames...),
		logger:  logger,
		initErr: err,
	}
}

// Configure builds the DynamoDB backed Handler described by cfg. A
// configuration error, passed in as loadErr or found while connecting, does
// not stop the process: the returned Handler reports it on every invocation.
func Configure(cfg *config.Config, loadErr error) *Handler {
	if cfg == nil {
		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		if loadErr == nil {
			loadErr = errors.New("missing configuration")
		}
		return FailingHandler(loadErr, logger)
	}

	logger := cfg.Logger()

	if loadErr != nil {
		logger.WithError(loadErr).Error("invalid configuration")
		return FailingHandler(loadErr, logger)
	}

	db, err := cfg.Dynamo()
	if err != nil {
		err = config.NewError(err)
		logger.WithError(err).Error("failed connecting store")
		return FailingHandler(err, logger)
	}

	return NewHandler(NewHandlers(db, db, logger), proxy.NewStageSet(cfg.StagePrefixes...))
}

// Invoke handles a single raw lambda event of either gateway payload shape.
func (h *Handler) Invoke(ctx context.Context, raw json.RawMessage) (response events.APIGatewayProxyResponse, err error) {
	start := time.Now()
	request := proxy.NormalizeEvent(raw, h.stages)

	log := lambdautils.Logger(ctx, h.logger).WithFields(logrus.Fields{
		"method": request.Method,
		"path":   request.Path,
		"shape":  request.Shape.String(),
	})

	defer func() {
		if r := recover(); r != nil {
			perr := proxy.NewError(KindPanic, fmt.Errorf("panic: %v", r))
			log.WithError(perr).WithField("stack", string(debug.Stack())).Error("recovered panic")
			response, err = proxy.Failure(perr), nil
		}

		log.WithFields(logrus.Fields{
			"status":   response.StatusCode,
			"duration": time.Since(start).String(),
		}).Info("handled request")
	}()

	if h.initErr != nil {
		return proxy.Failure(h.initErr), nil
	}

	response, err = h.router.Route(ctx, request)
	if err != nil {
		log.WithError(err).Error("request failed")
		return proxy.Failure(err), nil
	}

	return response, nil
}
