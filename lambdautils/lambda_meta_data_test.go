package lambdautils

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func prepareContext(fn, v, alias, requestID string) context.Context {
	lambdacontext.FunctionName = fn
	lambdacontext.FunctionVersion = v
	lambdacontext.LogGroupName = "logGroupName-test"
	lambdacontext.LogStreamName = "logStreamName-test"
	lambdacontext.MemoryLimitInMB = 100

	arn := []string{"arn:aws:lambda:us-east-1:xxxxx:function", fn}
	if alias != "" {
		arn = append(arn, alias)
	}

	lctx := lambdacontext.LambdaContext{
		AwsRequestID:       requestID,
		InvokedFunctionArn: strings.Join(arn, ":"),
	}
	return lambdacontext.NewContext(context.Background(), &lctx)
}

func clearContext() {
	lambdacontext.FunctionName = os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	lambdacontext.FunctionVersion = os.Getenv("AWS_LAMBDA_FUNCTION_VERSION")
	lambdacontext.LogGroupName = os.Getenv("AWS_LAMBDA_LOG_GROUP_NAME")
	lambdacontext.LogStreamName = os.Getenv("AWS_LAMBDA_LOG_STREAM_NAME")
	if limit, err := strconv.Atoi(os.Getenv("AWS_LAMBDA_FUNCTION_MEMORY_SIZE")); err != nil {
		lambdacontext.MemoryLimitInMB = 0
	} else {
		lambdacontext.MemoryLimitInMB = limit
	}
}

func TestGetMetaData(t *testing.T) {
	// NOTE: must set and unset the lambdacontext global vars.
	defer clearContext()

	cases := []struct {
		fn            string
		v             string
		alias         string
		expectedArn   string
		expectedAlias string
	}{
		{"fname", "1", "PRODUCTION", "arn:aws:lambda:us-east-1:xxxxx:function:fname:PRODUCTION", "PRODUCTION"},
		{"fname", "$LATEST", "$LATEST", "arn:aws:lambda:us-east-1:xxxxx:function:fname:$LATEST", "$LATEST"},
		{"fname", "4", "", "arn:aws:lambda:us-east-1:xxxxx:function:fname", ""},
		{"fname2", "3", "DEV", "arn:aws:lambda:us-east-1:xxxxx:function:fname2:DEV", "DEV"},
	}

	for _, c := range cases {
		ctx := prepareContext(c.fn, c.v, c.alias, "req-"+c.v)
		md := GetMetaData(ctx)

		assert.Equal(t, c.fn, md.FunctionName)
		assert.Equal(t, c.v, md.FunctionVersion)
		assert.Equal(t, 100, md.MemoryLimitInMB)
		assert.Equal(t, "logGroupName-test", md.LogGroupName)
		assert.Equal(t, "logStreamName-test", md.LogStreamName)
		assert.Equal(t, "req-"+c.v, md.RequestID)
		assert.Equal(t, c.expectedArn, md.InvokedFunctionArn)
		assert.Equal(t, c.expectedAlias, md.Alias())
	}
}

func TestGetMetaData_noLambdaContext(t *testing.T) {
	defer clearContext()
	lambdacontext.FunctionName = ""
	lambdacontext.FunctionVersion = ""

	md := GetMetaData(context.Background())

	assert.Equal(t, "", md.RequestID)
	assert.Equal(t, "", md.Alias())
	assert.Equal(t, logrus.Fields{}, md.Fields())
}

func TestMetaData_Fields(t *testing.T) {
	md := MetaData{
		FunctionName:       "fname",
		FunctionVersion:    "7",
		RequestID:          "req-1",
		InvokedFunctionArn: "arn:aws:lambda:us-east-1:xxxxx:function:fname:PRODUCTION",
	}

	assert.Equal(t, logrus.Fields{
		"request_id": "req-1",
		"function":   "fname",
		"version":    "7",
		"alias":      "PRODUCTION",
	}, md.Fields())
}

func TestLogger(t *testing.T) {
	defer clearContext()

	logger, hook := test.NewNullLogger()
	ctx := prepareContext("fname", "1", "", "req-9")

	Logger(ctx, logger).Info("hello")

	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, "hello", entry.Message)
		assert.Equal(t, "req-9", entry.Data["request_id"])
		assert.Equal(t, "fname", entry.Data["function"])
		_, ok := entry.Data["alias"]
		assert.False(t, ok)
	}
}
