// Package lambdautils exposes details of the running lambda invocation to the
// rest of the service, mostly as structured log fields.
package lambdautils

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
)

// MetaData holds details about the current lambda function and invocation.
type MetaData struct {
	FunctionName       string
	FunctionVersion    string
	LogGroupName       string
	LogStreamName      string
	MemoryLimitInMB    int
	RequestID          string
	InvokedFunctionArn string
}

// GetMetaData returns the MetaData of the invocation carried by ctx. Outside
// of lambda every field is empty.
func GetMetaData(ctx context.Context) MetaData {
	md := MetaData{
		FunctionName:    lambdacontext.FunctionName,
		FunctionVersion: lambdacontext.FunctionVersion,
		LogGroupName:    lambdacontext.LogGroupName,
		LogStreamName:   lambdacontext.LogStreamName,
		MemoryLimitInMB: lambdacontext.MemoryLimitInMB,
	}

	if lc, ok := lambdacontext.FromContext(ctx); ok && lc != nil {
		md.RequestID = lc.AwsRequestID
		md.InvokedFunctionArn = lc.InvokedFunctionArn
	}

	return md
}

// Alias returns the alias or version qualifier the function was invoked
// through, or "" for an unqualified invocation.
func (md MetaData) Alias() string {
	// arn:aws:lambda:<region>:<account>:function:<name>[:<qualifier>]
	parts := strings.Split(md.InvokedFunctionArn, ":")
	if len(parts) < 8 {
		return ""
	}
	return parts[7]
}

// Fields returns the non empty metadata as log fields.
func (md MetaData) Fields() logrus.Fields {
	fields := logrus.Fields{}

	add := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}

	add("request_id", md.RequestID)
	add("function", md.FunctionName)
	add("version", md.FunctionVersion)
	add("alias", md.Alias())

	return fields
}

// Logger returns logger scoped to the invocation carried by ctx.
func Logger(ctx context.Context, logger logrus.FieldLogger) *logrus.Entry {
	return logger.WithFields(GetMetaData(ctx).Fields())
}
