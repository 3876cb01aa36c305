package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/prognoshealth/formsapi/config"
	"github.com/prognoshealth/formsapi/forms"
)

func main() {
	handler := forms.Configure(config.Load())
	lambda.Start(handler.Invoke)
}
