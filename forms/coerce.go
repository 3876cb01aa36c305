package forms

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/prognoshealth/formsapi/proxy"
	"github.com/prognoshealth/formsapi/store"
)

// KindInvalidJSON is the failure kind for request bodies that are not valid
// JSON, or not a JSON object where one is required.
const KindInvalidJSON = "InvalidJSON"

func invalidJSON(err error) error {
	return proxy.NewError(KindInvalidJSON, err)
}

func decodeBody(body string) (interface{}, error) {
	if strings.TrimSpace(body) == "" {
		return map[string]interface{}{}, nil
	}

	var value interface{}
	if err := json.Unmarshal([]byte(body), &value); err != nil {
		return nil, invalidJSON(errors.Wrap(err, "invalid JSON body"))
	}
	return value, nil
}

// parseObject decodes body, which must hold a JSON object. An empty body is
// an empty object.
func parseObject(body string) (map[string]interface{}, error) {
	value, err := decodeBody(body)
	if err != nil {
		return nil, err
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, invalidJSON(errors.New("JSON body must be an object"))
	}
	return obj, nil
}

// parseAnswers decodes a submission body. Valid JSON that is not an object
// is submitted as no answers.
func parseAnswers(body string) (map[string]interface{}, error) {
	value, err := decodeBody(body)
	if err != nil {
		return nil, err
	}

	if obj, ok := value.(map[string]interface{}); ok {
		return obj, nil
	}
	return map[string]interface{}{}, nil
}

func coerceTitle(value interface{}) string {
	switch v := value.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return store.PlaceholderTitle
}

func coerceFields(value interface{}) []interface{} {
	if list, ok := value.([]interface{}); ok {
		return list
	}
	return []interface{}{}
}

func formFromBody(formID string, body map[string]interface{}) *store.Form {
	return &store.Form{
		FormID: formID,
		Title:  coerceTitle(body["title"]),
		Fields: coerceFields(body["fields"]),
	}
}

// tokenFromBody returns the edit token of an update request, preferring the
// edit_token key over token.
func tokenFromBody(body map[string]interface{}) string {
	for _, key := range []string{"edit_token", "token"} {
		if token, ok := body[key].(string); ok && token != "" {
			return token
		}
	}
	return ""
}

// answersFromBody returns the answers object of an update request. Without an
// answers object the whole body, less the token keys, is the answers.
func answersFromBody(body map[string]interface{}) map[string]interface{} {
	if answers, ok := body["answers"].(map[string]interface{}); ok {
		return answers
	}

	answers := make(map[string]interface{}, len(body))
	for key, value := range body {
		if key == "edit_token" || key == "token" {
			continue
		}
		answers[key] = value
	}
	return answers
}
