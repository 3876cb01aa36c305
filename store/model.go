// Package store persists forms and responses in two DynamoDB tables.
//
// The forms table is keyed by form_id alone. The responses table is keyed by
// form_id (hash) and response_id (range). Memory provides the same operations
// without DynamoDB for tests and local runs.
package store

// PlaceholderTitle is used for forms created or stored without a title.
const PlaceholderTitle = "Untitled form"

// Form is a form definition. Fields are opaque to the backend.
type Form struct {
	FormID string        `json:"form_id" dynamodbav:"form_id"`
	Title  string        `json:"title" dynamodbav:"title"`
	Fields []interface{} `json:"fields" dynamodbav:"fields"`
}

// DisplayTitle returns the title, or PlaceholderTitle when none is stored.
func (f *Form) DisplayTitle() string {
	if f.Title == "" {
		return PlaceholderTitle
	}
	return f.Title
}

// FieldList returns the stored fields, never nil.
func (f *Form) FieldList() []interface{} {
	if f.Fields == nil {
		return []interface{}{}
	}
	return f.Fields
}

// Response is one submission to a form. EditToken is the only credential
// allowing the submitter to read or change Answers later.
type Response struct {
	FormID     string                 `json:"form_id" dynamodbav:"form_id"`
	ResponseID string                 `json:"response_id" dynamodbav:"response_id"`
	EditToken  string                 `json:"edit_token" dynamodbav:"edit_token"`
	Answers    map[string]interface{} `json:"answers" dynamodbav:"answers"`
}

// AnswerMap returns the stored answers, never nil.
func (r *Response) AnswerMap() map[string]interface{} {
	if r.Answers == nil {
		return map[string]interface{}{}
	}
	return r.Answers
}
