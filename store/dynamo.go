package store

import (
	"context"

	"github.com/pkg/errors"
)

// Dynamo keeps forms and responses in their DynamoDB tables.
type Dynamo struct {
	Forms     *Table
	Responses *Table
}

// NewDynamo returns a Dynamo store over the two tables.
func NewDynamo(forms, responses *Table) *Dynamo {
	return &Dynamo{Forms: forms, Responses: responses}
}

// GetForm fetches the form with the given id.
func (d *Dynamo) GetForm(ctx context.Context, formID string) (*Form, error) {
	form := &Form{}
	err := d.Forms.getItem(ctx, stringKey("form_id", formID), form)
	if err != nil {
		return nil, errors.Wrapf(err, "form %s", formID)
	}
	return form, nil
}

// PutForm stores a new form. It fails if the form id is already taken.
func (d *Dynamo) PutForm(ctx context.Context, form *Form) error {
	return d.Forms.putNew(ctx, form, "form_id")
}

// UpdateForm replaces the title and fields of a form, creating it when the id
// is unknown.
func (d *Dynamo) UpdateForm(ctx context.Context, form *Form) error {
	return d.Forms.update(ctx, stringKey("form_id", form.FormID), map[string]interface{}{
		"title":  form.Title,
		"fields": form.FieldList(),
	})
}

// GetResponse fetches a single response of a form.
func (d *Dynamo) GetResponse(ctx context.Context, formID, responseID string) (*Response, error) {
	response := &Response{}
	err := d.Responses.getItem(ctx, stringKey("form_id", formID, "response_id", responseID), response)
	if err != nil {
		return nil, errors.Wrapf(err, "response %s/%s", formID, responseID)
	}
	return response, nil
}

// PutResponse stores a new response. It fails if the response id is already
// taken for that form.
func (d *Dynamo) PutResponse(ctx context.Context, response *Response) error {
	return d.Responses.putNew(ctx, response, "response_id")
}

// UpdateAnswers overwrites the answers of a response and leaves every other
// attribute untouched.
func (d *Dynamo) UpdateAnswers(ctx context.Context, formID, responseID string, answers map[string]interface{}) error {
	if answers == nil {
		answers = map[string]interface{}{}
	}
	return d.Responses.update(ctx, stringKey("form_id", formID, "response_id", responseID), map[string]interface{}{
		"answers": answers,
	})
}
