package forms

import (
	"context"

	"github.com/prognoshealth/formsapi/store"
)

// FormStore persists form definitions.
type FormStore interface {
	GetForm(ctx context.Context, formID string) (*store.Form, error)
	PutForm(ctx context.Context, form *store.Form) error
	UpdateForm(ctx context.Context, form *store.Form) error
}

// ResponseStore persists submitted responses.
type ResponseStore interface {
	GetResponse(ctx context.Context, formID, responseID string) (*store.Response, error)
	PutResponse(ctx context.Context, response *store.Response) error
	UpdateAnswers(ctx context.Context, formID, responseID string, answers map[string]interface{}) error
}

var (
	_ FormStore     = (*store.Dynamo)(nil)
	_ ResponseStore = (*store.Dynamo)(nil)
	_ FormStore     = (*store.Memory)(nil)
	_ ResponseStore = (*store.Memory)(nil)
)
