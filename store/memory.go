package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/pkg/errors"
)

type responseKey struct {
	formID     string
	responseID string
}

// Memory is an in-process store with the same semantics as Dynamo. Values are
// copied on the way in and out so callers never share state with the store.
type Memory struct {
	mu        sync.Mutex
	forms     map[string]*Form
	responses map[responseKey]*Response
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		forms:     map[string]*Form{},
		responses: map[responseKey]*Response{},
	}
}

func conditionFailed(what string) error {
	return awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, what+" already exists", nil)
}

// GetForm fetches the form with the given id.
func (m *Memory) GetForm(ctx context.Context, formID string) (*Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	form, ok := m.forms[formID]
	if !ok {
		return nil, errors.Wrapf(ErrNoSuchItem, "form %s", formID)
	}

	out := &Form{}
	if err := deepCopy(form, out); err != nil {
		return nil, err
	}
	return out, nil
}

// PutForm stores a new form. It fails if the form id is already taken.
func (m *Memory) PutForm(ctx context.Context, form *Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.forms[form.FormID]; ok {
		return errors.Wrap(conditionFailed("form "+form.FormID), "failed put to memory")
	}

	stored := &Form{}
	if err := deepCopy(form, stored); err != nil {
		return err
	}
	m.forms[form.FormID] = stored
	return nil
}

// UpdateForm replaces the title and fields of a form, creating it when the id
// is unknown.
func (m *Memory) UpdateForm(ctx context.Context, form *Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := &Form{}
	if err := deepCopy(form, stored); err != nil {
		return err
	}
	stored.Fields = stored.FieldList()
	m.forms[form.FormID] = stored
	return nil
}

// GetResponse fetches a single response of a form.
func (m *Memory) GetResponse(ctx context.Context, formID, responseID string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	response, ok := m.responses[responseKey{formID, responseID}]
	if !ok {
		return nil, errors.Wrapf(ErrNoSuchItem, "response %s/%s", formID, responseID)
	}

	out := &Response{}
	if err := deepCopy(response, out); err != nil {
		return nil, err
	}
	return out, nil
}

// PutResponse stores a new response. It fails if the response id is already
// taken for that form.
func (m *Memory) PutResponse(ctx context.Context, response *Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := responseKey{response.FormID, response.ResponseID}
	if _, ok := m.responses[key]; ok {
		return errors.Wrap(conditionFailed("response "+response.ResponseID), "failed put to memory")
	}

	stored := &Response{}
	if err := deepCopy(response, stored); err != nil {
		return err
	}
	m.responses[key] = stored
	return nil
}

// UpdateAnswers overwrites the answers of a response and leaves every other
// attribute untouched. Like a DynamoDB update it creates a bare item when the
// response does not exist.
func (m *Memory) UpdateAnswers(ctx context.Context, formID, responseID string, answers map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := map[string]interface{}{}
	if answers != nil {
		if err := deepCopy(answers, &copied); err != nil {
			return err
		}
	}

	key := responseKey{formID, responseID}
	stored, ok := m.responses[key]
	if !ok {
		stored = &Response{FormID: formID, ResponseID: responseID}
		m.responses[key] = stored
	}
	stored.Answers = copied
	return nil
}

// Len returns the number of stored forms and responses.
func (m *Memory) Len() (forms int, responses int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.forms), len(m.responses)
}

func deepCopy(in, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "failed copying value")
	}
	if err := json.Unmarshal(b, out); err != nil {
		return errors.Wrap(err, "failed copying value")
	}
	return nil
}
