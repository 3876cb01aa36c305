package store

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"
)

// ErrNoSuchItem is the cause of every error returned for a missing item.
var ErrNoSuchItem = errors.New("NoSuchItem")

// IsNoSuchItem reports whether err was caused by a missing item.
func IsNoSuchItem(err error) bool {
	return err != nil && errors.Cause(err) == ErrNoSuchItem
}

// IsConditionFailed reports whether err is a failed conditional write.
func IsConditionFailed(err error) bool {
	aerr, ok := errors.Cause(err).(awserr.Error)
	return ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}

// Table provides access to a single DynamoDB table.
type Table struct {
	Name     string
	Region   string
	Endpoint string

	db dynamodbiface.DynamoDBAPI
}

// Option configures a Table in Connect.
type Option func(*Table) error

// Region sets the AWS region of the table.
func Region(region string) Option {
	return func(t *Table) error {
		t.Region = region
		return nil
	}
}

// Endpoint points the table at a non default DynamoDB endpoint, e.g. a local
// DynamoDB container.
func Endpoint(endpoint string) Option {
	return func(t *Table) error {
		t.Endpoint = endpoint
		return nil
	}
}

// Client makes the table use db instead of building a client from a new
// session.
func Client(db dynamodbiface.DynamoDBAPI) Option {
	return func(t *Table) error {
		if db == nil {
			return errors.New("nil dynamodb client")
		}
		t.db = db
		return nil
	}
}

// Connect returns a Table for name.
func Connect(name string, options ...Option) (*Table, error) {
	if name == "" {
		return nil, errors.New("table name is required")
	}

	t := &Table{Name: name}
	for _, option := range options {
		if err := option(t); err != nil {
			return nil, errors.Wrapf(err, "failed configuring table %s", name)
		}
	}

	if t.db != nil {
		return t, nil
	}

	cfg := &aws.Config{}
	if t.Region != "" {
		cfg.Region = aws.String(t.Region)
	}
	if t.Endpoint != "" {
		cfg.Endpoint = aws.String(t.Endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed getting session")
	}

	t.db = dynamodb.New(sess)
	return t, nil
}

// Create creates the table from def, using the table's own name.
func (t *Table) Create(ctx context.Context, def *dynamodb.CreateTableInput) error {
	def.TableName = aws.String(t.Name)
	_, err := t.db.CreateTableWithContext(ctx, def)
	if err != nil {
		return errors.Wrapf(err, "failed creating table %s", t.Name)
	}
	return nil
}

func (t *Table) getItem(ctx context.Context, key map[string]*dynamodb.AttributeValue, out interface{}) error {
	result, err := t.db.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.Name),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return errors.Wrapf(err, "failed get from %s", t.Name)
	}

	if len(result.Item) == 0 {
		return ErrNoSuchItem
	}

	if err := dynamodbattribute.UnmarshalMap(result.Item, out); err != nil {
		return errors.Wrapf(err, "failed decoding item from %s", t.Name)
	}

	return nil
}

// putNew stores item unless an item with the same hash key already exists.
func (t *Table) putNew(ctx context.Context, item interface{}, hashKey string) error {
	av, err := marshalMap(item)
	if err != nil {
		return errors.Wrapf(err, "failed encoding item for %s", t.Name)
	}

	_, err = t.db.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(t.Name),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]*string{"#k": aws.String(hashKey)},
	})
	if err != nil {
		return errors.Wrapf(err, "failed put to %s", t.Name)
	}

	return nil
}

// update sets the given attributes on the item at key, creating the item
// when it does not exist.
func (t *Table) update(ctx context.Context, key map[string]*dynamodb.AttributeValue, set map[string]interface{}) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.Name),
		Key:                       key,
		ExpressionAttributeNames:  map[string]*string{},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{},
	}

	expr := ""
	for _, name := range sortedKeys(set) {
		av, err := marshal(set[name])
		if err != nil {
			return errors.Wrapf(err, "failed encoding %s for %s", name, t.Name)
		}

		input.ExpressionAttributeNames["#"+name] = aws.String(name)
		input.ExpressionAttributeValues[":"+name] = av

		if expr != "" {
			expr += ", "
		}
		expr += "#" + name + " = :" + name
	}

	input.UpdateExpression = aws.String("SET " + expr)

	if _, err := t.db.UpdateItemWithContext(ctx, input); err != nil {
		return errors.Wrapf(err, "failed update on %s", t.Name)
	}

	return nil
}

func stringKey(pairs ...string) map[string]*dynamodb.AttributeValue {
	key := make(map[string]*dynamodb.AttributeValue, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key[pairs[i]] = &dynamodb.AttributeValue{S: aws.String(pairs[i+1])}
	}
	return key
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// encoder keeps empty strings and empty collections inside answers and fields
// instead of turning them into NULL.
var encoder = dynamodbattribute.NewEncoder(func(e *dynamodbattribute.Encoder) {
	e.NullEmptyString = false
	e.EnableEmptyCollections = true
})

func marshal(v interface{}) (*dynamodb.AttributeValue, error) {
	return encoder.Encode(v)
}

func marshalMap(v interface{}) (map[string]*dynamodb.AttributeValue, error) {
	av, err := encoder.Encode(v)
	if err != nil {
		return nil, err
	}
	if av == nil || av.M == nil {
		return nil, errors.New("item did not encode to a map")
	}
	return av.M, nil
}
