package store

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// FormsTableInput returns the definition of the forms table.
func FormsTableInput(name string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("form_id"),
				AttributeType: aws.String(dynamodb.ScalarAttributeTypeS),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("form_id"),
				KeyType:       aws.String(dynamodb.KeyTypeHash),
			},
		},
	}
}

// ResponsesTableInput returns the definition of the responses table.
func ResponsesTableInput(name string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("form_id"),
				AttributeType: aws.String(dynamodb.ScalarAttributeTypeS),
			},
			{
				AttributeName: aws.String("response_id"),
				AttributeType: aws.String(dynamodb.ScalarAttributeTypeS),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("form_id"),
				KeyType:       aws.String(dynamodb.KeyTypeHash),
			},
			{
				AttributeName: aws.String("response_id"),
				KeyType:       aws.String(dynamodb.KeyTypeRange),
			},
		},
	}
}

// CreateTables creates both tables of the store.
func (d *Dynamo) CreateTables(ctx context.Context) error {
	if err := d.Forms.Create(ctx, FormsTableInput(d.Forms.Name)); err != nil {
		return err
	}
	return d.Responses.Create(ctx, ResponsesTableInput(d.Responses.Name))
}
