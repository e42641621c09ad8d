// Package dynamostore persists field values in a DynamoDB table keyed by
// PK = "<object>#<item>" and SK = "<name>". Values are stored as JSON strings.
package dynamostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

// API is the subset of the DynamoDB client used by the backend.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
}

type item struct {
	PK    string `dynamodbav:"PK"`
	SK    string `dynamodbav:"SK"`
	Value string `dynamodbav:"Value"`
}

// Backend implements datastore.Backend over DynamoDB.
type Backend struct {
	client API
	table  string
}

var _ datastore.Backend = (*Backend)(nil)

// New wraps a client for table.
func New(client API, table string) (*Backend, error) {
	if client == nil {
		return nil, errors.New("dynamostore: client is required")
	}
	if table == "" {
		return nil, errors.New("dynamostore: table is required")
	}
	return &Backend{client: client, table: table}, nil
}

// NewClient builds a DynamoDB client from static credentials. Empty keys
// fall back to the default AWS credential chain.
func NewClient(ctx context.Context, region, accessKey, secretKey string) (*sdk.Client, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("dynamostore: load aws config: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

func (b *Backend) Get(ctx context.Context, key datastore.Key) (any, bool, error) {
	out, err := b.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(b.table),
		Key:            keyAttributes(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, err
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}

	var row item
	if err := attributevalue.UnmarshalMap(out.Item, &row); err != nil {
		return nil, false, fmt.Errorf("dynamostore: unmarshal %s: %w", key, err)
	}
	var value any
	if err := json.Unmarshal([]byte(row.Value), &value); err != nil {
		return nil, false, fmt.Errorf("dynamostore: decode %s: %w", key, err)
	}
	return value, true, nil
}

func (b *Backend) Set(ctx context.Context, key datastore.Key, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("dynamostore: encode %s: %w", key, err)
	}
	av, err := attributevalue.MarshalMap(item{
		PK:    partitionKey(key),
		SK:    key.Name,
		Value: string(payload),
	})
	if err != nil {
		return fmt.Errorf("dynamostore: marshal %s: %w", key, err)
	}
	_, err = b.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(b.table),
		Item:      av,
	})
	return err
}

func (b *Backend) Delete(ctx context.Context, key datastore.Key) error {
	_, err := b.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: aws.String(b.table),
		Key:       keyAttributes(key),
	})
	return err
}

func partitionKey(key datastore.Key) string {
	return key.ObjectType + "#" + key.ItemID
}

func keyAttributes(key datastore.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: partitionKey(key)},
		"SK": &types.AttributeValueMemberS{Value: key.Name},
	}
}
