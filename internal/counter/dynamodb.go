package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tckz/view-counter/internal/config"
)

// DynamoDBAPI is the subset of *dynamodb.Client used by DynamoDBCounter.
type DynamoDBAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

var _ Counter = (*DynamoDBCounter)(nil)

// DynamoDBCounter stores the count in the item id="views" of TableName.
type DynamoDBCounter struct {
	table  string
	client DynamoDBAPI
}

type dynamoRecord struct {
	Count int64 `dynamodbav:"count"`
}

func NewDynamoDBCounter(ctx context.Context, cfg config.Config) (*DynamoDBCounter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("config.LoadDefaultConfig: %w", err)
	}

	if cfg.DynamoDBEndpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		// DynamoDB Local accepts any key pair. A configured chain is kept
		// even if it cannot resolve yet.
		if awsCfg.Credentials == nil {
			awsCfg.Credentials = credentials.NewStaticCredentialsProvider("local", "local", "")
		}
	}

	return NewDynamoDBCounterWithClient(cfg.TableName, dynamodb.NewFromConfig(awsCfg)), nil
}

func NewDynamoDBCounterWithClient(table string, client DynamoDBAPI) *DynamoDBCounter {
	return &DynamoDBCounter{table: table, client: client}
}

func (c *DynamoDBCounter) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: ID},
	}
}

func (c *DynamoDBCounter) Up(ctx context.Context) (int64, error) {
	out, err := c.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(c.table),
		Key:              c.key(),
		UpdateExpression: aws.String("SET #count = if_not_exists(#count, :start) + :inc"),
		ExpressionAttributeNames: map[string]string{
			"#count": "count",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":start": &types.AttributeValueMemberN{Value: "0"},
			":inc":   &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, storeError("dynamodb", "Up", err)
	}

	if _, ok := out.Attributes["count"]; !ok {
		return 0, storeError("dynamodb", "Up", errors.New("count missing from UpdateItem response"))
	}

	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return 0, storeError("dynamodb", "Up", err)
	}
	return rec.Count, nil
}

func (c *DynamoDBCounter) Get(ctx context.Context) (int64, error) {
	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.table),
		Key:            c.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, storeError("dynamodb", "Get", err)
	}
	if out.Item == nil {
		return 0, nil
	}

	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return 0, storeError("dynamodb", "Get", err)
	}
	return rec.Count, nil
}

func (c *DynamoDBCounter) Close() error {
	return nil
}
