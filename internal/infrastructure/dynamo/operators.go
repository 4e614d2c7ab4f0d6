package dynamo

import (
	"context"
	"fmt"

	"github.com/admin-console-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// OperatorRepo stores console operator identities.
type OperatorRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOperatorRepo(client *dynamodb.Client, tableName string) *OperatorRepo {
	return &OperatorRepo{client: client, tableName: tableName}
}

func (r *OperatorRepo) Put(ctx context.Context, op *domain.Operator) error {
	item, err := attributevalue.MarshalMap(op)
	if err != nil {
		return fmt.Errorf("marshal operator: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OperatorRepo) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-index"),
		KeyConditionExpression: aws.String("email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("operator %s: %w", email, domain.ErrNotFound)
	}
	var op domain.Operator
	if err := attributevalue.UnmarshalMap(out.Items[0], &op); err != nil {
		return nil, err
	}
	return &op, nil
}
