package dynamo

import (
	"context"

	"github.com/admin-console-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TransactionRepo reads the transactions table. Transactions are written by
// the purchase flow; the console only reads them.
type TransactionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTransactionRepo(client *dynamodb.Client, tableName string) *TransactionRepo {
	return &TransactionRepo{client: client, tableName: tableName}
}

// ListByAccount returns an account's transactions in creation order via the
// account_id-created_at GSI.
func (r *TransactionRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("account_id-created_at-index"),
		KeyConditionExpression: aws.String("account_id = :a"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: accountID},
		},
		ScanIndexForward: aws.Bool(true),
	})
}

// ListByAccountAndCoupon returns the account's transactions that redeemed the
// given (already uppercased) coupon code.
func (r *TransactionRepo) ListByAccountAndCoupon(ctx context.Context, accountID, code string) ([]domain.Transaction, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("account_id-created_at-index"),
		KeyConditionExpression: aws.String("account_id = :a"),
		FilterExpression:       aws.String("coupon_code = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: accountID},
			":c": &types.AttributeValueMemberS{Value: code},
		},
		ScanIndexForward: aws.Bool(true),
	})
}

func (r *TransactionRepo) query(ctx context.Context, input *dynamodb.QueryInput) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Transaction
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		txs = append(txs, page...)
	}
	return txs, nil
}
