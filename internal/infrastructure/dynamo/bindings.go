package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-wallet-verify/internal/domain"
)

// WalletBindingRepo provides typed DynamoDB operations for the wallet-bindings
// table. PK: address.
type WalletBindingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewWalletBindingRepo(client *dynamodb.Client, tableName string) *WalletBindingRepo {
	return &WalletBindingRepo{client: client, tableName: tableName}
}

// Upsert writes the binding with a single conditional put: the item may not
// exist yet, or must already belong to the same user. An address owned by a
// different user fails the condition and maps to domain.ErrConflict, which is
// what makes the upsert idempotent per owner and exclusive across owners.
func (r *WalletBindingRepo) Upsert(ctx context.Context, b *domain.WalletBinding) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal binding: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(address) OR user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: b.UserID},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("address %s already bound to another user: %w", b.Address, domain.ErrConflict)
		}
		return fmt.Errorf("put binding: %w", domain.ErrPersistence)
	}
	return nil
}

// Get returns the binding for an address.
func (r *WalletBindingRepo) Get(ctx context.Context, address string) (*domain.WalletBinding, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("address", address),
	})
	if err != nil {
		return nil, fmt.Errorf("get binding: %w", domain.ErrPersistence)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("binding %s: %w", address, domain.ErrNotFound)
	}
	var b domain.WalletBinding
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, fmt.Errorf("unmarshal binding: %w", domain.ErrPersistence)
	}
	return &b, nil
}

// ListByUser returns every wallet bound to a user via the user_id-index GSI.
func (r *WalletBindingRepo) ListByUser(ctx context.Context, userID string) ([]domain.WalletBinding, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query bindings: %w", domain.ErrPersistence)
	}
	var bindings []domain.WalletBinding
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &bindings); err != nil {
		return nil, fmt.Errorf("unmarshal bindings: %w", domain.ErrPersistence)
	}
	return bindings, nil
}
