package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/flowgatex/identity-api/internal/domain"
)

// AuthCodeRepo stores the authorization codes gating elevated-role signup.
// PK: code (uppercased).
type AuthCodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAuthCodeRepo(client *dynamodb.Client, tableName string) *AuthCodeRepo {
	return &AuthCodeRepo{client: client, tableName: tableName}
}

func (r *AuthCodeRepo) Put(ctx context.Context, c *domain.AuthCode) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal auth code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AuthCodeRepo) Get(ctx context.Context, code string) (*domain.AuthCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", code),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("auth code not found: %w", domain.ErrNotFound)
	}
	var c domain.AuthCode
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *AuthCodeRepo) Delete(ctx context.Context, code string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", code),
	})
	return err
}
