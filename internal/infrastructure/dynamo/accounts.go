package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dashcrm-api/internal/domain"
)

// AccountRepo provides typed DynamoDB operations for the accounts table.
//
// Lookups distinguish a miss (domain.ErrNotFound) from a transport failure
// (the wrapped SDK error) so callers can tell "no such account" apart from
// "directory unreachable".
type AccountRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAccountRepo(client *dynamodb.Client, tableName string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName}
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("account_id", accountID),
	})
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) FindByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return r.queryGSI(ctx, "phone-index", "phone", phone)
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.queryGSI(ctx, "email-index", "email", email)
}

// UpdateOtpState replaces the account's OTP sub-state wholesale. A nil otp
// removes the attribute entirely, so code/expiry/attempts/lock are never
// observable half-set.
func (r *AccountRepo) UpdateOtpState(ctx context.Context, accountID string, otp *domain.PendingOtp) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("account_id", accountID),
		ExpressionAttributeNames: map[string]string{
			"#otp": "pending_otp",
		},
	}
	if otp == nil {
		input.UpdateExpression = aws.String("REMOVE #otp")
	} else {
		av, err := attributevalue.Marshal(otp)
		if err != nil {
			return fmt.Errorf("marshal otp state: %w", err)
		}
		input.UpdateExpression = aws.String("SET #otp = :otp")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{":otp": av}
	}
	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update otp state: %w", err)
	}
	return nil
}

func (r *AccountRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.Account, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", index, err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account by %s: %w", attr, domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}
