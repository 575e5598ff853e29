package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepository(client *dynamodb.Client, tableName string) *UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	for {
		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan users: %w", err)
		}

		var pageItems []domain.User
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal users: %w", err)
		}
		users = append(users, pageItems...)

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return users, nil
}

func (r *UserRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if result.Item == nil {
		return nil, ErrUserNotFound
	}

	var user domain.User
	if err := attributevalue.UnmarshalMap(result.Item, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail scans with an equality filter. Login volume is a
// handful of admins; a GSI would be overkill here.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Equal(expression.Name("email"), expression.Value(email))).
		Build()
	if err != nil {
		return nil, err
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	for {
		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan users: %w", err)
		}

		if len(result.Items) > 0 {
			var user domain.User
			if err := attributevalue.UnmarshalMap(result.Items[0], &user); err != nil {
				return nil, fmt.Errorf("failed to unmarshal user: %w", err)
			}
			return &user, nil
		}

		if result.LastEvaluatedKey == nil {
			return nil, ErrUserNotFound
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// SetBanned flips the ban flag. Banning records the reason; unbanning
// clears it.
func (r *UserRepository) SetBanned(ctx context.Context, userID string, banned bool, reason string) error {
	if !banned {
		reason = ""
	}

	update := expression.
		Set(expression.Name("banned"), expression.Value(banned)).
		Set(expression.Name("ban_reason"), expression.Value(reason)).
		Set(expression.Name("updated_at"), expression.Value(time.Now()))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("user_id"))).
		Build()
	if err != nil {
		return err
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
