package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cristianccgg/letranido-backend/logging"
)

type UserStorage interface {
	Get(ctx context.Context, userID string) (*UserProfile, error)
	Put(ctx context.Context, profile *UserProfile) error
	GetBadges(ctx context.Context, userID string) ([]Badge, error)
	// UpdateBadges rewrites the full badge list. The write only lands when
	// the stored BadgeVersion still equals expectedVersion; a lost race
	// reports zero rows affected instead of an error.
	UpdateBadges(ctx context.Context, userID string, badges []Badge, expectedVersion int) (int, error)
	SetFounder(ctx context.Context, userID string, since time.Time) error
	LookupDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

type DynamoUserStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoUserStorage) Get(ctx context.Context, userID string) (*UserProfile, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": userID})
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("USER: GET storage failed for %s: %v", userID, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrUserNotFound
	}

	var profile *UserProfile
	if err := attributevalue.UnmarshalMap(out.Item, &profile); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal profile for %s: %v", userID, err)
		return nil, err
	}
	return profile, nil
}

func (s *DynamoUserStorage) Put(ctx context.Context, profile *UserProfile) error {
	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal profile: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("USER: PUT storage failed: %v", err)
		return err
	}
	return nil
}

func (s *DynamoUserStorage) GetBadges(ctx context.Context, userID string) ([]Badge, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.Badges, nil
}

func (s *DynamoUserStorage) UpdateBadges(ctx context.Context, userID string, badges []Badge, expectedVersion int) (int, error) {
	list, err := attributevalue.Marshal(badges)
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal badge list for %s: %v", userID, err)
		return 0, err
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:    aws.String("SET Badges = :badges, BadgeVersion = :next"),
		ConditionExpression: aws.String("attribute_exists(PK) AND BadgeVersion = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":badges":   list,
			":next":     &types.AttributeValueMemberN{Value: strconv.Itoa(expectedVersion+1)},
			":expected": &types.AttributeValueMemberN{Value: strconv.Itoa(expectedVersion)},
		},
	}

	_, err = s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			logging.Log.Warnf("USER: badge list write lost a race for %s at version %d", userID, expectedVersion)
			return 0, nil
		}
		logging.Log.Errorf("USER: badge list write failed for %s: %v", userID, err)
		return 0, err
	}
	return 1, nil
}

func (s *DynamoUserStorage) SetFounder(ctx context.Context, userID string, since time.Time) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:    aws.String("SET IsFounder = :val, FounderSince = :since"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":val":   &types.AttributeValueMemberBOOL{Value: true},
			":since": &types.AttributeValueMemberS{Value: since.UTC().Format(time.RFC3339Nano)},
		},
	}

	_, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrUserNotFound
		}
		logging.Log.Errorf("USER: founder flag write failed for %s: %v", userID, err)
		return err
	}
	return nil
}

// LookupDisplayNames is best effort. Callers default missing entries to a
// placeholder instead of failing.
func (s *DynamoUserStorage) LookupDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		})
	}

	out, err := s.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			s.TableName: {
				Keys:                 keys,
				ProjectionExpression: aws.String("PK, DisplayName"),
			},
		},
	})
	if err != nil {
		logging.Log.Errorf("USER: display name lookup failed: %v", err)
		return nil, err
	}

	names := make(map[string]string, len(userIDs))
	for _, item := range out.Responses[s.TableName] {
		var row struct {
			UserID      string `dynamodbav:"PK"`
			DisplayName string `dynamodbav:"DisplayName"`
		}
		if err := attributevalue.UnmarshalMap(item, &row); err != nil {
			logging.Log.Errorf("USER: failed to unmarshal lookup row: %v", err)
			continue
		}
		names[row.UserID] = row.DisplayName
	}
	return names, nil
}
