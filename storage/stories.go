package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cristianccgg/letranido-backend/logging"
)

type StoryStorage interface {
	GetByContest(ctx context.Context, contestID string) ([]*Story, error)
	Create(ctx context.Context, story *Story) error
}

type DynamoStoryStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoStoryStorage) GetByContest(ctx context.Context, contestID string) ([]*Story, error) {
	input := &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :contest"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":contest": &types.AttributeValueMemberS{Value: contestID},
		},
	}

	output, err := s.Client.Query(ctx, input)
	if err != nil {
		logging.Log.Errorf("STORY: failed to query stories for contest %s: %v", contestID, err)
		return nil, err
	}

	var stories []*Story
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &stories); err != nil {
		logging.Log.Errorf("STORY: failed to unmarshal stories for contest %s: %v", contestID, err)
		return nil, err
	}
	return stories, nil
}

func (s *DynamoStoryStorage) Create(ctx context.Context, story *Story) error {
	item, err := attributevalue.MarshalMap(story)
	if err != nil {
		logging.Log.Errorf("STORY: failed to marshal story: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		logging.Log.Errorf("STORY: failed to create story: %v", err)
		return err
	}
	return nil
}
