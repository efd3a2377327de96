package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cristianccgg/letranido-backend/logging"
)

type ContestStorage interface {
	Get(ctx context.Context, id string) (*Contest, error)
	GetAll(ctx context.Context) ([]*Contest, error)
	Put(ctx context.Context, contest *Contest) error
	TransitionToResults(ctx context.Context, id string, finalizedAt time.Time) error
}

type DynamoContestStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoContestStorage) Get(ctx context.Context, id string) (*Contest, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("CONTEST: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("CONTEST: GET storage failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrContestNotFound
	}

	var contest *Contest
	if err := attributevalue.UnmarshalMap(out.Item, &contest); err != nil {
		logging.Log.Errorf("CONTEST: failed to unmarshal result: %v", err)
		return nil, err
	}
	return contest, nil
}

func (s *DynamoContestStorage) GetAll(ctx context.Context) ([]*Contest, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("CONTEST: SCAN storage failed: %v", err)
		return nil, err
	}

	var contests []*Contest
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &contests); err != nil {
		logging.Log.Errorf("CONTEST: failed to unmarshal list: %v", err)
		return nil, err
	}
	return contests, nil
}

func (s *DynamoContestStorage) Put(ctx context.Context, contest *Contest) error {
	item, err := attributevalue.MarshalMap(contest)
	if err != nil {
		logging.Log.Errorf("CONTEST: failed to marshal contest: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("CONTEST: PUT storage failed: %v", err)
		return err
	}
	return nil
}

// TransitionToResults flips the contest into the terminal results status.
// The condition refuses the write when the contest is missing or already
// in results, so two concurrent finalize calls cannot both pass.
func (s *DynamoContestStorage) TransitionToResults(ctx context.Context, id string, finalizedAt time.Time) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET ContestStatus = :results, FinalizedAt = :at"),
		ConditionExpression: aws.String("attribute_exists(PK) AND ContestStatus <> :results"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":results": &types.AttributeValueMemberS{Value: string(ContestStatusResults)},
			":at":      &types.AttributeValueMemberS{Value: finalizedAt.UTC().Format(time.RFC3339Nano)},
		},
	}

	_, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			logging.Log.Warnf("CONTEST: results transition refused for %s, contest missing or already finalized", id)
			return ErrAlreadyFinalized
		}
		logging.Log.Errorf("CONTEST: results transition failed for %s: %v", id, err)
		return err
	}
	return nil
}
