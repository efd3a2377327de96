package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/cristianccgg/letranido-backend/logging"
)

// BadgeChecker is the server-side badge sweep. It evaluates non-contest
// badge criteria for a user and returns the badges the user has newly
// qualified for.
type BadgeChecker interface {
	CheckBadges(ctx context.Context, userID string) ([]Badge, error)
}

// LambdaBadgeChecker invokes the sweep function synchronously.
type LambdaBadgeChecker struct {
	Client       *awslambda.Client
	FunctionName string
}

type badgeCheckRequest struct {
	UserID string `json:"userId"`
}

type badgeCheckResponse struct {
	Badges []Badge `json:"badges"`
}

func (c *LambdaBadgeChecker) CheckBadges(ctx context.Context, userID string) ([]Badge, error) {
	payload, err := json.Marshal(badgeCheckRequest{UserID: userID})
	if err != nil {
		return nil, err
	}

	out, err := c.Client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: aws.String(c.FunctionName),
		Payload:      payload,
	})
	if err != nil {
		logging.Log.Errorf("RPC: badge check invoke failed for user %s: %v", userID, err)
		return nil, err
	}
	if out.FunctionError != nil {
		logging.Log.Errorf("RPC: badge check function error for user %s: %s", userID, *out.FunctionError)
		return nil, fmt.Errorf("badge check function error: %s", *out.FunctionError)
	}

	var resp badgeCheckResponse
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		logging.Log.Errorf("RPC: failed to unmarshal badge check response for user %s: %v", userID, err)
		return nil, err
	}
	return resp.Badges, nil
}
