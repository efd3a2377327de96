package api

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/cristianccgg/letranido-backend/api/controllers"
	"github.com/cristianccgg/letranido-backend/api/transport"
	"github.com/cristianccgg/letranido-backend/awards"
	"github.com/cristianccgg/letranido-backend/contest"
	"github.com/cristianccgg/letranido-backend/founder"
	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/cristianccgg/letranido-backend/notify"
	"github.com/cristianccgg/letranido-backend/storage"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	r := transport.NewRouter(gin.DebugMode)

	// Create storage
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logging.Log.Errorf("failed to load AWS config: %v", err)
		panic("failed to load AWS config")
	}

	dynamoClient := dynamodb.NewFromConfig(cfg)

	contestStorage := &storage.DynamoContestStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameContests,
	}
	storyStorage := &storage.DynamoStoryStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameStories,
	}
	userStorage := &storage.DynamoUserStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameUsers,
	}
	badgeChecker := &storage.LambdaBadgeChecker{
		Client:       awslambda.NewFromConfig(cfg),
		FunctionName: s.config.SweepFunctionName,
	}

	// Build the engine: one award service, one notification queue, both
	// shared by every producer path.
	queue := notify.NewQueue()
	awardService := awards.NewService(userStorage)
	finalizer := contest.NewFinalizer(contestStorage, storyStorage, userStorage, awardService, queue)
	founderChecker := founder.NewChecker(userStorage, awardService, s.config.LaunchDate)

	//Register controllers
	contestController := controllers.NewContestController(finalizer)
	contestController.RegisterRoutes(r)
	badgeController := controllers.NewBadgeController(userStorage, awardService, badgeChecker, queue)
	badgeController.RegisterRoutes(r)
	notificationController := controllers.NewNotificationController(queue)
	notificationController.RegisterRoutes(r)
	founderController := controllers.NewFounderController(founderChecker)
	founderController.RegisterRoutes(r)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config.Port)
	} else {
		startLambda(r)
	}
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
