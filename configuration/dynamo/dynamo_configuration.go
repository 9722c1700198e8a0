package dynamo

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	aws_configuration "github.com/draftroom-social-core/v2/configuration"

	"log"
	"strings"
)

const TABLE_SOCIAL_ACCOUNTS = "SocialAccounts"
const TABLE_DRAFTS = "Drafts"
const ACCOUNT_PLATFORM_GSI_NAME = "AccountsByPlatform" // For querying by facebook, tiktok, ...
const MAX_QPS_ON_DEMAND_GSI = 50

func Init() {
	log.Printf("Initializing DynamoDB Tables")

	svc := dynamodb.New(aws_configuration.GetAwsSession())
	createTableSocialAccounts(svc)
	createTableDrafts(svc)
}

// Social account directory.
// PK: AccountID (guid, unique per connected account across all platforms)
// GSI: Platform HASH + ConnectedAtEpochMilli RANGE, for listing one
// platform's accounts in connect order.
func createTableSocialAccounts(svc *dynamodb.DynamoDB) {
	tableName := TABLE_SOCIAL_ACCOUNTS
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("AccountID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("Platform"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("ConnectedAtEpochMilli"),
				AttributeType: aws.String("N"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("AccountID"),
				KeyType:       aws.String("HASH"),
			},
		},
		GlobalSecondaryIndexes: []*dynamodb.GlobalSecondaryIndex{
			{
				IndexName: aws.String(ACCOUNT_PLATFORM_GSI_NAME),
				KeySchema: []*dynamodb.KeySchemaElement{
					{
						AttributeName: aws.String("Platform"),
						KeyType:       aws.String("HASH"),
					},
					{
						AttributeName: aws.String("ConnectedAtEpochMilli"),
						KeyType:       aws.String("RANGE"),
					},
				},
				Projection: &dynamodb.Projection{
					ProjectionType: aws.String(dynamodb.ProjectionTypeAll),
				},
				OnDemandThroughput: &dynamodb.OnDemandThroughput{
					MaxReadRequestUnits:  aws.Int64(MAX_QPS_ON_DEMAND_GSI),
					MaxWriteRequestUnits: aws.Int64(MAX_QPS_ON_DEMAND_GSI),
				},
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(tableName),
	}
	createTable(svc, input, tableName)
}

// Draft store.
// PK: DraftID (guid)
// PublishLockID/PublishLockTTL guard against concurrent publishes of
// the same draft racing on the delete decision.
func createTableDrafts(svc *dynamodb.DynamoDB) {
	tableName := TABLE_DRAFTS
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("DraftID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("DraftID"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(tableName),
	}
	createTable(svc, input, tableName)
}

func createTable(svc *dynamodb.DynamoDB, input *dynamodb.CreateTableInput, tableName string) {
	_, err := svc.CreateTable(input)
	if tableAlreadyExists(err) {
		log.Println("Table already exists", tableName)
	} else if err != nil {
		log.Fatalf("Got error calling CreateTable: %s", err)
	} else {
		log.Println("Created the table", tableName)
	}
}

func tableAlreadyExists(err error) bool {
	if err != nil && strings.Contains(err.Error(), "ResourceInUseException") {
		return true
	}
	return false
}
