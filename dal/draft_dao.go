package dal

import (
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	dynamo_configuration "github.com/draftroom-social-core/v2/configuration/dynamo"
	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

func CreateDraft(item tables.Draft) error {
	now := time.Now().UnixMilli()
	if item.CreatedAtEpochMilli == 0 {
		item.CreatedAtEpochMilli = now
	}
	item.UpdatedAtEpochMilli = now

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		log.Printf("got error marshalling draft item: %s", err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_DRAFTS),
	}
	_, err = svc.PutItem(input)
	if err != nil {
		log.Printf("got error calling PutItem draft: %s", err)
		return err
	}

	return err
}

func GetDraft(draftId string) (tables.Draft, error) {
	result, err := svc.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_DRAFTS),
		Key: map[string]*dynamodb.AttributeValue{
			"DraftID": {
				S: aws.String(draftId),
			},
		},
	})

	resultItem := tables.Draft{}
	if err != nil {
		log.Printf("got error calling GetItem draft item: %s", err)
		return resultItem, err
	}
	if len(result.Item) == 0 {
		return resultItem, fmt.Errorf("draft not found: %s", draftId)
	}

	err = dynamodbattribute.UnmarshalMap(result.Item, &resultItem)
	if err != nil {
		log.Printf("error unmarshalling draft item: %s", err)
		return resultItem, err
	}

	return resultItem, err
}

func DeleteDraft(draftId string) error {
	_, err := svc.DeleteItem(&dynamodb.DeleteItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_DRAFTS),
		Key: map[string]*dynamodb.AttributeValue{
			"DraftID": {
				S: aws.String(draftId),
			},
		},
	})
	if err != nil {
		log.Printf("got error calling DeleteItem draft: %s", err)
	}
	return err
}
