package dal

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	config "github.com/draftroom-social-core/v2/configuration"
	dynamo_configuration "github.com/draftroom-social-core/v2/configuration/dynamo"
	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

// Single-flight publish guard. Two concurrent publishes of the same draft
// must not race on the per-account accounting or the delete decision, so
// dispatch only proceeds while holding the draft's publish lock.

func TakeDraftPublishLock(draftId string, processId string) error {
	draft, err := GetDraft(draftId)
	if err != nil {
		log.Printf("error getting draft for publish lock: %s", err)
		return err
	}

	if !canTakeDraftPublishLock(processId, draft) {
		return fmt.Errorf("unable to take publish lock. draftId: %s processId: %s",
			draftId, processId)
	}
	return takeDraftLock(processId, draft)
}

func ReleaseDraftPublishLock(draftId string, processId string) error {
	const releaseLockId = ""
	const releaseTime = 0
	input := &dynamodb.UpdateItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			"DraftID": {
				S: aws.String(draftId),
			},
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":r": {
				S: aws.String(releaseLockId),
			},
			":v": {
				N: aws.String(strconv.FormatInt(releaseTime, 10)),
			},
			":ov": {
				S: aws.String(processId),
			},
		},
		TableName:           aws.String(dynamo_configuration.TABLE_DRAFTS),
		ReturnValues:        aws.String("NONE"),
		UpdateExpression:    aws.String("SET PublishLockID = :r, PublishLockTTL = :v"),
		ConditionExpression: aws.String("PublishLockID = :ov"),
	}

	_, err := svc.UpdateItem(input)
	if err != nil {
		log.Printf("error calling UpdateItem to release draft publish lock: %s", err)
		return err
	}
	return nil
}

func canTakeDraftPublishLock(processId string, draft tables.Draft) bool {
	if draft.PublishLockID == processId {
		return true
	}
	if draft.PublishLockID == "" {
		return true
	}

	lockExpiry := draft.PublishLockTTL
	epochNow := time.Now().UnixMilli()
	return epochNow > lockExpiry
}

func takeDraftLock(processId string, draft tables.Draft) error {
	expiryTime := time.Now().UnixMilli() + config.GetEnvConfigs().PublishLockMilliTTL
	input := &dynamodb.UpdateItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			"DraftID": {
				S: aws.String(draft.DraftID),
			},
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":r": {
				S: aws.String(processId),
			},
			":v": {
				N: aws.String(strconv.FormatInt(expiryTime, 10)),
			},
			":ov": {
				S: aws.String(draft.PublishLockID), // old lock holder
			},
			":n": {
				S: aws.String("NULL"),
			},
		},
		TableName:           aws.String(dynamo_configuration.TABLE_DRAFTS),
		ReturnValues:        aws.String("NONE"),
		UpdateExpression:    aws.String("SET PublishLockID = :r, PublishLockTTL = :v"),
		ConditionExpression: aws.String("PublishLockID = :ov OR attribute_type(PublishLockID, :n)"),
	}

	_, err := svc.UpdateItem(input)
	if err != nil {
		log.Printf("error calling UpdateItem to take draft publish lock: %s", err)
		return err
	}
	return err
}
