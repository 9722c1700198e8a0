package dal

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	dynamo_configuration "github.com/draftroom-social-core/v2/configuration/dynamo"
	tables "github.com/draftroom-social-core/v2/dal/tables/v1"

	"log"
)

func CreateSocialAccount(item tables.SocialAccount) error {
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		log.Printf("got error marshalling social account item: %s", err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_SOCIAL_ACCOUNTS),
	}
	_, err = svc.PutItem(input)
	if err != nil {
		log.Printf("got error calling PutItem social account: %s", err)
		return err
	}

	return err
}

func GetSocialAccount(accountId string) (tables.SocialAccount, error) {
	result, err := svc.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_SOCIAL_ACCOUNTS),
		Key: map[string]*dynamodb.AttributeValue{
			"AccountID": {
				S: aws.String(accountId),
			},
		},
	})

	resultItem := tables.SocialAccount{}
	if err != nil {
		log.Printf("got error calling GetItem socialAccount item: %s", err)
		return resultItem, err
	}

	err = dynamodbattribute.UnmarshalMap(result.Item, &resultItem)
	if err != nil {
		log.Printf("error unmarshalling socialAccount item: %s", err)
		return resultItem, err
	}

	return resultItem, err
}

func DeleteSocialAccount(accountId string) error {
	_, err := svc.DeleteItem(&dynamodb.DeleteItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_SOCIAL_ACCOUNTS),
		Key: map[string]*dynamodb.AttributeValue{
			"AccountID": {
				S: aws.String(accountId),
			},
		},
	})
	return err
}

// ListAccountsByPlatform pages the platform GSI in connect order and
// returns every account connected for the given platform.
func ListAccountsByPlatform(platform tables.Platform) ([]tables.SocialAccount, error) {
	result := []tables.SocialAccount{}
	lpk := ""
	lsk := ""
	var err error
	var page []tables.SocialAccount
	for {
		page, lpk, lsk, err = queryAccountsByPlatformPage(platform, lpk, lsk)
		if err != nil {
			log.Printf("failed to query social account platform GSI: %s", err)
			return []tables.SocialAccount{}, err
		}
		result = append(result, page...)
		if lpk == "" && lsk == "" {
			break
		}
	}
	return result, nil
}

func queryAccountsByPlatformPage(platform tables.Platform, lastPageKeyPK string,
	lastPageKeySK string) ([]tables.SocialAccount, string, string, error) {
	const maxRecordsPerQuery = 200
	queryInput := &dynamodb.QueryInput{
		TableName:              aws.String(dynamo_configuration.TABLE_SOCIAL_ACCOUNTS),
		IndexName:              aws.String(dynamo_configuration.ACCOUNT_PLATFORM_GSI_NAME),
		KeyConditionExpression: aws.String("#p = :p"),
		ScanIndexForward:       aws.Bool(true), // ASCending connect time.
		ExpressionAttributeNames: map[string]*string{
			"#p": aws.String("Platform"), // reserved word in expressions
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":p": {
				S: aws.String(string(platform)),
			},
		},
		Limit: aws.Int64(maxRecordsPerQuery),
	}
	if lastPageKeyPK != "" {
		queryInput.SetExclusiveStartKey(map[string]*dynamodb.AttributeValue{
			"Platform": {
				S: aws.String(lastPageKeyPK),
			},
			"ConnectedAtEpochMilli": {
				N: aws.String(lastPageKeySK),
			},
		})
	}
	queryOutput, err := svc.Query(queryInput)
	if err != nil {
		log.Printf("unable to query social account platform GSI: %s", err)
		return []tables.SocialAccount{}, "", "", err
	}

	const pk = "Platform"
	const sk = "ConnectedAtEpochMilli"
	pagePk := ""
	pageSk := ""
	if _, ok := queryOutput.LastEvaluatedKey[pk]; ok {
		pagePk = *queryOutput.LastEvaluatedKey[pk].S
	}
	if _, ok := queryOutput.LastEvaluatedKey[sk]; ok {
		pageSk = *queryOutput.LastEvaluatedKey[sk].N
	}

	resultItems := []tables.SocialAccount{}
	err = dynamodbattribute.UnmarshalListOfMaps(queryOutput.Items, &resultItems)
	if err != nil {
		log.Printf("error unmarshalling socialAccount items: %s", err)
		return resultItems, "", "", err
	}
	return resultItems, pagePk, pageSk, nil
}
