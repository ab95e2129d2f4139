package dynamo

import (
	"context"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
)

type sessionRecord struct {
	SessionID string `dynamodbav:"sessionId"`
	UserID    string `dynamodbav:"userId"`
	Email     string `dynamodbav:"email"`
	IssuedAt  int64  `dynamodbav:"issuedAt"`
	ExpiresAt int64  `dynamodbav:"expiresAt"`
}

type sessionMirror struct {
	client *dynamodb.Client
	table  string
}

// NewSessionMirror creates a best-effort remote copy of the session slot,
// keyed by session ID in the DynamoDB sessions table.
func NewSessionMirror(client *dynamodb.Client, table string) repository.SessionMirror {
	return &sessionMirror{client: client, table: table}
}

func (m *sessionMirror) Save(ctx context.Context, session *entity.Session) error {
	item, err := attributevalue.MarshalMap(sessionRecord{
		SessionID: session.ID,
		UserID:    session.UserID.String(),
		Email:     session.Email,
		IssuedAt:  session.IssuedAt.UnixMilli(),
		ExpiresAt: session.ExpiresAt.UnixMilli(),
	})
	if err != nil {
		return errors.Wrap(err, "marshal session record")
	}

	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.table),
		Item:      item,
	})
	if err != nil {
		return errors.Wrap(err, "dynamodb put session")
	}

	return nil
}

func (m *sessionMirror) Remove(ctx context.Context, sessionID string) error {
	_, err := m.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(m.table),
		Key: map[string]types.AttributeValue{
			"sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
	})
	if err != nil {
		return errors.Wrap(err, "dynamodb delete session")
	}

	return nil
}
