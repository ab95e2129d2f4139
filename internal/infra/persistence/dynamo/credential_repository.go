package dynamo

import (
	"context"
	"time"

	"procure/internal/domain/entity"
	"procure/internal/domain/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// credentialAttributes is the slice of the users-table item owned by this
// repository. User writes leave these attributes alone.
type credentialAttributes struct {
	PasswordHash      string `dynamodbav:"passwordHash"`
	PasswordUpdatedAt int64  `dynamodbav:"passwordUpdatedAt"`
}

type credentialRepository struct {
	client *dynamodb.Client
	table  string
}

// NewCredentialRepository creates a credential repository that stores the
// password hash as attributes on the DynamoDB users table.
func NewCredentialRepository(client *dynamodb.Client, table string) repository.CredentialRepository {
	return &credentialRepository{client: client, table: table}
}

func (r *credentialRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Credential, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.table),
		Key:                  userKey(userID),
		ProjectionExpression: aws.String("passwordHash, passwordUpdatedAt"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb get credential")
	}
	if out.Item == nil {
		return nil, repository.ErrCredentialNotFound
	}

	var attrs credentialAttributes
	if err := attributevalue.UnmarshalMap(out.Item, &attrs); err != nil {
		return nil, errors.Wrap(err, "unmarshal credential attributes")
	}
	if attrs.PasswordHash == "" {
		return nil, repository.ErrCredentialNotFound
	}

	return &entity.Credential{
		UserID:       userID,
		PasswordHash: attrs.PasswordHash,
		UpdatedAt:    time.UnixMilli(attrs.PasswordUpdatedAt),
	}, nil
}

func (r *credentialRepository) Upsert(ctx context.Context, cred *entity.Credential) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              userKey(cred.UserID),
		UpdateExpression: aws.String("SET passwordHash = :passwordHash, passwordUpdatedAt = :passwordUpdatedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":passwordHash":      &types.AttributeValueMemberS{Value: cred.PasswordHash},
			":passwordUpdatedAt": &types.AttributeValueMemberN{Value: millis(cred.UpdatedAt)},
		},
	})
	if err != nil {
		return errors.Wrap(err, "dynamodb upsert credential")
	}

	return nil
}
