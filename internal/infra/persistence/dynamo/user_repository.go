package dynamo

import (
	"context"
	"strconv"
	"strings"
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

// userRecord is the users-table item. The password hash lives on the same
// item and is managed by the credential repository, so user writes must
// never touch that attribute wholesale.
type userRecord struct {
	ID                 string `dynamodbav:"id"`
	Name               string `dynamodbav:"name"`
	Email              string `dynamodbav:"email"`
	Role               string `dynamodbav:"role"`
	Status             string `dynamodbav:"status"`
	MustChangePassword bool   `dynamodbav:"mustChangePassword"`
	TwoFactorEnabled   bool   `dynamodbav:"twoFactorEnabled"`
	Deleted            bool   `dynamodbav:"deleted"`
	CreatedAt          int64  `dynamodbav:"createdAt"`
	UpdatedAt          int64  `dynamodbav:"updatedAt"`
}

func toUserRecord(user *entity.User) userRecord {
	return userRecord{
		ID:                 user.ID.String(),
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role.String(),
		Status:             user.Status.String(),
		MustChangePassword: user.MustChangePassword,
		TwoFactorEnabled:   user.TwoFactorEnabled,
		Deleted:            user.Deleted,
		CreatedAt:          user.CreatedAt.UnixMilli(),
		UpdatedAt:          user.UpdatedAt.UnixMilli(),
	}
}

func (r userRecord) toEntity() (*entity.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "parse user id %s", r.ID)
	}

	return &entity.User{
		ID:                 id,
		Name:               r.Name,
		Email:              r.Email,
		Role:               entity.Role(r.Role),
		Status:             entity.Status(r.Status),
		MustChangePassword: r.MustChangePassword,
		TwoFactorEnabled:   r.TwoFactorEnabled,
		Deleted:            r.Deleted,
		CreatedAt:          time.UnixMilli(r.CreatedAt),
		UpdatedAt:          time.UnixMilli(r.UpdatedAt),
	}, nil
}

type userRepository struct {
	client *dynamodb.Client
	table  string
}

// NewUserRepository creates a user repository backed by the DynamoDB users table.
func NewUserRepository(client *dynamodb.Client, table string) repository.UserRepository {
	return &userRepository{client: client, table: table}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       userKey(id),
	})
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb get user")
	}
	if out.Item == nil {
		return nil, repository.ErrUserNotFound
	}

	var record userRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, errors.Wrap(err, "unmarshal user record")
	}
	if record.Deleted {
		return nil, repository.ErrUserNotFound
	}

	return record.toEntity()
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	users, err := r.scan(ctx, "email = :email AND deleted = :deleted", map[string]types.AttributeValue{
		":email":   &types.AttributeValueMemberS{Value: email},
		":deleted": &types.AttributeValueMemberBOOL{Value: false},
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, repository.ErrUserNotFound
	}

	return users[0], nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	return r.scan(ctx, "deleted = :deleted", map[string]types.AttributeValue{
		":deleted": &types.AttributeValueMemberBOOL{Value: false},
	})
}

func (r *userRepository) FindPending(ctx context.Context) ([]*entity.User, error) {
	return r.scan(ctx, "#status = :status AND deleted = :deleted", map[string]types.AttributeValue{
		":status":  &types.AttributeValueMemberS{Value: entity.StatusPending.String()},
		":deleted": &types.AttributeValueMemberBOOL{Value: false},
	})
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	item, err := attributevalue.MarshalMap(toUserRecord(user))
	if err != nil {
		return errors.Wrap(err, "marshal user record")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return repository.ErrDuplicateEmail
		}

		return errors.Wrap(err, "dynamodb put user")
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key:       userKey(user.ID),
		UpdateExpression: aws.String(
			"SET #name = :name, email = :email, #role = :role, #status = :status, " +
				"mustChangePassword = :mustChangePassword, twoFactorEnabled = :twoFactorEnabled, updatedAt = :updatedAt",
		),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#name":   "name",
			"#role":   "role",
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":               &types.AttributeValueMemberS{Value: user.Name},
			":email":              &types.AttributeValueMemberS{Value: user.Email},
			":role":               &types.AttributeValueMemberS{Value: user.Role.String()},
			":status":             &types.AttributeValueMemberS{Value: user.Status.String()},
			":mustChangePassword": &types.AttributeValueMemberBOOL{Value: user.MustChangePassword},
			":twoFactorEnabled":   &types.AttributeValueMemberBOOL{Value: user.TwoFactorEnabled},
			":updatedAt":          &types.AttributeValueMemberN{Value: millis(time.Now())},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return repository.ErrUserNotFound
		}

		return errors.Wrap(err, "dynamodb update user")
	}

	return nil
}

func (r *userRepository) Approve(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, entity.StatusApproved)
}

func (r *userRepository) Reject(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, entity.StatusRejected)
}

func (r *userRepository) setStatus(ctx context.Context, id uuid.UUID, status entity.Status) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 userKey(id),
		UpdateExpression:    aws.String("SET #status = :status, updatedAt = :updatedAt"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":    &types.AttributeValueMemberS{Value: status.String()},
			":updatedAt": &types.AttributeValueMemberN{Value: millis(time.Now())},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return repository.ErrUserNotFound
		}

		return errors.Wrap(err, "dynamodb set user status")
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 userKey(id),
		UpdateExpression:    aws.String("SET deleted = :deleted, updatedAt = :updatedAt"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":deleted":   &types.AttributeValueMemberBOOL{Value: true},
			":updatedAt": &types.AttributeValueMemberN{Value: millis(time.Now())},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return repository.ErrUserNotFound
		}

		return errors.Wrap(err, "dynamodb delete user")
	}

	return nil
}

func (r *userRepository) scan(ctx context.Context, filter string, values map[string]types.AttributeValue) ([]*entity.User, error) {
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.table),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeValues: values,
	}
	if strings.Contains(filter, "#status") {
		input.ExpressionAttributeNames = map[string]string{"#status": "status"}
	}

	var users []*entity.User
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "dynamodb scan users")
		}

		var records []userRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &records); err != nil {
			return nil, errors.Wrap(err, "unmarshal user records")
		}
		for _, record := range records {
			user, err := record.toEntity()
			if err != nil {
				return nil, err
			}
			users = append(users, user)
		}
	}

	return users, nil
}

func userKey(id uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id.String()},
	}
}

func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
