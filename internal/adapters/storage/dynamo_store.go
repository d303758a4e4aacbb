package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/stoik/phishcatch/internal/domain"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore implements ports.Storage on a single DynamoDB table keyed by PK and SK
type DynamoStore struct {
	client    DynamoAPI
	tableName string
}

// NewDynamoStore creates a new DynamoDB-backed store
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
	}
}

// Close is a no-op, the SDK client holds no connection
func (s *DynamoStore) Close() error {
	return nil
}

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func (s *DynamoStore) put(ctx context.Context, dto any, what string) error {
	item, err := attributevalue.MarshalMap(dto)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", what, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", what, err)
	}
	return nil
}

// SavePasswordHash overwrites any record with the same digest
func (s *DynamoStore) SavePasswordHash(ctx context.Context, record *domain.PasswordHashRecord) error {
	if record == nil {
		return errors.New("password hash record cannot be nil")
	}
	return s.put(ctx, passwordHashFromDomain(record), "password hash")
}

// GetPasswordHash retrieves a digest record
func (s *DynamoStore) GetPasswordHash(ctx context.Context, hash domain.ContentHash) (*domain.PasswordHashRecord, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            itemKey(pwHashPrefix+string(hash), pwHashSortKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get password hash: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var dto passwordHashDTO
	if err := attributevalue.UnmarshalMap(result.Item, &dto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal password hash: %w", err)
	}
	return dto.toDomain(), nil
}

// DeletePasswordHash removes a digest record
func (s *DynamoStore) DeletePasswordHash(ctx context.Context, hash domain.ContentHash) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(pwHashPrefix+string(hash), pwHashSortKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete password hash: %w", err)
	}
	return nil
}

// SaveDomHash stores a fingerprint under its domain
func (s *DynamoStore) SaveDomHash(ctx context.Context, record *domain.DomHashRecord) error {
	if record == nil {
		return errors.New("dom hash record cannot be nil")
	}
	return s.put(ctx, domHashFromDomain(record), "dom hash")
}

// FindDomHashes queries the fingerprint partition
func (s *DynamoStore) FindDomHashes(ctx context.Context, hash domain.ContentHash) ([]domain.DomHashRecord, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: domHashPrefix + string(hash)},
		},
		ConsistentRead: aws.Bool(true),
	})

	records := make([]domain.DomHashRecord, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query dom hashes: %w", err)
		}

		var dtos []domHashDTO
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &dtos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dom hashes: %w", err)
		}
		for i := range dtos {
			records = append(records, dtos[i].toDomain())
		}
	}
	return records, nil
}

// SaveUsername stores a username under its hostname
func (s *DynamoStore) SaveUsername(ctx context.Context, record *domain.UsernameRecord) error {
	if record == nil {
		return errors.New("username record cannot be nil")
	}
	return s.put(ctx, usernameFromDomain(record), "username")
}

// PutNotification stores a notification association
func (s *DynamoStore) PutNotification(ctx context.Context, record *domain.NotificationRecord) error {
	if record == nil {
		return errors.New("notification record cannot be nil")
	}
	return s.put(ctx, notificationFromDomain(record), "notification")
}

// GetNotification retrieves a notification association
func (s *DynamoStore) GetNotification(ctx context.Context, id string) (*domain.NotificationRecord, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            itemKey(notifPrefix+id, notifSortKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var dto notificationDTO
	if err := attributevalue.UnmarshalMap(result.Item, &dto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	record := dto.toDomain()
	return &record, nil
}

// DeleteNotification removes an association, ErrNotFound when absent
func (s *DynamoStore) DeleteNotification(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 itemKey(notifPrefix+id, notifSortKey),
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// ListNotifications scans the table for notification items
func (s *DynamoStore) ListNotifications(ctx context.Context) ([]domain.NotificationRecord, error) {
	return s.scanNotifications(ctx, "begins_with(PK, :prefix)", map[string]types.AttributeValue{
		":prefix": &types.AttributeValueMemberS{Value: notifPrefix},
	})
}

// DeleteNotificationsBefore scans for stale notifications and deletes them one by one
func (s *DynamoStore) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) ([]domain.NotificationRecord, error) {
	stale, err := s.scanNotifications(ctx, "begins_with(PK, :prefix) AND created_at_unix < :cutoff", map[string]types.AttributeValue{
		":prefix": &types.AttributeValueMemberS{Value: notifPrefix},
		":cutoff": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", cutoff.UnixNano())},
	})
	if err != nil {
		return nil, err
	}

	removed := make([]domain.NotificationRecord, 0, len(stale))
	for _, record := range stale {
		err := s.DeleteNotification(ctx, record.ID)
		if errors.Is(err, domain.ErrNotFound) {
			// Resolved by a click since the scan
			continue
		}
		if err != nil {
			return removed, err
		}
		removed = append(removed, record)
	}
	return removed, nil
}

func (s *DynamoStore) scanNotifications(ctx context.Context, filter string, values map[string]types.AttributeValue) ([]domain.NotificationRecord, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeValues: values,
	})

	records := make([]domain.NotificationRecord, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notifications: %w", err)
		}

		var dtos []notificationDTO
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &dtos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notifications: %w", err)
		}
		for i := range dtos {
			records = append(records, dtos[i].toDomain())
		}
	}
	sortNotifications(records)
	return records, nil
}
