package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stoik/phishcatch/internal/domain"
)

type MockDynamoAPI struct {
	mock.Mock
}

func (m *MockDynamoAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *MockDynamoAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}

func (m *MockDynamoAPI) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func (m *MockDynamoAPI) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func (m *MockDynamoAPI) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.ScanOutput)
	return out, args.Error(1)
}

const testTable = "phishcatch"

func keyValue(key map[string]types.AttributeValue, name string) string {
	if v, ok := key[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func mustMarshal(t *testing.T, dto any) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(dto)
	require.NoError(t, err)
	return item
}

func TestDynamoStore_SavePasswordHash(t *testing.T) {
	client := new(MockDynamoAPI)
	store := NewDynamoStore(client, testTable)

	client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return aws.ToString(in.TableName) == testTable &&
			keyValue(in.Item, "PK") == "PWHASH#aa11" &&
			keyValue(in.Item, "SK") == "PWHASH" &&
			keyValue(in.Item, "hostname") == "portal.enterprise.example"
	})).Return(&dynamodb.PutItemOutput{}, nil)

	err := store.SavePasswordHash(context.Background(), &domain.PasswordHashRecord{
		Hash: "aa11", Hostname: "portal.enterprise.example", Username: "alice", CreatedAt: baseTime,
	})

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestDynamoStore_GetPasswordHash(t *testing.T) {
	client := new(MockDynamoAPI)
	store := NewDynamoStore(client, testTable)
	ctx := context.Background()

	item := mustMarshal(t, passwordHashFromDomain(&domain.PasswordHashRecord{
		Hash: "aa11", Hostname: "portal.enterprise.example", Username: "alice", CreatedAt: baseTime,
	}))

	client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return keyValue(in.Key, "PK") == "PWHASH#aa11"
	})).Return(&dynamodb.GetItemOutput{Item: item}, nil)
	client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return keyValue(in.Key, "PK") == "PWHASH#missing"
	})).Return(&dynamodb.GetItemOutput{}, nil)

	got, err := store.GetPasswordHash(ctx, "aa11")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ContentHash("aa11"), got.Hash)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, baseTime.Equal(got.CreatedAt))

	got, err = store.GetPasswordHash(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDynamoStore_GetPasswordHash_Error(t *testing.T) {
	client := new(MockDynamoAPI)
	store := NewDynamoStore(client, testTable)

	client.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	got, err := store.GetPasswordHash(context.Background(), "aa11")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestDynamoStore_FindDomHashes(t *testing.T) {
	client := new(MockDynamoAPI)
	store := NewDynamoStore(client, testTable)

	items := []map[string]types.AttributeValue{
		mustMarshal(t, domHashFromDomain(&domain.DomHashRecord{Hash: "ff00", Domain: "corp.example", CreatedAt: baseTime})),
		mustMarshal(t, domHashFromDomain(&domain.DomHashRecord{Hash: "ff00", Domain: "enterprise.example", CreatedAt: baseTime})),
	}
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return keyValue(in.ExpressionAttributeValues, ":pk") == "DOMHASH#ff00"
	})).Return(&dynamodb.QueryOutput{Items: items}, nil)

	records, err := store.FindDomHashes(context.Background(), "ff00")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "corp.example", records[0].Domain)
	assert.Equal(t, "enterprise.example", records[1].Domain)
	assert.Equal(t, domain.ContentHash("ff00"), records[1].Hash)
}

func TestDynamoStore_DeleteNotification(t *testing.T) {
	client := new(MockDynamoAPI)
	store := NewDynamoStore(client, testTable)
	ctx := context.Background()

	client.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return keyValue(in.Key, "PK") == "NOTIF#known"
	})).Return(&dynamodb.DeleteItemOutput{}, nil)
	client.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return keyValue(in.Key, "PK") == "NOTIF#unknown"
	})).Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")})

	assert.NoError(t, store.DeleteNotification(ctx, "known"))
	assert.ErrorIs(t, store.DeleteNotification(ctx, "unknown"), domain.ErrNotFound)
}

func TestDynamoStore_DeleteNotificationsBefore(t *testing.T) {
	client := new(MockDynamoAPI)
	store := NewDynamoStore(client, testTable)
	cutoff := baseTime.Add(time.Hour)

	items := []map[string]types.AttributeValue{
		mustMarshal(t, notificationFromDomain(&domain.NotificationRecord{ID: "n-2", Hash: "aa11", URL: "https://b.example", CreatedAt: baseTime.Add(time.Minute)})),
		mustMarshal(t, notificationFromDomain(&domain.NotificationRecord{ID: "n-1", Hash: "aa11", URL: "https://a.example", CreatedAt: baseTime})),
		mustMarshal(t, notificationFromDomain(&domain.NotificationRecord{ID: "n-3", Hash: "aa11", URL: "https://c.example", CreatedAt: baseTime})),
	}
	client.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		cut, ok := in.ExpressionAttributeValues[":cutoff"].(*types.AttributeValueMemberN)
		return ok && aws.ToString(in.TableName) == testTable && cut.Value != ""
	})).Return(&dynamodb.ScanOutput{Items: items}, nil)

	client.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return keyValue(in.Key, "PK") == "NOTIF#n-1" || keyValue(in.Key, "PK") == "NOTIF#n-2"
	})).Return(&dynamodb.DeleteItemOutput{}, nil)
	// n-3 was resolved by a click between the scan and the delete
	client.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return keyValue(in.Key, "PK") == "NOTIF#n-3"
	})).Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("gone")})

	removed, err := store.DeleteNotificationsBefore(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, "n-1", removed[0].ID)
	assert.Equal(t, "n-2", removed[1].ID)
	assert.Equal(t, "https://a.example", removed[0].URL)
}
