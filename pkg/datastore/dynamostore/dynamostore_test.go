package dynamostore

import (
	"context"
	"errors"
	"sync"
	"testing"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	err   error
}

func newFake() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func itemKey(attrs map[string]types.AttributeValue) string {
	pk := attrs["PK"].(*types.AttributeValueMemberS).Value
	sk := attrs["SK"].(*types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func (f *fakeDynamo) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &sdk.GetItemOutput{Item: f.items[itemKey(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.items[itemKey(in.Item)] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, itemKey(in.Key))
	return &sdk.DeleteItemOutput{}, nil
}

func TestBackend_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	backend, err := New(fake, "formfields")
	require.NoError(t, err)

	key := datastore.Key{ObjectType: "user", ItemID: "9", Name: "prefs"}
	_, found, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, backend.Set(ctx, key, []any{"a", "b"}))
	stored := fake.items["user#9|prefs"]
	require.NotNil(t, stored)
	assert.Equal(t, `["a","b"]`, stored["Value"].(*types.AttributeValueMemberS).Value)

	value, found, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []any{"a", "b"}, value)

	require.NoError(t, backend.Delete(ctx, key))
	assert.Empty(t, fake.items)
}

func TestBackend_PropagatesClientErrors(t *testing.T) {
	boom := errors.New("throttled")
	fake := newFake()
	fake.err = boom
	backend, err := New(fake, "formfields")
	require.NoError(t, err)

	store, err := datastore.NewOptionStore(datastore.Config{ID: "blogname"}, backend)
	require.NoError(t, err)
	err = store.Save(context.Background(), "", "My Blog")
	assert.ErrorIs(t, err, boom)
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "t")
	assert.Error(t, err)
	_, err = New(newFake(), "")
	assert.Error(t, err)
}
