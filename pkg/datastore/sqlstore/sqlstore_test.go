package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goliatone/go-formfields/components/choices"
	"github.com/goliatone/go-formfields/pkg/datastore"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(DialectSQLite, "file::memory:", &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive across queries
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := New(openTestDB(t))
	require.NoError(t, err)
	require.NoError(t, backend.Migrate(context.Background()))
	return backend
}

func TestBackend_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	key := datastore.Key{ObjectType: "post", ItemID: "7", Name: "subtitle"}

	_, found, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, backend.Set(ctx, key, "first"))
	require.NoError(t, backend.Set(ctx, key, "second"))

	value, found, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", value)

	var count int64
	require.NoError(t, backend.db.Model(&Value{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "upsert should keep a single row per key")

	require.NoError(t, backend.Delete(ctx, key))
	_, found, err = backend.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBackend_RoundTripsThroughStores(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	store, err := datastore.NewMetaStore(datastore.Config{
		ID:         "tags",
		ObjectType: "post",
		DataType:   datastore.DataTypeArray,
	}, backend)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "1", []string{"go", "cms"}))
	got, err := store.Value(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []any{"go", "cms"}, got)

	counter, err := datastore.NewOptionStore(datastore.Config{ID: "views", DataType: datastore.DataTypeInt}, backend)
	require.NoError(t, err)
	require.NoError(t, counter.Save(ctx, "", "12"))
	views, err := counter.Value(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(12), views)
}

func TestBackend_ScalarValues(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	cases := map[string]any{
		"count":   float64(25),
		"enabled": true,
		"off":     false,
		"ratio":   0.5,
		"digits":  "123",
		"nothing": nil,
	}
	for name, want := range cases {
		key := datastore.Key{ObjectType: datastore.OptionNamespace, Name: name}
		require.NoError(t, backend.Set(ctx, key, want), name)
		got, found, err := backend.Get(ctx, key)
		require.NoError(t, err, name)
		assert.True(t, found, name)
		assert.Equal(t, want, got, name)
	}

	flag, err := datastore.NewOptionStore(datastore.Config{ID: "comments_open", DataType: datastore.DataTypeBool}, backend)
	require.NoError(t, err)
	require.NoError(t, flag.Save(ctx, "", true))
	value, err := flag.Value(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, true, value)
}

func TestOpen_RejectsUnknownDialect(t *testing.T) {
	_, err := Open("oracle", "", nil)
	assert.Error(t, err)
}

type page struct {
	ID     uint
	Title  string
	Status string
}

func TestTableSource_LoadsOrderedOptions(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&page{}))
	require.NoError(t, db.Create([]page{
		{Title: "Contact", Status: "publish"},
		{Title: "About", Status: "publish"},
		{Title: "Draft", Status: "draft"},
	}).Error)

	source, err := NewTableSource(db, "pages", "id", "title", WithWhere("status = ?", "publish"))
	require.NoError(t, err)

	got, err := source.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []choices.Option{
		{Value: "2", Label: "About"},
		{Value: "1", Label: "Contact"},
	}, got)
}

func TestNewTableSource_RequiresColumns(t *testing.T) {
	_, err := NewTableSource(openTestDB(t), "pages", "", "title")
	assert.Error(t, err)
}
