// internal/resolver/store_test.go
package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresResourceStore_GetFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT data FROM resources").
		WithArgs(TypeSignal, "pressure transmitter").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"signalType":"AI","units":"bar"}`)))

	store := NewPostgresResourceStore(db)
	data, found, err := store.Get(context.Background(), TypeSignal, "pressure transmitter")

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "AI", data["signalType"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResourceStore_GetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT data FROM resources").
		WithArgs(TypeSignal, "unknown").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	store := NewPostgresResourceStore(db)
	_, found, err := store.Get(context.Background(), TypeSignal, "unknown")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestPostgresResourceStore_GetQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT data FROM resources").
		WillReturnError(errors.New("connection reset"))

	store := NewPostgresResourceStore(db)
	_, found, err := store.Get(context.Background(), TypeSignal, "anything")

	assert.Error(t, err)
	assert.False(t, found)
}

func TestPostgresResourceStore_GetCorruptPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT data FROM resources").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte("not json")))

	store := NewPostgresResourceStore(db)
	_, found, err := store.Get(context.Background(), TypeSignal, "anything")

	assert.Error(t, err)
	assert.False(t, found)
}

func TestPostgresResourceStore_PutUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO resources").
		WithArgs(TypeComponent, "wago 750", []byte(`{"vendor":"WAGO"}`), SourceAssisted).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresResourceStore(db)
	err = store.Put(context.Background(), TypeComponent, "wago 750", map[string]interface{}{"vendor": "WAGO"}, SourceAssisted)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResourceStore_PutExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO resources").
		WillReturnError(errors.New("deadlock detected"))

	store := NewPostgresResourceStore(db)
	err = store.Put(context.Background(), TypeComponent, "wago 750", map[string]interface{}{"vendor": "WAGO"}, SourceManual)

	assert.Error(t, err)
}
