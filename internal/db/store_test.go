package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sitetime/internal/config"
)

func newMockStore(t *testing.T, shape string) (Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return NewStore(gdb, shape), mock
}

func TestNewStoreSelectsShape(t *testing.T) {
	require.IsType(t, &flatStore{}, NewStore(nil, config.ShapeFlat))
	require.IsType(t, &groupedStore{}, NewStore(nil, config.ShapeGrouped))
	require.IsType(t, &flatStore{}, NewStore(nil, ""))
}

func TestStoreUnavailableWithoutConnection(t *testing.T) {
	for _, shape := range []string{config.ShapeFlat, config.ShapeGrouped} {
		store := NewStore(nil, shape)

		_, err := store.LogUsage(NewEvent{Username: "u1", Site: "siteA", TimeSpentMs: 1})
		require.ErrorIs(t, err, ErrUnavailable)

		_, err = store.Usage(Filter{})
		require.ErrorIs(t, err, ErrUnavailable)

		_, err = store.Events("")
		require.ErrorIs(t, err, ErrUnavailable)

		_, err = store.Usernames()
		require.ErrorIs(t, err, ErrUnavailable)
	}
}
