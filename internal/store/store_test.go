package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// обе реализации обязаны вести себя одинаково.
func clients(t *testing.T) map[string]Client {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Client{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestStore_CreateGetRoundTrip(t *testing.T) {
	for name, client := range clients(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			payload := json.RawMessage(`{"name":"Alice","shares":2}`)

			created, err := client.Create(ctx, TypeMember, payload)
			require.NoError(t, err)
			require.NotEmpty(t, created.ID)
			assert.Equal(t, int64(1), created.Version)

			got, err := client.Get(ctx, TypeMember, created.ID)
			require.NoError(t, err)
			assert.JSONEq(t, string(payload), string(got.Data))
		})
	}
}

func TestStore_GetUnknownType(t *testing.T) {
	for name, client := range clients(t) {
		t.Run(name, func(t *testing.T) {
			_, err := client.Get(context.Background(), TypeMember, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_UpdateVersioning(t *testing.T) {
	for name, client := range clients(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := client.Create(ctx, TypeMember, json.RawMessage(`{"v":1}`))
			require.NoError(t, err)

			updated, err := client.Update(ctx, TypeMember, created.ID, json.RawMessage(`{"v":2}`), created.Version)
			require.NoError(t, err)
			assert.Equal(t, int64(2), updated.Version)

			// повторная запись со старой версией обязана конфликтовать.
			_, err = client.Update(ctx, TypeMember, created.ID, json.RawMessage(`{"v":3}`), created.Version)
			assert.ErrorIs(t, err, ErrVersionConflict)

			// а запись несуществующего id - падать с ErrNotFound, не с конфликтом.
			_, err = client.Update(ctx, TypeMember, "missing", json.RawMessage(`{}`), 1)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_ListByTypeIsolation(t *testing.T) {
	for name, client := range clients(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := client.Create(ctx, TypeContribution, json.RawMessage(`{"amount":"100"}`))
			require.NoError(t, err)
			_, err = client.Create(ctx, TypeContribution, json.RawMessage(`{"amount":"200"}`))
			require.NoError(t, err)
			_, err = client.Create(ctx, TypeBorrowing, json.RawMessage(`{"amount":"300"}`))
			require.NoError(t, err)

			contributions, err := client.ListByType(ctx, TypeContribution, 0)
			require.NoError(t, err)
			assert.Len(t, contributions, 2)

			borrowings, err := client.ListByType(ctx, TypeBorrowing, DefaultListLimit)
			require.NoError(t, err)
			assert.Len(t, borrowings, 1)

			limited, err := client.ListByType(ctx, TypeContribution, 1)
			require.NoError(t, err)
			assert.Len(t, limited, 1)
		})
	}
}

func TestMemoryStore_FailNext(t *testing.T) {
	ctx := context.Background()
	memStore := NewMemoryStore()

	memStore.FailNext("create", TypeMember, 1, assert.AnError)

	_, err := memStore.Create(ctx, TypeMember, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, assert.AnError)

	// ошибка одноразовая.
	_, err = memStore.Create(ctx, TypeMember, json.RawMessage(`{}`))
	assert.NoError(t, err)
}
