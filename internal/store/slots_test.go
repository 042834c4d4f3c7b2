package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/router-for-me/GraphQLTester/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSlotTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:slots_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Slot{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func setupRedisSlots(t *testing.T) *RedisSlots {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSlots(client, "")
}

func exerciseSlots(t *testing.T, slots Slots) {
	t.Helper()
	ctx := context.Background()

	_, errLoad := slots.Load(ctx, "u", StateKey)
	require.ErrorIs(t, errLoad, ErrSlotNotFound)

	require.NoError(t, slots.Save(ctx, "u", StateKey, `{"endpoint":"a"}`))
	got, errLoad := slots.Load(ctx, "u", StateKey)
	require.NoError(t, errLoad)
	require.JSONEq(t, `{"endpoint":"a"}`, got)

	require.NoError(t, slots.Save(ctx, "u", StateKey, `{"endpoint":"b"}`))
	got, errLoad = slots.Load(ctx, "u", StateKey)
	require.NoError(t, errLoad)
	require.JSONEq(t, `{"endpoint":"b"}`, got)

	_, errOther := slots.Load(ctx, "other", StateKey)
	require.True(t, errors.Is(errOther, ErrSlotNotFound), "owners must not share slots")

	require.NoError(t, slots.Delete(ctx, "u", StateKey))
	_, errLoad = slots.Load(ctx, "u", StateKey)
	require.ErrorIs(t, errLoad, ErrSlotNotFound)

	require.NoError(t, slots.Delete(ctx, "u", StateKey), "deleting a missing slot is not an error")
}

func TestMemorySlots(t *testing.T) {
	exerciseSlots(t, NewMemorySlots())
}

func TestGormSlots(t *testing.T) {
	exerciseSlots(t, NewGormSlots(setupSlotTestDB(t)))
}

func TestRedisSlots(t *testing.T) {
	exerciseSlots(t, setupRedisSlots(t))
}

func TestRedisSlotsKeyLayout(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	slots := NewRedisSlots(client, "custom")
	require.NoError(t, slots.Save(context.Background(), "u1", HistoryKey, "[]"))

	value, errGet := server.Get("custom:u1:" + HistoryKey)
	require.NoError(t, errGet)
	require.Equal(t, "[]", value)
}

func TestHistoryOverGormSlotsSurvivesReload(t *testing.T) {
	ctx := context.Background()
	slots := NewGormSlots(setupSlotTestDB(t))

	h := NewHistory(slots, "u")
	require.NoError(t, h.Hydrate(ctx))
	_, errRecord := h.Record(ctx, entry(7))
	require.NoError(t, errRecord)

	reloaded := NewHistory(slots, "u")
	require.NoError(t, reloaded.Hydrate(ctx))
	require.Equal(t, h.Entries(), reloaded.Entries())
}
