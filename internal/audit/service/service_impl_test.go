package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/linkpage/internal/audit/domain"
	auditrepo "github.com/smallbiznis/linkpage/internal/audit/repository"
	auditservice "github.com/smallbiznis/linkpage/internal/audit/service"
	"github.com/smallbiznis/linkpage/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`CREATE TABLE admin_audit_logs (
		id BIGINT PRIMARY KEY,
		admin_user_id BIGINT NOT NULL,
		action TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		metadata TEXT,
		created_at DATETIME NOT NULL
	)`).Error
	require.NoError(t, err)
	return db
}

func newTestService(t *testing.T, db *gorm.DB, fake *clock.FakeClock) auditdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	return auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  auditrepo.Provide(),
	})
}

func TestRecordPersistsEntry(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake)
	ctx := context.Background()

	err := svc.Record(ctx, nil, auditdomain.RecordRequest{
		AdminUserID:  snowflake.ParseInt64(42),
		Action:       "update_user_plan",
		ResourceType: "user",
		ResourceID:   "99",
		Metadata:     datatypes.JSONMap{"previous_plan": "free", "new_plan": "pro"},
	})
	require.NoError(t, err)

	entries, total, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "update_user_plan", entries[0].Action)
	assert.Equal(t, "user", entries[0].ResourceType)
	assert.Equal(t, "99", entries[0].ResourceID)
	assert.EqualValues(t, 42, entries[0].AdminUserID.Int64())
}

func TestRecordJoinsCallerTransaction(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Record(ctx, tx, auditdomain.RecordRequest{
			AdminUserID:  snowflake.ParseInt64(42),
			Action:       "delete_user",
			ResourceType: "user",
			ResourceID:   "99",
		}); err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	})
	require.Error(t, err)

	_, total, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "rolled back mutation must not leave an audit row")
}

func TestRecordRejectsBlankAction(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake)

	err := svc.Record(context.Background(), nil, auditdomain.RecordRequest{
		AdminUserID:  snowflake.ParseInt64(42),
		Action:       "   ",
		ResourceType: "user",
	})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidRequest)
}

func TestListNewestFirstWithPagination(t *testing.T) {
	db := setupTestDB(t)
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fake)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := svc.Record(ctx, nil, auditdomain.RecordRequest{
			AdminUserID:  snowflake.ParseInt64(42),
			Action:       fmt.Sprintf("action_%d", i),
			ResourceType: "user",
			ResourceID:   fmt.Sprintf("%d", i),
		})
		require.NoError(t, err)
		fake.Advance(time.Minute)
	}

	entries, total, err := svc.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, entries, 2)
	assert.Equal(t, "action_2", entries[0].Action)
	assert.Equal(t, "action_1", entries[1].Action)

	rest, _, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "action_0", rest[0].Action)
}
