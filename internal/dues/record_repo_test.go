package dues

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

func setupRecordTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS dues_records (
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL,
  cycle_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  checkout_session_id TEXT,
  payment_ref TEXT,
  settled_at DATETIME,
  override_actor_id TEXT,
  override_note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_dues_member_cycle ON dues_records (member_id, cycle_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_dues_checkout_session ON dues_records (checkout_session_id);`
	require.NoError(t, db.Exec(schema).Error)

	return db
}

func insertRecord(t *testing.T, db *gorm.DB, status enums.DuesStatus, updatedAt time.Time) *models.DuesRecord {
	t.Helper()

	session := uuid.NewString()
	record := &models.DuesRecord{
		ID:                uuid.New(),
		MemberID:          uuid.New(),
		CycleID:           uuid.New(),
		Status:            status,
		AmountCents:       8500,
		Currency:          enums.CurrencyUSD,
		CheckoutSessionID: &session,
	}
	require.NoError(t, db.Create(record).Error)
	require.NoError(t, db.Model(record).UpdateColumn("updated_at", updatedAt).Error)
	return record
}

func TestRecordRepositoryFindByCheckoutSession(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	record := insertRecord(t, db, enums.DuesStatusPending, time.Now())

	found, err := repo.FindByCheckoutSession(ctx, *record.CheckoutSessionID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, record.ID, found.ID)

	missing, err := repo.FindByCheckoutSession(ctx, "cs_unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecordRepositoryMemberCyclePairIsUnique(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	first := insertRecord(t, db, enums.DuesStatusPending, time.Now())

	dup := &models.DuesRecord{
		ID:          uuid.New(),
		MemberID:    first.MemberID,
		CycleID:     first.CycleID,
		Status:      enums.DuesStatusPending,
		AmountCents: 8500,
		Currency:    enums.CurrencyUSD,
	}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
}

func TestRecordRepositoryExpireStalePending(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	now := time.Now()
	stale := insertRecord(t, db, enums.DuesStatusPending, now.Add(-72*time.Hour))
	fresh := insertRecord(t, db, enums.DuesStatusPending, now.Add(-1*time.Hour))
	paid := insertRecord(t, db, enums.DuesStatusPaid, now.Add(-72*time.Hour))

	affected, err := repo.ExpireStalePending(ctx, now.Add(-48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var reloaded models.DuesRecord
	require.NoError(t, db.First(&reloaded, "id = ?", stale.ID).Error)
	assert.Equal(t, enums.DuesStatusExpired, reloaded.Status)

	reloaded = models.DuesRecord{}
	require.NoError(t, db.First(&reloaded, "id = ?", fresh.ID).Error)
	assert.Equal(t, enums.DuesStatusPending, reloaded.Status)

	reloaded = models.DuesRecord{}
	require.NoError(t, db.First(&reloaded, "id = ?", paid.ID).Error)
	assert.Equal(t, enums.DuesStatusPaid, reloaded.Status)
}

func TestRecordRepositoryListByCycleHonorsLimit(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	cycleID := uuid.New()
	for i := 0; i < 5; i++ {
		session := uuid.NewString()
		record := &models.DuesRecord{
			ID:                uuid.New(),
			MemberID:          uuid.New(),
			CycleID:           cycleID,
			Status:            enums.DuesStatusPending,
			AmountCents:       8500,
			Currency:          enums.CurrencyUSD,
			CheckoutSessionID: &session,
		}
		require.NoError(t, repo.Create(ctx, record))
	}

	records, err := repo.ListByCycle(ctx, cycleID, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
