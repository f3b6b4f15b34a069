package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/directory"
	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
	"github.com/inkwell-app/inkwell-api/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedBase = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// seedDirectory fills the users collection with active and soft-deleted
// users, ids and creation times ascending.
func seedDirectory(t *testing.T, active, deleted int) (*memstore.Store, *UserRepository) {
	t.Helper()
	st := memstore.New()
	col := st.Coll(CollectionUsers)
	for i := 0; i < active+deleted; i++ {
		col.Put(fmt.Sprintf("user-%03d", i), store.Document{
			directory.FieldEmail:     fmt.Sprintf("u%03d@example.com", i),
			directory.FieldName:      fmt.Sprintf("User %03d", i),
			directory.FieldRole:      models.RoleUser,
			directory.FieldPlan:      models.PlanFree,
			directory.FieldDeleted:   i >= active,
			directory.FieldCreatedAt: seedBase.Add(time.Duration(i) * time.Minute),
			directory.FieldUpdatedAt: seedBase.Add(time.Duration(i) * time.Minute),
		})
	}
	return st, NewUserRepository(st)
}

func activeQuery() store.Query {
	return store.Query{
		Predicates: []store.Predicate{store.Eq(directory.FieldDeleted, false)},
		Sort:       store.Sort{Field: directory.FieldCreatedAt},
	}
}

func TestUserRepository_FindPage(t *testing.T) {
	_, repo := seedDirectory(t, 25, 5)

	page, err := repo.FindPage(context.Background(), activeQuery(), 1, 20)

	require.NoError(t, err)
	assert.Len(t, page.Users, 20)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(25), page.ApproxTotal)
	assert.Equal(t, "u000@example.com", page.Users[0].Email)
}

func TestUserRepository_FindPage_SecondPage(t *testing.T) {
	_, repo := seedDirectory(t, 25, 5)

	page, err := repo.FindPage(context.Background(), activeQuery(), 2, 20)

	require.NoError(t, err)
	assert.Len(t, page.Users, 5)
	assert.False(t, page.HasMore)
	assert.Equal(t, int64(25), page.ApproxTotal)
}

func TestUserRepository_FindPage_StoreError(t *testing.T) {
	st, repo := seedDirectory(t, 3, 0)
	st.Coll(CollectionUsers).FailWith(models.ErrStoreUnavailable)

	_, err := repo.FindPage(context.Background(), activeQuery(), 1, 20)

	assert.True(t, errors.Is(err, models.ErrStoreUnavailable))
}

func TestUserRepository_GetByID(t *testing.T) {
	_, repo := seedDirectory(t, 2, 1)

	u, err := repo.GetByID(context.Background(), "user-002")
	require.NoError(t, err)
	assert.Equal(t, "user-002", u.ID)
	assert.True(t, u.Deleted, "soft-deleted users are still fetchable by id")

	_, err = repo.GetByID(context.Background(), "user-999")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestUserRepository_Update(t *testing.T) {
	_, repo := seedDirectory(t, 1, 0)
	now := seedBase.Add(48 * time.Hour)
	plan := models.PlanPro

	err := repo.Update(context.Background(), "user-000", models.UserPatch{Plan: &plan}, now)
	require.NoError(t, err)

	u, err := repo.GetByID(context.Background(), "user-000")
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, u.Plan)
	assert.Equal(t, models.RoleUser, u.Role, "unpatched fields stay")
	assert.Equal(t, now, u.UpdatedAt)
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	_, repo := seedDirectory(t, 1, 0)
	name := "X"

	err := repo.Update(context.Background(), "user-999", models.UserPatch{Name: &name}, seedBase)

	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestUserRepository_Update_Unlock(t *testing.T) {
	st, repo := seedDirectory(t, 1, 0)
	st.Coll(CollectionUsers).Put("user-000", store.Document{
		directory.FieldLockedUntil: seedBase.Add(720 * time.Hour),
		directory.FieldCreatedAt:   seedBase,
	})

	err := repo.Update(context.Background(), "user-000", models.UserPatch{Unlock: true}, seedBase.Add(time.Hour))
	require.NoError(t, err)

	u, err := repo.GetByID(context.Background(), "user-000")
	require.NoError(t, err)
	assert.Nil(t, u.LockedUntil)
}

func TestUserRepository_SoftDelete(t *testing.T) {
	_, repo := seedDirectory(t, 1, 0)
	now := seedBase.Add(time.Hour)

	require.NoError(t, repo.SoftDelete(context.Background(), "user-000", now))

	u, err := repo.GetByID(context.Background(), "user-000")
	require.NoError(t, err)
	assert.True(t, u.Deleted)
	require.NotNil(t, u.DeletedAt)
	assert.Equal(t, now, *u.DeletedAt)
	assert.Equal(t, now, u.UpdatedAt)
}

func TestUserRepository_HardDelete(t *testing.T) {
	_, repo := seedDirectory(t, 1, 0)

	require.NoError(t, repo.HardDelete(context.Background(), "user-000"))

	_, err := repo.GetByID(context.Background(), "user-000")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestUserRepository_Counts(t *testing.T) {
	st, repo := seedDirectory(t, 4, 2)
	now := seedBase.Add(24 * time.Hour)
	col := st.Coll(CollectionUsers)
	col.Put("user-000", store.Document{
		directory.FieldDeleted:     false,
		directory.FieldLockedUntil: now.Add(time.Hour),
		directory.FieldCreatedAt:   seedBase,
		directory.FieldLastLogin:   now.Add(-time.Hour),
	})

	ctx := context.Background()

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)

	banned, err := repo.CountBanned(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), banned)

	activeSince, err := repo.CountActiveSince(ctx, now.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), activeSince)

	created, err := repo.CountCreatedSince(ctx, seedBase.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), created)
}

func TestUserRepository_ScanClassification(t *testing.T) {
	_, repo := seedDirectory(t, 3, 2)

	var visited int
	var sawEmail bool
	err := repo.ScanClassification(context.Background(), func(d store.Document) {
		visited++
		if _, ok := d[directory.FieldEmail]; ok {
			sawEmail = true
		}
	})

	require.NoError(t, err)
	assert.Equal(t, 5, visited)
	assert.False(t, sawEmail, "scan fetches only classification fields")
}
