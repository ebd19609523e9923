package persistence

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSupplierRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierRepository(newTestDB(t))

	supplier := fakeSupplier(t)
	require.NoError(t, repo.Save(ctx, supplier))

	found, err := repo.FindByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, supplier.Name, found.Name)
	assert.Equal(t, supplier.Email, found.Email)
	assert.Equal(t, supplier.Address, found.Address)
	assert.True(t, found.IsActive)
	assert.Equal(t, 0.0, found.Rating)
	assert.Empty(t, found.ProductIDs)

	byEmail, err := repo.FindByEmail(ctx, strings.ToUpper(supplier.Email))
	require.NoError(t, err)
	assert.Equal(t, supplier.ID, byEmail.ID)
}

func TestGormSupplierRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormSupplierRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSupplierRepository_Save_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierRepository(newTestDB(t))

	first := fakeSupplier(t)
	require.NoError(t, repo.Save(ctx, first))

	second := fakeSupplier(t)
	require.NoError(t, second.ChangeEmail(strings.ToUpper(first.Email)))

	err := repo.Save(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.False(t, shared.IsValidationError(err))
}

func TestGormSupplierRepository_Save_UpdatesExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierRepository(newTestDB(t))

	supplier := fakeSupplier(t)
	require.NoError(t, repo.Save(ctx, supplier))

	productID := uuid.New()
	require.NoError(t, supplier.SetRating(3.5))
	supplier.SetProductIDs([]uuid.UUID{productID})
	require.NoError(t, supplier.Deactivate())
	require.NoError(t, repo.Save(ctx, supplier))

	found, err := repo.FindByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, found.Rating)
	assert.Equal(t, []uuid.UUID{productID}, found.ProductIDs)
	assert.False(t, found.IsActive)

	count, err := repo.Count(ctx, partner.SupplierFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormSupplierRepository_Exists(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierRepository(newTestDB(t))

	supplier := fakeSupplier(t)
	require.NoError(t, repo.Save(ctx, supplier))

	exists, err := repo.ExistsByEmail(ctx, " "+strings.ToUpper(supplier.Email)+" ")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmailExcludingID(ctx, supplier.Email, supplier.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByEmailExcludingID(ctx, supplier.Email, uuid.New())
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormSupplierRepository_FindAll_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierRepository(newTestDB(t))

	acme := fakeSupplier(t)
	require.NoError(t, acme.Rename("Acme Wholesale"))
	require.NoError(t, acme.SetRating(4.5))
	require.NoError(t, repo.Save(ctx, acme))

	globex := fakeSupplier(t)
	require.NoError(t, globex.Rename("Globex Trading"))
	require.NoError(t, globex.SetRating(2))
	require.NoError(t, repo.Save(ctx, globex))

	initech := fakeSupplier(t)
	require.NoError(t, initech.Rename("Initech Imports"))
	require.NoError(t, initech.SetRating(3))
	require.NoError(t, initech.Deactivate())
	require.NoError(t, repo.Save(ctx, initech))

	t.Run("search by name", func(t *testing.T) {
		filter := partner.SupplierFilter{Filter: shared.Filter{Search: "acme"}}
		suppliers, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, suppliers, 1)
		assert.Equal(t, acme.ID, suppliers[0].ID)
	})

	t.Run("active only", func(t *testing.T) {
		active := true
		suppliers, err := repo.FindAll(ctx, partner.SupplierFilter{IsActive: &active})
		require.NoError(t, err)
		assert.Len(t, suppliers, 2)
	})

	t.Run("rating range ordered by rating", func(t *testing.T) {
		minRating, maxRating := 2.5, 5.0
		filter := partner.SupplierFilter{
			Filter:    shared.Filter{OrderBy: "rating", OrderDir: "asc"},
			MinRating: &minRating,
			MaxRating: &maxRating,
		}
		suppliers, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, suppliers, 2)
		assert.Equal(t, initech.ID, suppliers[0].ID)
		assert.Equal(t, acme.ID, suppliers[1].ID)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("pagination", func(t *testing.T) {
		filter := partner.SupplierFilter{Filter: shared.Filter{Page: 2, PageSize: 2, OrderBy: "name", OrderDir: "asc"}}
		suppliers, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, suppliers, 1)
		assert.Equal(t, initech.ID, suppliers[0].ID)
	})

	t.Run("unknown order column falls back", func(t *testing.T) {
		filter := partner.SupplierFilter{Filter: shared.Filter{OrderBy: "name; DROP TABLE suppliers"}}
		suppliers, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, suppliers, 3)
	})
}

func TestGormSupplierRepository_StorageErrorPropagates(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormSupplierRepository(db)

	dbErr := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE id = \$1`).
		WillReturnError(dbErr)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSupplierRepository_Search_UsesFullTextOnPostgres(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormSupplierRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "suppliers" WHERE to_tsvector\('simple', name\) @@ plainto_tsquery\('simple', \$1\)`).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.Count(context.Background(), partner.SupplierFilter{Filter: shared.Filter{Search: " acme "}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSupplierRepository_Save_StaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierRepository(newTestDB(t))

	supplier := fakeSupplier(t)
	require.NoError(t, repo.Save(ctx, supplier))

	first, err := repo.FindByID(ctx, supplier.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, supplier.ID)
	require.NoError(t, err)

	require.NoError(t, first.Rename("First Writer"))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.Rename("Second Writer"))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, "First Writer", stored.Name)
	assert.Equal(t, first.Version, stored.Version)

	// the winner keeps writing from its own copy
	require.NoError(t, first.ChangePhone("+1 555 0199"))
	require.NoError(t, repo.Save(ctx, first))
}

func TestGormSupplierRepository_SaveRating(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierRepository(newTestDB(t))

	supplier := fakeSupplier(t)
	require.NoError(t, repo.Save(ctx, supplier))
	productID := uuid.New()
	snapshot := partner.RatingSnapshot{SupplierID: supplier.ID, Rating: 4, ProductIDs: []uuid.UUID{productID}}

	t.Run("stale copy cannot undo a contact change", func(t *testing.T) {
		rater, err := repo.FindByID(ctx, supplier.ID)
		require.NoError(t, err)

		admin, err := repo.FindByID(ctx, supplier.ID)
		require.NoError(t, err)
		require.NoError(t, admin.ChangeEmail("moved@example.com"))
		require.NoError(t, repo.Save(ctx, admin))

		changed, err := rater.ApplyRating(snapshot)
		require.NoError(t, err)
		require.True(t, changed)
		assert.ErrorIs(t, repo.SaveRating(ctx, rater), shared.ErrConcurrencyConflict)

		stored, err := repo.FindByID(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, "moved@example.com", stored.Email)
		assert.Equal(t, 0.0, stored.Rating)
	})

	t.Run("writes only rating columns", func(t *testing.T) {
		rater, err := repo.FindByID(ctx, supplier.ID)
		require.NoError(t, err)
		_, err = rater.ApplyRating(snapshot)
		require.NoError(t, err)
		rater.Email = "ignored@example.com"
		require.NoError(t, repo.SaveRating(ctx, rater))

		stored, err := repo.FindByID(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, "moved@example.com", stored.Email)
		assert.Equal(t, 4.0, stored.Rating)
		assert.Equal(t, []uuid.UUID{productID}, stored.ProductIDs)
		assert.Equal(t, rater.Version, stored.Version)
	})

	t.Run("never stored", func(t *testing.T) {
		assert.ErrorIs(t, repo.SaveRating(ctx, fakeSupplier(t)), shared.ErrNotFound)
	})
}
