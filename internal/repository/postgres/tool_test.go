package postgres_test

import (
	"context"
	"testing"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var toolRowColumns = []string{"id", "owner_id", "name", "description", "address", "lat", "lng", "icon_key", "is_available", "active_request_id", "created_at", "updated_at", "deleted_at"}

func TestToolRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		lat := 47.6
		tool := &domain.Tool{
			OwnerID:     1,
			Name:        "Drill",
			Description: "Cordless",
			Address:     "1 Main St",
			Lat:         &lat,
			IsAvailable: true,
		}

		mock.ExpectQuery("INSERT INTO tools").
			WithArgs(tool.OwnerID, tool.Name, tool.Description, tool.Address, lat, nil, nil, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

		err := repo.Create(ctx, tool)
		assert.NoError(t, err)
		assert.Equal(t, int32(10), tool.ID)
		assert.False(t, tool.CreatedAt.IsZero())
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(toolRowColumns).
			AddRow(1, 2, "Ladder", "", "", nil, nil, "ladder", false, 9, now, now, nil)

		mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1$").
			WithArgs(int32(1)).
			WillReturnRows(rows)

		tool, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int32(2), tool.OwnerID)
		assert.Nil(t, tool.Lat)
		require.NotNil(t, tool.IconKey)
		assert.Equal(t, "ladder", *tool.IconKey)
		require.NotNil(t, tool.ActiveRequestID)
		assert.Equal(t, int32(9), *tool.ActiveRequestID)
		assert.False(t, tool.IsDeleted())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1$").
			WithArgs(int32(404)).
			WillReturnRows(sqlmock.NewRows(toolRowColumns))

		tool, err := repo.GetByID(ctx, 404)
		assert.Nil(t, tool)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRepository_GetForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM tools WHERE id = \\$1 FOR UPDATE").
		WithArgs(int32(3)).
		WillReturnRows(sqlmock.NewRows(toolRowColumns).AddRow(3, 1, "Saw", "", "", nil, nil, nil, true, nil, now, now, nil))

	tool, err := repo.GetForUpdate(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, tool.IsAvailable)
	assert.Nil(t, tool.ActiveRequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRepository_SetAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("Reserve", func(t *testing.T) {
		requestID := int32(5)
		mock.ExpectExec("UPDATE tools SET is_available").
			WithArgs(false, requestID, sqlmock.AnyArg(), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetAvailability(ctx, 3, false, &requestID))
	})

	t.Run("Release", func(t *testing.T) {
		mock.ExpectExec("UPDATE tools SET is_available").
			WithArgs(true, nil, sqlmock.AnyArg(), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetAvailability(ctx, 3, true, nil))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE tools SET is_available").
			WithArgs(true, nil, sqlmock.AnyArg(), int32(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetAvailability(ctx, 99, true, nil), domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRepository_UpdateAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	ctx := context.Background()

	t.Run("UpdateCatalogFieldsOnly", func(t *testing.T) {
		tool := &domain.Tool{ID: 4, Name: "Sander", Description: "Orbital", Address: "2 Elm"}
		mock.ExpectExec("UPDATE tools SET name=\\$1, description=\\$2, address=\\$3, lat=\\$4, lng=\\$5, icon_key=\\$6, updated_at=\\$7 WHERE id=\\$8").
			WithArgs("Sander", "Orbital", "2 Elm", nil, nil, nil, sqlmock.AnyArg(), int32(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, tool))
	})

	t.Run("DeleteIsSoft", func(t *testing.T) {
		mock.ExpectExec("UPDATE tools SET deleted_at").
			WithArgs(sqlmock.AnyArg(), int32(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, 4))
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		mock.ExpectExec("UPDATE tools SET deleted_at").
			WithArgs(sqlmock.AnyArg(), int32(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, 5), domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRepository_ListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(toolRowColumns).
		AddRow(1, 7, "Drill", "", "", nil, nil, nil, true, nil, now, now, nil).
		AddRow(2, 7, "Saw", "", "", 1.5, 2.5, nil, false, 11, now, now, nil)
	mock.ExpectQuery("SELECT (.+) FROM tools WHERE owner_id = \\$1 AND deleted_at IS NULL").
		WithArgs(int32(7)).
		WillReturnRows(rows)

	tools, err := repo.ListByOwner(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	require.NotNil(t, tools[1].Lat)
	assert.Equal(t, 1.5, *tools[1].Lat)
	assert.NoError(t, mock.ExpectationsWereMet())
}
