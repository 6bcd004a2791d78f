package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/adolfohrq/designali-hub-google/internal/database"
	"github.com/adolfohrq/designali-hub-google/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupItemService(t *testing.T) (*ItemService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewItemService(db), mock
}

func itemColumns() []string {
	return []string{"id", "user_id", "data", "is_favorite", "version", "created_at", "updated_at"}
}

func TestItemService_ListByOwner(t *testing.T) {
	svc, mock := setupItemService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(itemColumns()).
		AddRow(uuid.New(), userID, json.RawMessage(`{"name":"Figma"}`), true, 1, now, now).
		AddRow(uuid.New(), userID, json.RawMessage(`{"name":"Sketch"}`), false, 1, now, now)

	mock.ExpectQuery(`SELECT .+ FROM tools WHERE user_id`).
		WithArgs(userID).
		WillReturnRows(rows)

	items, err := svc.ListByOwner(ctx, models.CollectionTools, userID)

	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, items[0].IsFavorite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_ListByOwner_UnknownCollection(t *testing.T) {
	svc, mock := setupItemService(t)

	_, err := svc.ListByOwner(context.Background(), "users; DROP TABLE users", uuid.New())

	assert.ErrorIs(t, err, ErrUnknownCollection)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_GetByID(t *testing.T) {
	svc, mock := setupItemService(t)
	ctx := context.Background()
	itemID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(itemColumns()).
		AddRow(itemID, userID, json.RawMessage(`{"title":"Design basics"}`), false, 1, now, now)

	mock.ExpectQuery(`SELECT .+ FROM courses WHERE id`).
		WithArgs(itemID, userID).
		WillReturnRows(rows)

	item, err := svc.GetByID(ctx, models.CollectionCourses, itemID, userID)

	require.NoError(t, err)
	assert.Equal(t, itemID, item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupItemService(t)
	itemID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM courses WHERE id`).
		WithArgs(itemID, userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), models.CollectionCourses, itemID, userID)

	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Create(t *testing.T) {
	svc, mock := setupItemService(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := uuid.New()
	data := json.RawMessage(`{"name":"Figma","category":"Design"}`)
	now := time.Now()

	rows := pgxmock.NewRows(itemColumns()).
		AddRow(itemID, userID, data, false, 1, now, now)

	mock.ExpectQuery(`INSERT INTO tools`).
		WithArgs(userID, data, false).
		WillReturnRows(rows)

	item, err := svc.Create(ctx, models.CollectionTools, userID, data, false)

	require.NoError(t, err)
	assert.Equal(t, itemID, item.ID)
	assert.Equal(t, 1, item.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Create_NilData(t *testing.T) {
	svc, mock := setupItemService(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(itemColumns()).
		AddRow(itemID, userID, json.RawMessage(`{}`), false, 1, now, now)

	mock.ExpectQuery(`INSERT INTO notes`).
		WithArgs(userID, json.RawMessage(`{}`), false).
		WillReturnRows(rows)

	item, err := svc.Create(ctx, models.CollectionNotes, userID, nil, false)

	require.NoError(t, err)
	assert.Equal(t, itemID, item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Update_PatchAndFavorite(t *testing.T) {
	svc, mock := setupItemService(t)
	ctx := context.Background()
	itemID := uuid.New()
	userID := uuid.New()
	patch := json.RawMessage(`{"status":"Completed"}`)
	favorite := true
	now := time.Now()

	rows := pgxmock.NewRows(itemColumns()).
		AddRow(itemID, userID, json.RawMessage(`{"status":"Completed"}`), true, 2, now, now)

	mock.ExpectQuery(`UPDATE courses`).
		WithArgs(patch, &favorite, itemID, userID).
		WillReturnRows(rows)

	item, err := svc.Update(ctx, models.CollectionCourses, itemID, userID, patch, &favorite)

	require.NoError(t, err)
	assert.True(t, item.IsFavorite)
	assert.Equal(t, 2, item.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Update_FavoriteOnly(t *testing.T) {
	svc, mock := setupItemService(t)
	ctx := context.Background()
	itemID := uuid.New()
	userID := uuid.New()
	favorite := true
	now := time.Now()

	rows := pgxmock.NewRows(itemColumns()).
		AddRow(itemID, userID, json.RawMessage(`{"name":"Figma"}`), true, 2, now, now)

	mock.ExpectQuery(`UPDATE tools`).
		WithArgs(json.RawMessage(`{}`), &favorite, itemID, userID).
		WillReturnRows(rows)

	item, err := svc.Update(ctx, models.CollectionTools, itemID, userID, nil, &favorite)

	require.NoError(t, err)
	assert.True(t, item.IsFavorite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Update_NoFields(t *testing.T) {
	svc, mock := setupItemService(t)

	_, err := svc.Update(context.Background(), models.CollectionTools, uuid.New(), uuid.New(), nil, nil)

	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Update_NotFound(t *testing.T) {
	svc, mock := setupItemService(t)
	itemID := uuid.New()
	userID := uuid.New()
	patch := json.RawMessage(`{"name":"gone"}`)

	mock.ExpectQuery(`UPDATE tools`).
		WithArgs(patch, (*bool)(nil), itemID, userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Update(context.Background(), models.CollectionTools, itemID, userID, patch, nil)

	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Delete(t *testing.T) {
	svc, mock := setupItemService(t)
	itemID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM resources`).
		WithArgs(itemID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.Delete(context.Background(), models.CollectionResources, itemID, userID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Delete_NotFound(t *testing.T) {
	svc, mock := setupItemService(t)
	itemID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM resources`).
		WithArgs(itemID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Delete(context.Background(), models.CollectionResources, itemID, userID)

	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemService_Delete_UnknownCollection(t *testing.T) {
	svc, mock := setupItemService(t)

	err := svc.Delete(context.Background(), "refresh_tokens", uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrUnknownCollection)
	assert.NoError(t, mock.ExpectationsWereMet())
}
