package repositories_test

import (
	"context"
	"testing"

	"todo/internal/config"
	"todo/internal/database"
	"todo/internal/models"
	"todo/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepos(t *testing.T) (*repositories.GORMRepository[models.User], *repositories.GORMRepository[models.Task]) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		URL:      database.MemoryDSN(uuid.NewString()),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err)

	return repositories.NewGORMRepository[models.User](db, "user"),
		repositories.NewGORMRepository[models.Task](db, "task")
}

func TestGORMRepository_SaveAndFindOne(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	user := &models.User{Name: "Alice", Email: "a@x.com", Phone: "555", Password: "Abc123!@"}
	require.NoError(t, users.Save(ctx, user))
	require.NotZero(t, user.ID)

	found, err := users.FindOne(ctx, repositories.Query{
		Select: []string{"id", "name", "email", "phone"},
		Where:  map[string]any{"email": "a@x.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "Alice", found.Name)
	assert.Empty(t, found.Password, "password was not selected")

	_, err = users.FindOne(ctx, repositories.Query{Where: map[string]any{"email": "nobody@x.com"}})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGORMRepository_FindAllFiltersAndOrders(t *testing.T) {
	users, tasks := setupRepos(t)
	ctx := context.Background()

	alice := &models.User{Name: "Alice", Email: "a@x.com", Phone: "1", Password: "Abc123!@"}
	bob := &models.User{Name: "Bob", Email: "b@x.com", Phone: "2", Password: "Abc123!@"}
	require.NoError(t, users.Save(ctx, alice))
	require.NoError(t, users.Save(ctx, bob))

	for _, task := range []*models.Task{
		{Title: "first", UserID: alice.ID},
		{Title: "other", UserID: bob.ID},
		{Title: "second", UserID: alice.ID},
	} {
		require.NoError(t, tasks.Save(ctx, task))
	}

	list, err := tasks.FindAll(ctx, repositories.Query{
		Select: []string{"id", "title"},
		Where:  map[string]any{"userId": alice.ID},
		Order:  "id asc",
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Title)
	assert.Equal(t, "second", list[1].Title)

	empty, err := tasks.FindAll(ctx, repositories.Query{Where: map[string]any{"userId": alice.ID + bob.ID + 1}})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGORMRepository_Update(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	user := &models.User{Name: "Alice", Email: "a@x.com", Phone: "1", Password: "Abc123!@"}
	require.NoError(t, users.Save(ctx, user))

	updated, err := users.Update(ctx, user.ID, map[string]any{"name": "Alicia", "phone": "999"})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "999", updated.Phone)
	assert.Equal(t, "a@x.com", updated.Email)

	_, err = users.Update(ctx, user.ID+1, map[string]any{"name": "ghost"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGORMRepository_Delete(t *testing.T) {
	users, tasks := setupRepos(t)
	ctx := context.Background()

	user := &models.User{Name: "Alice", Email: "a@x.com", Phone: "1", Password: "Abc123!@"}
	require.NoError(t, users.Save(ctx, user))
	task := &models.Task{Title: "buy milk", UserID: user.ID}
	require.NoError(t, tasks.Save(ctx, task))

	require.NoError(t, tasks.Delete(ctx, task.ID))

	err := tasks.Delete(ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = tasks.FindOne(ctx, repositories.Query{Where: map[string]any{"id": task.ID}})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
