package database_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/database/dbtest"
	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newDatabase(t *testing.T) database.Database {
	t.Helper()
	return database.New(dbtest.Open(t))
}

func addUser(t *testing.T, db database.Database, username string) *models.User {
	t.Helper()
	u := &models.User{ExternalID: "ext-" + username, Username: username, Name: username}
	require.NoError(t, db.UserRepo().Add(context.Background(), u))
	return u
}

func addProject(t *testing.T, db database.Database, owner *models.User, slug string, createdAt time.Time) *models.Project {
	t.Helper()
	p := &models.Project{
		Title:       slug,
		Slug:        slug,
		Description: "a test project",
		Content:     "some long enough content here",
		SourceURL:   "https://github.com/x/" + slug,
		Tags:        datatypes.JSONSlice[string]{"go"},
		UserID:      owner.ID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, db.ProjectRepo().Add(context.Background(), p))
	return p
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	db := newDatabase(t)
	u := addUser(t, db, "ada")

	found, err := db.UserRepo().FindByExternalID(ctx, "ext-ada")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)
	assert.NotNil(t, found.Skills)

	missing, err := db.UserRepo().FindByExternalID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byName, err := db.UserRepo().FindByUsername(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, byName)

	dup := &models.User{ExternalID: "ext-ada", Username: "other"}
	err = db.UserRepo().Add(ctx, dup)
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateKey(err))

	taken, err := db.UserRepo().UsernameTaken(ctx, "ada", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = db.UserRepo().UsernameTaken(ctx, "ada", u.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	u.Bio = "hello"
	u.Skills = datatypes.JSONSlice[string]{"go", "sql"}
	require.NoError(t, db.UserRepo().Update(ctx, u))
	reloaded, err := db.UserRepo().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", reloaded.Bio)
	assert.Equal(t, []string{"go", "sql"}, []string(reloaded.Skills))
}

func TestProjectRepoSlugUnique(t *testing.T) {
	ctx := context.Background()
	db := newDatabase(t)
	owner := addUser(t, db, "owner")
	p := addProject(t, db, owner, "my-app", time.Now().UTC())

	exists, err := db.ProjectRepo().SlugExists(ctx, "my-app", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = db.ProjectRepo().SlugExists(ctx, "my-app", p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	clash := &models.Project{Title: "x", Slug: "my-app", SourceURL: "https://github.com/x", UserID: owner.ID}
	err = db.ProjectRepo().Add(ctx, clash)
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateKey(err))

	found, err := db.ProjectRepo().FindBySlug(ctx, "my-app")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.User)
	assert.Equal(t, "owner", found.User.Username)
}

func TestProjectRepoCreatedBetween(t *testing.T) {
	ctx := context.Background()
	db := newDatabase(t)
	owner := addUser(t, db, "owner")
	now := time.Now().UTC()

	recent := addProject(t, db, owner, "recent", now.Add(-48*time.Hour))
	addProject(t, db, owner, "old", now.Add(-10*24*time.Hour))
	addProject(t, db, owner, "future", now.Add(time.Hour))

	projects, err := db.ProjectRepo().FindCreatedBetween(ctx, now.Add(-7*24*time.Hour), now, 100)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, recent.ID, projects[0].ID)
}

func TestProjectRepoEngagementAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newDatabase(t)
	owner := addUser(t, db, "owner")
	fan := addUser(t, db, "fan")
	p := addProject(t, db, owner, "popular", time.Now().UTC())
	quiet := addProject(t, db, owner, "quiet", time.Now().UTC())

	require.NoError(t, db.LikeRepo().Add(ctx, &models.Like{UserID: owner.ID, ProjectID: p.ID}))
	require.NoError(t, db.LikeRepo().Add(ctx, &models.Like{UserID: fan.ID, ProjectID: p.ID}))
	require.NoError(t, db.CommentRepo().Add(ctx, &models.Comment{UserID: fan.ID, ProjectID: p.ID, Content: "nice"}))

	engagement, err := db.ProjectRepo().Engagement(ctx, []uuid.UUID{p.ID, quiet.ID})
	require.NoError(t, err)
	assert.Equal(t, database.Engagement{Likes: 2, Comments: 1}, engagement[p.ID])
	assert.Equal(t, database.Engagement{}, engagement[quiet.ID])

	require.NoError(t, db.ProjectRepo().Delete(ctx, p.ID))

	count, err := db.LikeRepo().CountByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	comments, err := db.CommentRepo().FindByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	gone, err := db.ProjectRepo().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	err = db.ProjectRepo().Delete(ctx, p.ID)
	assert.True(t, errs.IsNotFound(errs.NewDatabaseError("delete", "project", err)))
}

func TestProjectRepoUpdate(t *testing.T) {
	ctx := context.Background()
	db := newDatabase(t)
	owner := addUser(t, db, "owner")
	p := addProject(t, db, owner, "before", time.Now().UTC())

	p.Title = "after"
	p.Slug = "after"
	p.Tags = datatypes.JSONSlice[string]{"rust"}
	p.SeekingContributors = true
	require.NoError(t, db.ProjectRepo().Update(ctx, p))

	stored, err := db.ProjectRepo().FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "after", stored.Title)
	assert.Equal(t, "after", stored.Slug)
	assert.Equal(t, []string{"rust"}, []string(stored.Tags))
	assert.True(t, stored.SeekingContributors)
}

func TestProjectRepoUpdateDoesNotRecreateDeletedProject(t *testing.T) {
	ctx := context.Background()
	db := newDatabase(t)
	owner := addUser(t, db, "owner")
	p := addProject(t, db, owner, "ghost", time.Now().UTC())

	loaded, err := db.ProjectRepo().FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, db.ProjectRepo().Delete(ctx, p.ID))

	loaded.Title = "edited"
	err = db.ProjectRepo().Update(ctx, loaded)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.True(t, errs.IsNotFound(errs.NewDatabaseError("update", "project", err)))

	gone, err := db.ProjectRepo().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestLikeRepoUniquePair(t *testing.T) {
	ctx := context.Background()
	db := newDatabase(t)
	owner := addUser(t, db, "owner")
	p := addProject(t, db, owner, "p", time.Now().UTC())

	var wg sync.WaitGroup
	results := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = db.LikeRepo().Add(ctx, &models.Like{UserID: owner.ID, ProjectID: p.ID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errs.IsDuplicateKey(err), err)
	}
	assert.Equal(t, 1, succeeded)

	liked, err := db.LikeRepo().LikedProjects(ctx, owner.ID, []uuid.UUID{p.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{p.ID: true}, liked)

	n, err := db.LikeRepo().DeleteByPair(ctx, owner.ID, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = db.LikeRepo().DeleteByPair(ctx, owner.ID, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
