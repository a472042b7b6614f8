package services

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	in := validInput("My Tool!")
	in.SeekingContributors = true
	in.DemoURL = "https://tool.example.com"

	p, err := env.projects.Create(context.Background(), owner, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "my-tool", p.Slug)
	assert.Equal(t, []string{"go", "cli"}, []string(p.Tags))
	assert.Empty(t, p.Images)
	assert.True(t, p.SeekingContributors)
	require.NotNil(t, p.DemoURL)
	assert.Equal(t, "https://tool.example.com", *p.DemoURL)
	assert.Equal(t, owner.ID, p.UserID)

	stored, err := env.db.ProjectRepo().FindBySlug(context.Background(), "my-tool")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, p.ID, stored.ID)
}

func TestCreateProjectResolvesSlugCollision(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")

	first, err := env.projects.Create(context.Background(), owner, validInput("Same Title"), nil)
	require.NoError(t, err)
	second, err := env.projects.Create(context.Background(), owner, validInput("Same Title"), nil)
	require.NoError(t, err)

	assert.Equal(t, "same-title", first.Slug)
	assert.Regexp(t, `^same-title-\d{1,4}$`, second.Slug)
	assert.True(t, IsValidSlug(second.Slug))
}

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	in := validInput("x")
	in.SourceURL = "https://example.com/repo"

	_, err := env.projects.Create(context.Background(), owner, in, &ImageFile{})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	fields := errs.FieldErrors(err)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "sourceUrl")

	entries, err := os.ReadDir(env.store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is uploaded for an invalid form")

	_, err = env.projects.Create(context.Background(), nil, validInput("Valid title"), nil)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestCreateProjectWithImage(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	image := pngFile("cover.png", 256)

	p, err := env.projects.Create(context.Background(), owner, validInput("Pictured"), &image)
	require.NoError(t, err)
	require.Len(t, p.Images, 1)
	assert.True(t, strings.HasPrefix(p.Images[0], "/uploads/"))
	assert.True(t, strings.HasSuffix(p.Images[0], "-cover.png"))

	_, err = os.Stat(filepath.Join(env.store.Dir(), strings.TrimPrefix(p.Images[0], "/uploads/")))
	assert.NoError(t, err)
}

func TestCreateProjectRejectsBadImage(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	image := ImageFile{Filename: "a.txt", ContentType: "text/plain", Size: 3, Body: strings.NewReader("abc")}

	_, err := env.projects.Create(context.Background(), owner, validInput("Pictured"), &image)
	assert.True(t, errs.IsInvalidFileType(err))

	page, err := env.projects.ListRecent(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestUpdateByNonOwnerIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	intruder := env.user(t, "intruder")

	p, err := env.projects.Create(ctx, owner, validInput("Original"), nil)
	require.NoError(t, err)

	_, err = env.projects.Update(ctx, intruder, p.ID, validInput("Hijacked"), nil)
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))

	stored, err := env.db.ProjectRepo().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Title)
	assert.Equal(t, "original", stored.Slug)
	assert.Equal(t, p.Description, stored.Description)

	_, err = env.projects.Update(ctx, owner, uuid.New(), validInput("Whatever"), nil)
	assert.True(t, errs.IsNotFound(err))
}

func TestUpdateKeepsSlugUnlessTitleChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	p, err := env.projects.Create(ctx, owner, validInput("Stable Name"), nil)
	require.NoError(t, err)

	in := validInput("Stable Name")
	in.Description = "A new and improved description"
	updated, err := env.projects.Update(ctx, owner, p.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "stable-name", updated.Slug)
	assert.Equal(t, "A new and improved description", updated.Description)

	updated, err = env.projects.Update(ctx, owner, p.ID, validInput("Renamed Thing"), nil)
	require.NoError(t, err)
	assert.Equal(t, "renamed-thing", updated.Slug)
}

func TestUpdateImageHandling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	first := pngFile("first.png", 128)
	p, err := env.projects.Create(ctx, owner, validInput("With Image"), &first)
	require.NoError(t, err)
	original := p.Images[0]

	kept, err := env.projects.Update(ctx, owner, p.ID, validInput("With Image"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{original}, []string(kept.Images))

	second := pngFile("second.png", 128)
	replaced, err := env.projects.Update(ctx, owner, p.ID, validInput("With Image"), &second)
	require.NoError(t, err)
	require.Len(t, replaced.Images, 1)
	assert.NotEqual(t, original, replaced.Images[0])

	_, err = os.Stat(filepath.Join(env.store.Dir(), strings.TrimPrefix(original, "/uploads/")))
	assert.True(t, os.IsNotExist(err), "replaced image is removed")
}

func TestDeleteProjectCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	fan := env.user(t, "fan")

	image := pngFile("shot.png", 128)
	p, err := env.projects.Create(ctx, owner, validInput("Doomed"), &image)
	require.NoError(t, err)
	_, err = env.interactions.ToggleLike(ctx, fan, p.ID)
	require.NoError(t, err)
	_, err = env.interactions.PostComment(ctx, fan, p.ID, "great work")
	require.NoError(t, err)

	err = env.projects.Delete(ctx, fan, p.ID)
	assert.True(t, errs.IsForbidden(err))

	require.NoError(t, env.projects.Delete(ctx, owner, p.ID))

	var likes, comments int64
	gdb := env.db.ProjectRepo().GetDB()
	require.NoError(t, gdb.Model(&models.Like{}).Where("project_id = ?", p.ID).Count(&likes).Error)
	require.NoError(t, gdb.Model(&models.Comment{}).Where("project_id = ?", p.ID).Count(&comments).Error)
	assert.Zero(t, likes)
	assert.Zero(t, comments)

	entries, err := os.ReadDir(env.store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	err = env.projects.Delete(ctx, owner, p.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestGetBySlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	fan := env.user(t, "fan")

	in := validInput("Detail Page")
	in.Content = "# Heading\n\nSome **bold** text <script>alert(1)</script>"
	p, err := env.projects.Create(ctx, owner, in, nil)
	require.NoError(t, err)
	_, err = env.interactions.ToggleLike(ctx, fan, p.ID)
	require.NoError(t, err)
	_, err = env.interactions.PostComment(ctx, fan, p.ID, "first")
	require.NoError(t, err)
	_, err = env.interactions.PostComment(ctx, owner, p.ID, "second")
	require.NoError(t, err)

	detail, err := env.projects.GetBySlug(ctx, "detail-page", fan)
	require.NoError(t, err)
	assert.True(t, detail.LikedByViewer)
	assert.False(t, detail.IsOwner)
	assert.EqualValues(t, 1, detail.LikeCount)
	assert.EqualValues(t, 2, detail.CommentCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "owner", detail.Author.Username)
	assert.Contains(t, detail.ContentHTML, "<strong>bold</strong>")
	assert.NotContains(t, detail.ContentHTML, "<script>")

	anon, err := env.projects.GetBySlug(ctx, "detail-page", nil)
	require.NoError(t, err)
	assert.False(t, anon.LikedByViewer)
	assert.False(t, anon.IsOwner)

	mine, err := env.projects.GetBySlug(ctx, "detail-page", owner)
	require.NoError(t, err)
	assert.True(t, mine.IsOwner)

	_, err = env.projects.GetBySlug(ctx, "missing", nil)
	assert.True(t, errs.IsNotFound(err))
}

func TestListRecent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	now := time.Now().UTC()
	for i, slug := range []string{"oldest", "middle", "newest"} {
		env.projectAt(t, owner, slug, now.Add(time.Duration(i)*time.Minute))
	}

	page, err := env.projects.ListRecent(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	require.Len(t, page.Projects, 2)
	assert.Equal(t, "newest", page.Projects[0].Slug)
	assert.Equal(t, "owner", page.Projects[0].Author.Username)

	page, err = env.projects.ListRecent(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Projects, 1)
	assert.Equal(t, "oldest", page.Projects[0].Slug)
	assert.False(t, page.HasNextPage)

	page, err = env.projects.ListRecent(ctx, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPageSize, page.Size)
}

func TestListRecentHugePageIsPastTheEnd(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	env.projectAt(t, owner, "only", time.Now().UTC())

	for _, size := range []int{1, DefaultPageSize, MaxPageSize} {
		page, err := env.projects.ListRecent(context.Background(), math.MaxInt, size)
		require.NoError(t, err)
		assert.Equal(t, MaxPage, page.Page)
		assert.Empty(t, page.Projects, "size %d", size)
		assert.False(t, page.HasNextPage)
	}
}
