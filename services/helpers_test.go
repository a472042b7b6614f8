package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/database/dbtest"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db           database.Database
	store        *LocalStore
	uploader     *Uploader
	highlights   *HighlightService
	projects     *ProjectService
	interactions *InteractionService
	notifier     *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.New(dbtest.Open(t))
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	uploader := NewUploader(store)
	highlights := NewHighlightService(db.ProjectRepo(), nil, 0)
	notifier := &recordingNotifier{}

	env := &testEnv{
		db:           db,
		store:        store,
		uploader:     uploader,
		highlights:   highlights,
		projects:     NewProjectService(db, uploader, highlights, "github.com"),
		interactions: NewInteractionService(db, highlights, notifier, 0),
		notifier:     notifier,
	}
	t.Cleanup(env.interactions.Wait)
	return env
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{ExternalID: "ext-" + username, Username: username, Name: username, Email: username + "@example.com"}
	require.NoError(t, e.db.UserRepo().Add(context.Background(), u))
	return u
}

// projectAt inserts a valid project directly, bypassing validation, with the given creation time.
func (e *testEnv) projectAt(t *testing.T, owner *models.User, slug string, createdAt time.Time) *models.Project {
	t.Helper()
	p := &models.Project{
		Title:       slug,
		Slug:        slug,
		Description: "description of " + slug,
		Content:     "content long enough for " + slug,
		SourceURL:   "https://github.com/example/" + slug,
		UserID:      owner.ID,
		CreatedAt:   createdAt.UTC(),
		UpdatedAt:   createdAt.UTC(),
	}
	require.NoError(t, e.db.ProjectRepo().Add(context.Background(), p))
	return p
}

func validInput(title string) ProjectInput {
	return ProjectInput{
		Title:       title,
		Description: "A small tool that does things",
		Content:     "This is the long-form description of the project.",
		SourceURL:   "https://github.com/example/tool",
		Tags:        "go, cli",
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) CommentPosted(_ context.Context, project *models.Project, owner, author *models.User, comment *models.Comment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, owner.Username+"<-"+author.Username+":"+comment.Content)
	return nil
}

func (n *recordingNotifier) snapshot() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}
