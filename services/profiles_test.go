package services

import (
	"context"
	"testing"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/auth"
	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(env *testEnv, autoProvision bool) *ProfileService {
	return NewProfileService(env.db, NewIdentityResolver(env.db.UserRepo(), autoProvision), env.projects)
}

func TestUpdateProfileCreatesUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env, false)
	id := identityFor("ext-new", auth.Profile{Name: "Newcomer"})

	user, err := svc.UpdateProfile(context.Background(), id, ProfileInput{
		Name:     "New Person",
		Username: "New_Person",
		Bio:      "I build things",
		Skills:   "go, postgres, ",
	})
	require.NoError(t, err)
	assert.Equal(t, "new_person", user.Username)
	assert.Equal(t, "New Person", user.Name)
	assert.Equal(t, []string{"go", "postgres"}, []string(user.Skills))

	same, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, user.ID, same.ID)
	assert.Equal(t, "I build things", same.Bio)
}

func TestUpdateProfileUsernameRules(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "taken")
	svc := newProfileService(env, true)
	id := identityFor("ext-me", auth.Profile{Username: "me"})

	_, err := svc.UpdateProfile(context.Background(), id, ProfileInput{Username: "taken"})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, errs.FieldErrors(err), "username")

	_, err = svc.UpdateProfile(context.Background(), id, ProfileInput{Username: "x"})
	assert.Contains(t, errs.FieldErrors(err), "username")

	user, err := svc.UpdateProfile(context.Background(), id, ProfileInput{Name: "Me"})
	require.NoError(t, err)
	assert.Equal(t, "me", user.Username, "blank username keeps the current one")

	_, err = svc.UpdateProfile(context.Background(), nil, ProfileInput{})
	assert.True(t, errs.IsUnauthorized(err))
}

func TestGetPublicProfile(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "builder")
	env.projectAt(t, owner, "first", time.Now().Add(-time.Hour))
	env.projectAt(t, owner, "second", time.Now())
	svc := newProfileService(env, true)

	profile, err := svc.GetPublicProfile(context.Background(), "Builder")
	require.NoError(t, err)
	assert.Equal(t, "builder", profile.Username)
	require.Len(t, profile.Projects, 2)
	assert.Equal(t, "second", profile.Projects[0].Slug)
	assert.Equal(t, "builder", profile.Projects[0].Author.Username)
	assert.NotNil(t, profile.Skills)

	_, err = svc.GetPublicProfile(context.Background(), "nobody")
	assert.True(t, errs.IsNotFound(err))
}
