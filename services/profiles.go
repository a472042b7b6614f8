package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Hassan1910/Community-Collaboration-Platforms/auth"
	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"gorm.io/datatypes"
)

// ProfileInput is the profile form. Skills is a comma separated list.
type ProfileInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Skills   string `json:"skills"`
}

type ProfileService struct {
	users    *database.UserRepo
	identity *IdentityResolver
	projects *ProjectService
	now      func() time.Time
}

func NewProfileService(db database.Database, identity *IdentityResolver, projects *ProjectService) *ProfileService {
	return &ProfileService{
		users:    db.UserRepo(),
		identity: identity,
		projects: projects,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile returns the acting user's own profile, provisioning it when allowed.
func (s *ProfileService) GetProfile(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	return s.identity.Resolve(ctx, identity)
}

// UpdateProfile creates the user on first save and then applies in.
func (s *ProfileService) UpdateProfile(ctx context.Context, identity *auth.Identity, in ProfileInput) (*models.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, errs.NewUnauthenticatedError()
	}

	username := NormalizeUsername(in.Username)
	fields := make(map[string]string)
	if utf8.RuneCountInString(strings.TrimSpace(in.Name)) > 100 {
		fields["name"] = "Name must be at most 100 characters"
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Bio)) > 500 {
		fields["bio"] = "Bio must be at most 500 characters"
	}
	if in.Username != "" && !usernamePattern.MatchString(username) {
		fields["username"] = "Username must be 3-30 characters of a-z, 0-9, _ or -"
	}
	if len(fields) > 0 {
		return nil, errs.NewValidationError(fields)
	}

	user, err := s.identity.Lookup(ctx, identity)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if user, err = s.identity.provision(ctx, identity); err != nil {
			return nil, err
		}
	}

	if username != "" && username != user.Username {
		taken, err := s.users.UsernameTaken(ctx, username, user.ID)
		if err != nil {
			return nil, errs.NewDatabaseError("check", "username", err)
		}
		if taken {
			return nil, errs.NewValidationError(map[string]string{"username": "Username is already taken"})
		}
		user.Username = username
	}
	user.Name = strings.TrimSpace(in.Name)
	user.Bio = strings.TrimSpace(in.Bio)
	user.Skills = datatypes.JSONSlice[string](ParseTags(in.Skills))
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		if errs.IsDuplicateKey(err) {
			return nil, errs.NewValidationError(map[string]string{"username": "Username is already taken"})
		}
		return nil, errs.NewDatabaseError("update", "user", err)
	}
	return user, nil
}

// GetPublicProfile returns what anyone may see about username, including their projects.
func (s *ProfileService) GetPublicProfile(ctx context.Context, username string) (*PublicProfile, error) {
	user, err := s.users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFound("user")
	}

	projects, err := s.projects.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}

	skills := []string(user.Skills)
	if skills == nil {
		skills = []string{}
	}
	return &PublicProfile{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Bio:       user.Bio,
		Skills:    skills,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		Projects:  projects,
	}, nil
}
