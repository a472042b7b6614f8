package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/Hassan1910/Community-Collaboration-Platforms/auth"
	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxUsernameAttempts = 8

var (
	usernameInvalidChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	usernamePattern      = regexp.MustCompile(`^[a-z0-9_-]{3,30}$`)
)

// IdentityResolver maps verified external identities onto user rows.
type IdentityResolver struct {
	users         *database.UserRepo
	autoProvision bool
	logger        zerolog.Logger
}

func NewIdentityResolver(users *database.UserRepo, autoProvision bool) *IdentityResolver {
	return &IdentityResolver{
		users:         users,
		autoProvision: autoProvision,
		logger:        log.With().Str("service", "identity").Logger(),
	}
}

// Lookup returns the user linked to identity, or nil when none exists yet. It never writes.
func (r *IdentityResolver) Lookup(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	if identity == nil {
		return nil, nil
	}
	user, err := r.users.FindByExternalID(ctx, identity.ExternalID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return user, nil
}

// Resolve returns the user linked to identity, provisioning one on first contact.
// Concurrent first calls for the same identity converge on a single row through the
// unique index on external_id.
func (r *IdentityResolver) Resolve(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, errs.NewUnauthenticatedError()
	}

	user, err := r.Lookup(ctx, identity)
	if err != nil || user != nil {
		return user, err
	}
	if !r.autoProvision {
		return nil, errs.NewUserNotFoundError()
	}

	return r.provision(ctx, identity)
}

// provision inserts a user for identity with default fields taken from the provider profile.
func (r *IdentityResolver) provision(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	base := usernameBase(identity.Profile)

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		user := &models.User{
			ExternalID: identity.ExternalID,
			Name:       strings.TrimSpace(identity.Profile.Name),
			Email:      strings.TrimSpace(identity.Profile.Email),
			AvatarURL:  strings.TrimSpace(identity.Profile.AvatarURL),
		}
		username, err := r.freeUsername(ctx, base, attempt)
		if err != nil {
			return nil, err
		}
		user.Username = username

		err = r.users.Add(ctx, user)
		if err == nil {
			r.logger.Info().Str("userId", user.ID.String()).Str("username", user.Username).Msg("provisioned user")
			return user, nil
		}
		if !errs.IsDuplicateKey(err) {
			return nil, errs.NewDatabaseError("create", "user", err)
		}

		// Either another request provisioned this identity first, or the username was taken.
		existing, findErr := r.users.FindByExternalID(ctx, identity.ExternalID)
		if findErr != nil {
			return nil, errs.NewDatabaseError("find", "user", findErr)
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, errs.NewConflictError("could not allocate a username")
}

func (r *IdentityResolver) freeUsername(ctx context.Context, base string, attempt int) (string, error) {
	for ; attempt < maxUsernameAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", truncate(base, 25), rand.IntN(10000))
		}
		taken, err := r.users.UsernameTaken(ctx, candidate, uuid.Nil)
		if err != nil {
			return "", errs.NewDatabaseError("check", "username", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return truncate(base, 21) + "-" + shortID(), nil
}

// usernameBase derives a valid username from whatever the provider supplied.
func usernameBase(p auth.Profile) string {
	for _, raw := range []string{p.Username, emailLocalPart(p.Email), p.Name} {
		if name := NormalizeUsername(raw); usernamePattern.MatchString(name) {
			return name
		}
	}
	return "user-" + shortID()[:4]
}

// NormalizeUsername lower-cases raw, turns spaces into hyphens and drops anything outside [a-z0-9_-].
func NormalizeUsername(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, " ", "-")
	name = usernameInvalidChars.ReplaceAllString(name, "")
	return truncate(name, 30)
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
