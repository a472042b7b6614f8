package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxCommentLength = 2000
	notifyTimeout           = 30 * time.Second
)

// LikeState is the outcome of a like operation as seen by the acting user.
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// InteractionService records likes and comments on projects.
type InteractionService struct {
	projects         *database.ProjectRepo
	likes            *database.LikeRepo
	comments         *database.CommentRepo
	users            *database.UserRepo
	highlights       *HighlightService
	notifier         CommentNotifier
	maxCommentLength int
	pending          sync.WaitGroup
	logger           zerolog.Logger
	now              func() time.Time
}

// NewInteractionService wires the ledger. notifier may be nil.
func NewInteractionService(db database.Database, highlights *HighlightService, notifier CommentNotifier, maxCommentLength int) *InteractionService {
	if maxCommentLength <= 0 {
		maxCommentLength = DefaultMaxCommentLength
	}
	return &InteractionService{
		projects:         db.ProjectRepo(),
		likes:            db.LikeRepo(),
		comments:         db.CommentRepo(),
		users:            db.UserRepo(),
		highlights:       highlights,
		notifier:         notifier,
		maxCommentLength: maxCommentLength,
		logger:           log.With().Str("service", "interactions").Logger(),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// ToggleLike flips whether user likes the project. The existence check and the write are
// not atomic: a concurrent insert of the same pair is absorbed by the unique index and
// reported as liked, and a delete that finds nothing is reported as unliked.
func (s *InteractionService) ToggleLike(ctx context.Context, user *models.User, projectID uuid.UUID) (LikeState, error) {
	if user == nil {
		return LikeState{}, errs.NewUnauthenticatedError()
	}
	if err := s.requireProject(ctx, projectID); err != nil {
		return LikeState{}, err
	}

	existing, err := s.likes.Find(ctx, user.ID, projectID)
	if err != nil {
		return LikeState{}, errs.NewDatabaseError("find", "like", err)
	}
	return s.applyLike(ctx, user, projectID, existing == nil)
}

// SetLike makes the like state of user on the project equal to liked. Repeating it is a no-op.
func (s *InteractionService) SetLike(ctx context.Context, user *models.User, projectID uuid.UUID, liked bool) (LikeState, error) {
	if user == nil {
		return LikeState{}, errs.NewUnauthenticatedError()
	}
	if err := s.requireProject(ctx, projectID); err != nil {
		return LikeState{}, err
	}
	return s.applyLike(ctx, user, projectID, liked)
}

func (s *InteractionService) applyLike(ctx context.Context, user *models.User, projectID uuid.UUID, liked bool) (LikeState, error) {
	if liked {
		err := s.likes.Add(ctx, &models.Like{UserID: user.ID, ProjectID: projectID, CreatedAt: s.now()})
		switch {
		case errs.IsDuplicateKey(err):
			s.logger.Debug().Str("projectId", projectID.String()).Msg("like already present")
		case err != nil:
			return LikeState{}, errs.NewDatabaseError("create", "like", err)
		}
	} else {
		if _, err := s.likes.DeleteByPair(ctx, user.ID, projectID); err != nil {
			return LikeState{}, errs.NewDatabaseError("delete", "like", err)
		}
	}

	count, err := s.likes.CountByProject(ctx, projectID)
	if err != nil {
		return LikeState{}, errs.NewDatabaseError("count", "likes", err)
	}
	s.highlights.Invalidate(ctx)
	return LikeState{Liked: liked, LikeCount: count}, nil
}

// PostComment appends a comment and notifies the project owner when someone else wrote it.
func (s *InteractionService) PostComment(ctx context.Context, user *models.User, projectID uuid.UUID, content string) (*models.Comment, error) {
	if user == nil {
		return nil, errs.NewUnauthenticatedError()
	}

	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return nil, errs.NewValidationError(map[string]string{"content": "Comment cannot be empty"})
	case utf8.RuneCountInString(content) > s.maxCommentLength:
		return nil, errs.NewValidationError(map[string]string{"content": "Comment is too long"})
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}

	comment := &models.Comment{
		Content:   content,
		UserID:    user.ID,
		ProjectID: projectID,
		CreatedAt: s.now(),
	}
	if err := s.comments.Add(ctx, comment); err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}
	comment.User = user

	s.highlights.Invalidate(ctx)
	if s.notifier != nil && !project.IsOwnedBy(user.ID) {
		s.notify(ctx, project, user, comment)
	}
	return comment, nil
}

// DeleteComment removes a comment written by user.
func (s *InteractionService) DeleteComment(ctx context.Context, user *models.User, commentID uuid.UUID) error {
	if user == nil {
		return errs.NewUnauthenticatedError()
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return errs.NewDatabaseError("find", "comment", err)
	}
	if comment == nil {
		return errs.NewNotFound("comment")
	}
	if !comment.IsOwnedBy(user.ID) {
		return errs.NewForbiddenError("only the author can delete this comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return errs.NewDatabaseError("delete", "comment", err)
	}
	s.highlights.Invalidate(ctx)
	return nil
}

// Wait blocks until in-flight notifications have finished.
func (s *InteractionService) Wait() {
	s.pending.Wait()
}

func (s *InteractionService) notify(ctx context.Context, project *models.Project, author *models.User, comment *models.Comment) {
	owner := project.User
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if owner == nil {
			var err error
			if owner, err = s.users.FindByID(notifyCtx, project.UserID); err != nil || owner == nil {
				s.logger.Warn().Err(err).Str("projectId", project.ID.String()).Msg("comment notification skipped: owner not loaded")
				return
			}
		}
		if err := s.notifier.CommentPosted(notifyCtx, project, owner, author, comment); err != nil {
			s.logger.Warn().Err(err).Str("projectId", project.ID.String()).Msg("comment notification failed")
		}
	}()
}

func (s *InteractionService) requireProject(ctx context.Context, projectID uuid.UUID) error {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return errs.NewNotFound("project")
	}
	return nil
}
