package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thek4n/clipstash/internal/domain/aggregate"
	"github.com/thek4n/clipstash/internal/domain/config"
	"github.com/thek4n/clipstash/internal/domain/domainerrors"
	"github.com/thek4n/clipstash/internal/domain/event"
	"github.com/thek4n/clipstash/internal/domain/logger"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
	"github.com/thek4n/clipstash/internal/domain/repository"
)

// ShortCodeGenerator generates shortcodes for new clips.
type ShortCodeGenerator interface {
	Generate() (objectvalue.ShortCode, error)
}

// ClipService application service.
// Every method returns nil or *domainerrors.ServiceError.
type ClipService struct {
	clipRepository repository.ClipRepository
	apikeyChecker  APIKeyChecker
	hasher         objectvalue.PasswordHasher
	generator      ShortCodeGenerator
	eventPublisher *event.Publisher
	config         config.ClipValidationConfig
	logger         logger.Logger
	now            func() time.Time
}

// NewClipService constructor.
func NewClipService(
	clipRepository repository.ClipRepository,
	apikeyChecker APIKeyChecker,
	hasher objectvalue.PasswordHasher,
	generator ShortCodeGenerator,
	eventPublisher *event.Publisher,
	cfg config.ClipValidationConfig,
	lgr logger.Logger,
) *ClipService {
	return &ClipService{
		clipRepository: clipRepository,
		apikeyChecker:  apikeyChecker,
		hasher:         hasher,
		generator:      generator,
		eventPublisher: eventPublisher,
		config:         cfg,
		logger:         lgr,
		now:            time.Now,
	}
}

func (s *ClipService) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.config.OperationTimeout())
}

// CreateClip validates request and stores new clip.
func (s *ClipService) CreateClip(req NewClip) (aggregate.Clip, error) {
	ctx, cancel := s.context()
	defer cancel()

	now := s.now()

	content, err := s.newContent(req.Content)
	if err != nil {
		return aggregate.Clip{}, err
	}

	title, err := objectvalue.NewTitle(req.Title, s.config.MaxTitleLength())
	if err != nil {
		return aggregate.Clip{}, domainerrors.Validation(err)
	}

	expires, err := s.parseExpires(req.Expires, now)
	if err != nil {
		return aggregate.Clip{}, err
	}

	password, err := s.newPassword(req.Password)
	if err != nil {
		return aggregate.Clip{}, err
	}

	privileged, err := s.checkAPIKey(ctx, req.APIKey)
	if err != nil {
		return aggregate.Clip{}, err
	}

	shortcode, err := s.shortCode(req.ShortCode, privileged)
	if err != nil {
		return aggregate.Clip{}, err
	}

	id, err := objectvalue.NewClipID()
	if err != nil {
		return aggregate.Clip{}, domainerrors.FromStore(err)
	}

	clip, err := aggregate.NewClip(
		id,
		shortcode,
		content,
		title,
		objectvalue.NewPosted(now),
		expires,
		password,
		objectvalue.NewHits(0),
	)
	if err != nil {
		return aggregate.Clip{}, domainerrors.Validation(err)
	}

	created, err := s.clipRepository.CreateClip(ctx, clip)
	if err != nil {
		s.logger.Warn("Fail to create clip", "shortcode", shortcode.String(), "error", err)
		return aggregate.Clip{}, domainerrors.FromStore(err)
	}

	s.eventPublisher.NotifyAll(event.NewClipCreatedEvent(shortcode.String(), created.Protected(), privileged))
	s.logger.Info("Created clip", "shortcode", shortcode.String(), "privileged", privileged)

	return created, nil
}

// GetClip returns clip and counts hit.
// Failed hit increment is logged, not returned.
func (s *ClipService) GetClip(req GetClip) (aggregate.Clip, error) {
	shortcode, err := objectvalue.NewShortCode(req.ShortCode)
	if err != nil {
		return aggregate.Clip{}, domainerrors.Validation(err)
	}

	ctx, cancel := s.context()
	defer cancel()

	clip, err := s.getLiveClip(ctx, shortcode)
	if err != nil {
		return aggregate.Clip{}, err
	}

	if err := s.verifyPassword(clip, req.Password); err != nil {
		return aggregate.Clip{}, err
	}

	if err := s.clipRepository.IncrementHits(ctx, shortcode, 1); err != nil {
		s.logger.Error("Fail to increment hits", "shortcode", shortcode.String(), "error", err)
		s.eventPublisher.NotifyAll(event.NewHitsIncrementLostEvent(shortcode.String()))
	} else if hits, err := clip.Hits().Increment(1); err == nil {
		clip = clip.WithHits(hits)
	}

	s.eventPublisher.NotifyAll(event.NewClipViewedEvent(shortcode.String(), clip.Protected()))
	s.logger.Debug("Served clip", "shortcode", shortcode.String())

	return clip, nil
}

// UpdateClip changes fields present in request.
// Protected clip requires current password or valid apikey.
func (s *ClipService) UpdateClip(req UpdateClip) (aggregate.Clip, error) {
	shortcode, err := objectvalue.NewShortCode(req.ShortCode)
	if err != nil {
		return aggregate.Clip{}, domainerrors.Validation(err)
	}

	patch, err := s.buildPatch(req, s.now())
	if err != nil {
		return aggregate.Clip{}, err
	}

	ctx, cancel := s.context()
	defer cancel()

	privileged, err := s.authorize(ctx, shortcode, req.CurrentPassword, req.APIKey)
	if err != nil {
		return aggregate.Clip{}, err
	}

	updated, err := s.clipRepository.UpdateClip(ctx, shortcode, patch)
	if err != nil {
		return aggregate.Clip{}, domainerrors.FromStore(err)
	}

	s.eventPublisher.NotifyAll(event.NewClipUpdatedEvent(shortcode.String(), updated.Protected(), privileged))
	s.logger.Info("Updated clip", "shortcode", shortcode.String(), "privileged", privileged)

	return updated, nil
}

// DeleteClip removes clip. Valid apikey bypasses password check.
func (s *ClipService) DeleteClip(req DeleteClip) error {
	shortcode, err := objectvalue.NewShortCode(req.ShortCode)
	if err != nil {
		return domainerrors.Validation(err)
	}

	ctx, cancel := s.context()
	defer cancel()

	privileged, err := s.authorize(ctx, shortcode, req.Password, req.APIKey)
	if err != nil {
		return err
	}

	if err := s.clipRepository.DeleteClip(ctx, shortcode); err != nil {
		return domainerrors.FromStore(err)
	}

	s.eventPublisher.NotifyAll(event.NewClipDeletedEvent(shortcode.String(), privileged))
	s.logger.Info("Deleted clip", "shortcode", shortcode.String(), "privileged", privileged)

	return nil
}

// SweepExpired removes clips expired before now and returns their number.
func (s *ClipService) SweepExpired(now time.Time) (uint64, error) {
	ctx, cancel := s.context()
	defer cancel()

	removed, err := s.clipRepository.DeleteExpired(ctx, now)
	if err != nil {
		return 0, domainerrors.FromStore(err)
	}

	s.eventPublisher.NotifyAll(event.NewClipsSweptEvent(removed))
	if removed > 0 {
		s.logger.Info("Swept expired clips", "removed", removed)
	}

	return removed, nil
}

func (s *ClipService) getLiveClip(ctx context.Context, shortcode objectvalue.ShortCode) (aggregate.Clip, error) {
	clip, err := s.clipRepository.GetClip(ctx, shortcode)
	if err != nil {
		return aggregate.Clip{}, domainerrors.FromStore(err)
	}

	if clip.Expired(s.now()) {
		return aggregate.Clip{}, domainerrors.NotFound("clip expired")
	}

	return clip, nil
}

// authorize checks rights to change clip. Returns true if valid apikey was used.
func (s *ClipService) authorize(
	ctx context.Context,
	shortcode objectvalue.ShortCode,
	password, apikey string,
) (bool, error) {
	privileged, err := s.checkAPIKey(ctx, apikey)
	if err != nil {
		return false, err
	}

	clip, err := s.getLiveClip(ctx, shortcode)
	if err != nil {
		return false, err
	}

	if privileged {
		return true, nil
	}

	return false, s.verifyPassword(clip, password)
}

func (s *ClipService) verifyPassword(clip aggregate.Clip, password string) error {
	ok, err := clip.Password().Verify(password, s.hasher)
	if err != nil {
		return domainerrors.FromStore(err)
	}
	if ok {
		return nil
	}

	if s.config.HideProtectedClips() {
		return domainerrors.NotFound("clip not found")
	}
	return domainerrors.PermissionDenied("invalid password")
}

// checkAPIKey returns false for empty key and PermissionDenied for unknown one.
func (s *ClipService) checkAPIKey(ctx context.Context, apikey string) (bool, error) {
	if apikey == "" {
		return false, nil
	}

	valid, err := s.apikeyChecker.CheckAPIKey(ctx, apikey)
	if err != nil {
		return false, domainerrors.FromStore(err)
	}
	if !valid {
		s.logger.Warn("Using invalid apikey")
		return false, domainerrors.PermissionDenied("invalid apikey")
	}

	return true, nil
}

func (s *ClipService) shortCode(requested string, privileged bool) (objectvalue.ShortCode, error) {
	if requested == "" {
		shortcode, err := s.generator.Generate()
		if err != nil {
			return "", domainerrors.FromStore(err)
		}
		return shortcode, nil
	}

	if !privileged {
		return "", domainerrors.PermissionDenied("custom shortcode requires apikey")
	}

	shortcode, err := objectvalue.NewRequestedShortCode(
		requested,
		int(s.config.MinRequestedShortCodeLength()),
		int(s.config.MaxShortCodeLength()),
		s.config.ShortCodeCharset(),
	)
	if err != nil {
		return "", domainerrors.Validation(err)
	}

	return shortcode, nil
}

func (s *ClipService) parseExpires(text string, now time.Time) (objectvalue.Expires, error) {
	parsed, err := objectvalue.ParseExpires(text)
	if err != nil {
		return objectvalue.Expires{}, domainerrors.Validation(err)
	}

	t, ok := parsed.Time()
	if !ok {
		return parsed, nil
	}

	expires, err := objectvalue.ExpiresAt(t, now, s.config.AllowPastExpiration())
	if err != nil {
		return objectvalue.Expires{}, domainerrors.Validation(err)
	}

	return expires, nil
}

func (s *ClipService) newPassword(plain string) (objectvalue.Password, error) {
	password, err := objectvalue.NewPassword(plain, s.config.MaxPasswordLength(), s.hasher)
	if err != nil {
		var fieldErr *domainerrors.ClipError
		if errors.As(err, &fieldErr) {
			return objectvalue.Password{}, domainerrors.Validation(err)
		}
		return objectvalue.Password{}, domainerrors.FromStore(err)
	}

	return password, nil
}

func (s *ClipService) newContent(text string) (objectvalue.Content, error) {
	if limit := s.config.MaxContentBytes(); int64(len(text)) > limit {
		return objectvalue.Content{}, domainerrors.Validation(
			domainerrors.WithReason(domainerrors.ErrContentTooLarge, fmt.Sprintf("more than %d bytes", limit)),
		)
	}

	content, err := objectvalue.NewContent(text)
	if err != nil {
		return objectvalue.Content{}, domainerrors.Validation(err)
	}

	return content, nil
}

func (s *ClipService) buildPatch(req UpdateClip, now time.Time) (aggregate.ClipPatch, error) {
	var patch aggregate.ClipPatch

	if req.Content != nil {
		content, err := s.newContent(*req.Content)
		if err != nil {
			return patch, err
		}
		patch.Content = &content
	}

	if req.Title != nil {
		title, err := objectvalue.NewTitle(*req.Title, s.config.MaxTitleLength())
		if err != nil {
			return patch, domainerrors.Validation(err)
		}
		patch.Title = &title
	}

	if req.Expires != nil {
		expires, err := s.parseExpires(*req.Expires, now)
		if err != nil {
			return patch, err
		}
		patch.Expires = &expires
	}

	if req.Password != nil {
		password, err := s.newPassword(*req.Password)
		if err != nil {
			return patch, err
		}
		patch.Password = &password
	}

	return patch, nil
}
