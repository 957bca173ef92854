// Package service contains application services.
package service

import (
	"context"

	"github.com/thek4n/clipstash/internal/domain/config"
	"github.com/thek4n/clipstash/internal/domain/domainerrors"
	"github.com/thek4n/clipstash/internal/domain/event"
	"github.com/thek4n/clipstash/internal/domain/logger"
	"github.com/thek4n/clipstash/internal/domain/objectvalue"
	"github.com/thek4n/clipstash/internal/domain/repository"
)

// APIKeyChecker checks apikey text form within caller context.
type APIKeyChecker interface {
	CheckAPIKey(ctx context.Context, key string) (bool, error)
}

// APIKeysService provides methods to work with apikeys.
type APIKeysService struct {
	repository     repository.APIKeyRepository
	eventPublisher *event.Publisher
	config         config.OperationConfig
	logger         logger.Logger
}

// NewAPIKeysService constructor.
func NewAPIKeysService(
	rep repository.APIKeyRepository,
	eventPublisher *event.Publisher,
	cfg config.OperationConfig,
	lgr logger.Logger,
) *APIKeysService {
	return &APIKeysService{
		repository:     rep,
		eventPublisher: eventPublisher,
		config:         cfg,
		logger:         lgr,
	}
}

func (s *APIKeysService) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.config.OperationTimeout())
}

// GenerateAPIKey generates and saves new apikey.
func (s *APIKeysService) GenerateAPIKey() (objectvalue.APIKey, error) {
	ctx, cancel := s.context()
	defer cancel()

	key, err := objectvalue.GenerateAPIKey()
	if err != nil {
		return objectvalue.APIKey{}, domainerrors.FromStore(err)
	}

	saved, err := s.repository.SaveAPIKey(ctx, key)
	if err != nil {
		return objectvalue.APIKey{}, domainerrors.FromStore(err)
	}

	s.eventPublisher.NotifyAll(event.NewAPIKeyCreatedEvent())
	s.logger.Info("Generated apikey")

	return saved, nil
}

// RevokeAPIKey revokes apikey. Returns false if key was never saved.
func (s *APIKeysService) RevokeAPIKey(key string) (bool, error) {
	apikey, err := objectvalue.ParseAPIKey(key)
	if err != nil {
		return false, domainerrors.Validation(err)
	}

	ctx, cancel := s.context()
	defer cancel()

	status, err := s.repository.RevokeAPIKey(ctx, apikey)
	if err != nil {
		return false, domainerrors.FromStore(err)
	}

	revoked := status == repository.Revoked
	s.eventPublisher.NotifyAll(event.NewAPIKeyRevokedEvent(revoked))
	s.logger.Info("Revoke apikey", "revoked", revoked)

	return revoked, nil
}

// ValidateAPIKey returns true if apikey is saved and not revoked.
// Malformed key is not valid.
func (s *APIKeysService) ValidateAPIKey(key string) (bool, error) {
	ctx, cancel := s.context()
	defer cancel()

	return s.CheckAPIKey(ctx, key)
}

// RequireAPIKey returns PermissionDenied if apikey is not valid.
func (s *APIKeysService) RequireAPIKey(key string) error {
	valid, err := s.ValidateAPIKey(key)
	if err != nil {
		return err
	}
	if !valid {
		return domainerrors.PermissionDenied("invalid apikey")
	}
	return nil
}

// CheckAPIKey implementation of APIKeyChecker.
func (s *APIKeysService) CheckAPIKey(ctx context.Context, key string) (bool, error) {
	apikey, err := objectvalue.ParseAPIKey(key)
	if err != nil {
		s.logger.Debug("Malformed apikey", "error", err)
		return false, nil
	}

	exists, err := s.repository.APIKeyExists(ctx, apikey)
	if err != nil {
		return false, domainerrors.FromStore(err)
	}

	return exists, nil
}
