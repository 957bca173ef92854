package repository

import (
	"context"

	"github.com/thek4n/clipstash/internal/domain/objectvalue"
)

// RevocationStatus result of apikey revocation.
type RevocationStatus uint8

// Revocation statuses.
const (
	RevocationNotFound RevocationStatus = iota
	Revoked
)

// APIKeyRepository domain interface.
type APIKeyRepository interface {
	SaveAPIKey(context.Context, objectvalue.APIKey) (objectvalue.APIKey, error)
	RevokeAPIKey(context.Context, objectvalue.APIKey) (RevocationStatus, error)
	APIKeyExists(context.Context, objectvalue.APIKey) (bool, error)
}
