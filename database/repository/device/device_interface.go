package deviceRepo

import "townhall/models"

// DeviceTokenRepository defines methods for the device-token registry.
// Tokens are never deduplicated or expired; stale tokens accumulate until
// explicitly removed.
type DeviceTokenRepository interface {
	// Register inserts a device token record.
	Register(token *models.DeviceToken) error
	// GetByUser retrieves all device-token records of a user.
	GetByUser(uid string) ([]models.DeviceToken, error)
	// GetTokensByUser retrieves just the token strings of a user.
	GetTokensByUser(uid string) ([]string, error)
	// Delete removes one token string for a user.
	Delete(uid, token string) error
}
