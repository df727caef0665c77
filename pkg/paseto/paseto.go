package paseto

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"attendance-core/models"
)

var (
	pasetoInstance = paseto.NewV2()
	symmetricKey   []byte
)

// Init decodes the base64 secret into the 32-byte symmetric key. Must be
// called before any token is issued or validated.
func Init(secretBase64 string) error {
	decoded, err := base64.URLEncoding.DecodeString(secretBase64)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(secretBase64)
		if err != nil {
			return fmt.Errorf("failed to decode PASETO secret: %w", err)
		}
	}
	if len(decoded) != 32 {
		return fmt.Errorf("PASETO secret must be exactly 32 bytes after decoding, got %d", len(decoded))
	}
	symmetricKey = decoded
	return nil
}

func GenerateToken(admin *models.Admin) (string, error) {
	now := time.Now()
	exp := now.Add(24 * time.Hour)

	token := paseto.JSONToken{
		IssuedAt:   now,
		Expiration: exp,
		NotBefore:  now,
	}

	token.Set("admin_id", admin.ID.Hex())
	token.Set("username", admin.Username)
	token.Set("role", admin.Role)

	return pasetoInstance.Encrypt(symmetricKey, token, "")
}

func ValidateToken(tokenString string) (*models.Claims, error) {
	var token paseto.JSONToken
	var footer string

	err := pasetoInstance.Decrypt(tokenString, symmetricKey, &token, &footer)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt paseto token: %w", err)
	}

	if err := token.Validate(); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	adminID, err := primitive.ObjectIDFromHex(token.Get("admin_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid admin_id format: %w", err)
	}

	return &models.Claims{
		AdminID:  adminID,
		Username: token.Get("username"),
		Role:     token.Get("role"),
	}, nil
}
