package conversation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"jan-server/services/conversation-api/internal/utils/idgen"
)

// ===============================================
// Validation
// ===============================================

// ValidationConfig holds the input limits enforced before any store write.
type ValidationConfig struct {
	MaxTitleLength   int
	MaxContentLength int
	MaxUserIDLength  int
	MaxSeedMessages  int
}

// DefaultValidationConfig returns the standard validation limits.
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		MaxTitleLength:   256,
		MaxContentLength: 100000,
		MaxUserIDLength:  255,
		MaxSeedMessages:  50,
	}
}

// Validator checks conversation and message inputs. All checks run before
// anything is written so bad input never leaves partial state behind.
type Validator struct {
	config *ValidationConfig
}

// NewValidator creates a validator, falling back to the default limits when
// config is nil.
func NewValidator(config *ValidationConfig) *Validator {
	if config == nil {
		config = DefaultValidationConfig()
	}
	return &Validator{config: config}
}

// ValidateUserID checks the partition key supplied by the caller.
func (v *Validator) ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if len(userID) > v.config.MaxUserIDLength {
		return fmt.Errorf("user ID cannot exceed %d bytes (got %d)", v.config.MaxUserIDLength, len(userID))
	}
	if strings.Contains(userID, "\x00") {
		return fmt.Errorf("user ID cannot contain null bytes")
	}
	return nil
}

// ValidateConversationID checks the caller-visible conversation ID format.
func (v *Validator) ValidateConversationID(id string) error {
	if id == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}
	if !strings.HasPrefix(id, "conv_") {
		return fmt.Errorf("conversation ID must start with 'conv_' prefix")
	}
	if !idgen.ValidateIDFormat(id, "conv") {
		return fmt.Errorf("invalid conversation ID format")
	}
	return nil
}

// ValidateTitle checks a caller-supplied title.
func (v *Validator) ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("title cannot be empty")
	}

	length := utf8.RuneCountInString(title)
	if length > v.config.MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters (got %d)", v.config.MaxTitleLength, length)
	}

	if strings.Contains(title, "\x00") {
		return fmt.Errorf("title cannot contain null bytes")
	}

	return nil
}

// ValidateRole checks that the role belongs to the closed set.
func (v *Validator) ValidateRole(role Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %s (must be user, assistant, or system)", role)
	}
	return nil
}

// ValidateContent checks a message payload.
func (v *Validator) ValidateContent(content string) error {
	if content == "" {
		return fmt.Errorf("content cannot be empty")
	}

	length := utf8.RuneCountInString(content)
	if length > v.config.MaxContentLength {
		return fmt.Errorf("content cannot exceed %d characters (got %d)", v.config.MaxContentLength, length)
	}

	if strings.Contains(content, "\x00") {
		return fmt.Errorf("content cannot contain null bytes")
	}

	return nil
}

// ValidateSeedMessages checks the optional seed batch supplied at creation.
func (v *Validator) ValidateSeedMessages(seeds []string) error {
	if len(seeds) > v.config.MaxSeedMessages {
		return fmt.Errorf("cannot seed more than %d messages (got %d)", v.config.MaxSeedMessages, len(seeds))
	}
	for i, seed := range seeds {
		if err := v.ValidateContent(seed); err != nil {
			return fmt.Errorf("seed message %d: %w", i, err)
		}
	}
	return nil
}
