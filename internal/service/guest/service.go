package guest

import (
	"strings"

	"github.com/google/uuid"
)

const prefix = "guest_"

// Service hands out identifiers for visitors without an account.
type Service struct{}

func New() *Service {
	return &Service{}
}

// NewID returns a fresh guest identifier.
func (s *Service) NewID() string {
	return prefix + uuid.NewString()
}

// Valid reports whether id looks like an identifier issued by NewID.
func (s *Service) Valid(id string) bool {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
