package meet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LocalGenerator fabricates deterministic join URLs without calling any
// provider. Used in dev when no conferencing API is configured.
type LocalGenerator struct{}

func NewLocalGenerator() *LocalGenerator {
	return &LocalGenerator{}
}

func (g *LocalGenerator) CreateMeeting(_ context.Context, appointmentID uuid.UUID, _ time.Time, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://meet.sehat.local/%s", appointmentID.String()), nil
}
