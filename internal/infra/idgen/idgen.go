package idgen

import (
	"strings"
	"time"

	"petshop/internal/domain/model"

	"github.com/google/uuid"
)

// UUIDGenerator builds prefixed ids from random uuids.
// Products keep the short "PID" + 8 hex form; everything else gets 16 hex.
type UUIDGenerator struct{}

func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID(prefix string) string {
	n := 16
	if prefix == model.IDPrefixProduct {
		n = 8
	}
	return prefix + randomHex(n)
}

// NewSessionID returns a plain uuid for the sessions table.
func (g *UUIDGenerator) NewSessionID() string {
	return uuid.NewString()
}

func randomHex(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(s[:n])
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
