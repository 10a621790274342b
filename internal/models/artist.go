package models

import (
	"time"

	"github.com/google/uuid"
)

// Artist is an account representing an artist. Artists are reachable
// either through a direct owner row or through an organization link.
type Artist struct {
	ArtistID  uuid.UUID // UUIDv7
	Name      string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
