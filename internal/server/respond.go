package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/recoupable/api-sub002/internal/models"
)

type artistResponse struct {
	ArtistID  string    `json:"artist_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toArtistResponse(artist *models.Artist) artistResponse {
	return artistResponse{
		ArtistID:  artist.ArtistID.String(),
		Name:      artist.Name,
		ImageURL:  artist.ImageURL,
		CreatedAt: artist.CreatedAt,
	}
}

func artistResponses(artists []*models.Artist) []artistResponse {
	result := make([]artistResponse, 0, len(artists))
	for _, artist := range artists {
		result = append(result, toArtistResponse(artist))
	}
	return result
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: message})
}
