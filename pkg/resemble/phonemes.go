package resemble

import (
	"context"
	"net/http"
	"time"
)

// Phoneme overrides the pronunciation of a word.
type Phoneme struct {
	UUID                  string    `json:"uuid"`
	Alphabet              string    `json:"alphabet"`
	Word                  string    `json:"word"`
	PhoneticTranscription string    `json:"phonetic_transcription"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// PhonemesService handles the account's phonemes.
type PhonemesService service

// List returns one page of phonemes.
func (s *PhonemesService) List(ctx context.Context, page, pageSize int) (*PaginationResponse[Phoneme], error) {
	return doJSON[PaginationResponse[Phoneme]](ctx, s.client, http.MethodGet, appServer,
		pagePath("phonemes", page, pageSize, nil), nil)
}

// Create adds a pronunciation for word.
func (s *PhonemesService) Create(ctx context.Context, word, phoneticTranscription string) (*WriteResponse[Phoneme], error) {
	in := map[string]string{
		"word":                   word,
		"phonetic_transcription": phoneticTranscription,
	}
	return doJSON[WriteResponse[Phoneme]](ctx, s.client, http.MethodPost, appServer, "phonemes", in)
}

// Get fetches one phoneme.
func (s *PhonemesService) Get(ctx context.Context, uuid string) (*ReadResponse[Phoneme], error) {
	return doJSON[ReadResponse[Phoneme]](ctx, s.client, http.MethodGet, appServer, "phonemes/"+uuid, nil)
}

// Delete deletes a phoneme.
func (s *PhonemesService) Delete(ctx context.Context, uuid string) (*DeleteResponse, error) {
	return doJSON[DeleteResponse](ctx, s.client, http.MethodDelete, appServer, "phonemes/"+uuid, nil)
}
