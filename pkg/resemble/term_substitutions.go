package resemble

import (
	"context"
	"net/http"
	"time"
)

// TermSubstitution replaces text before synthesis.
type TermSubstitution struct {
	UUID            string    `json:"uuid"`
	OriginalText    string    `json:"original_text"`
	ReplacementText string    `json:"replacement_text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TermSubstitutionsService handles the account's term substitutions.
type TermSubstitutionsService service

// List returns one page of term substitutions.
func (s *TermSubstitutionsService) List(ctx context.Context, page, pageSize int) (*PaginationResponse[TermSubstitution], error) {
	return doJSON[PaginationResponse[TermSubstitution]](ctx, s.client, http.MethodGet, appServer,
		pagePath("term_substitutions", page, pageSize, nil), nil)
}

// Create adds a substitution of original by replacement.
func (s *TermSubstitutionsService) Create(ctx context.Context, original, replacement string) (*WriteResponse[TermSubstitution], error) {
	in := map[string]string{
		"original_text":    original,
		"replacement_text": replacement,
	}
	return doJSON[WriteResponse[TermSubstitution]](ctx, s.client, http.MethodPost, appServer, "term_substitutions", in)
}

// Get fetches one term substitution.
func (s *TermSubstitutionsService) Get(ctx context.Context, uuid string) (*ReadResponse[TermSubstitution], error) {
	return doJSON[ReadResponse[TermSubstitution]](ctx, s.client, http.MethodGet, appServer, "term_substitutions/"+uuid, nil)
}

// Delete deletes a term substitution.
func (s *TermSubstitutionsService) Delete(ctx context.Context, uuid string) (*DeleteResponse, error) {
	return doJSON[DeleteResponse](ctx, s.client, http.MethodDelete, appServer, "term_substitutions/"+uuid, nil)
}
