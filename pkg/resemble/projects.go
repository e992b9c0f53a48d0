package resemble

import (
	"context"
	"net/http"
	"time"
)

// Project groups clips.
type Project struct {
	UUID            string    `json:"uuid"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	IsPublic        bool      `json:"is_public"`
	IsCollaborative bool      `json:"is_collaborative"`
	IsArchived      bool      `json:"is_archived"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProjectInput is the body of project create and update requests.
type ProjectInput struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	IsPublic        bool   `json:"is_public"`
	IsCollaborative bool   `json:"is_collaborative"`
	IsArchived      bool   `json:"is_archived"`
}

// ProjectsService handles the projects resource.
type ProjectsService service

// List returns one page of projects.
func (s *ProjectsService) List(ctx context.Context, page, pageSize int) (*PaginationResponse[Project], error) {
	return doJSON[PaginationResponse[Project]](ctx, s.client, http.MethodGet, appServer,
		pagePath("projects", page, pageSize, nil), nil)
}

// Get fetches one project.
func (s *ProjectsService) Get(ctx context.Context, uuid string) (*ReadResponse[Project], error) {
	return doJSON[ReadResponse[Project]](ctx, s.client, http.MethodGet, appServer, "projects/"+uuid, nil)
}

// Create creates a project.
func (s *ProjectsService) Create(ctx context.Context, in ProjectInput) (*WriteResponse[Project], error) {
	return doJSON[WriteResponse[Project]](ctx, s.client, http.MethodPost, appServer, "projects", in)
}

// Update replaces a project's attributes.
func (s *ProjectsService) Update(ctx context.Context, uuid string, in ProjectInput) (*UpdateResponse[Project], error) {
	return doJSON[UpdateResponse[Project]](ctx, s.client, http.MethodPut, appServer, "projects/"+uuid, in)
}

// Delete deletes a project.
func (s *ProjectsService) Delete(ctx context.Context, uuid string) (*DeleteResponse, error) {
	return doJSON[DeleteResponse](ctx, s.client, http.MethodDelete, appServer, "projects/"+uuid, nil)
}
