package engine

import "context"

// Provider creates and deletes cloud resources.
//
// Create may return a response with an ID together with an error when the
// resource exists but the provider could not see it through, for example
// because ctx was cancelled. The engine records such a resource in state
// so that destroy can remove it.
type Provider interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	Delete(ctx context.Context, req DeleteRequest) error
}

// CreateRequest carries the fully resolved properties of one resource.
type CreateRequest struct {
	URN        string
	Type       string
	LogicalID  string
	Properties map[string]any
}

// CreateResponse reports the physical id and the attributes of a created
// resource. Attribute values are rendered as strings.
type CreateResponse struct {
	ID         string
	Attributes map[string]string
}

// DeleteRequest identifies a resource to delete.
type DeleteRequest struct {
	URN  string
	Type string
	ID   string
}
