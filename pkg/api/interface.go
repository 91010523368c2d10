package api

import (
	"context"

	"github.com/sablewing/pocketbook/pkg/domain"
)

// ListQuery narrows a transaction listing. Zero values mean "no filter";
// Page counts from 1.
type ListQuery struct {
	Category string
	Page     int
	Limit    int
	UserID   int64
}

// Page is one page of server-confirmed transactions.
type Page struct {
	Data  []*domain.Transaction `json:"data"`
	Total int                   `json:"total"`
}

// API is the remote transaction service as the client sees it.
type API interface {
	List(ctx context.Context, q ListQuery) (*Page, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	Users(ctx context.Context) ([]domain.User, error)

	Create(ctx context.Context, d domain.Draft) (*domain.Transaction, error)
	Update(ctx context.Context, t domain.Transaction) error
	Delete(ctx context.Context, id domain.ID) error

	// Ping probes the liveness endpoint, nil means the backend is up.
	Ping(ctx context.Context) error
}
