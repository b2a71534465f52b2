package photo

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import "context"

// Repository defines persistence for photo records.
type Repository interface {
	Create(ctx context.Context, p *Photo) error
}
