package usecases_port

import (
	"context"
)

type RedactCustomerUseCasePort interface {
	Execute(ctx context.Context, customerID string) error
}
