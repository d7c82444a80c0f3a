package queries

import (
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

func kernelID(id uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func optionalKernelID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	kid, err := kernelID(*id)
	if err != nil {
		return nil, err
	}
	return &kid, nil
}
