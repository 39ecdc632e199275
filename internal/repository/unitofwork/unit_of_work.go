package unitofwork

import (
	"context"

	"ai-coverletter-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CorpusRepository() contract.CorpusRepository
}
