package ports

import (
	"context"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
)

// VoteMirror is an append-only copy of the ledger kept outside the process.
type VoteMirror interface {
	Name() string
	Append(ctx context.Context, vote domain.Vote) error
	LoadAll(ctx context.Context) ([]domain.Vote, error)
}
