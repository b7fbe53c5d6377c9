package ports

import (
	"context"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
)

type VoteInput struct {
	StudentID   string
	StudentName string
	Grade       string
	Room        string
	Option      string
	Timestamp   string
}

type VoteService interface {
	LookupStudent(ctx context.Context, id string) (domain.Voter, error)
	ConfirmStudent(ctx context.Context, id, name string) (bool, error)
	Vote(ctx context.Context, input VoteInput) (domain.Vote, error)
	Options() []string
}
