package noop

import (
	"context"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
)

// Mirror is used when no durable store is configured.
type Mirror struct{}

func New() ports.VoteMirror {
	return Mirror{}
}

func (Mirror) Name() string { return "none" }

func (Mirror) Append(context.Context, domain.Vote) error { return nil }

func (Mirror) LoadAll(context.Context) ([]domain.Vote, error) { return nil, nil }
