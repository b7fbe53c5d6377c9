package ports

import (
	"context"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
)

type Results struct {
	domain.Summary
	Voters []domain.Vote `json:"voters"`
}

type ResultsService interface {
	Results(ctx context.Context) Results
	Summary(ctx context.Context) domain.Summary
}

type SummaryService interface {
	SummarizeMirror(ctx context.Context) (domain.Summary, error)
}
