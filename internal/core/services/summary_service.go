package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
)

// Summarize groups votes by option. Only the first vote of each student counts,
// which matches what the ledger accepts.
func Summarize(votes []domain.Vote) domain.Summary {
	seen := make(map[string]struct{}, len(votes))
	results := make(map[string]int)
	for _, v := range votes {
		id := strings.TrimSpace(v.StudentID)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		results[strings.TrimSpace(v.SelectedOption)]++
	}
	return domain.Summary{TotalVotes: len(seen), Results: results}
}

type resultsService struct {
	ledger *Ledger
}

func NewResultsService(ledger *Ledger) ports.ResultsService {
	return &resultsService{ledger: ledger}
}

func (s *resultsService) Results(_ context.Context) ports.Results {
	_, votes := s.ledger.Snapshot()
	if votes == nil {
		votes = []domain.Vote{}
	}
	return ports.Results{
		Summary: Summarize(votes),
		Voters:  votes,
	}
}

func (s *resultsService) Summary(_ context.Context) domain.Summary {
	return Summarize(s.ledger.AllVotes())
}

type summaryService struct {
	mirror ports.VoteMirror
}

func NewSummaryService(mirror ports.VoteMirror) ports.SummaryService {
	return &summaryService{mirror: mirror}
}

func (s *summaryService) SummarizeMirror(ctx context.Context) (domain.Summary, error) {
	votes, err := s.mirror.LoadAll(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("failed to load votes from %s mirror: %w", s.mirror.Name(), err)
	}
	return Summarize(votes), nil
}
