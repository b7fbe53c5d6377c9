package services

import "github.com/vncsmyrnk/covervote/internal/core/domain"

// InitialData is the full-state event a new observer receives before live updates.
func (l *Ledger) InitialData() domain.TallyUpdate {
	summary, votes := l.Snapshot()
	if votes == nil {
		votes = []domain.Vote{}
	}
	return domain.TallyUpdate{
		Event:      domain.EventInitialData,
		TotalVotes: summary.TotalVotes,
		Results:    summary.Results,
		Voters:     votes,
	}
}

func VoteUpdate(r domain.Receipt) domain.TallyUpdate {
	vote := r.Vote
	return domain.TallyUpdate{
		Event:      domain.EventVoteUpdate,
		TotalVotes: r.Summary.TotalVotes,
		Results:    r.Summary.Results,
		LatestVote: &vote,
	}
}
