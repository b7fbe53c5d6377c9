package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
	"github.com/vncsmyrnk/covervote/internal/logger"
	"github.com/vncsmyrnk/covervote/internal/metrics"
)

type voteService struct {
	roster *domain.Roster
	ledger *Ledger
	sync   *SyncService
	logger *zap.Logger
	now    func() time.Time
}

func NewVoteService(roster *domain.Roster, ledger *Ledger, sync *SyncService, l *zap.Logger) ports.VoteService {
	return &voteService{
		roster: roster,
		ledger: ledger,
		sync:   sync,
		logger: logger.Resolve(l),
		now:    time.Now,
	}
}

func (s *voteService) LookupStudent(_ context.Context, id string) (domain.Voter, error) {
	voter, err := s.roster.Lookup(id)
	if err != nil {
		return domain.Voter{}, err
	}
	if s.ledger.HasVoted(voter.ID) {
		return domain.Voter{}, domain.ErrAlreadyVoted
	}
	return voter, nil
}

func (s *voteService) ConfirmStudent(_ context.Context, id, name string) (bool, error) {
	return s.roster.ConfirmName(id, name)
}

func (s *voteService) Options() []string {
	return s.ledger.Options()
}

func (s *voteService) Vote(_ context.Context, input ports.VoteInput) (domain.Vote, error) {
	input.StudentID = strings.TrimSpace(input.StudentID)
	input.Option = strings.TrimSpace(input.Option)

	if input.StudentID == "" {
		return domain.Vote{}, fmt.Errorf("%w: studentId is required", domain.ErrInvalidVote)
	}
	if input.Option == "" {
		return domain.Vote{}, fmt.Errorf("%w: bookCover is required", domain.ErrInvalidVote)
	}

	castAt := s.now().UTC()
	if ts := strings.TrimSpace(input.Timestamp); ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return domain.Vote{}, fmt.Errorf("%w: timestamp must be RFC 3339", domain.ErrInvalidVote)
		}
		castAt = parsed.UTC()
	}

	voter, err := s.roster.Lookup(input.StudentID)
	if err != nil {
		s.reject("unknown_student", input)
		return domain.Vote{}, err
	}

	vote := domain.Vote{
		ID:             uuid.New(),
		StudentID:      voter.ID,
		StudentName:    orDefault(input.StudentName, voter.Name),
		Grade:          orDefault(input.Grade, voter.Grade),
		Room:           orDefault(input.Room, voter.Room),
		SelectedOption: input.Option,
		CastAt:         castAt,
	}

	receipt, err := s.ledger.CastVote(vote)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyVoted):
			s.reject("already_voted", input)
		case errors.Is(err, domain.ErrInvalidOption):
			s.reject("invalid_option", input)
		case errors.Is(err, domain.ErrStudentNotFound):
			s.reject("unknown_student", input)
		}
		return domain.Vote{}, err
	}

	metrics.VotesCast.WithLabelValues(vote.SelectedOption).Inc()
	metrics.LedgerSize.Set(float64(receipt.Summary.TotalVotes))
	s.logger.Info("vote recorded",
		zap.String("student_id", vote.StudentID),
		zap.String("option", vote.SelectedOption),
		zap.Int("total_votes", receipt.Summary.TotalVotes),
	)

	s.sync.AppendAsync(receipt.Vote)
	return receipt.Vote, nil
}

func (s *voteService) reject(reason string, input ports.VoteInput) {
	metrics.VotesRejected.WithLabelValues(reason).Inc()
	s.logger.Info("vote rejected",
		zap.String("reason", reason),
		zap.String("student_id", input.StudentID),
		zap.String("option", input.Option),
	)
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
