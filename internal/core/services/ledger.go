package services

import (
	"strings"
	"sync"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
)

type CommitHook func(domain.Receipt)

// Ledger is the authoritative in-memory record of cast votes.
type Ledger struct {
	roster  *domain.Roster
	options map[string]bool
	order   []string

	mu     sync.RWMutex
	hooks  []CommitHook
	votes  []domain.Vote
	voted  map[string]struct{}
	counts map[string]int
}

func NewLedger(roster *domain.Roster, options []string) *Ledger {
	l := &Ledger{
		roster:  roster,
		options: make(map[string]bool, len(options)),
		voted:   make(map[string]struct{}),
		counts:  make(map[string]int),
	}
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" || l.options[o] {
			continue
		}
		l.options[o] = true
		l.order = append(l.order, o)
	}
	return l
}

// OnCommit registers fn to observe every committed vote. fn runs inside the
// ledger's critical section, so receipts arrive in commit order; it must not block.
func (l *Ledger) OnCommit(fn CommitHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, fn)
}

func (l *Ledger) Options() []string {
	return append([]string(nil), l.order...)
}

func (l *Ledger) ValidOption(option string) bool {
	return l.options[option]
}

func (l *Ledger) HasVoted(studentID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.voted[strings.TrimSpace(studentID)]
	return ok
}

// CastVote records vote if its student is on the roster, has not voted yet and
// picked a configured option. The duplicate check and the insert happen under one lock.
func (l *Ledger) CastVote(vote domain.Vote) (domain.Receipt, error) {
	vote.StudentID = strings.TrimSpace(vote.StudentID)
	vote.SelectedOption = strings.TrimSpace(vote.SelectedOption)

	if !l.roster.Contains(vote.StudentID) {
		return domain.Receipt{}, domain.ErrStudentNotFound
	}
	if !l.options[vote.SelectedOption] {
		return domain.Receipt{}, domain.ErrInvalidOption
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.voted[vote.StudentID]; ok {
		return domain.Receipt{}, domain.ErrAlreadyVoted
	}

	l.votes = append(l.votes, vote)
	l.voted[vote.StudentID] = struct{}{}
	l.counts[vote.SelectedOption]++

	receipt := domain.Receipt{Vote: vote, Summary: l.summaryLocked()}
	for _, hook := range l.hooks {
		hook(receipt)
	}
	return receipt, nil
}

// Hydrate loads votes read back from a mirror. Rows that would break a ledger
// rule are skipped; the first vote seen for a student wins.
func (l *Ledger) Hydrate(votes []domain.Vote) (loaded, skipped int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, v := range votes {
		v.StudentID = strings.TrimSpace(v.StudentID)
		v.SelectedOption = strings.TrimSpace(v.SelectedOption)
		if !l.roster.Contains(v.StudentID) || !l.options[v.SelectedOption] {
			skipped++
			continue
		}
		if _, ok := l.voted[v.StudentID]; ok {
			skipped++
			continue
		}
		l.votes = append(l.votes, v)
		l.voted[v.StudentID] = struct{}{}
		l.counts[v.SelectedOption]++
		loaded++
	}
	return loaded, skipped
}

func (l *Ledger) Tally() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tallyLocked()
}

func (l *Ledger) AllVotes() []domain.Vote {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Vote(nil), l.votes...)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.votes)
}

// Snapshot returns the summary and the vote history read under a single lock.
func (l *Ledger) Snapshot() (domain.Summary, []domain.Vote) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.summaryLocked(), append([]domain.Vote(nil), l.votes...)
}

func (l *Ledger) summaryLocked() domain.Summary {
	return domain.Summary{TotalVotes: len(l.votes), Results: l.tallyLocked()}
}

func (l *Ledger) tallyLocked() map[string]int {
	out := make(map[string]int, len(l.counts))
	for option, n := range l.counts {
		out[option] = n
	}
	return out
}
