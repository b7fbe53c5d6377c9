package domain

type Summary struct {
	TotalVotes int            `json:"totalVotes"`
	Results    map[string]int `json:"results"`
}

const (
	EventInitialData = "initialData"
	EventVoteUpdate  = "voteUpdate"
)

// TallyUpdate is the full-state payload pushed to live observers.
type TallyUpdate struct {
	Event      string         `json:"-"`
	TotalVotes int            `json:"totalVotes"`
	Results    map[string]int `json:"results"`
	LatestVote *Vote          `json:"latestVote,omitempty"`
	Voters     []Vote         `json:"voters,omitempty"`
}
