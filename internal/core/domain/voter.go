package domain

import (
	"fmt"
	"regexp"
	"strings"
)

type Voter struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade string `json:"grade"`
	Room  string `json:"room"`
}

// Roster is the fixed set of eligible voters. It is never mutated after NewRoster returns.
type Roster struct {
	voters map[string]Voter
	order  []string
}

func NewRoster(voters []Voter) (*Roster, error) {
	if len(voters) == 0 {
		return nil, fmt.Errorf("%w: no voters", ErrRosterLoad)
	}

	r := &Roster{
		voters: make(map[string]Voter, len(voters)),
		order:  make([]string, 0, len(voters)),
	}
	for i, v := range voters {
		v.ID = strings.TrimSpace(v.ID)
		v.Name = strings.TrimSpace(v.Name)
		v.Grade = strings.TrimSpace(v.Grade)
		v.Room = strings.TrimSpace(v.Room)
		if v.ID == "" {
			return nil, fmt.Errorf("%w: voter %d has an empty id", ErrRosterLoad, i+1)
		}
		if _, dup := r.voters[v.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate voter id %q", ErrRosterLoad, v.ID)
		}
		r.voters[v.ID] = v
		r.order = append(r.order, v.ID)
	}
	return r, nil
}

func (r *Roster) Lookup(id string) (Voter, error) {
	v, ok := r.voters[strings.TrimSpace(id)]
	if !ok {
		return Voter{}, ErrStudentNotFound
	}
	return v, nil
}

func (r *Roster) Contains(id string) bool {
	_, ok := r.voters[strings.TrimSpace(id)]
	return ok
}

func (r *Roster) Len() int {
	return len(r.order)
}

// Sample returns up to n voters in load order.
func (r *Roster) Sample(n int) []Voter {
	if n > len(r.order) {
		n = len(r.order)
	}
	out := make([]Voter, 0, n)
	for _, id := range r.order[:n] {
		out = append(out, r.voters[id])
	}
	return out
}

var honorificPrefix = regexp.MustCompile(`^(เด็ก(ชาย|หญิง)|นาย|นางสาว)\s+`)

// ConfirmName reports whether name matches the roster name for id, ignoring
// a leading Thai honorific on the roster side and letter case. Advisory only.
func (r *Roster) ConfirmName(id, name string) (bool, error) {
	v, err := r.Lookup(id)
	if err != nil {
		return false, err
	}
	want := honorificPrefix.ReplaceAllString(v.Name, "")
	return strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(want)), nil
}
