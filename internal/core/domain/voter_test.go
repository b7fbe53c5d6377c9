package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoster(t *testing.T) {
	r, err := NewRoster([]Voter{
		{ID: " 20552 ", Name: " เด็กชาย สมชาย ใจดี ", Grade: "3", Room: "2"},
		{ID: "20553", Name: "นางสาว สมศรี มีสุข", Grade: "3", Room: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	v, err := r.Lookup("20552")
	require.NoError(t, err)
	assert.Equal(t, Voter{ID: "20552", Name: "เด็กชาย สมชาย ใจดี", Grade: "3", Room: "2"}, v)
	assert.True(t, r.Contains(" 20553"))

	_, err = r.Lookup("99999")
	assert.ErrorIs(t, err, ErrStudentNotFound)
	assert.False(t, r.Contains("99999"))
}

func TestNewRosterErrors(t *testing.T) {
	tests := []struct {
		name   string
		voters []Voter
	}{
		{"empty", nil},
		{"blank id", []Voter{{ID: " ", Name: "x"}}},
		{"duplicate id", []Voter{{ID: "1"}, {ID: "1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoster(tt.voters)
			assert.ErrorIs(t, err, ErrRosterLoad)
		})
	}
}

func TestSample(t *testing.T) {
	r, err := NewRoster([]Voter{{ID: "3"}, {ID: "1"}, {ID: "2"}})
	require.NoError(t, err)

	assert.Equal(t, []Voter{{ID: "3"}, {ID: "1"}}, r.Sample(2))
	assert.Len(t, r.Sample(10), 3)
}

func TestConfirmName(t *testing.T) {
	r, err := NewRoster([]Voter{
		{ID: "1", Name: "เด็กชาย สมชาย ใจดี"},
		{ID: "2", Name: "เด็กหญิง ดาว เรือง"},
		{ID: "3", Name: "นาย Kong Fasai"},
		{ID: "4", Name: "นางสาว สมศรี มีสุข"},
		{ID: "5", Name: "สมปอง ไม่มีคำนำหน้า"},
	})
	require.NoError(t, err)

	tests := []struct {
		id   string
		name string
		want bool
	}{
		{"1", "สมชาย ใจดี", true},
		{"1", " สมชาย ใจดี ", true},
		{"1", "เด็กชาย สมชาย ใจดี", false},
		{"2", "ดาว เรือง", true},
		{"3", "kong fasai", true},
		{"4", "สมศรี มีสุข", true},
		{"5", "สมปอง ไม่มีคำนำหน้า", true},
		{"5", "สมปอง", false},
	}
	for _, tt := range tests {
		got, err := r.ConfirmName(tt.id, tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "id=%s name=%q", tt.id, tt.name)
	}

	_, err = r.ConfirmName("404", "x")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
