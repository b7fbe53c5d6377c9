package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
)

const columns = 6 // studentId, studentName, grade, room, bookCover, timestamp

type Mirror struct {
	svc           *sheets.Service
	spreadsheetID string
	sheet         string
}

// New connects to the spreadsheet using a service account key file.
func New(ctx context.Context, spreadsheetID, credentialsFile, sheet string, opts ...option.ClientOption) (ports.VoteMirror, error) {
	if credentialsFile != "" {
		opts = append([]option.ClientOption{
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		}, opts...)
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &Mirror{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

func (m *Mirror) Name() string { return "sheets" }

func (m *Mirror) Append(ctx context.Context, vote domain.Vote) error {
	_, err := m.svc.Spreadsheets.Values.
		Append(m.spreadsheetID, m.sheet+"!A:F", &sheets.ValueRange{Values: [][]interface{}{toRow(vote)}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append vote row: %w", err)
	}
	return nil
}

// LoadAll reads every data row below the header. Short rows are ignored.
func (m *Mirror) LoadAll(ctx context.Context) ([]domain.Vote, error) {
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, m.sheet+"!A2:F").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read vote rows: %w", err)
	}

	votes := make([]domain.Vote, 0, len(resp.Values))
	for _, row := range resp.Values {
		if vote, ok := fromRow(row); ok {
			votes = append(votes, vote)
		}
	}
	return votes, nil
}

func toRow(v domain.Vote) []interface{} {
	return []interface{}{
		v.StudentID,
		v.StudentName,
		v.Grade,
		v.Room,
		v.SelectedOption,
		v.CastAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromRow(row []interface{}) (domain.Vote, bool) {
	if len(row) < columns {
		return domain.Vote{}, false
	}

	cells := make([]string, columns)
	for i := range cells {
		cells[i] = strings.TrimSpace(fmt.Sprint(row[i]))
	}
	if cells[0] == "" {
		return domain.Vote{}, false
	}

	castAt, _ := time.Parse(time.RFC3339Nano, cells[5])
	return domain.Vote{
		// rows carry no id; derive a stable one from the student
		ID:             uuid.NewSHA1(uuid.NameSpaceOID, []byte("covervote/"+cells[0])),
		StudentID:      cells[0],
		StudentName:    cells[1],
		Grade:          cells[2],
		Room:           cells[3],
		SelectedOption: cells[4],
		CastAt:         castAt.UTC(),
	}, true
}
