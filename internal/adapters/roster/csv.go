package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
)

const (
	ColumnID    = "UserID"
	ColumnName  = "ชื่อ - สกุล"
	ColumnGrade = "ชั้นมัธยม"
	ColumnRoom  = "ห้องเรียน"
)

// LoadFile reads the roster CSV at path. Every failure wraps domain.ErrRosterLoad.
func LoadFile(path string) (*domain.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRosterLoad, err)
	}
	defer f.Close()

	return Load(f)
}

func Load(r io.Reader) (*domain.Roster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", domain.ErrRosterLoad)
		}
		return nil, fmt.Errorf("%w: failed to read header: %w", domain.ErrRosterLoad, err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var voters []domain.Voter
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrRosterLoad, line, err)
		}
		if isBlank(record) {
			continue
		}

		voters = append(voters, domain.Voter{
			ID:    field(record, idx[ColumnID]),
			Name:  field(record, idx[ColumnName]),
			Grade: field(record, idx[ColumnGrade]),
			Room:  field(record, idx[ColumnRoom]),
		})
	}

	return domain.NewRoster(voters)
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		idx[name] = i
	}

	for _, col := range []string{ColumnID, ColumnName, ColumnGrade, ColumnRoom} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrRosterLoad, col)
		}
	}
	return idx, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
