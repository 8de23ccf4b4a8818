// Package export writes scoped member records in the portal's CSV format.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// ByteOrderMark opens every export.
const ByteOrderMark = "\uFEFF"

// ContentType is served with CSV downloads.
const ContentType = "text/csv; charset=utf-8"

// Header is the fixed column order of a member export.
var Header = []string{
	"Name", "Email", "Phone", "Sambhag", "District", "Block", "Membership Type", "Status", "Remark",
}

// WriteMembers writes members to w as CSV with a header row.
func WriteMembers(w io.Writer, members []domain.Member) error {
	if _, err := io.WriteString(w, ByteOrderMark); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range members {
		record := []string{
			m.Name, m.Email, m.Phone, m.Sambhag, m.District, m.Block,
			m.MembershipType, string(m.Status), m.Remark,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write member %s: %w", m.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName builds the download name for an export taken at t.
func FileName(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = "members"
	}
	return fmt.Sprintf("%s_%s.csv", prefix, t.UTC().Format("2006-01-02"))
}
