package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CallTranscript is one spreadsheet row ready for analysis.
type CallTranscript struct {
	CallID     string `json:"call_id"`
	Transcript string `json:"transcript"`
}

// Load reads call transcripts from the first sheet, auto-detecting the call
// id and transcript columns by header heuristics. Rows without transcript
// text are skipped quietly; rows without an id get a positional one.
func Load(path string) ([]CallTranscript, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	idIdx := -1
	textIdx := -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case textIdx == -1 && (strings.Contains(l, "transcript") || strings.Contains(l, "text")):
			textIdx = i
		case idIdx == -1 && (strings.Contains(l, "call id") || strings.Contains(l, "callid") || strings.Contains(l, "id")):
			idIdx = i
		}
	}
	if textIdx == -1 {
		return nil, fmt.Errorf("no transcript column detected")
	}

	var out []CallTranscript
	for i, r := range rows {
		if i == 0 {
			continue
		}
		rec := CallTranscript{}
		if idIdx >= 0 && idIdx < len(r) {
			rec.CallID = strings.TrimSpace(r[idIdx])
		}
		if textIdx < len(r) {
			rec.Transcript = strings.TrimSpace(r[textIdx])
		}
		if rec.Transcript == "" {
			continue
		}
		if rec.CallID == "" {
			rec.CallID = fmt.Sprintf("row-%d", i+1)
		}
		out = append(out, rec)
	}
	return out, nil
}
