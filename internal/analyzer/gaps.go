package analyzer

import (
	"fmt"
	"strings"

	"av7-gap-analyzer/pkg/logger"
)

// WindowLogic records how a gap's time window was oriented.
type WindowLogic int

const (
	// WindowNormal means the earlier receipt also carried the earlier
	// refuel time.
	WindowNormal WindowLogic = iota

	// WindowSwappedReverse means the receipt numbers and refuel times run
	// in opposite directions, typically a receipt book used out of order.
	// The bounds are swapped so the window stays well-formed.
	WindowSwappedReverse
)

func (w WindowLogic) String() string {
	if w == WindowSwappedReverse {
		return "Swapped (Reverse)"
	}
	return "Normal"
}

// MarshalText implements encoding.TextMarshaler so window logic renders
// as its label in JSON reports.
func (w WindowLogic) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// NoCandidatesText is reported when no scheduled flight falls inside a
// gap's time window.
const NoCandidatesText = "No flights found in window"

// GapFinding is one missing receipt number together with the time window
// and candidate flights of the gap it belongs to. All missing numbers of
// a single gap share the same window and candidates. The window bounds
// are the slack-padded minutes used for matching; they may run below
// zero or past 1439 near midnight and are kept as-is.
type GapFinding struct {
	MissingID          int64       `json:"missing_av7"`
	WindowStartMinutes int         `json:"-"`
	WindowEndMinutes   int         `json:"-"`
	WindowLogic        WindowLogic `json:"window_logic"`
	Candidates         []string    `json:"candidates"`
	CandidateText      string      `json:"potential_flights"`
}

// WindowStartText returns the window start as HH:MM.
func (f *GapFinding) WindowStartText() string {
	return formatWindowMinutes(f.WindowStartMinutes)
}

// WindowEndText returns the window end as HH:MM.
func (f *GapFinding) WindowEndText() string {
	return formatWindowMinutes(f.WindowEndMinutes)
}

// formatWindowMinutes renders a minute-of-day bound as HH:MM. Bounds
// outside 0-1439 are rendered literally ("-00:50", "24:20") rather than
// wrapped, matching how the window is used.
func formatWindowMinutes(m int) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
}

// detectGaps walks adjacent pairs of the sorted receipt sequence and
// emits one finding per missing number. A pair produces findings only
// when its numeric gap is at least 2, no larger than the series-jump
// threshold, and both receipts carry a parsable refuel time. The window
// and its candidates are computed once per pair and shared by all of the
// pair's findings.
func (e *Engine) detectGaps(receipts []Receipt, pool []PoolFlight, diag *Diagnostics) []*GapFinding {
	findings := []*GapFinding{}

	for i := 0; i+1 < len(receipts); i++ {
		cur, next := receipts[i], receipts[i+1]

		gap := next.ID - cur.ID
		if gap <= 1 {
			continue
		}
		if gap > e.config.MaxGapSize {
			diag.GapsSkippedJump++
			e.logger.WithFields(logger.Fields{
				"from_receipt": cur.ID,
				"to_receipt":   next.ID,
				"gap_size":     gap,
			}).Debug("Skipping gap above series-jump threshold")
			continue
		}
		if !cur.Time.Valid || !next.Time.Valid {
			diag.GapsSkippedNoTime++
			continue
		}

		start, end := cur.Time, next.Time
		logic := WindowNormal
		if next.Time.Before(cur.Time) {
			start, end = next.Time, cur.Time
			logic = WindowSwappedReverse
		}

		startMin := start.Minutes() - e.config.SlackMinutes
		endMin := end.Minutes() + e.config.SlackMinutes

		candidates := matchWindow(pool, startMin, endMin)
		text := NoCandidatesText
		if len(candidates) > 0 {
			text = strings.Join(candidates, ", ")
		}

		diag.GapsAnalyzed++

		for missing := cur.ID + 1; missing < next.ID; missing++ {
			if e.config.IgnoredReceiptIDs[missing] {
				continue
			}
			findings = append(findings, &GapFinding{
				MissingID:          missing,
				WindowStartMinutes: startMin,
				WindowEndMinutes:   endMin,
				WindowLogic:        logic,
				Candidates:         candidates,
				CandidateText:      text,
			})
		}
	}

	return findings
}

// matchWindow returns "FLIGHT (HH:MM)" labels for pool flights whose
// departure falls inside [startMinutes, endMinutes], inclusive on both
// ends, in pool order. Flights without a parsable STD never match. The
// bounds may extend past midnight in either direction; times are not
// wrapped, so a window is always a single same-day interval.
func matchWindow(pool []PoolFlight, startMinutes, endMinutes int) []string {
	var candidates []string
	for _, flight := range pool {
		if flight.STDMinutes < 0 {
			continue
		}
		if flight.STDMinutes >= startMinutes && flight.STDMinutes <= endMinutes {
			candidates = append(candidates, fmt.Sprintf("%s (%s)", flight.FlightRaw, flight.STD.Format()))
		}
	}
	return candidates
}
