package leave

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
)

// Reporter builds read-only yearly leave summaries.
type Reporter struct {
	requests leave.LeaveRequestRepository
}

func NewReporter(requests leave.LeaveRequestRepository) *Reporter {
	return &Reporter{requests: requests}
}

// YearlySummary summarises every non-rejected request intersecting year.
func (r *Reporter) YearlySummary(ctx context.Context, year int) ([]leave.YearlySummary, error) {
	requests, err := r.requests.ListOverlappingYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("list leave requests for %d: %w", year, err)
	}
	return Summarize(year, requests), nil
}

// Summarize attributes each request's paid days to its first PaidDays
// calendar days and its unpaid days to the rest, then counts the days of each
// portion that fall inside year. Results are ordered by requester.
func Summarize(year int, requests []leave.LeaveRequest) []leave.YearlySummary {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	byRequester := make(map[string]*leave.YearlySummary)
	for _, request := range requests {
		if request.Status == leave.LeaveRequestStatusRejected {
			continue
		}

		start := leave.NormalizeDate(request.StartDate)
		end := leave.NormalizeDate(request.EndDate)

		var paid, unpaid int
		if request.PaidDays > 0 {
			paidEnd := start.AddDate(0, 0, request.PaidDays-1)
			paid = daysWithin(start, paidEnd, yearStart, yearEnd)
		}
		if request.UnpaidDays > 0 {
			unpaidStart := start.AddDate(0, 0, request.PaidDays)
			unpaid = daysWithin(unpaidStart, end, yearStart, yearEnd)
		}
		if paid == 0 && unpaid == 0 {
			continue
		}

		summary, ok := byRequester[request.RequesterID]
		if !ok {
			summary = &leave.YearlySummary{RequesterID: request.RequesterID}
			byRequester[request.RequesterID] = summary
		}

		switch request.Status {
		case leave.LeaveRequestStatusApproved:
			summary.ApprovedPaidDays += paid
			summary.ApprovedUnpaidDays += unpaid
		case leave.LeaveRequestStatusPending:
			summary.PendingPaidDays += paid
			summary.PendingUnpaidDays += unpaid
		}
	}

	out := make([]leave.YearlySummary, 0, len(byRequester))
	for _, summary := range byRequester {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequesterID < out[j].RequesterID
	})
	return out
}

// daysWithin counts the days of [start, end] inside [windowStart, windowEnd].
func daysWithin(start, end, windowStart, windowEnd time.Time) int {
	if start.Before(windowStart) {
		start = windowStart
	}
	if end.After(windowEnd) {
		end = windowEnd
	}
	return leave.DayCount(start, end)
}
