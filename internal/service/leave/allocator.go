package leave

import (
	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
)

// Allocator splits requested leave days into paid and unpaid portions against
// the yearly paid-leave limit. The limit applies per calendar year and resets
// on January 1.
type Allocator struct {
	yearlyLimit int
}

func NewAllocator(policy config.PolicyConfig) *Allocator {
	return &Allocator{yearlyLimit: policy.YearlyPaidLeaveLimit}
}

// Allocate computes the allocation of requested given the days the requester
// has already consumed in other non-rejected requests. It performs no I/O.
func (a *Allocator) Allocate(role user.Role, requested, consumed leave.DaysByYear) leave.Allocation {
	var out leave.Allocation

	for _, year := range requested.Years() {
		days := requested.Count(year)

		paid := days
		if role.IsLeaveCapped() {
			remaining := a.yearlyLimit - consumed.Count(year)
			if remaining < 0 {
				remaining = 0
			}
			paid = min(remaining, days)
		}

		ya := leave.YearAllocation{
			Year:          year,
			RequestedDays: days,
			PaidDays:      paid,
			UnpaidDays:    days - paid,
		}
		out.Years = append(out.Years, ya)
		out.TotalDays += ya.RequestedDays
		out.PaidDays += ya.PaidDays
		out.UnpaidDays += ya.UnpaidDays
	}

	out.SalaryCut = out.UnpaidDays > 0
	return out
}
