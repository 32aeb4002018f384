package availability

import (
	"math"
	"sort"
	"time"

	"github.com/reliefops/relief-api/internal/domain/models"
)

const day = 24 * time.Hour

type supplyPlan struct {
	entries   []models.IncomingSupply
	allocated int
	covered   bool
	// afterDays is the latest arrival among the pledges that cover the
	// shortfall, i.e. when the last needed unit shows up.
	afterDays int
}

type supply struct {
	pledgeID string
	quantity int
	date     *time.Time
	arrival  time.Time
}

// forecast walks supplying pledges in arrival order and allocates them to the
// shortfall. Pledges past the point of coverage are still listed with a zero
// allocation.
func forecast(now time.Time, itemID string, needed int, pledges []models.Pledge) supplyPlan {
	supplies := make([]supply, 0, len(pledges))
	for _, p := range pledges {
		if !p.Status.Supplies() {
			continue
		}
		qty := p.QuantityOf(itemID)
		if qty == 0 {
			continue
		}
		arrival := now
		if p.ConfirmDate != nil {
			arrival = *p.ConfirmDate
		}
		supplies = append(supplies, supply{pledgeID: p.ID, quantity: qty, date: p.ConfirmDate, arrival: arrival})
	}

	sort.SliceStable(supplies, func(i, j int) bool {
		return supplies[i].arrival.Before(supplies[j].arrival)
	})

	plan := supplyPlan{entries: make([]models.IncomingSupply, 0, len(supplies))}
	remaining := needed
	for _, sp := range supplies {
		days := daysUntil(now, sp.arrival)
		allocated := 0
		if remaining > 0 {
			allocated = min(sp.quantity, remaining)
			remaining -= allocated
			plan.allocated += allocated
			plan.afterDays = max(plan.afterDays, days)
		}
		plan.entries = append(plan.entries, models.IncomingSupply{
			PledgeID:           sp.pledgeID,
			Quantity:           sp.quantity,
			AllocatedQuantity:  allocated,
			ConfirmDate:        sp.date,
			DaysUntilAvailable: days,
		})
	}
	plan.covered = remaining <= 0
	if !plan.covered {
		plan.afterDays = 0
	}
	return plan
}

// daysUntil rounds the wait up to whole days; past dates count as today.
func daysUntil(now, arrival time.Time) int {
	wait := arrival.Sub(now)
	if wait <= 0 {
		return 0
	}
	return int(math.Ceil(float64(wait) / float64(day)))
}
