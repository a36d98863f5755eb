package balance

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/SFTtech/abrechnung-sub002/group"
)

// resolveClearing redistributes every clearing account's balance onto its
// targets, in topological order.
//
// Clearing accounts form a directed graph: an edge runs from clearing
// account A to account B when A's clearing shares include B. Only clearing
// accounts with non-empty shares are graph nodes; plain recipients are
// leaves. Kahn's algorithm orders the nodes so that each account is split
// only after all upstream inflow has arrived; a cycle fails the whole
// recomputation with ClearingCycleError rather than looping or
// double-counting.
//
// After the pass every clearing account's balance is exactly zero and its
// entire pre-clearing balance is attributed to its recipients.
func resolveClearing(balances Map, accounts []*group.Account) error {
	nodes := make(map[group.AccountID]*group.Account)
	for _, account := range accounts {
		if !account.Deleted && account.IsClearing() {
			nodes[account.ID] = account
		}
	}
	if len(nodes) == 0 {
		return nil
	}

	// In-degree counts only edges between clearing nodes; edges to plain
	// recipients never block resolution.
	inDegree := make(map[group.AccountID]int, len(nodes))
	for id := range nodes {
		inDegree[id] = 0
	}
	for _, node := range nodes {
		for _, target := range node.ClearingShares.AccountIDs() {
			if _, isNode := nodes[target]; isNode {
				inDegree[target]++
			}
		}
	}

	// Seed the worklist in ascending id order for deterministic output.
	var worklist []group.AccountID
	for id, degree := range inDegree {
		if degree == 0 {
			worklist = append(worklist, id)
		}
	}
	slices.Sort(worklist)

	order := make([]group.AccountID, 0, len(nodes))
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		order = append(order, id)

		for _, target := range nodes[id].ClearingShares.AccountIDs() {
			if _, isNode := nodes[target]; !isNode {
				continue
			}
			inDegree[target]--
			if inDegree[target] == 0 {
				worklist = append(worklist, target)
			}
		}
	}

	if len(order) < len(nodes) {
		// Name the smallest unresolved account for a stable error message.
		var unresolved []group.AccountID
		for id, degree := range inDegree {
			if degree > 0 {
				unresolved = append(unresolved, id)
			}
		}
		slices.Sort(unresolved)
		return NewClearingCycleError(unresolved[0])
	}

	for _, id := range order {
		node := nodes[id]
		rec := balances.ensure(id)

		toSplit := rec.Balance
		rec.Balance = decimal.Zero
		rec.BeforeClearing = toSplit

		if toSplit.IsZero() {
			continue
		}

		shareTotal := node.ClearingShares.Total()
		for _, target := range node.ClearingShares.AccountIDs() {
			share := toSplit.Mul(node.ClearingShares.Get(target)).Div(shareTotal)

			rec.ClearingResolution[target] = rec.ClearingResolution[target].Add(share)

			dst := balances.ensure(target)
			dst.Balance = dst.Balance.Add(share)
			if share.IsPositive() {
				dst.TotalPaid = dst.TotalPaid.Add(share)
			} else {
				dst.TotalConsumed = dst.TotalConsumed.Add(share.Abs())
			}
		}
	}

	return nil
}
