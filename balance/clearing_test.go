package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/SFTtech/abrechnung-sub002/group"
)

func TestResolveClearing_SimpleRedistribution(t *testing.T) {
	// anna pays 20 billed to the kitchen account, which clears evenly onto
	// anna and ben.
	accounts := []*group.Account{
		personal(1, "anna"), personal(2, "ben"),
		clearing(10, "kitchen", map[group.AccountID]string{1: "1", 2: "1"}),
	}
	transactions := []*group.Transaction{
		transfer(1, "20", map[group.AccountID]string{1: "1"}, map[group.AccountID]string{10: "1"}),
	}

	balances, err := ComputeBalances(context.Background(), transactions, accounts)
	assert.NoError(t, err)

	assertAmount(t, "0", balances[10].Balance)
	assertAmount(t, "-20", balances[10].BeforeClearing)
	assertAmount(t, "-10", balances[10].ClearingResolution[1])
	assertAmount(t, "-10", balances[10].ClearingResolution[2])

	assertAmount(t, "10", balances[1].Balance)
	assertAmount(t, "-10", balances[2].Balance)
	assertAmount(t, "10", balances[2].TotalConsumed)
}

func TestResolveClearing_PositiveBalance(t *testing.T) {
	// The kitchen account is owed 20; resolution credits its targets.
	accounts := []*group.Account{
		personal(1, "anna"), personal(2, "ben"),
		clearing(10, "kitchen", map[group.AccountID]string{1: "1", 2: "1"}),
	}
	transactions := []*group.Transaction{
		transfer(1, "20", map[group.AccountID]string{10: "1"}, map[group.AccountID]string{2: "1"}),
	}

	balances, err := ComputeBalances(context.Background(), transactions, accounts)
	assert.NoError(t, err)

	assertAmount(t, "0", balances[10].Balance)
	assertAmount(t, "20", balances[10].BeforeClearing)
	assertAmount(t, "10", balances[10].ClearingResolution[1])
	assertAmount(t, "10", balances[10].ClearingResolution[2])

	assertAmount(t, "10", balances[1].Balance)
	assertAmount(t, "10", balances[1].TotalPaid)
	assertAmount(t, "-10", balances[2].Balance)
}

func TestResolveClearing_ResolutionMatchesBeforeClearing(t *testing.T) {
	accounts := []*group.Account{
		personal(1, "anna"), personal(2, "ben"), personal(3, "cara"),
		clearing(10, "kitchen", map[group.AccountID]string{1: "2", 2: "1", 3: "1"}),
	}
	transactions := []*group.Transaction{
		purchase(1, "55.55", map[group.AccountID]string{2: "1"}, map[group.AccountID]string{10: "1"}),
	}

	balances, err := ComputeBalances(context.Background(), transactions, accounts)
	assert.NoError(t, err)

	resolved := decimal.Zero
	for _, share := range balances[10].ClearingResolution {
		resolved = resolved.Add(share)
	}
	assert.True(t, AmountEqual(balances[10].BeforeClearing, resolved, DefaultTolerance))
}

func TestResolveClearing_Chain(t *testing.T) {
	// project clears onto kitchen, kitchen clears onto the two people.
	// Input order of the accounts must not matter.
	accounts := []*group.Account{
		clearing(10, "kitchen", map[group.AccountID]string{1: "1", 2: "1"}),
		personal(1, "anna"), personal(2, "ben"),
		clearing(20, "project", map[group.AccountID]string{10: "1"}),
	}
	transactions := []*group.Transaction{
		transfer(1, "40", map[group.AccountID]string{1: "1"}, map[group.AccountID]string{20: "1"}),
	}

	balances, err := ComputeBalances(context.Background(), transactions, accounts)
	assert.NoError(t, err)

	// The upstream account forwards its whole balance downstream.
	assertAmount(t, "0", balances[20].Balance)
	assertAmount(t, "-40", balances[20].BeforeClearing)
	assertAmount(t, "-40", balances[20].ClearingResolution[10])

	// The downstream account splits the forwarded inflow.
	assertAmount(t, "0", balances[10].Balance)
	assertAmount(t, "-40", balances[10].BeforeClearing)

	assertAmount(t, "20", balances[1].Balance)
	assertAmount(t, "-20", balances[2].Balance)
}

func TestResolveClearing_CycleFails(t *testing.T) {
	accounts := []*group.Account{
		personal(1, "anna"),
		clearing(10, "a", map[group.AccountID]string{20: "1"}),
		clearing(20, "b", map[group.AccountID]string{10: "1"}),
	}

	_, err := ComputeBalances(context.Background(), nil, accounts)

	var cycleErr *ClearingCycleError
	assert.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, group.AccountID(10), cycleErr.GetAccount())
}

func TestResolveClearing_SelfReferenceFails(t *testing.T) {
	accounts := []*group.Account{
		clearing(10, "self", map[group.AccountID]string{10: "1"}),
	}

	_, err := ComputeBalances(context.Background(), nil, accounts)

	var cycleErr *ClearingCycleError
	assert.True(t, errors.As(err, &cycleErr))
}

func TestResolveClearing_ZeroBalanceLeavesNoResolution(t *testing.T) {
	accounts := []*group.Account{
		personal(1, "anna"),
		clearing(10, "kitchen", map[group.AccountID]string{1: "1"}),
	}

	balances, err := ComputeBalances(context.Background(), nil, accounts)
	assert.NoError(t, err)

	assert.Equal(t, 0, len(balances[10].ClearingResolution))
	assert.True(t, balances[10].BeforeClearing.IsZero())
}

func TestResolveClearing_DeletedClearingAccountIgnored(t *testing.T) {
	gone := clearing(10, "gone", map[group.AccountID]string{1: "1"})
	gone.Deleted = true

	accounts := []*group.Account{personal(1, "anna"), personal(2, "ben"), gone}
	transactions := []*group.Transaction{
		transfer(1, "20", map[group.AccountID]string{1: "1"}, map[group.AccountID]string{10: "1"}),
	}

	balances, err := ComputeBalances(context.Background(), transactions, accounts)
	assert.NoError(t, err)

	// The deleted clearing account keeps its folded balance; nothing is
	// redistributed.
	assertAmount(t, "-20", balances[10].Balance)
	assertAmount(t, "0", balances[2].Balance)
}

func TestResolveClearing_EmptySharesIsNotAClearingNode(t *testing.T) {
	empty := &group.Account{
		ID:             10,
		Kind:           group.AccountKindClearing,
		Name:           "empty",
		ClearingShares: group.NewShares(),
	}
	accounts := []*group.Account{personal(1, "anna"), empty}
	transactions := []*group.Transaction{
		transfer(1, "20", map[group.AccountID]string{1: "1"}, map[group.AccountID]string{10: "1"}),
	}

	balances, err := ComputeBalances(context.Background(), transactions, accounts)
	assert.NoError(t, err)

	assertAmount(t, "-20", balances[10].Balance)
	assert.Equal(t, 0, len(balances[10].ClearingResolution))
}
