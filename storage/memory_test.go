package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alekreuaya/lucky-naga/model"
)

func TestConsumeCodeConditional(t *testing.T) {
	a := assert.New(t)
	store := NewMemory()
	ctx := context.Background()

	err := store.InsertCode(ctx, &model.RedeemCode{Username: "alice", Code: "AAAA1111", IssuedAt: time.Now().UTC()})
	a.NoError(err)

	claimed, err := store.ConsumeCode(ctx, "alice", "WRONG000", time.Now().UTC())
	a.NoError(err)
	a.False(claimed, "wrong code must not consume")

	claimed, err = store.ConsumeCode(ctx, "alice", "AAAA1111", time.Now().UTC())
	a.NoError(err)
	a.True(claimed)

	claimed, err = store.ConsumeCode(ctx, "alice", "AAAA1111", time.Now().UTC())
	a.NoError(err)
	a.False(claimed, "a consumed code must stay consumed")
}

func TestListCodesFilter(t *testing.T) {
	a := assert.New(t)
	store := NewMemory()
	ctx := context.Background()

	a.NoError(store.InsertCode(ctx, &model.RedeemCode{Username: "alice", Code: "AAAA1111", IssuedAt: time.Now().UTC()}))
	a.NoError(store.InsertCode(ctx, &model.RedeemCode{Username: "bob", Code: "BBBB2222", IssuedAt: time.Now().UTC()}))
	_, err := store.ConsumeCode(ctx, "alice", "AAAA1111", time.Now().UTC())
	a.NoError(err)

	all, err := store.ListCodes(ctx, CodeFilterAll)
	a.NoError(err)
	a.Len(all, 2)

	used, err := store.ListCodes(ctx, CodeFilterUsed)
	a.NoError(err)
	a.Len(used, 1)
	a.Equal("alice", used[0].Username)

	unused, err := store.ListCodes(ctx, CodeFilterUnused)
	a.NoError(err)
	a.Len(unused, 1)
	a.Equal("bob", unused[0].Username)

	total, usedCount, err := store.CountCodes(ctx)
	a.NoError(err)
	a.EqualValues(2, total)
	a.EqualValues(1, usedCount)
}

func TestReplacePrizes(t *testing.T) {
	a := assert.New(t)
	store := NewMemory()
	ctx := context.Background()

	a.NoError(store.ReplacePrizes(ctx, []model.Prize{
		{Id: "1", Label: "Old A", Weight: 50},
		{Id: "2", Label: "Old B", Weight: 50},
	}))
	a.NoError(store.ReplacePrizes(ctx, []model.Prize{
		{Id: "3", Label: "New", Weight: 100},
	}))

	prizes, err := store.GetPrizes(ctx)
	a.NoError(err)
	a.Len(prizes, 1, "replacement swaps the whole pool")
	a.Equal("New", prizes[0].Label)
}

func TestListDrawsNewestFirst(t *testing.T) {
	a := assert.New(t)
	store := NewMemory()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		a.NoError(store.AppendDraw(ctx, &model.DrawRecord{
			Username:   "alice",
			PrizeLabel: "Gold Coin",
			DrawnAt:    base.Add(time.Duration(i) * time.Second),
		}))
	}

	draws, err := store.ListDraws(ctx, 3)
	a.NoError(err)
	a.Len(draws, 3)
	a.True(draws[0].DrawnAt.After(draws[1].DrawnAt))
	a.True(draws[1].DrawnAt.After(draws[2].DrawnAt))

	totals, err := store.DrawTotals(ctx)
	a.NoError(err)
	a.Len(totals, 1)
	a.EqualValues(5, totals[0].Count)
}

func TestDeleteAdmin(t *testing.T) {
	a := assert.New(t)
	store := NewMemory()
	ctx := context.Background()

	a.NoError(store.InsertAdmin(ctx, &model.AdminAccount{Username: "master", Role: model.RoleMaster, CreatedAt: time.Now().UTC()}))
	a.NoError(store.InsertAdmin(ctx, &model.AdminAccount{Username: "admin1", Role: model.RoleAdmin, CreatedAt: time.Now().UTC()}))

	err := store.DeleteAdmin(ctx, "master")
	a.ErrorIs(err, ErrCannotDeleteMaster)

	err = store.DeleteAdmin(ctx, "ghost")
	a.ErrorIs(err, ErrNotFound)

	a.NoError(store.DeleteAdmin(ctx, "admin1"))
	_, err = store.FindAdmin(ctx, "admin1")
	a.ErrorIs(err, ErrNotFound)

	// the master must still be there
	account, err := store.FindAdmin(ctx, "master")
	a.NoError(err)
	a.Equal(model.RoleMaster, account.Role)
}
