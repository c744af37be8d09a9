package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/model"
)

func newShopFixture(t *testing.T, balance int64) (*ShopService, *economy.Ledger, *time.Time) {
	t.Helper()
	ledger := economy.NewLedger()
	if balance > 0 {
		_, err := ledger.Adjust(1, balance)
		require.NoError(t, err)
	}
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewShopService(ledger, economy.NewCooldownStore(), func() time.Time { return current })
	return svc, ledger, &current
}

func TestShopCatalog(t *testing.T) {
	svc, _, _ := newShopFixture(t, 0)

	require.NoError(t, svc.AddItem(model.ShopItem{Name: "VIP Role", Price: 500}))
	assert.ErrorIs(t, svc.AddItem(model.ShopItem{Name: "vip role", Price: 100}), ErrItemExists)
	assert.ErrorIs(t, svc.AddItem(model.ShopItem{Name: "", Price: 100}), ErrInvalidItem)
	assert.ErrorIs(t, svc.AddItem(model.ShopItem{Name: "Freebie", Price: 0}), ErrInvalidItem)

	require.NoError(t, svc.UpdateItem(model.ShopItem{Name: "VIP Role", Price: 800}))
	assert.ErrorIs(t, svc.UpdateItem(model.ShopItem{Name: "Ghost", Price: 10}), ErrItemNotFound)

	item, ok := svc.Item("VIP ROLE")
	require.True(t, ok)
	assert.Equal(t, int64(800), item.Price)

	require.NoError(t, svc.AddItem(model.ShopItem{Name: "Badge", Price: 50}))
	items := svc.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Badge", items[0].Name, "catalog is sorted by name")

	require.NoError(t, svc.DeleteItem("badge"))
	assert.ErrorIs(t, svc.DeleteItem("badge"), ErrItemNotFound)
	assert.Len(t, svc.Items(), 1)
}

func TestBuy(t *testing.T) {
	t.Run("deducts price times quantity", func(t *testing.T) {
		svc, ledger, _ := newShopFixture(t, 1000)
		require.NoError(t, svc.AddItem(model.ShopItem{Name: "Sticker", Price: 150}))

		item, cost, err := svc.Buy(1, "sticker", 3)
		require.NoError(t, err)
		assert.Equal(t, "Sticker", item.Name)
		assert.Equal(t, int64(450), cost)
		assert.Equal(t, int64(550), ledger.Balance(1))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, _, _ := newShopFixture(t, 1000)
		require.NoError(t, svc.AddItem(model.ShopItem{Name: "Sticker", Price: 150}))

		_, _, err := svc.Buy(1, "sticker", 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		_, _, err = svc.Buy(1, "ghost", 1)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("insufficient funds leaves the balance alone", func(t *testing.T) {
		svc, ledger, _ := newShopFixture(t, 100)
		require.NoError(t, svc.AddItem(model.ShopItem{Name: "Sticker", Price: 150}))

		_, _, err := svc.Buy(1, "sticker", 1)
		assert.ErrorIs(t, err, economy.ErrInsufficientFunds)
		assert.Equal(t, int64(100), ledger.Balance(1))
	})

	t.Run("purchases are rate limited", func(t *testing.T) {
		svc, _, current := newShopFixture(t, 10000)
		require.NoError(t, svc.AddItem(model.ShopItem{Name: "Sticker", Price: 150}))

		_, _, err := svc.Buy(1, "sticker", 1)
		require.NoError(t, err)

		*current = current.Add(time.Second)
		var cdErr *CooldownError
		_, _, err = svc.Buy(1, "sticker", 1)
		assert.ErrorAs(t, err, &cdErr)

		*current = current.Add(BuyCooldown)
		_, _, err = svc.Buy(1, "sticker", 1)
		assert.NoError(t, err)
	})
}

func TestShopSnapshotRestore(t *testing.T) {
	svc, _, _ := newShopFixture(t, 0)
	require.NoError(t, svc.AddItem(model.ShopItem{Name: "VIP Role", Price: 500, Description: "shiny"}))

	restored, _, _ := newShopFixture(t, 0)
	restored.Restore(svc.Snapshot())

	item, ok := restored.Item("vip role")
	require.True(t, ok)
	assert.Equal(t, int64(500), item.Price)
	assert.Equal(t, "shiny", item.Description)
}
