package repositories_test

import (
	"testing"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOrderCreate(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Mechanical Keyboard", 10.00, 10)

	order, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 3}},
		testAddress(), nil, "leave at door")
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.InDelta(t, 30.00, order.TotalAmount, 0.001)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Mechanical Keyboard", order.Items[0].ProductTitle)
	assert.Equal(t, seller.ID, order.Items[0].SellerID)
	assert.InDelta(t, 10.00, order.Items[0].Price, 0.001)

	fresh, err := products.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, fresh.Stock)
}

func TestOrderCreateSnapshotsPrice(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Monitor", 200.00, 5)

	order, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 1}},
		testAddress(), nil, "")
	require.NoError(t, err)

	// Later listing edits must not rewrite order history.
	price := 250.00
	_, err = products.Update(p.ID, repositories.ProductUpdate{Price: &price})
	require.NoError(t, err)

	kept, err := orders.ByID(order.ID)
	require.NoError(t, err)
	require.Len(t, kept.Items, 1)
	assert.InDelta(t, 200.00, kept.Items[0].Price, 0.001)
	assert.InDelta(t, 200.00, kept.TotalAmount, 0.001)
}

func TestOrderCreateInsufficientStockRollsBack(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	plenty := seedProduct(t, db, seller.ID, "Plenty", 5.00, 50)
	scarce := seedProduct(t, db, seller.ID, "Scarce", 5.00, 1)

	_, err := orders.Create(buyer.ID, []repositories.OrderLine{
		{ProductID: plenty.ID, Quantity: 2},
		{ProductID: scarce.ID, Quantity: 3},
	}, testAddress(), nil, "")
	require.ErrorIs(t, err, repositories.ErrInsufficientStock)

	// All-or-nothing: the first line's decrement rolled back too.
	fresh, err := products.FindByID(plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, fresh.Stock)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestOrderCreateRejectsInactiveAndUnknownProducts(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Retired", 5.00, 10)
	require.NoError(t, products.SoftDelete(p.ID))

	_, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 1}},
		testAddress(), nil, "")
	require.ErrorIs(t, err, repositories.ErrProductUnavailable)

	_, err = orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: 9999, Quantity: 1}},
		testAddress(), nil, "")
	require.ErrorIs(t, err, repositories.ErrProductUnavailable)

	_, err = orders.Create(buyer.ID, nil, testAddress(), nil, "")
	require.ErrorIs(t, err, repositories.ErrEmptyOrder)
}

func TestOrderCancelRestoresStock(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Headphones", 10.00, 10)

	order, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 3}},
		testAddress(), nil, "")
	require.NoError(t, err)

	cancelled, err := orders.Cancel(order.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	fresh, err := products.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, fresh.Stock)
}

func TestOrderCancelOnlyWhileCancellable(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Camera", 99.00, 10)

	order, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 2}},
		testAddress(), nil, "")
	require.NoError(t, err)

	for _, status := range []string{models.OrderShipped, models.OrderDelivered, models.OrderCancelled} {
		_, err := orders.UpdateStatus(order.ID, status, "")
		require.NoError(t, err)

		_, err = orders.Cancel(order.ID, buyer.ID)
		require.ErrorIs(t, err, repositories.ErrCannotCancel, "status %s", status)

		// Stock stays untouched by the failed cancel.
		fresh, err := products.FindByID(p.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, fresh.Stock, "status %s", status)
	}

	// Another buyer cannot cancel someone else's order.
	_, err = orders.UpdateStatus(order.ID, models.OrderPending, "")
	require.NoError(t, err)
	other := seedUser(t, db, "other@example.com", models.RoleUser)
	_, err = orders.Cancel(order.ID, other.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderUpdateStatus(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Lamp", 15.00, 4)

	order, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 1}},
		testAddress(), nil, "")
	require.NoError(t, err)

	_, err = orders.UpdateStatus(order.ID, "teleported", "")
	require.ErrorIs(t, err, repositories.ErrInvalidStatus)

	updated, err := orders.UpdateStatus(order.ID, models.OrderShipped, "TRK-42")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)
	assert.Equal(t, "TRK-42", updated.TrackingNumber)

	_, err = orders.UpdateStatus(9999, models.OrderShipped, "")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderListings(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	rival := seedUser(t, db, "rival@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	mine := seedProduct(t, db, seller.ID, "Mine", 10.00, 20)
	theirs := seedProduct(t, db, rival.ID, "Theirs", 10.00, 20)

	first, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: mine.ID, Quantity: 1}},
		testAddress(), nil, "")
	require.NoError(t, err)
	_, err = orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: theirs.ID, Quantity: 1}},
		testAddress(), nil, "")
	require.NoError(t, err)

	bought, page, err := orders.ByBuyer(buyer.ID, repositories.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, bought, 2)
	assert.EqualValues(t, 2, page.Total)

	sold, _, err := orders.BySeller(seller.ID, repositories.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, first.ID, sold[0].ID)

	_, err = orders.UpdateStatus(first.ID, models.OrderDelivered, "")
	require.NoError(t, err)
	delivered, _, err := orders.ByBuyer(buyer.ID, repositories.OrderFilter{Status: models.OrderDelivered})
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, first.ID, delivered[0].ID)
}

func TestOrderListingsDateRange(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Gadget", 10.00, 20)

	old, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 1}},
		testAddress(), nil, "")
	require.NoError(t, err)
	recent, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 1}},
		testAddress(), nil, "")
	require.NoError(t, err)

	lastWeek := time.Now().AddDate(0, 0, -7)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", old.ID).
		Update("created_at", lastWeek).Error)

	today := time.Now().Truncate(24 * time.Hour)

	got, _, err := orders.ByBuyer(buyer.ID, repositories.OrderFilter{From: lastWeek.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, recent.ID, got[0].ID)

	got, _, err = orders.ByBuyer(buyer.ID, repositories.OrderFilter{To: lastWeek.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, old.ID, got[0].ID)

	// To covers its whole calendar day, so a range ending today includes
	// an order placed moments ago.
	got, _, err = orders.ByBuyer(buyer.ID, repositories.OrderFilter{From: lastWeek, To: today})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	sold, _, err := orders.BySeller(seller.ID, repositories.OrderFilter{From: lastWeek.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, recent.ID, sold[0].ID)
}

func TestOrderStats(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Gadget", 10.00, 100)

	place := func(qty int) models.Order {
		o, err := orders.Create(buyer.ID,
			[]repositories.OrderLine{{ProductID: p.ID, Quantity: qty}},
			testAddress(), nil, "")
		require.NoError(t, err)
		return o
	}

	place(1)
	delivered := place(2)
	dead := place(3)
	_, err := orders.UpdateStatus(delivered.ID, models.OrderDelivered, "")
	require.NoError(t, err)
	_, err = orders.Cancel(dead.ID, buyer.ID)
	require.NoError(t, err)

	stats, err := orders.Stats(buyer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.PendingOrders)
	assert.EqualValues(t, 1, stats.DeliveredOrders)
	assert.EqualValues(t, 1, stats.CancelledOrders)
	// Cancelled orders do not count toward spend.
	assert.InDelta(t, 30.00, stats.TotalSpent, 0.001)
}

func TestOrderBuyerOf(t *testing.T) {
	db := testDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)

	seller := seedUser(t, db, "seller@example.com", models.RoleSeller)
	buyer := seedUser(t, db, "buyer@example.com", models.RoleUser)
	p := seedProduct(t, db, seller.ID, "Pen", 2.00, 10)

	order, err := orders.Create(buyer.ID,
		[]repositories.OrderLine{{ProductID: p.ID, Quantity: 1}},
		testAddress(), nil, "")
	require.NoError(t, err)

	owner, err := orders.BuyerOf(order.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, owner)

	_, err = orders.BuyerOf(9999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
