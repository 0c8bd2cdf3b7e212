package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&identity.User{},
		&catalog.Category{},
		&catalog.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
	))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func usd(amount float64) valueobject.Money {
	return valueobject.NewMoneyFromFloat(amount, valueobject.USD)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(username, username+"@example.com", "secret123", "")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Save(context.Background(), user))
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, ownerID uuid.UUID) *catalog.Product {
	t.Helper()
	category, err := catalog.NewCategory("cat-"+name, "", "")
	require.NoError(t, err)
	require.NoError(t, NewGormCategoryRepository(db).Save(context.Background(), category))

	product, err := catalog.NewProduct(name, "", usd(price), category.ID, ownerID)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), product))
	return product
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "alice")

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
	})

	t.Run("find by username is case insensitive", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("find by email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("missing user yields not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find by reset token", func(t *testing.T) {
		_, err := repo.FindByResetToken(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		user.ResetToken = "tok-abc"
		require.NoError(t, repo.Save(ctx, user))
		found, err := repo.FindByResetToken(ctx, "tok-abc")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("role filter", func(t *testing.T) {
		admin, err := identity.NewUser("root", "root@example.com", "secret123", identity.RoleAdmin)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, admin))

		filter := shared.DefaultFilter()
		filter.Filters["role"] = "admin"
		admins, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, "root", admins[0].Username)
	})
}

func TestProductRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "vendor1")
	product := seedProduct(t, db, "Widget", 19.99, owner.ID)

	t.Run("round trips price and images", func(t *testing.T) {
		product.SetImages([]string{"a.jpg", "b.jpg"})
		require.NoError(t, repo.Save(ctx, product))

		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "19.99", found.Price.StringFixed(2))
		assert.Equal(t, catalog.ImageList{"a.jpg", "b.jpg"}, found.Images)
	})

	t.Run("increment sales is cumulative", func(t *testing.T) {
		require.NoError(t, repo.IncrementSales(ctx, product.ID, 3))
		require.NoError(t, repo.IncrementSales(ctx, product.ID, 2))

		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, found.Sales)
	})

	t.Run("increment sales of missing product", func(t *testing.T) {
		err := repo.IncrementSales(ctx, uuid.New(), 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("top selling order", func(t *testing.T) {
		other := seedProduct(t, db, "Gadget", 5, owner.ID)
		require.NoError(t, repo.IncrementSales(ctx, other.ID, 100))

		top, err := repo.FindTopSelling(ctx, 2)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "Gadget", top[0].Name)
	})

	t.Run("count by category", func(t *testing.T) {
		count, err := repo.CountByCategory(ctx, product.CategoryID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func TestCartRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "alice")
	productA := seedProduct(t, db, "Widget", 19.99, owner.ID)
	productB := seedProduct(t, db, "Gadget", 5, owner.ID)

	c, err := cart.NewCart("alice_cart", owner.ID)
	require.NoError(t, err)
	require.NoError(t, c.AddItem(productA.ID, 2))
	require.NoError(t, c.AddItem(productB.ID, 1))
	require.NoError(t, repo.Save(ctx, c))

	t.Run("find by name preloads items", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "alice_cart")
		require.NoError(t, err)
		assert.Len(t, found.Items, 2)
		assert.Equal(t, 2, found.ItemQuantity(productA.ID))
	})

	t.Run("save reconciles removed items", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "alice_cart")
		require.NoError(t, err)
		require.NoError(t, found.RemoveItem(productB.ID))
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByName(ctx, "alice_cart")
		require.NoError(t, err)
		assert.Len(t, reloaded.Items, 1)
	})

	t.Run("save empty cart deletes all items", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "alice_cart")
		require.NoError(t, err)
		found.Clear()
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByName(ctx, "alice_cart")
		require.NoError(t, err)
		assert.True(t, reloaded.IsEmpty())
	})

	t.Run("missing cart yields not found", func(t *testing.T) {
		_, err := repo.FindByName(ctx, "bob_cart")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "alice")

	place := func(t *testing.T, total float64) *order.Order {
		o, err := order.NewOrder("alice_cart", owner.ID, usd(total))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, o))
		return o
	}

	t.Run("find by order id", func(t *testing.T) {
		o := place(t, 59.97)
		found, err := repo.FindByOrderID(ctx, o.OrderID)
		require.NoError(t, err)
		assert.Equal(t, "59.97", found.TotalAmount.StringFixed(2))
		assert.Equal(t, order.StatusPending, found.Status)
	})

	t.Run("delete twice yields not found on the second call", func(t *testing.T) {
		o := place(t, 10)
		require.NoError(t, repo.DeleteByOrderID(ctx, o.OrderID))
		assert.ErrorIs(t, repo.DeleteByOrderID(ctx, o.OrderID), shared.ErrNotFound)
	})

	t.Run("list sorts by time placed descending", func(t *testing.T) {
		orders, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		for i := 1; i < len(orders); i++ {
			assert.False(t, orders[i-1].TimePlaced.Before(orders[i].TimePlaced))
		}
	})

	t.Run("status filter", func(t *testing.T) {
		o := place(t, 20)
		require.NoError(t, o.SetStatus(order.StatusShipped, "admin"))
		require.NoError(t, repo.Save(ctx, o))

		filter := shared.DefaultFilter()
		filter.Filters["status"] = "shipped"
		shipped, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, shipped, 1)
		assert.Equal(t, o.OrderID, shipped[0].OrderID)
	})
}
