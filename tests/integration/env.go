package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	cartapp "github.com/grocer/backend/internal/application/cart"
	catalogapp "github.com/grocer/backend/internal/application/catalog"
	couponapp "github.com/grocer/backend/internal/application/coupon"
	financeapp "github.com/grocer/backend/internal/application/finance"
	orderapp "github.com/grocer/backend/internal/application/order"
	storeapp "github.com/grocer/backend/internal/application/store"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/infrastructure/cache"
	"github.com/grocer/backend/internal/infrastructure/event"
	"github.com/grocer/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// env wires the application services over a migrated database the same way
// cmd/server does, with in-process cache, locks and event delivery
type env struct {
	db *TestDB

	users    *persistence.GormUserRepository
	products *persistence.GormProductRepository

	stores      *storeapp.StoreService
	areas       *storeapp.ServiceAreaService
	catalog     *catalogapp.ProductService
	carts       *cartapp.CartService
	orders      *orderapp.OrderService
	coupons     *couponapp.CouponService
	ledger      *financeapp.GSTLedgerService
	summaries   *financeapp.GSTSummaryService
	creditNotes *financeapp.CreditNoteService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tdb := NewTestDB(t)
	db := tdb.DB
	log := zap.NewNop()
	loc := time.UTC

	serviceability := cache.NewInMemoryServiceabilityCache(time.Minute)
	bus := event.NewInMemoryEventBus(log)

	storeRepo := persistence.NewGormStoreRepository(db)
	areaRepo := persistence.NewGormServiceAreaRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	cartRepo := persistence.NewGormCartRepository(db)
	couponRepo := persistence.NewGormCouponRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	distributorRepo := persistence.NewGormDistributorRepository(db)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db)
	ledgerRepo := persistence.NewGormGSTLedgerRepository(db)
	summaryRepo := persistence.NewGormGSTSummaryRepository(db)
	transactor := persistence.NewGormTransactor(db)

	router := storeapp.NewServiceabilityService(storeRepo, areaRepo, serviceability, loc, log)
	evaluator := couponapp.NewEvaluator(couponRepo, orderRepo)
	ledger := financeapp.NewGSTLedgerService(ledgerRepo, storeRepo, orderRepo, loc, log)

	e := &env{
		db:       tdb,
		users:    persistence.NewGormUserRepository(db),
		products: productRepo,
		stores:   storeapp.NewStoreService(storeRepo, areaRepo, serviceability, bus, log),
		areas:    storeapp.NewServiceAreaService(storeRepo, areaRepo, serviceability, bus, log),
		catalog:  catalogapp.NewProductService(productRepo, categoryRepo, storeRepo, distributorRepo, bus, log),
		carts:    cartapp.NewCartService(cartRepo, productRepo, evaluator, log),
		orders: orderapp.NewOrderService(orderapp.Dependencies{
			Orders:        orderRepo,
			Carts:         cartRepo,
			Products:      productRepo,
			Coupons:       couponRepo,
			Router:        router,
			Evaluator:     evaluator,
			Transactor:    transactor,
			Locker:        cache.NewInMemoryLocker(),
			CouponLockTTL: 5 * time.Second,
			Events:        bus,
			Logger:        log,
		}),
		coupons:     couponapp.NewCouponService(couponRepo, evaluator, bus, log),
		ledger:      ledger,
		summaries:   financeapp.NewGSTSummaryService(summaryRepo, ledgerRepo, ledger, storeRepo, bus, loc, log),
		creditNotes: financeapp.NewCreditNoteService(creditNoteRepo, orderRepo, ledger, transactor, bus, nil, log),
	}

	delivered := event.NewIdempotentHandler(
		financeapp.NewOrderDeliveredHandler(orderRepo, ledger, log),
		cache.NewInMemoryIdempotencyStore(),
		time.Hour,
		log,
	)
	bus.Subscribe(delivered, delivered.EventTypes()...)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return e
}

// suffix keeps codes, emails and SKUs unique across tests sharing the database
func suffix() string {
	return uuid.NewString()[:8]
}

// pincode returns a fresh six digit pincode so routing only sees this test's areas
func pincode() string {
	return fmt.Sprintf("%06d", 100000+int(uuid.New().ID()%900000))
}

type fixture struct {
	storeID   uuid.UUID
	productID uuid.UUID
	pincode   string
	customer  uuid.UUID
	admin     uuid.UUID
}

// seed creates an active store in state 29 serving one pincode, a product
// priced at 100 with the given stock, a customer and an admin
func (e *env) seed(t *testing.T, stock int) fixture {
	t.Helper()
	ctx := context.Background()
	pin := pincode()

	st, err := e.stores.Create(ctx, storeapp.CreateStoreRequest{
		Code:      "ST-" + suffix(),
		Name:      "Indiranagar Fresh",
		Type:      "BRAND",
		City:      "Bengaluru",
		StateCode: "29",
		Pincode:   pin,
	})
	require.NoError(t, err)

	_, err = e.areas.Create(ctx, st.ID, storeapp.CreateServiceAreaRequest{
		Name:     "Indiranagar",
		City:     "Bengaluru",
		Pincodes: []string{pin},
		DeliverySettingsRequest: storeapp.DeliverySettingsRequest{
			DeliveryFee:      decimal.NewFromInt(20),
			MinOrderAmount:   decimal.Zero,
			EstimatedMinutes: 30,
		},
	})
	require.NoError(t, err)

	p, err := e.catalog.Create(ctx, catalogapp.CreateProductRequest{
		StoreID: st.ID,
		SKU:     "SKU-" + suffix(),
		Name:    "Toned Milk 1L",
		Unit:    "pcs",
		MRP:     decimal.NewFromInt(110),
		Price:   decimal.NewFromInt(100),
		GSTRate: decimal.NewFromInt(5),
		Stock:   stock,
	})
	require.NoError(t, err)

	return fixture{
		storeID:   st.ID,
		productID: p.ID,
		pincode:   pin,
		customer:  e.user(t, identity.RoleCustomer),
		admin:     e.user(t, identity.RoleAdmin),
	}
}

func (e *env) user(t *testing.T, role identity.Role) uuid.UUID {
	t.Helper()
	s := suffix()
	u, err := identity.NewUser("Test "+s, "user-"+s+"@example.com", "", "password123", role)
	require.NoError(t, err)
	require.NoError(t, e.users.Save(context.Background(), u))
	return u.ID
}

func (f fixture) checkout(coupon string) orderapp.CheckoutRequest {
	return orderapp.CheckoutRequest{
		StoreID: f.storeID,
		Address: orderapp.AddressRequest{
			Line:      "12th Main, HAL 2nd Stage",
			City:      "Bengaluru",
			StateCode: "29",
			Pincode:   f.pincode,
		},
		PaymentMethod: "COD",
		CouponCode:    coupon,
	}
}

func (f fixture) adminViewer() orderapp.Viewer {
	return orderapp.Viewer{UserID: f.admin, Role: string(identity.RoleAdmin)}
}

func (f fixture) customerViewer() orderapp.Viewer {
	return orderapp.Viewer{UserID: f.customer, Role: string(identity.RoleCustomer)}
}
