package main

import (
	"github.com/gin-gonic/gin"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/interfaces/http/handler"
	"github.com/grocer/backend/internal/interfaces/http/middleware"
	"github.com/grocer/backend/internal/interfaces/http/router"
)

type handlers struct {
	auth         *handler.AuthHandler
	users        *handler.UserHandler
	stores       *handler.StoreHandler
	areas        *handler.ServiceAreaHandler
	categories   *handler.CategoryHandler
	products     *handler.ProductHandler
	carts        *handler.CartHandler
	orders       *handler.OrderHandler
	coupons      *handler.CouponHandler
	reviews      *handler.ReviewHandler
	distributors *handler.DistributorHandler
	support      *handler.SupportHandler
	finance      *handler.FinanceHandler
	system       *handler.SystemHandler
}

// guards are the per-route middleware chains
type guards struct {
	// authenticated rejects requests without a valid access token
	authenticated gin.HandlerFunc
	// optional attaches claims when a valid token is presented
	optional gin.HandlerFunc
	// credentials throttles login, registration and refresh by IP
	credentials gin.HandlerFunc
}

func (g guards) roles(roles ...identity.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return middleware.RequireRoles(names...)
}

func (g guards) signedIn(dg *router.DomainGroup) *router.Scope {
	return dg.With(g.authenticated)
}

func (g guards) only(dg *router.DomainGroup, roles ...identity.Role) *router.Scope {
	return dg.With(g.authenticated, g.roles(roles...))
}

const (
	admin       = identity.RoleAdmin
	manager     = identity.RoleStoreManager
	customer    = identity.RoleCustomer
	distributor = identity.RoleDistributor
)

func apiRoutes(h handlers, g guards) []router.RouteRegistrar {
	return []router.RouteRegistrar{
		authRoutes(h, g),
		userRoutes(h, g),
		storeRoutes(h, g),
		serviceAreaRoutes(h, g),
		serviceabilityRoutes(h, g),
		categoryRoutes(h, g),
		productRoutes(h, g),
		cartRoutes(h, g),
		orderRoutes(h, g),
		couponRoutes(h, g),
		reviewRoutes(h, g),
		distributorRoutes(h, g),
		supportRoutes(h, g),
		financeRoutes(h, g),
		systemRoutes(h, g),
	}
}

func authRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("auth", "/auth")
	dg.With(g.credentials).
		POST("/register", h.auth.Register).
		POST("/login", h.auth.Login).
		POST("/refresh", h.auth.Refresh)
	g.signedIn(dg).
		POST("/logout", h.auth.Logout).
		GET("/me", h.auth.Me).
		PUT("/me", h.auth.UpdateMe).
		PUT("/password", h.auth.ChangePassword)
	return dg
}

func userRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("identity", "/users").Use(g.authenticated, g.roles(admin))
	dg.POST("", h.users.Create).
		GET("", h.users.List).
		GET("/:id", h.users.GetByID).
		PUT("/:id/store", h.users.AssignStore).
		POST("/:id/suspend", h.users.Suspend).
		POST("/:id/activate", h.users.Activate)
	return dg
}

func storeRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("store", "/stores")
	dg.GET("", h.stores.List).
		GET("/:id", h.stores.GetByID).
		GET("/code/:code", h.stores.GetByCode).
		GET("/:id/service-areas", h.areas.ListByStore)

	g.only(dg, admin).
		POST("", h.stores.Create).
		POST("/:id/activate", h.stores.Activate).
		POST("/:id/deactivate", h.stores.Deactivate).
		POST("/:id/suspend", h.stores.Suspend).
		DELETE("/:id", h.stores.Delete)
	g.only(dg, admin, manager).
		PUT("/:id", h.stores.Update).
		POST("/:id/service-areas", h.areas.Create)
	return dg
}

func serviceAreaRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("service-area", "/service-areas")
	dg.GET("", h.areas.List).
		GET("/:id", h.areas.GetByID)
	g.only(dg, admin, manager).
		PUT("/:id", h.areas.Update).
		POST("/:id/activate", h.areas.Activate).
		POST("/:id/deactivate", h.areas.Deactivate).
		DELETE("/:id", h.areas.Delete)
	return dg
}

func serviceabilityRoutes(h handlers, _ guards) *router.DomainGroup {
	dg := router.NewDomainGroup("serviceability", "/serviceability")
	dg.GET("/check", h.areas.Check).
		POST("/route", h.areas.Route)
	return dg
}

func categoryRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("catalog", "/categories")
	dg.GET("", h.categories.List).
		GET("/:id", h.categories.GetByID)
	g.only(dg, admin).
		POST("", h.categories.Create).
		PUT("/:id", h.categories.Update).
		POST("/:id/activate", h.categories.Activate).
		POST("/:id/deactivate", h.categories.Deactivate).
		DELETE("/:id", h.categories.Delete)
	return dg
}

func productRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("catalog", "/products")
	dg.GET("", h.products.List).
		GET("/:id", h.products.GetByID).
		GET("/:id/rating", h.reviews.RatingSummary)
	g.only(dg, admin, manager).
		POST("", h.products.Create).
		PUT("/:id", h.products.Update).
		POST("/:id/stock", h.products.AdjustStock).
		POST("/:id/activate", h.products.Activate).
		POST("/:id/deactivate", h.products.Deactivate).
		DELETE("/:id", h.products.Delete)
	return dg
}

func cartRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("cart", "/cart").Use(g.authenticated, g.roles(customer))
	dg.GET("", h.carts.Get).
		DELETE("", h.carts.Clear).
		POST("/items", h.carts.AddItem).
		PUT("/items/:productId", h.carts.UpdateItem).
		DELETE("/items/:productId", h.carts.RemoveItem).
		POST("/coupon", h.carts.ApplyCoupon).
		DELETE("/coupon", h.carts.RemoveCoupon)
	return dg
}

func orderRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("order", "/orders").Use(g.authenticated)
	dg.GET("", h.orders.List).
		GET("/:id", h.orders.GetByID).
		GET("/number/:number", h.orders.GetByNumber).
		POST("/:id/cancel", h.orders.Cancel)
	dg.With(g.roles(customer)).
		POST("", h.orders.Checkout)
	dg.With(g.roles(admin, manager)).
		POST("/:id/confirm", h.orders.Confirm).
		POST("/:id/pack", h.orders.Pack).
		POST("/:id/dispatch", h.orders.Dispatch).
		POST("/:id/deliver", h.orders.Deliver).
		POST("/:id/pay", h.orders.MarkPaid)
	return dg
}

func couponRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("coupon", "/coupons").Use(g.authenticated)
	dg.GET("/code/:code", h.coupons.GetByCode).
		POST("/validate", h.coupons.Validate)
	dg.With(g.roles(admin, manager)).
		GET("", h.coupons.List).
		GET("/:id", h.coupons.GetByID).
		GET("/:id/usages", h.coupons.ListUsages)
	dg.With(g.roles(admin)).
		POST("", h.coupons.Create).
		PUT("/:id", h.coupons.Update).
		POST("/:id/activate", h.coupons.Activate).
		POST("/:id/deactivate", h.coupons.Deactivate).
		DELETE("/:id", h.coupons.Delete)
	return dg
}

func reviewRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("review", "/reviews")
	dg.With(g.optional).
		GET("", h.reviews.List).
		GET("/:id", h.reviews.GetByID)
	g.only(dg, customer).
		POST("", h.reviews.Create).
		PUT("/:id", h.reviews.Update)
	g.signedIn(dg).
		DELETE("/:id", h.reviews.Delete)
	g.only(dg, admin, manager).
		POST("/:id/approve", h.reviews.Approve).
		POST("/:id/reject", h.reviews.Reject)
	return dg
}

func distributorRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("distributor", "/distributors").Use(g.authenticated)
	self := dg.With(g.roles(distributor, admin))
	self.POST("", h.distributors.Register).
		GET("/:id", h.distributors.GetByID).
		PUT("/:id", h.distributors.UpdateProfile).
		POST("/:id/documents", h.distributors.RequestDocumentUpload).
		POST("/:id/documents/:docId/confirm", h.distributors.ConfirmDocument).
		GET("/:id/documents/:docId/download", h.distributors.DocumentDownload).
		POST("/:id/submit", h.distributors.Submit)
	dg.With(g.roles(admin)).
		GET("", h.distributors.List).
		POST("/:id/review", h.distributors.StartReview).
		POST("/:id/approve", h.distributors.Approve).
		POST("/:id/reject", h.distributors.Reject).
		POST("/:id/suspend", h.distributors.Suspend).
		POST("/:id/reinstate", h.distributors.Reinstate)
	return dg
}

func supportRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("support", "/support/conversations").Use(g.authenticated)
	dg.POST("", h.support.Open).
		GET("", h.support.List).
		GET("/:id", h.support.GetByID).
		POST("/:id/messages", h.support.PostMessage).
		POST("/:id/resolve", h.support.Resolve).
		POST("/:id/close", h.support.Close).
		POST("/:id/reopen", h.support.Reopen)
	dg.With(g.roles(admin, manager)).
		POST("/:id/assign", h.support.Assign)
	return dg
}

func financeRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("finance", "/finance").Use(g.authenticated, g.roles(admin, manager))

	notes := dg.Group("credit-note", "/credit-notes")
	notes.POST("", h.finance.CreateCreditNote).
		GET("", h.finance.ListCreditNotes).
		GET("/:id", h.finance.GetCreditNote).
		POST("/:id/approve", h.finance.ApproveCreditNote).
		POST("/:id/apply", h.finance.ApplyCreditNote).
		POST("/:id/cancel", h.finance.CancelCreditNote)

	gst := dg.Group("gst", "/gst")
	gst.GET("/ledger", h.finance.ListLedger).
		GET("/summaries", h.finance.ListSummaries).
		GET("/summaries/:id", h.finance.GetSummary).
		POST("/summaries/generate", h.finance.GenerateSummary).
		POST("/summaries/:id/file", h.finance.FileSummary)
	return dg
}

func systemRoutes(h handlers, g guards) *router.DomainGroup {
	dg := router.NewDomainGroup("system", "/system")
	dg.GET("/info", h.system.Info)
	g.only(dg, admin).
		POST("/jobs/:name", h.system.TriggerJob)
	return dg
}
