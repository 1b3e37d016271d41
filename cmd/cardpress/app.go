package main

import (
	"net/http"
	"time"

	"github.com/zeptools/gw-cardpress/catalog"
	"github.com/zeptools/gw-cardpress/conf"
	"github.com/zeptools/gw-cardpress/orders"
	"github.com/zeptools/gw-cardpress/routing"
	"github.com/zeptools/gw-cardpress/shops"
	"github.com/zeptools/gw-cardpress/throttle"
)

type app struct {
	core    *conf.Core[string]
	shops   shops.Store
	orders  *orders.Service
	catalog *catalog.Handlers
}

func newApp(c *conf.Core[string]) *app {
	shopStore := shops.NewSQLStore(c.MainSQLDBClient())
	svc := orders.NewService(shopStore, orders.NewSQLStore(c.MainSQLDBClient()),
		c.Cards.Renderer, c.APIs.Mailer, c.HTMLTemplateStore)
	svc.Scheduler = c.JobScheduler
	svc.Limits = c.Cards.Conf.Limits
	return &app{
		core:    c,
		shops:   shopStore,
		orders:  svc,
		catalog: &catalog.Handlers{Themes: c.Cards.Themes},
	}
}

func (a *app) throttled(group string) routing.HandlerWrapper {
	return &throttle.IPWrapper{Store: a.core.ThrottleBucketStore, GroupID: group, Now: time.Now}
}

func (a *app) routes() http.Handler {
	sessions := a.core.WebSessionManager
	shopHandlers := &shops.Handlers{Store: a.shops}
	if a.core.APIs.Cloudinary != nil {
		shopHandlers.Logos = a.core.APIs.Cloudinary
	}
	orderHandlers := &orders.Handlers{Service: a.orders}

	router := routing.NewBaseRouter()
	router.Group("/api/", func(api *routing.RouteGroup) {
		api.HandleFunc("GET themes", a.catalog.ThemesList)
		api.HandleFunc("GET fonts", a.catalog.FontsList)
		api.HandleFunc("POST orders", orderHandlers.Submit, a.throttled(conf.ThrottleOrders))
		api.HandleFunc("POST preview", orderHandlers.Preview, a.throttled(conf.ThrottlePreview))

		api.Group("auth/", func(auth *routing.RouteGroup) {
			auth.HandleFunc("POST login", sessions.LoginHandler, a.throttled(conf.ThrottleLogin))
			auth.HandleFunc("POST logout", sessions.LogoutHandler)
		})

		api.Group("shops", func(g *routing.RouteGroup) {
			g.HandleFunc("GET /{slug}", shopHandlers.PublicGet)
			g.HandleFunc("POST ", shopHandlers.Create)
			g.HandleFunc("PUT /{id}", shopHandlers.Update)
			g.HandleFunc("DELETE /{id}", shopHandlers.Delete)
		}, sessions.RequireAdminUnlessGET())

		api.Group("admin/", func(admin *routing.RouteGroup) {
			admin.HandleFunc("GET shops", shopHandlers.AdminList)
			admin.HandleFunc("GET shops/{id}", shopHandlers.AdminGet)
			admin.HandleFunc("POST upload", shopHandlers.Upload)
			admin.HandleFunc("GET orders", orderHandlers.AdminList)
			admin.HandleFunc("GET orders/{id}/download", orderHandlers.Download)
		}, sessions.RequireAdmin())
	}, routing.Recover)
	return router
}
