package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(otelchi.Middleware("promopress-api", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)

	r.Get("/health", app.GetHealth)

	r.Post("/auth/pi-login", app.PiLoginHandler)

	r.Route("/session-links", func(r chi.Router) {
		r.Post("/", app.CreateSessionCodeHandler)
		r.Post("/sync", app.SyncSessionHandler)
		r.Get("/{code}/user", app.GetSessionUserHandler)
	})

	r.Post("/contact", app.SendContactMessageHandler)

	r.Route("/payments", func(r chi.Router) {
		r.Get("/prices", app.GetPlanPricesHandler)
		r.Get("/slots", app.GetSlotAvailabilityHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication)
			r.Post("/", app.CreatePaymentHandler)
			r.Post("/approve", app.ApprovePaymentHandler)
			r.Post("/complete", app.CompletePaymentHandler)
			r.Get("/{paymentId}", app.GetPaymentHandler)
			r.Post("/{paymentId}/article", app.AttachArticleHandler)
		})
	})

	r.Route("/articles", func(r chi.Router) {
		r.Get("/", app.ListArticlesHandler)
		r.Get("/featured", app.GetFeaturedArticlesHandler)
		r.Get("/main-slider", app.GetMainSliderHandler)
		r.Get("/category-slider/{slug}", app.GetCategorySliderHandler)
		r.Get("/{articleId}", app.GetArticleHandler)
		r.Get("/{articleId}/payment", app.GetPaymentByArticleHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication)
			r.Post("/", app.CreateArticleHandler)
			r.Put("/{articleId}", app.UpdateArticleHandler)
			r.Delete("/{articleId}", app.DeleteArticleHandler)
			r.Post("/{articleId}/submit", app.SubmitArticleForReviewHandler)
			r.Post("/{articleId}/subscription/cancel", app.CancelSubscriptionHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication, app.requireAdmin)
			r.Post("/{articleId}/approve", app.ApproveArticleHandler)
			r.Post("/{articleId}/reject", app.RejectArticleHandler)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", app.ListCategoriesHandler)
		r.Get("/{slug}", app.GetCategoryHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication, app.requireAdmin)
			r.Post("/", app.CreateCategoryHandler)
			r.Put("/{categoryId}", app.UpdateCategoryHandler)
			r.Delete("/{categoryId}", app.DeleteCategoryHandler)
		})
	})

	r.Route("/users/me", func(r chi.Router) {
		r.Use(app.requireAuthentication)
		r.Get("/plan", app.GetActivePlanHandler)
		r.Get("/articles", app.GetMyArticlesHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuthentication, app.requireAdmin)
		r.Post("/admin/plans/activate", app.ActivatePlanHandler)
		r.Post("/admin/plans/grant", app.ActivateWithoutPaymentHandler)
		r.Get("/admin/articles", app.ListArticlesByStatusHandler)
	})

	return r
}
