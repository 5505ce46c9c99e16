package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) routes() http.Handler {
	router := chi.NewRouter()

	router.Use(app.recoverPanic, app.logRequest, app.rateLimit, app.authenticate)

	router.NotFound(app.notFoundErrorResponse)
	router.MethodNotAllowed(app.methodNotAllowedErrorResponse)

	router.Route("/api", func(r chi.Router) {
		r.Get("/healthcheck", app.healthCheckHandler)

		r.Post("/auth/register", app.registerUserHandler)
		r.Post("/auth/login", app.loginUserHandler)

		r.Get("/blogs", app.getAllBlogsHandler)
		r.Get("/blogs/trending", app.getTrendingBlogsHandler)
		r.Get("/blogs/{id}", app.getBlogHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthUser)

			r.Post("/blogs", app.createBlogHandler)
			r.Put("/blogs/{id}", app.updateBlogHandler)
			r.Delete("/blogs/{id}", app.deleteBlogHandler)
			r.Get("/blogs/favorites/me", app.getFavoriteBlogsHandler)
			r.Post("/blogs/{id}/like", app.toggleLikeHandler)
			r.Post("/blogs/{id}/comment", app.addCommentHandler)
			r.Put("/blogs/{blogId}/comments/{commentId}", app.editCommentHandler)
			r.Delete("/blogs/{blogId}/comments/{commentId}", app.deleteCommentHandler)

			r.Get("/users/me", app.getProfileHandler)
			r.Put("/users/me", app.updateProfileHandler)

			r.Get("/notifications", app.getNotificationsHandler)
			r.Put("/notifications/read", app.markNotificationsReadHandler)
		})
	})

	// uploaded images are served as plain static files
	fileServer := http.FileServer(http.Dir(app.config.UploadDir))
	router.Handle("/uploads/*", http.StripPrefix("/uploads", fileServer))

	return router
}
