package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(logger *slog.Logger, appConfig config.AppConfig, JWTService jwt.Service, leaveHandler LeaveHandler, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{appConfig.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/leave", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", leaveHandler.CreateRequest)
					r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/my", leaveHandler.GetMyRequests)
					r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Get("/pending", leaveHandler.ListPendingRequests)

					r.Route("/{id}", func(r chi.Router) {
						r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/", leaveHandler.GetRequest)

						r.Group(func(r chi.Router) {
							r.Use(middleware.RequirePermission(user.PermissionLeaveCreate))
							r.Put("/", leaveHandler.UpdateRequest)
							r.Delete("/", leaveHandler.DeleteRequest)
						})

						r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Put("/decision", leaveHandler.DecideRequest)
					})
				})

				r.With(middleware.RequirePermission(user.PermissionReportsView)).Get("/summary", leaveHandler.GetYearlySummary)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
					r.Post("/check-in", attendanceHandler.CheckIn)
					r.Post("/check-out", attendanceHandler.CheckOut)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/today", attendanceHandler.GetByDate)
					r.Get("/my", attendanceHandler.GetMyAttendance)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", attendanceHandler.List)
			})
		})
	})
	return r
}
