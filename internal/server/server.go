package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mkurosawa/marketplace-backend/internal/cache"
	"github.com/mkurosawa/marketplace-backend/internal/config"
	"github.com/mkurosawa/marketplace-backend/internal/handler"
	"github.com/mkurosawa/marketplace-backend/internal/mailer"
	appmw "github.com/mkurosawa/marketplace-backend/internal/middleware"
	"github.com/mkurosawa/marketplace-backend/internal/repository"
	"github.com/mkurosawa/marketplace-backend/internal/service"
	"github.com/mkurosawa/marketplace-backend/internal/storage"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

// New wires repositories, services and handlers around the injected
// database handle. The db lifecycle belongs to the caller.
func New(db *gorm.DB, cfg *config.Config, authMw *appmw.AuthMiddleware, c *cache.Cache, uploader storage.Uploader, m *mailer.Mailer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	corsCfg := middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	e.Use(middleware.CORSWithConfig(corsCfg))

	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	convRepo := repository.NewConversationRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	listingSvc := service.NewListingService(listingRepo, userRepo)
	convSvc := service.NewConversationService(convRepo, listingRepo, userRepo, c, cfg.SupportUID)
	adminSvc := service.NewAdminService(userRepo, listingRepo, statsRepo)
	statsSvc := service.NewStatsService(statsRepo)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(authSvc)
	listingHandler := handler.NewListingHandler(listingSvc)
	convHandler := handler.NewConversationHandler(convSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	uploadHandler := handler.NewUploadHandler(uploader)
	subscribeHandler := handler.NewSubscribeHandler(m)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")
	api.Use(visitCounter(statsSvc))

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/session", authHandler.Session, authMw.RequireAuth)
	api.GET("/me", authHandler.Me, authMw.RequireAuth)

	api.GET("/listings", listingHandler.List)
	api.GET("/listings/:id", listingHandler.Get)
	api.POST("/listings", listingHandler.Create, authMw.RequireAuth)
	api.PUT("/listings/:id", listingHandler.Update, authMw.RequireAuth)
	api.POST("/listings/:id/active", listingHandler.SetActive, authMw.RequireAuth)
	api.DELETE("/listings/:id", listingHandler.Delete, authMw.RequireAuth)
	api.GET("/me/listings", listingHandler.ListMine, authMw.RequireAuth)

	api.POST("/listings/:id/conversations", convHandler.StartFromListing, authMw.RequireAuth)
	api.POST("/support/conversations", convHandler.StartSupport, authMw.RequireAuth)
	api.GET("/conversations", convHandler.List, authMw.RequireAuth)
	api.GET("/conversations/:id/messages", convHandler.ListMessages, authMw.RequireAuth)
	api.POST("/conversations/:id/messages", convHandler.PostMessage, authMw.RequireAuth)
	api.POST("/conversations/:id/read", convHandler.MarkRead, authMw.RequireAuth)
	api.GET("/me/unread", convHandler.Unread, authMw.RequireAuth)

	api.POST("/uploads", uploadHandler.Upload, authMw.RequireAuth)
	api.POST("/subscribe", subscribeHandler.Subscribe)
	api.GET("/users/:uid/public", userHandler.GetPublic)

	admin := api.Group("/admin", authMw.RequireAuth)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:uid/ban", adminHandler.BanUser)
	admin.POST("/users/:uid/unban", adminHandler.UnbanUser)
	admin.POST("/users/:uid/verify", adminHandler.VerifyUser)
	admin.POST("/users/:uid/promote", adminHandler.PromoteUser)
	admin.DELETE("/users/:uid", adminHandler.DeleteUser)
	admin.POST("/listings/:id/active", adminHandler.SetListingActive)
	admin.POST("/listings/:id/approve", adminHandler.SetListingApproved)
	admin.DELETE("/listings/:id", adminHandler.DeleteListing)
	admin.GET("/stats", adminHandler.Stats)

	return &Server{e: e}
}

// visitCounter bumps the site visit counter on page-view GETs.
func visitCounter(svc service.StatsService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodGet {
				svc.RecordVisit(c.Request().Context())
			}
			return next(c)
		}
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
