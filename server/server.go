package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"schallwerk/airtable"
	"schallwerk/config"
	"schallwerk/core/auth"
	"schallwerk/logger"
	"schallwerk/model"
	"schallwerk/notify"
	"schallwerk/repository"
	"schallwerk/service"
	"schallwerk/shopify"
	"schallwerk/simplybook"
	"schallwerk/storage"
)

// handlers bundles the per-role handler groups the router mounts.
type handlers struct {
	auth     *authHandler
	admin    *adminHandler
	teacher  *teacherHandler
	staff    *staffHandler
	engineer *engineerHandler
	parent   *parentHandler
}

// newRouter mounts every endpoint. Each role's API lives under its own
// prefix behind its own session middleware.
func newRouter(jwt *auth.Manager, h *handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware, loggingMiddleware)

	// Logins and the parent registration are the only unauthenticated
	// endpoints.
	router.HandleFunc("/api/auth/admin/login", h.auth.loginAccount(model.RoleAdmin)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/staff/login", h.auth.loginAccount(model.RoleStaff)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/engineer/login", h.auth.loginAccount(model.RoleEngineer)).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/teacher/login", h.auth.LoginTeacher).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/parent/register", h.auth.RegisterParent).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/parent/login", h.auth.LoginParent).Methods(http.MethodPost)
	for _, role := range []model.Role{model.RoleAdmin, model.RoleTeacher, model.RoleStaff, model.RoleEngineer, model.RoleParent} {
		router.HandleFunc("/api/auth/"+string(role)+"/logout", h.auth.logout(role)).Methods(http.MethodPost)
	}

	admin := router.PathPrefix("/api/admin").Subrouter()
	admin.Use(requireRole(jwt, model.RoleAdmin))
	admin.HandleFunc("/events", h.admin.ListEvents).Methods(http.MethodGet)
	admin.HandleFunc("/events", h.admin.CreateEvent).Methods(http.MethodPost)
	admin.HandleFunc("/events/{id}/release-schulsong", h.admin.ReleaseSchulsong).Methods(http.MethodPost)
	admin.HandleFunc("/events/{id}/publish", h.admin.PublishEvent).Methods(http.MethodPost)
	admin.HandleFunc("/events/{id}/portal-status", h.admin.UpdatePortalStatus).Methods(http.MethodPut)
	admin.HandleFunc("/bookings", h.admin.ListBookings).Methods(http.MethodGet)
	admin.HandleFunc("/tasks/refresh", h.admin.RefreshTasks).Methods(http.MethodPost)
	admin.HandleFunc("/tasks/{id}/complete", h.admin.CompleteTask).Methods(http.MethodPost)

	teacher := router.PathPrefix("/api/teacher").Subrouter()
	teacher.Use(requireRole(jwt, model.RoleTeacher))
	teacher.HandleFunc("/event", h.teacher.GetEvent).Methods(http.MethodGet)
	teacher.HandleFunc("/classes", h.teacher.ListClasses).Methods(http.MethodGet)
	teacher.HandleFunc("/songs", h.teacher.ListSongs).Methods(http.MethodGet)
	teacher.HandleFunc("/songs/{id}/approval", h.teacher.SetSongApproval).Methods(http.MethodPut)
	teacher.HandleFunc("/schulsong/approve", h.teacher.ApproveSchulsong).Methods(http.MethodPost)
	teacher.HandleFunc("/groups", h.teacher.CreateGroup).Methods(http.MethodPost)
	teacher.HandleFunc("/clothing-order", h.teacher.GetClothingOrder).Methods(http.MethodGet)
	teacher.HandleFunc("/clothing-order", h.teacher.SubmitClothingOrder).Methods(http.MethodPost)

	staff := router.PathPrefix("/api/staff").Subrouter()
	staff.Use(requireRole(jwt, model.RoleStaff))
	staff.HandleFunc("/events", h.staff.ListEvents).Methods(http.MethodGet)
	staff.HandleFunc("/events/{id}/uploads/presign", h.staff.PresignUpload).Methods(http.MethodPost)
	staff.HandleFunc("/events/{id}/uploads/confirm", h.staff.ConfirmUpload).Methods(http.MethodPost)
	staff.HandleFunc("/events/{id}/progress", h.staff.Progress).Methods(http.MethodGet)

	engineer := router.PathPrefix("/api/engineer").Subrouter()
	engineer.Use(requireRole(jwt, model.RoleEngineer))
	engineer.HandleFunc("/events", h.engineer.ListEvents).Methods(http.MethodGet)
	engineer.HandleFunc("/events/{id}/assignments", h.engineer.EnsureAssignments).Methods(http.MethodPost)
	engineer.HandleFunc("/events/{id}/raw-files", h.engineer.ListRawFiles).Methods(http.MethodGet)
	engineer.HandleFunc("/events/{id}/songs/{songId}/uploads/presign", h.engineer.PresignUpload).Methods(http.MethodPost)
	engineer.HandleFunc("/events/{id}/songs/{songId}/uploads/confirm", h.engineer.ConfirmUpload).Methods(http.MethodPost)

	parent := router.PathPrefix("/api/parent").Subrouter()
	parent.Use(requireRole(jwt, model.RoleParent))
	parent.HandleFunc("/previews", h.parent.ListPreviews).Methods(http.MethodGet)
	parent.HandleFunc("/checkout", h.parent.CreateCheckout).Methods(http.MethodPost)

	return router
}

// Start wires every component from configuration and runs the HTTP server
// until SIGINT/SIGTERM, then shuts down gracefully.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	store, err := storage.NewR2(initCtx, storage.Config{
		Endpoint:  cfg.R2Endpoint,
		AccessKey: cfg.R2AccessKey,
		SecretKey: cfg.R2SecretKey,
		Bucket:    cfg.R2Bucket,
		Region:    cfg.R2Region,
		UseSSL:    cfg.R2UseSSL,
	})
	initCancel()
	if err != nil {
		logger.Fatal("[Startup] failed to connect to object storage", logger.ErrorField(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("[Startup] failed to connect to Redis", logger.ErrorField(err))
	}
	defer rdb.Close()

	var mailer notify.EmailService
	if cfg.SendgridAPIKey != "" {
		mailer = notify.NewSendgridService(cfg.SendgridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	} else {
		logger.Warn("[Startup] SENDGRID_API_KEY not set, emails go to the log only")
		mailer = notify.NewConsoleService()
	}
	outbox := notify.NewOutbox(rdb, mailer)
	go outbox.Run(ctx)

	at := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseID)
	eventRepo := repository.NewAirtableEventRepository(at)
	classRepo := repository.NewAirtableClassRepository(at)
	groupRepo := repository.NewAirtableGroupRepository(at)
	songRepo := repository.NewAirtableSongRepository(at)
	fileRepo := repository.NewAirtableAudioFileRepository(at)
	orderRepo := repository.NewAirtableOrderRepository(at)
	taskRepo := repository.NewAirtableTaskRepository(at)
	accountRepo := repository.NewAirtableAccountRepository(at)
	parentRepo := repository.NewAirtableParentRepository(at)

	booking := simplybook.NewClient(simplybook.Config{
		Endpoint: cfg.SimplybookEndpoint,
		Company:  cfg.SimplybookCompany,
		APIKey:   cfg.SimplybookAPIKey,
		User:     cfg.SimplybookUser,
		Password: cfg.SimplybookPassword,
	})
	shop := shopify.NewClient(cfg.ShopifyDomain, cfg.ShopifyStorefrontToken)

	jwt := auth.NewManager(map[model.Role]string{
		model.RoleAdmin:    cfg.AdminJWTSecret,
		model.RoleTeacher:  cfg.TeacherJWTSecret,
		model.RoleStaff:    cfg.StaffJWTSecret,
		model.RoleEngineer: cfg.EngineerJWTSecret,
		model.RoleParent:   cfg.ParentJWTSecret,
	}, cfg.SessionTTL)

	authSvc := service.NewAuthService(accountRepo, eventRepo)
	teacherSvc := service.NewTeacherService(eventRepo, classRepo, groupRepo, songRepo, orderRepo,
		outbox, cfg.AdminEmail, cfg.SchulsongTwoStep)
	staffSvc := service.NewStaffService(eventRepo, classRepo, fileRepo, store)
	engineerSvc := service.NewEngineerService(eventRepo, songRepo, fileRepo, store,
		outbox, cfg.AdminEmail, cfg.EngineerMichaID, cfg.EngineerJakobID)
	adminSvc := service.NewAdminService(eventRepo, songRepo, taskRepo, orderRepo, shop, booking)
	parentSvc := service.NewParentService(eventRepo, classRepo, songRepo, parentRepo, store, shop, outbox)

	router := newRouter(jwt, &handlers{
		auth:     newAuthHandler(jwt, authSvc, parentSvc),
		admin:    newAdminHandler(adminSvc),
		teacher:  newTeacherHandler(teacherSvc),
		staff:    newStaffHandler(staffSvc),
		engineer: newEngineerHandler(engineerSvc),
		parent:   newParentHandler(parentSvc),
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("[Startup] server listening", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("[Startup] server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("[Shutdown] signal received, shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("[Shutdown] forced shutdown", logger.ErrorField(err))
	}
	logger.Info("[Shutdown] server stopped")
}
