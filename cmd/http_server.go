package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/activity"
	activitydb "github.com/taskcore/task-management/internal/activity/postgres"
	"github.com/taskcore/task-management/internal/auth"
	authdb "github.com/taskcore/task-management/internal/auth/postgres"
	"github.com/taskcore/task-management/internal/core/events"
	"github.com/taskcore/task-management/internal/department"
	departmentdb "github.com/taskcore/task-management/internal/department/postgres"
	"github.com/taskcore/task-management/internal/notification"
	notificationdb "github.com/taskcore/task-management/internal/notification/postgres"
	"github.com/taskcore/task-management/internal/permission"
	permissiondb "github.com/taskcore/task-management/internal/permission/postgres"
	"github.com/taskcore/task-management/internal/role"
	roledb "github.com/taskcore/task-management/internal/role/postgres"
	"github.com/taskcore/task-management/internal/task"
	taskdb "github.com/taskcore/task-management/internal/task/postgres"
	"github.com/taskcore/task-management/internal/transport/rest"
	"github.com/taskcore/task-management/internal/transport/swagger"
	"github.com/taskcore/task-management/internal/user"
	userdb "github.com/taskcore/task-management/internal/user/postgres"
	"github.com/taskcore/task-management/internal/workflow"
	workflowdb "github.com/taskcore/task-management/internal/workflow/postgres"
	"github.com/taskcore/task-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		log.Error("openapi spec validation failed", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		log.Error("failed to initialize orm", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	handlers := buildHandlers(cfg, gormDB, log)
	rest.RegisterAllRoutes(router, db.DB, handlers, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		if err := db.Close(); err != nil {
			log.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("server stopped")
}

// buildHandlers wires repositories, services and event subscribers.
func buildHandlers(cfg *internal.Config, gormDB *gorm.DB, log *slog.Logger) rest.Handlers {
	permRepo := permissiondb.NewPermissionRepository(gormDB)
	roleRepo := roledb.NewRoleRepository(gormDB)
	userRepo := userdb.NewUserRepository(gormDB)
	authRepo := authdb.NewAuthRepository(gormDB)
	statusRepo := workflowdb.NewStatusRepository(gormDB)
	transitionRepo := workflowdb.NewTransitionRepository(gormDB)
	taskRepo := taskdb.NewTaskRepository(gormDB)
	commentRepo := taskdb.NewCommentRepository(gormDB)
	activityRepo := activitydb.NewActivityRepository(gormDB)
	notificationRepo := notificationdb.NewNotificationRepository(gormDB)
	ruleRepo := notificationdb.NewRuleRepository(gormDB)
	departmentRepo := departmentdb.NewDepartmentRepository(gormDB)

	departmentService := department.NewService(departmentRepo, log)
	ruleService := notification.NewRuleService(ruleRepo, roleRepo, log)

	bus := events.NewEventBus(log)
	activity.NewRecorder(activityRepo, log).Register(bus)
	notification.NewDispatcher(notificationRepo, taskRepo, userRepo, ruleRepo, departmentService, log).Register(bus)

	resolver := auth.NewResolver(roleRepo, permRepo, log)
	gate := auth.NewGate(resolver, log)
	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, log)

	permService := permission.NewService(permRepo, log)
	roleService := role.NewService(roleRepo, permRepo, log)
	hashPassword := func(password string) (string, error) {
		return auth.HashPassword(password, cfg.Security.BCryptCost)
	}
	userService := user.NewService(userRepo, roleRepo, hashPassword, log)
	workflowService := workflow.NewService(statusRepo, transitionRepo, roleRepo, log)
	machine := workflow.NewStatusMachine(taskRepo, commentRepo, statusRepo, transitionRepo, bus, log)
	taskService := task.NewService(taskRepo, commentRepo, workflowService, log)

	return rest.Handlers{
		Auth:         auth.NewHandler(authService, gate),
		Gate:         gate,
		Permission:   permission.NewHandler(permService),
		Role:         role.NewHandler(roleService),
		User:         user.NewHandler(userService),
		Workflow:     workflow.NewHandler(workflowService, machine),
		Task:         task.NewHandler(taskService),
		Department:   department.NewHandler(departmentService),
		Notification: notification.NewHandler(notificationRepo, ruleService),
		Activity:     activity.NewHandler(activityRepo),
	}
}

// initDB opens the pgx-backed connection pool used for health checks and raw
// queries.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-open pool so both share one set of
// connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
