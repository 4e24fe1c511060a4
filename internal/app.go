// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "groupcart/internal/api"
	"groupcart/internal/api/handler"
	"groupcart/internal/config"
	"groupcart/internal/repository"
	"groupcart/internal/repository/postgres"
	"groupcart/internal/service"
	"groupcart/internal/util"
	"groupcart/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository  repository.UserRepository
	GroupRepository repository.GroupRepository
	ListRepository  repository.ListRepository
	FavorRepository repository.FavorRepository

	// Services
	AccountService service.AccountService
	ListService    service.ListService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()

	// 2. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := postgres.EnsureSchema(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}
	app.Logger.Info("Database schema ensured.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.GroupRepository = postgres.NewGroupRepository(app.DB)
	app.ListRepository = postgres.NewListRepository(app.DB)
	app.FavorRepository = postgres.NewFavorRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.AccountService = service.NewAccountService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.GroupRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.ListService = service.NewListService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.GroupRepository,
		app.ListRepository,
		app.FavorRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	accountHandler := handler.NewAccountHandler(app.AccountService, app.Logger)
	listHandler := handler.NewListHandler(app.ListService, app.Logger)
	app.HTTPHandler = router.NewRouter(accountHandler, listHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
