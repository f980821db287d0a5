package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/clientdata"
	"github.com/aristath/finsight/internal/config"
	"github.com/aristath/finsight/internal/database"
	"github.com/aristath/finsight/internal/modules/analysis"
	"github.com/aristath/finsight/internal/modules/goals"
	"github.com/aristath/finsight/internal/modules/portfolio"
)

// InitializeDatabase opens finsight.db and applies the schema
func InitializeDatabase(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "finsight",
	})
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("path", db.Path()).Msg("Database initialized")

	return &Container{DB: db}, nil
}

// InitializeRepositories creates every repository on the shared connection
func InitializeRepositories(container *Container, log zerolog.Logger) {
	conn := container.DB.Conn()

	container.ClientDataRepo = clientdata.NewRepository(conn)

	container.UserRepo = portfolio.NewUserRepository(conn, log)
	container.PortfolioRepo = portfolio.NewPortfolioRepository(conn, log)
	container.HoldingRepo = portfolio.NewHoldingRepository(conn, log)
	container.TransactionRepo = portfolio.NewTransactionRepository(conn, log)

	container.GoalRepo = goals.NewRepository(conn, log)

	container.ProfitRepo = analysis.NewProfitRepository(conn, log)
	container.ArchiveRepo = analysis.NewArchiveRepository(conn, log)
}
