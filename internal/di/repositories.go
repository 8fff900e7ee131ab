package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/clientdata"
	"github.com/aristath/portfolio-tracker/internal/modules/portfolio"
)

// InitializeRepositories creates the repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.ClientDataDB == nil {
		return fmt.Errorf("client data database not initialized")
	}

	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn())

	if container.PortfolioDB != nil {
		container.PortfolioRepo = portfolio.NewSQLiteRepository(container.PortfolioDB.Conn(), log)
	} else {
		container.PortfolioRepo = portfolio.NewMemoryRepository()
		log.Warn().Msg("Using in-memory portfolio store; portfolios are lost on restart")
	}

	return nil
}
