package di

import (
	"github.com/aristath/finsight/internal/modules/portfolio"
	"github.com/aristath/finsight/internal/session"
)

// sessionLookup joins the user and portfolio repositories for the session
// middleware fallback
type sessionLookup struct {
	users      *portfolio.UserRepository
	portfolios *portfolio.PortfolioRepository
}

func (l sessionLookup) RecentUserID() (int64, error) {
	return l.users.RecentUserID()
}

func (l sessionLookup) RecentPortfolioID(userID int64) (int64, error) {
	return l.portfolios.RecentPortfolioID(userID)
}

// SessionLookup returns the fallback resolver used by session.Middleware
func (c *Container) SessionLookup() session.Lookup {
	return sessionLookup{users: c.UserRepo, portfolios: c.PortfolioRepo}
}
