// Package leaderboard expose les classements publics (entraides, crédit,
// assiduité, contributions) avec masquage des pseudos.
package leaderboard

import (
	"context"

	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store"
	"github.com/duckytan/DotCircle/internal/utils"
)

// DefaultLimit taille de classement par défaut
const DefaultLimit = 50

// boardMetrics associe chaque type de classement à sa colonne de projection
var boardMetrics = map[string]store.LeaderboardMetric{
	"helper":      store.MetricTotalHelped,
	"credit":      store.MetricCreditScore,
	"active":      store.MetricStreakDays,
	"contributor": store.MetricTotalPublished,
}

type Service struct {
	Users store.UserStore
}

func NewService(users store.UserStore) *Service {
	return &Service{Users: users}
}

// Board renvoie le classement demandé. Les types inconnus retombent sur le
// classement des helpers ; les périodes sont acceptées mais les projections
// restent cumulatives.
func (s *Service) Board(ctx context.Context, boardType, period string, limit int) (*model.Leaderboard, error) {
	metric, ok := boardMetrics[boardType]
	if !ok {
		boardType = "helper"
		metric = store.MetricTotalHelped
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultLimit
	}

	entries, err := s.Users.TopUsers(ctx, metric, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Nickname = utils.MaskNickname(entries[i].Nickname)
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	return &model.Leaderboard{Type: boardType, Period: period, List: entries}, nil
}

// MyRank position du joueur dans un classement, 0 s'il n'y figure pas
func (s *Service) MyRank(ctx context.Context, boardType, userID string) (int, error) {
	board, err := s.Board(ctx, boardType, "total", DefaultLimit)
	if err != nil {
		return 0, err
	}
	for _, e := range board.List {
		if e.UserID == userID {
			return e.Rank, nil
		}
	}
	return 0, nil
}
