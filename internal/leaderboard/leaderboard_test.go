package leaderboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store/memory"
)

func seedUsers(t *testing.T, db *memory.Store) {
	t.Helper()
	users := []*model.UserProfile{
		{Nickname: "张伟明", CreditScore: 95, TotalStats: model.TotalStats{TotalHelped: 30, StreakDays: 10}, Settings: model.UserSettings{PublicLeaderboard: true}},
		{Nickname: "李小红", CreditScore: 70, TotalStats: model.TotalStats{TotalHelped: 50, StreakDays: 2}, Settings: model.UserSettings{PublicLeaderboard: true}},
		{Nickname: "王强", CreditScore: 88, TotalStats: model.TotalStats{TotalHelped: 12, StreakDays: 21}, Settings: model.UserSettings{PublicLeaderboard: true}},
		{Nickname: "隐身者", CreditScore: 99, TotalStats: model.TotalStats{TotalHelped: 100}, Settings: model.UserSettings{PublicLeaderboard: false}},
	}
	for _, u := range users {
		require.NoError(t, db.CreateUser(context.Background(), u))
	}
}

func TestBoardHelperRanking(t *testing.T) {
	db := memory.New()
	seedUsers(t, db)
	svc := NewService(db)

	board, err := svc.Board(context.Background(), "helper", "total", 10)
	require.NoError(t, err)
	require.Equal(t, "helper", board.Type)
	require.Len(t, board.List, 3, "les profils non publics restent hors classement")

	require.Equal(t, 1, board.List[0].Rank)
	require.Equal(t, 50, board.List[0].Score)
	require.Equal(t, "李*红", board.List[0].Nickname, "les pseudos sortent masqués")
	require.Equal(t, 2, board.List[1].Rank)
	require.Equal(t, 30, board.List[1].Score)
}

func TestBoardCreditRanking(t *testing.T) {
	db := memory.New()
	seedUsers(t, db)
	svc := NewService(db)

	board, err := svc.Board(context.Background(), "credit", "total", 2)
	require.NoError(t, err)
	require.Len(t, board.List, 2)
	require.Equal(t, 95, board.List[0].Score)
	require.Equal(t, 88, board.List[1].Score)
}

func TestBoardUnknownTypeFallsBack(t *testing.T) {
	db := memory.New()
	seedUsers(t, db)
	svc := NewService(db)

	board, err := svc.Board(context.Background(), "bogus", "total", 10)
	require.NoError(t, err)
	require.Equal(t, "helper", board.Type)
}

func TestBoardEmpty(t *testing.T) {
	svc := NewService(memory.New())
	board, err := svc.Board(context.Background(), "active", "total", 10)
	require.NoError(t, err)
	require.NotNil(t, board.List)
	require.Empty(t, board.List)
}

func TestMyRank(t *testing.T) {
	db := memory.New()
	seedUsers(t, db)
	svc := NewService(db)

	board, err := svc.Board(context.Background(), "active", "total", 10)
	require.NoError(t, err)
	first := board.List[0]

	rank, err := svc.MyRank(context.Background(), "active", first.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, rank)

	rank, err = svc.MyRank(context.Background(), "active", "ghost")
	require.NoError(t, err)
	require.Equal(t, 0, rank)
}
