package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duckytan/DotCircle/internal/middleware"
	"github.com/duckytan/DotCircle/internal/utils"
)

// GetLeaderboard classement public (helper, credit, active, contributor)
func GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	boardType := mux.Vars(r)["type"]
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "total"
	}
	limit := utils.QueryInt(r, "limit", 0)

	board, err := leaderboardSvc.Board(r.Context(), boardType, period, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	// Rang du demandeur s'il est connecté
	if user, err := middleware.GetUserFromContext(r); err == nil {
		rank, _ := leaderboardSvc.MyRank(r.Context(), board.Type, user.ID)
		utils.Success(w, map[string]interface{}{
			"leaderboard": board,
			"myRank":      rank,
		})
		return
	}

	utils.Success(w, board)
}
