package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	model "github.com/duckytan/DotCircle/internal/models"
)

func TestNewUserProfileDefaults(t *testing.T) {
	user := newUserProfile(LoginRequest{
		ExternalID: "wx_openid_123",
		Nickname:   "新用户",
		AvatarURL:  "https://cdn.example.com/a.jpg",
	})

	require.NotEmpty(t, user.ID)
	require.Equal(t, "wx_openid_123", user.ExternalID)
	require.Equal(t, "新用户", user.Nickname)
	require.Equal(t, "https://cdn.example.com/a.jpg", user.AvatarURL)

	// le score en cache part de zéro, l'écriture INIT du registre l'amène
	// à sa valeur de départ
	require.Equal(t, 0, user.CreditScore)

	require.Equal(t, []string{model.AchievementNewbie}, user.Achievements)
	require.True(t, user.Settings.PublicLeaderboard)
	require.True(t, user.Settings.EnableContract)
	require.True(t, user.Settings.AllowNotification)
	require.False(t, user.CreatedAt.IsZero())
	require.False(t, user.TotalStats.LastActive.IsZero())
}
