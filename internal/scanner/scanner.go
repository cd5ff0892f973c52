package scanner

import (
	"database/sql"

	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/utils"
	"github.com/lib/pq"
)

// ScanUserProfile scanne une ligne SQL vers un UserProfile
// Utilise les types sql.Null* et les convertit automatiquement
func ScanUserProfile(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.UserProfile, error) {
	var user model.UserProfile
	var avatar sql.NullString
	var lastRecovery sql.NullTime
	var achievements []string

	err := scanner.Scan(
		&user.ID, &user.ExternalID, &user.Nickname, &avatar, &user.IsAdmin,
		&user.CreditScore, &user.CreditLevel,
		&user.DailyStats.Date, &user.DailyStats.Helped, &user.DailyStats.Published, &user.DailyStats.Quota,
		&user.TotalStats.TotalHelped, &user.TotalStats.TotalPublished, &user.TotalStats.StreakDays,
		&user.TotalStats.LastActive, &lastRecovery,
		pq.Array(&achievements),
		&user.Settings.PublicLeaderboard, &user.Settings.EnableContract, &user.Settings.AllowNotification,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Conversions
	user.AvatarURL = utils.NullStringToString(avatar)
	user.LastRecovery = utils.NullTimeToTime(lastRecovery)
	user.Achievements = achievements

	return &user, nil
}

// ScanGiftPackage scanne une ligne SQL vers un GiftPackage
func ScanGiftPackage(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.GiftPackage, error) {
	var pkg model.GiftPackage
	var cancelledAt sql.NullTime

	err := scanner.Scan(
		&pkg.ID, &pkg.CreatorID, &pkg.Type, &pkg.GiftURL, &pkg.GiftID,
		&pkg.ImageFileID, &pkg.ImageURL, &pkg.Status, &pkg.HelpCount, &pkg.MaxHelp,
		&pkg.Contract.Enabled, &pkg.ExposureScore, &cancelledAt,
		&pkg.Cancellation.CancelledBy, &pkg.Cancellation.CancelReason,
		&pkg.CreatedAt, &pkg.UpdatedAt, &pkg.ExpireAt,
	)
	if err != nil {
		return nil, err
	}

	pkg.Cancellation.CancelledAt = utils.NullTimeToPointer(cancelledAt)

	return &pkg, nil
}

// ScanHelpRecord scanne une ligne SQL vers un HelpRecord
func ScanHelpRecord(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.HelpRecord, error) {
	var rec model.HelpRecord
	var fulfilledAt sql.NullTime

	err := scanner.Scan(
		&rec.ID, &rec.PackageID, &rec.CreatorID, &rec.HelperID,
		&rec.ContractEnabled, &rec.Fulfilled, &fulfilledAt,
		&rec.StatsApplied, &rec.CreditApplied, &rec.CreditGranted, &rec.HelpedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.FulfilledAt = utils.NullTimeToPointer(fulfilledAt)

	return &rec, nil
}

// ScanHelpRecordWithHelper scanne un HelpRecord joint avec le profil du helper
func ScanHelpRecordWithHelper(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.HelpRecord, error) {
	var rec model.HelpRecord
	var fulfilledAt sql.NullTime

	err := scanner.Scan(
		&rec.ID, &rec.PackageID, &rec.CreatorID, &rec.HelperID,
		&rec.ContractEnabled, &rec.Fulfilled, &fulfilledAt,
		&rec.StatsApplied, &rec.CreditApplied, &rec.CreditGranted, &rec.HelpedAt,
		&rec.HelperNickname, &rec.HelperAvatarURL,
	)
	if err != nil {
		return nil, err
	}

	rec.FulfilledAt = utils.NullTimeToPointer(fulfilledAt)

	return &rec, nil
}
