package packages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duckytan/DotCircle/internal/credit"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store/memory"
	"github.com/duckytan/DotCircle/internal/utils"
)

const validGiftURL = "https://yb.tencent.com/fes/red/claim?red_packet_id=rp123&channel=share"

type uploaderStub struct {
	calls int
}

func (u *uploaderStub) UploadPackageImage(ctx context.Context, fileID, packageID string) (string, error) {
	u.calls++
	return "https://cdn.example.com/" + packageID + ".jpg", nil
}

func newService(t *testing.T) (*Service, *memory.Store, *uploaderStub) {
	t.Helper()
	db := memory.New()
	up := &uploaderStub{}
	svc := NewService(db, db, credit.NewService(db), up)
	return svc, db, up
}

// eligibleUser utilisateur prêt à publier : score voulu, tâche du jour faite
func eligibleUser(t *testing.T, db *memory.Store, score int) *model.UserProfile {
	t.Helper()
	ctx := context.Background()
	u := &model.UserProfile{
		Nickname:    "发布者",
		CreditScore: score,
		CreditLevel: string(credit.LevelForScore(score)),
		DailyStats: model.DailyStats{
			Date:   utils.TodayString(),
			Helped: model.NeedHelpCount,
			Quota:  credit.QuotaForScore(score),
		},
	}
	require.NoError(t, db.CreateUser(ctx, u))
	return u
}

func TestPublishLink(t *testing.T) {
	svc, db, _ := newService(t)
	creator := eligibleUser(t, db, 85)

	pkg, err := svc.Publish(context.Background(), creator, PublishRequest{
		Type:    model.PackageTypeLink,
		GiftURL: validGiftURL,
	})
	require.NoError(t, err)
	require.Equal(t, "rp123", pkg.GiftID)
	require.Equal(t, model.DefaultMaxHelp, pkg.MaxHelp)
	require.Equal(t, model.StatusActive, pkg.Status, "GOOD publie sans modération")
	require.Greater(t, pkg.ExposureScore, 0)
	require.WithinDuration(t, pkg.CreatedAt.Add(model.PackageTTL), pkg.ExpireAt, time.Second)

	// compteur de publication incrémenté
	fresh, err := db.GetUser(context.Background(), creator.ID)
	require.NoError(t, err)
	require.Equal(t, 1, fresh.DailyStats.Published)
	require.Equal(t, 1, fresh.TotalStats.TotalPublished)
}

func TestPublishPendingWithoutAutoAudit(t *testing.T) {
	svc, db, _ := newService(t)
	creator := eligibleUser(t, db, 65) // NORMAL

	pkg, err := svc.Publish(context.Background(), creator, PublishRequest{
		Type:    model.PackageTypeLink,
		GiftURL: validGiftURL,
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, pkg.Status)
}

func TestPublishGates(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)

	t.Run("insufficient credit", func(t *testing.T) {
		creator := eligibleUser(t, db, 19)
		_, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
		require.ErrorIs(t, err, model.ErrInsufficientCredit)
	})

	t.Run("restricted level has no quota", func(t *testing.T) {
		// 20 passe la barrière de score mais RESTRICTED a un quota nul
		creator := eligibleUser(t, db, 20)
		_, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
		require.ErrorIs(t, err, model.ErrQuotaExceeded)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		creator := eligibleUser(t, db, 65)
		creator.DailyStats.Published = creator.DailyStats.Quota
		_, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
		require.ErrorIs(t, err, model.ErrQuotaExceeded)
	})

	t.Run("help task incomplete", func(t *testing.T) {
		creator := eligibleUser(t, db, 65)
		creator.DailyStats.Helped = 1
		_, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
		require.ErrorIs(t, err, model.ErrHelpTaskIncomplete)
	})

	t.Run("invalid link", func(t *testing.T) {
		creator := eligibleUser(t, db, 65)
		_, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: "https://evil.example.com/claim?red_packet_id=x"})
		require.ErrorIs(t, err, model.ErrInvalidLink)
	})
}

func TestPublishDuplicateGift(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	creator := eligibleUser(t, db, 95)

	_, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
	require.NoError(t, err)

	other := eligibleUser(t, db, 95)
	_, err = svc.Publish(ctx, other, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
	require.ErrorIs(t, err, model.ErrDuplicateGift)
}

func TestPublishImage(t *testing.T) {
	svc, db, up := newService(t)
	creator := eligibleUser(t, db, 95)

	pkg, err := svc.Publish(context.Background(), creator, PublishRequest{
		Type:        model.PackageTypeImage,
		ImageFileID: "wxfile://tmp123",
	})
	require.NoError(t, err)
	require.Equal(t, 1, up.calls)
	require.Equal(t, "wxfile://tmp123", pkg.ImageFileID)
	require.Equal(t, "https://cdn.example.com/"+pkg.ID+".jpg", pkg.ImageURL)
	require.Empty(t, pkg.GiftID)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	creator := eligibleUser(t, db, 95)
	stranger := eligibleUser(t, db, 95)
	admin := eligibleUser(t, db, 95)
	admin.IsAdmin = true

	pkg, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Cancel(ctx, pkg.ID, stranger, "pas le mien"), model.ErrForbidden)
	require.NoError(t, svc.Cancel(ctx, pkg.ID, creator, "plus besoin"))

	fresh, err := db.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusCancelled, fresh.Status)
	require.Equal(t, creator.ID, fresh.Cancellation.CancelledBy)

	// idempotent une fois annulé
	require.NoError(t, svc.Cancel(ctx, pkg.ID, admin, "déjà fait"))

	// un paquet complété ne s'annule pas
	completed, err := svc.Publish(ctx, admin, PublishRequest{
		Type:    model.PackageTypeLink,
		GiftURL: "https://yb.tencent.com/fes/red/claim?red_packet_id=other",
	})
	require.NoError(t, err)
	ok, err := db.SetStatus(ctx, completed.ID, model.StatusActive, model.StatusCompleted)
	require.NoError(t, err)
	require.True(t, ok)
	require.ErrorIs(t, svc.Cancel(ctx, completed.ID, admin, ""), model.ErrAlreadyCompleted)
}

func TestAdjustHelpCount(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	creator := eligibleUser(t, db, 95)
	stranger := eligibleUser(t, db, 95)

	pkg, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
	require.NoError(t, err)

	_, err = svc.AdjustHelpCount(ctx, pkg.ID, stranger, 3, "hors plateforme")
	require.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.AdjustHelpCount(ctx, pkg.ID, creator, 0, "retour arrière")
	require.ErrorIs(t, err, model.ErrCountNotIncreasing)

	_, err = svc.AdjustHelpCount(ctx, pkg.ID, creator, model.DefaultMaxHelp+1, "trop")
	require.ErrorIs(t, err, model.ErrCountExceedsMax)

	adjusted, err := svc.AdjustHelpCount(ctx, pkg.ID, creator, 4, "places consommées hors plateforme")
	require.NoError(t, err)
	require.Equal(t, 4, adjusted.HelpCount)

	audit, err := db.ListAdjustments(ctx, pkg.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	require.Equal(t, 0, audit[0].FromCount)
	require.Equal(t, 4, audit[0].ToCount)
	require.Equal(t, creator.ID, audit[0].AdjustedBy)

	// corriger jusqu'à la capacité complète le paquet
	full, err := svc.AdjustHelpCount(ctx, pkg.ID, creator, model.DefaultMaxHelp, "tout est parti")
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, full.Status)
}

// contestedStore simule un compteur disputé en permanence : chaque correction
// échoue comme si une entraide concurrente venait de passer.
type contestedStore struct {
	*memory.Store
}

func (s *contestedStore) AdjustHelpCount(ctx context.Context, packageID string, fromCount, toCount int, adj model.HelpAdjustment) (bool, error) {
	return false, nil
}

func TestAdjustHelpCountConflict(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := NewService(&contestedStore{db}, db, credit.NewService(db), &uploaderStub{})
	creator := eligibleUser(t, db, 95)

	pkg, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
	require.NoError(t, err)

	_, err = svc.AdjustHelpCount(ctx, pkg.ID, creator, 3, "hors plateforme")
	require.ErrorIs(t, err, model.ErrStoreConflict)
}

func TestReview(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	creator := eligibleUser(t, db, 65)

	pkg, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, pkg.Status)

	require.NoError(t, svc.Review(ctx, pkg.ID, true))
	fresh, err := db.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, fresh.Status)

	// plus en attente : une seconde décision échoue
	require.ErrorIs(t, svc.Review(ctx, pkg.ID, false), model.ErrPackageNotActive)
}

func TestFulfillContract(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	creator := eligibleUser(t, db, 95)
	helper := eligibleUser(t, db, 65)

	pkg, err := svc.Publish(ctx, creator, PublishRequest{
		Type:            model.PackageTypeLink,
		GiftURL:         validGiftURL,
		ContractEnabled: true,
	})
	require.NoError(t, err)

	claimed, err := db.ClaimSlot(ctx, pkg.ID, 0, model.HelpRecord{
		PackageID:       pkg.ID,
		CreatorID:       creator.ID,
		HelperID:        helper.ID,
		ContractEnabled: true,
		StatsApplied:    true,
		CreditApplied:   true,
		HelpedAt:        time.Now(),
	})
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, svc.FulfillContract(ctx, pkg.ID, helper.ID))

	rec, err := db.GetHelpRecord(ctx, pkg.ID, helper.ID)
	require.NoError(t, err)
	require.True(t, rec.Fulfilled)
	require.NotNil(t, rec.FulfilledAt)

	// bonus CONTRACT_FULFILL crédité
	fresh, err := db.GetUser(ctx, helper.ID)
	require.NoError(t, err)
	require.Equal(t, 65+2, fresh.CreditScore)

	// déjà honoré
	require.ErrorIs(t, svc.FulfillContract(ctx, pkg.ID, helper.ID), model.ErrContractFulfilled)
	// helper inconnu sur ce paquet
	require.ErrorIs(t, svc.FulfillContract(ctx, pkg.ID, creator.ID), model.ErrPackageNotFound)
}

func TestDetailMasksGiftForStrangers(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	creator := eligibleUser(t, db, 95)
	helper := eligibleUser(t, db, 65)
	stranger := eligibleUser(t, db, 65)

	pkg, err := svc.Publish(ctx, creator, PublishRequest{Type: model.PackageTypeLink, GiftURL: validGiftURL})
	require.NoError(t, err)

	claimed, err := db.ClaimSlot(ctx, pkg.ID, 0, model.HelpRecord{
		PackageID: pkg.ID, CreatorID: creator.ID, HelperID: helper.ID,
		StatsApplied: true, CreditApplied: true, HelpedAt: time.Now(),
	})
	require.NoError(t, err)
	require.True(t, claimed)

	forCreator, err := svc.Detail(ctx, pkg.ID, creator)
	require.NoError(t, err)
	require.Equal(t, validGiftURL, forCreator.GiftURL)
	require.Len(t, forCreator.Helpers, 1)
	require.NotNil(t, forCreator.Publisher)
	require.Equal(t, creator.ID, forCreator.Publisher.ID)

	forHelper, err := svc.Detail(ctx, pkg.ID, helper)
	require.NoError(t, err)
	require.Equal(t, validGiftURL, forHelper.GiftURL)

	forStranger, err := svc.Detail(ctx, pkg.ID, stranger)
	require.NoError(t, err)
	require.Empty(t, forStranger.GiftURL)
}
