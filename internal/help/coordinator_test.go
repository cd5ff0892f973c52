package help

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duckytan/DotCircle/internal/credit"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store/memory"
	"github.com/duckytan/DotCircle/internal/utils"
)

type fixture struct {
	db    *memory.Store
	coord *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	creditSvc := credit.NewService(db)
	return &fixture{db: db, coord: NewCoordinator(db, db, creditSvc)}
}

func (f *fixture) user(t *testing.T, nickname string) *model.UserProfile {
	t.Helper()
	ctx := context.Background()
	u := &model.UserProfile{
		Nickname:   nickname,
		DailyStats: model.DailyStats{Date: utils.TodayString(), Quota: 2},
	}
	require.NoError(t, f.db.CreateUser(ctx, u))
	_, err := f.coord.Credit.Bootstrap(ctx, u.ID)
	require.NoError(t, err)
	return u
}

func (f *fixture) pkg(t *testing.T, creator *model.UserProfile, status model.PackageStatus, helpCount int) *model.GiftPackage {
	t.Helper()
	now := time.Now()
	p := &model.GiftPackage{
		ID:        "pkg_" + creator.ID + "_" + string(status),
		CreatorID: creator.ID,
		Type:      model.PackageTypeLink,
		GiftURL:   "https://yb.tencent.com/fes/red/claim?red_packet_id=abc",
		GiftID:    "abc",
		Status:    status,
		HelpCount: helpCount,
		MaxHelp:   model.DefaultMaxHelp,
		CreatedAt: now,
		UpdatedAt: now,
		ExpireAt:  now.Add(model.PackageTTL),
	}
	require.NoError(t, f.db.CreatePackage(context.Background(), p))
	return p
}

func TestHelpSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.user(t, "发布者")
	helper := f.user(t, "帮助者")
	pkg := f.pkg(t, creator, model.StatusActive, 0)

	res, err := f.coord.Help(ctx, pkg.ID, helper.ID)
	require.NoError(t, err)
	require.Equal(t, 1, res.HelpCount)
	require.Equal(t, model.StatusActive, res.Status)
	require.True(t, res.CreditAdded)
	require.Equal(t, pkg.GiftURL, res.GiftURL)

	// effets secondaires appliqués
	fresh, err := f.db.GetUser(ctx, helper.ID)
	require.NoError(t, err)
	require.Equal(t, 1, fresh.DailyStats.Helped)
	require.Equal(t, 1, fresh.TotalStats.TotalHelped)
	require.Equal(t, credit.DefaultScore+1, fresh.CreditScore)

	rec, err := f.db.GetHelpRecord(ctx, pkg.ID, helper.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.True(t, rec.StatsApplied)
	require.True(t, rec.CreditApplied)
	require.True(t, rec.CreditGranted)
}

func TestHelpDailyCreditCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	helper := f.user(t, "帮助者")

	var results []*model.HelpResult
	for i := 0; i < 3; i++ {
		creator := f.user(t, "发布者")
		pkg := f.pkg(t, creator, model.StatusActive, 0)
		res, err := f.coord.Help(ctx, pkg.ID, helper.ID)
		require.NoError(t, err)
		results = append(results, res)
	}

	require.True(t, results[0].CreditAdded)
	require.True(t, results[1].CreditAdded)
	require.False(t, results[2].CreditAdded, "la troisième entraide du jour ne crédite plus")

	fresh, err := f.db.GetUser(ctx, helper.ID)
	require.NoError(t, err)
	require.Equal(t, 3, fresh.DailyStats.Helped)
	require.Equal(t, credit.DefaultScore+2, fresh.CreditScore)
}

func TestHelpErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.user(t, "发布者")
	helper := f.user(t, "帮助者")

	t.Run("package not found", func(t *testing.T) {
		_, err := f.coord.Help(ctx, "nope", helper.ID)
		require.ErrorIs(t, err, model.ErrPackageNotFound)
	})

	t.Run("helper not found", func(t *testing.T) {
		pkg := f.pkg(t, creator, model.StatusActive, 0)
		_, err := f.coord.Help(ctx, pkg.ID, "ghost")
		require.ErrorIs(t, err, model.ErrHelperNotFound)
	})

	t.Run("self help", func(t *testing.T) {
		pkg := f.pkg(t, creator, model.StatusActive, 0)
		_, err := f.coord.Help(ctx, pkg.ID, creator.ID)
		require.ErrorIs(t, err, model.ErrSelfHelp)
	})

	t.Run("pending package", func(t *testing.T) {
		pkg := f.pkg(t, creator, model.StatusPending, 0)
		_, err := f.coord.Help(ctx, pkg.ID, helper.ID)
		require.ErrorIs(t, err, model.ErrPackageNotActive)
	})

	t.Run("cancelled package", func(t *testing.T) {
		pkg := f.pkg(t, creator, model.StatusCancelled, 0)
		_, err := f.coord.Help(ctx, pkg.ID, helper.ID)
		require.ErrorIs(t, err, model.ErrPackageNotActive)
	})

	t.Run("completed package is full", func(t *testing.T) {
		pkg := f.pkg(t, creator, model.StatusCompleted, model.DefaultMaxHelp)
		_, err := f.coord.Help(ctx, pkg.ID, helper.ID)
		require.ErrorIs(t, err, model.ErrPackageFull)
	})

	// L'état prime sur l'identité du demandeur : le créateur qui sonde son
	// propre paquet en attente voit NOT_ACTIVE, pas SELF_HELP.
	t.Run("own pending package", func(t *testing.T) {
		pkg := f.pkg(t, creator, model.StatusPending, 0)
		_, err := f.coord.Help(ctx, pkg.ID, creator.ID)
		require.ErrorIs(t, err, model.ErrPackageNotActive)
	})
}

func TestHelpIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.user(t, "发布者")
	helper := f.user(t, "帮助者")
	pkg := f.pkg(t, creator, model.StatusActive, 0)

	_, err := f.coord.Help(ctx, pkg.ID, helper.ID)
	require.NoError(t, err)

	_, err = f.coord.Help(ctx, pkg.ID, helper.ID)
	require.ErrorIs(t, err, model.ErrAlreadyHelped)

	// le compteur n'a pas bougé
	fresh, err := f.db.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	require.Equal(t, 1, fresh.HelpCount)
}

func TestHelpLastSlotRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.user(t, "发布者")
	pkg := f.pkg(t, creator, model.StatusActive, model.DefaultMaxHelp-1)

	const racers = 15
	results := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		helper := f.user(t, "帮助者")
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.coord.Help(ctx, pkg.ID, id)
			results <- err
		}(helper.ID)
	}
	wg.Wait()
	close(results)

	wins, fulls := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, model.ErrPackageFull)
			fulls++
		}
	}
	require.Equal(t, 1, wins, "une seule entraide gagne la dernière place")
	require.Equal(t, racers-1, fulls)

	fresh, err := f.db.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, fresh.Status)
	require.Equal(t, model.DefaultMaxHelp, fresh.HelpCount)

	helpers, err := f.db.ListHelpers(ctx, pkg.ID)
	require.NoError(t, err)
	require.Len(t, helpers, 1)
}

func TestHelpResumesPendingSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.user(t, "发布者")
	helper := f.user(t, "帮助者")
	pkg := f.pkg(t, creator, model.StatusActive, 0)

	// place réservée mais effets secondaires jamais appliqués (panne simulée)
	claimed, err := f.db.ClaimSlot(ctx, pkg.ID, 0, model.HelpRecord{
		PackageID:       pkg.ID,
		CreatorID:       creator.ID,
		HelperID:        helper.ID,
		ContractEnabled: false,
		HelpedAt:        time.Now(),
	})
	require.NoError(t, err)
	require.True(t, claimed)

	res, err := f.coord.Help(ctx, pkg.ID, helper.ID)
	require.NoError(t, err)
	require.Equal(t, 1, res.HelpCount)
	require.True(t, res.CreditAdded)

	fresh, err := f.db.GetUser(ctx, helper.ID)
	require.NoError(t, err)
	require.Equal(t, 1, fresh.DailyStats.Helped)
	require.Equal(t, credit.DefaultScore+1, fresh.CreditScore)

	// tout est maintenant appliqué : rejouer devient un doublon
	_, err = f.coord.Help(ctx, pkg.ID, helper.ID)
	require.ErrorIs(t, err, model.ErrAlreadyHelped)
}

func TestRepair(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.user(t, "发布者")
	helper := f.user(t, "帮助者")
	pkg := f.pkg(t, creator, model.StatusActive, 0)

	claimed, err := f.db.ClaimSlot(ctx, pkg.ID, 0, model.HelpRecord{
		PackageID: pkg.ID,
		CreatorID: creator.ID,
		HelperID:  helper.ID,
		HelpedAt:  time.Now().Add(-5 * time.Minute),
	})
	require.NoError(t, err)
	require.True(t, claimed)

	pending, err := f.db.PendingSideEffects(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, f.coord.Repair(ctx, pending[0]))

	fresh, err := f.db.GetUser(ctx, helper.ID)
	require.NoError(t, err)
	require.Equal(t, 1, fresh.DailyStats.Helped)
	require.Equal(t, credit.DefaultScore+1, fresh.CreditScore)

	// plus rien en attente, et Repair est idempotent
	pending, err = f.db.PendingSideEffects(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Empty(t, pending)
	require.NoError(t, f.coord.Repair(ctx, model.HelpRecord{PackageID: pkg.ID, HelperID: helper.ID, StatsApplied: true, CreditApplied: true}))
}
