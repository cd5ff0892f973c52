// Package memory implémente store.* en mémoire, avec les mêmes sémantiques
// conditionnelles que l'implémentation Postgres (CAS sur le compteur observé,
// contrainte unique (packageId, helperId), rollover conditionné sur la date).
// Utilisé par les tests du moteur de transaction.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/duckytan/DotCircle/internal/credit"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store"
)

// Vérification de conformité aux interfaces à la compilation
var (
	_ store.PackageStore = (*Store)(nil)
	_ store.UserStore    = (*Store)(nil)
	_ store.LedgerStore  = (*Store)(nil)
)

type Store struct {
	mu          sync.Mutex
	users       map[string]*model.UserProfile
	usersByExt  map[string]string
	packages    map[string]*model.GiftPackage
	helps       map[string]map[string]*model.HelpRecord // packageID → helperID → record
	adjustments map[string][]model.HelpAdjustment
	entries     map[string][]model.CreditEntry
	nextID      int64
}

func New() *Store {
	return &Store{
		users:       make(map[string]*model.UserProfile),
		usersByExt:  make(map[string]string),
		packages:    make(map[string]*model.GiftPackage),
		helps:       make(map[string]map[string]*model.HelpRecord),
		adjustments: make(map[string][]model.HelpAdjustment),
		entries:     make(map[string][]model.CreditEntry),
	}
}

func (s *Store) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

// ─── PackageStore ───

func (s *Store) CreatePackage(ctx context.Context, pkg *model.GiftPackage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *pkg
	s.packages[pkg.ID] = &cp
	return nil
}

func (s *Store) GetPackage(ctx context.Context, id string) (*model.GiftPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[id]
	if !ok {
		return nil, model.ErrPackageNotFound
	}
	cp := *pkg
	return &cp, nil
}

func (s *Store) ListPackages(ctx context.Context, f store.ListFilter) ([]model.GiftPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GiftPackage
	for _, pkg := range s.packages {
		if f.Status != "" && pkg.Status != f.Status {
			continue
		}
		if f.Type != "" && pkg.Type != f.Type {
			continue
		}
		out = append(out, *pkg)
	}
	if f.SortBy == "time" {
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ExposureScore > out[j].ExposureScore })
	}
	return paginate(out, f.Page, f.Limit), nil
}

func (s *Store) ListByCreator(ctx context.Context, creatorID string, status model.PackageStatus, page, limit int) ([]model.GiftPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GiftPackage
	for _, pkg := range s.packages {
		if pkg.CreatorID != creatorID {
			continue
		}
		if status != "" && pkg.Status != status {
			continue
		}
		out = append(out, *pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page, limit), nil
}

func (s *Store) ActiveGiftExists(ctx context.Context, giftID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pkg := range s.packages {
		if pkg.GiftID == giftID && (pkg.Status == model.StatusActive || pkg.Status == model.StatusPending) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ClaimSlot(ctx context.Context, packageID string, expectedCount int, rec model.HelpRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkg, ok := s.packages[packageID]
	if !ok {
		return false, model.ErrPackageNotFound
	}
	if recs := s.helps[packageID]; recs != nil {
		if _, dup := recs[rec.HelperID]; dup {
			return false, model.ErrAlreadyHelped
		}
	}
	// CAS : le compte observé doit encore être le compte courant
	if pkg.Status != model.StatusActive || pkg.HelpCount != expectedCount {
		return false, nil
	}

	pkg.HelpCount++
	pkg.UpdatedAt = rec.HelpedAt
	if pkg.HelpCount >= pkg.MaxHelp {
		pkg.Status = model.StatusCompleted
	}

	rec.ID = s.nextSeq()
	if s.helps[packageID] == nil {
		s.helps[packageID] = make(map[string]*model.HelpRecord)
	}
	cp := rec
	s.helps[packageID][rec.HelperID] = &cp
	return true, nil
}

func (s *Store) GetHelpRecord(ctx context.Context, packageID, helperID string) (*model.HelpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.helps[packageID][helperID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *Store) ListHelpers(ctx context.Context, packageID string) ([]model.HelpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.HelpRecord
	for _, rec := range s.helps[packageID] {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HelpedAt.Before(out[j].HelpedAt) })
	return out, nil
}

func (s *Store) MarkStatsApplied(ctx context.Context, packageID, helperID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.helps[packageID][helperID]; ok {
		rec.StatsApplied = true
	}
	return nil
}

func (s *Store) MarkCreditApplied(ctx context.Context, packageID, helperID string, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.helps[packageID][helperID]; ok {
		rec.CreditApplied = true
		rec.CreditGranted = granted
	}
	return nil
}

func (s *Store) FulfillContract(ctx context.Context, packageID, helperID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.helps[packageID][helperID]
	if !ok {
		return model.ErrPackageNotFound
	}
	if !rec.ContractEnabled {
		return model.ErrContractDisabled
	}
	if rec.Fulfilled {
		return model.ErrContractFulfilled
	}
	rec.Fulfilled = true
	rec.FulfilledAt = &at
	return nil
}

func (s *Store) CancelPackage(ctx context.Context, packageID, cancelledBy, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[packageID]
	if !ok {
		return model.ErrPackageNotFound
	}
	now := time.Now()
	pkg.Status = model.StatusCancelled
	pkg.Cancellation = model.Cancellation{CancelledAt: &now, CancelledBy: cancelledBy, CancelReason: reason}
	pkg.UpdatedAt = now
	return nil
}

func (s *Store) SetStatus(ctx context.Context, packageID string, from, to model.PackageStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[packageID]
	if !ok {
		return false, model.ErrPackageNotFound
	}
	if pkg.Status != from {
		return false, nil
	}
	pkg.Status = to
	pkg.UpdatedAt = time.Now()
	return true, nil
}

func (s *Store) AdjustHelpCount(ctx context.Context, packageID string, expectedCount, newCount int, adj model.HelpAdjustment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[packageID]
	if !ok {
		return false, model.ErrPackageNotFound
	}
	if pkg.HelpCount != expectedCount {
		return false, nil
	}
	pkg.HelpCount = newCount
	if newCount >= pkg.MaxHelp {
		pkg.Status = model.StatusCompleted
	}
	pkg.UpdatedAt = adj.AdjustedAt
	adj.ID = s.nextSeq()
	adj.PackageID = packageID
	s.adjustments[packageID] = append(s.adjustments[packageID], adj)
	return true, nil
}

func (s *Store) ListAdjustments(ctx context.Context, packageID string) ([]model.HelpAdjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.HelpAdjustment, len(s.adjustments[packageID]))
	copy(out, s.adjustments[packageID])
	return out, nil
}

func (s *Store) PendingSideEffects(ctx context.Context, olderThan time.Time, limit int) ([]model.HelpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.HelpRecord
	for _, recs := range s.helps {
		for _, rec := range recs {
			if rec.StatsApplied && rec.CreditApplied {
				continue
			}
			if rec.HelpedAt.After(olderThan) {
				continue
			}
			out = append(out, *rec)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (s *Store) ExpirePackages(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, pkg := range s.packages {
		if pkg.Terminal() || pkg.ExpireAt.IsZero() || pkg.ExpireAt.After(now) {
			continue
		}
		pkg.Status = model.StatusCancelled
		pkg.Cancellation = model.Cancellation{CancelledAt: &now, CancelledBy: "system", CancelReason: "expired"}
		pkg.UpdatedAt = now
		n++
	}
	return n, nil
}

// ─── UserStore ───

func (s *Store) CreateUser(ctx context.Context, u *model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = "user_" + strconv.FormatInt(s.nextSeq(), 10)
	}
	cp := *u
	s.users[u.ID] = &cp
	if u.ExternalID != "" {
		s.usersByExt[u.ExternalID] = u.ID
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByExt[externalID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) UpdateIdentity(ctx context.Context, id, nickname, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	if nickname != "" {
		u.Nickname = nickname
	}
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	return nil
}

func (s *Store) UpdateSettings(ctx context.Context, id string, set model.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.Settings = set
	return nil
}

func (s *Store) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.TotalStats.LastActive = at
	}
	return nil
}

func (s *Store) RolloverDaily(ctx context.Context, id, fromDate string, daily model.DailyStats, streakDays int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, model.ErrUserNotFound
	}
	// Conditionné sur la date stockée : une seule session gagne le rollover
	if u.DailyStats.Date != fromDate {
		return false, nil
	}
	u.DailyStats = daily
	u.TotalStats.StreakDays = streakDays
	return true, nil
}

func (s *Store) IncrementHelped(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	u.DailyStats.Helped++
	u.TotalStats.TotalHelped++
	return u.DailyStats.Helped, nil
}

func (s *Store) IncrementPublished(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.DailyStats.Published++
	u.TotalStats.TotalPublished++
	return nil
}

func (s *Store) TopUsers(ctx context.Context, metric store.LeaderboardMetric, limit int) ([]model.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LeaderboardEntry
	for _, u := range s.users {
		if !u.Settings.PublicLeaderboard {
			continue
		}
		score := 0
		switch metric {
		case store.MetricTotalHelped:
			score = u.TotalStats.TotalHelped
		case store.MetricCreditScore:
			score = u.CreditScore
		case store.MetricStreakDays:
			score = u.TotalStats.StreakDays
		case store.MetricTotalPublished:
			score = u.TotalStats.TotalPublished
		}
		out = append(out, model.LeaderboardEntry{
			UserID:      u.ID,
			Nickname:    u.Nickname,
			AvatarURL:   u.AvatarURL,
			Score:       score,
			CreditScore: u.CreditScore,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UsersDueRecovery(ctx context.Context, before time.Time, maxScore, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, u := range s.users {
		if u.CreditScore >= maxScore {
			continue
		}
		last := u.LastRecovery
		if last.IsZero() {
			last = u.CreatedAt
		}
		if last.After(before) {
			continue
		}
		out = append(out, u.ID)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// SetLastRecovery utilisé par le worker de maintenance après un RECOVERY_30D
func (s *Store) SetLastRecovery(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.LastRecovery = at
	}
	return nil
}

// ─── LedgerStore ───

func (s *Store) AppendEntry(ctx context.Context, userID string, delta int, reasonCode, reason, relatedType, relatedID, operator string) (*model.CreditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	entry := model.CreditEntry{
		ID:            s.nextSeq(),
		UserID:        userID,
		Direction:     model.CreditAdd,
		Amount:        delta,
		ReasonCode:    reasonCode,
		Reason:        reason,
		BalanceBefore: u.CreditScore,
		BalanceAfter:  u.CreditScore + delta,
		RelatedType:   relatedType,
		RelatedID:     relatedID,
		Operator:      operator,
		Timestamp:     time.Now(),
	}
	if delta < 0 {
		entry.Direction = model.CreditDeduct
		entry.Amount = -delta
	}
	u.CreditScore = entry.BalanceAfter
	u.CreditLevel = string(credit.LevelForScore(u.CreditScore))
	s.entries[userID] = append(s.entries[userID], entry)
	return &entry, nil
}

func (s *Store) History(ctx context.Context, userID string, page, limit int) ([]model.CreditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.entries[userID]
	out := make([]model.CreditEntry, len(all))
	copy(out, all)
	// plus récentes d'abord
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, page, limit), nil
}

func (s *Store) SumEntries(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for i := range s.entries[userID] {
		sum += s.entries[userID][i].Delta()
	}
	return sum, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
