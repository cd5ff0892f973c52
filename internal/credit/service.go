package credit

import (
	"context"
	"fmt"

	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store"
)

// OperatorSystem opérateur des écritures automatiques
const OperatorSystem = "system"

// ReasonInit écriture d'amorçage du registre à l'inscription. Hors table des
// règles : elle n'est jamais applicable par un admin, elle existe pour que la
// somme du registre redonne toujours le score en cache.
const ReasonInit = "INIT"

// Service opérations sur le registre de crédit
type Service struct {
	Ledger store.LedgerStore
}

func NewService(ledger store.LedgerStore) *Service {
	return &Service{Ledger: ledger}
}

// Apply applique une règle à delta fixe et retourne l'écriture créée
func (s *Service) Apply(ctx context.Context, userID, reasonCode, relatedType, relatedID, operator string) (*model.CreditEntry, error) {
	rule, err := RuleFor(reasonCode)
	if err != nil {
		return nil, err
	}
	if operator == "" {
		operator = OperatorSystem
	}
	entry, err := s.Ledger.AppendEntry(ctx, userID, rule.Delta, rule.Code, rule.Name, relatedType, relatedID, operator)
	if err != nil {
		return nil, fmt.Errorf("crédit %s pour %s: %w", reasonCode, userID, err)
	}
	return entry, nil
}

// Bootstrap écrit le score initial d'un nouvel utilisateur dans le registre.
// L'utilisateur doit avoir été créé avec un score en cache à zéro.
func (s *Service) Bootstrap(ctx context.Context, userID string) (*model.CreditEntry, error) {
	return s.Ledger.AppendEntry(ctx, userID, DefaultScore, ReasonInit, "初始信用分", "user", userID, OperatorSystem)
}

// History historique paginé, écritures récentes en premier
func (s *Service) History(ctx context.Context, userID string, page, limit int) ([]model.CreditEntry, error) {
	return s.Ledger.History(ctx, userID, page, limit)
}

// ReplayScore rejoue le registre et retourne la somme. En dehors de la fenêtre
// entre validation d'une entraide et application de ses effets secondaires,
// elle doit égaler le score en cache.
func (s *Service) ReplayScore(ctx context.Context, userID string) (int, error) {
	return s.Ledger.SumEntries(ctx, userID)
}
