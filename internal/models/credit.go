package model

import (
	"time"
)

// CreditDirection sens d'une écriture du registre de crédit
type CreditDirection string

const (
	CreditAdd    CreditDirection = "ADD"
	CreditDeduct CreditDirection = "DEDUCT"
)

// CreditEntry écriture du registre de crédit. Append-only : jamais modifiée ni
// supprimée. La somme signée des écritures d'un utilisateur doit redonner son
// credit_score en cache.
type CreditEntry struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"userId"`
	Direction     CreditDirection `json:"direction"`
	Amount        int             `json:"amount"` // toujours positif, le sens est porté par Direction
	ReasonCode    string          `json:"reasonCode"`
	Reason        string          `json:"reason"`
	BalanceBefore int             `json:"balanceBefore"`
	BalanceAfter  int             `json:"balanceAfter"`
	RelatedType   string          `json:"relatedType,omitempty"`
	RelatedID     string          `json:"relatedId,omitempty"`
	Operator      string          `json:"operator"` // "system" ou id de l'admin
	Timestamp     time.Time       `json:"timestamp"`
}

// Delta valeur signée de l'écriture
func (e *CreditEntry) Delta() int {
	if e.Direction == CreditDeduct {
		return -e.Amount
	}
	return e.Amount
}
