package credit

import (
	model "github.com/duckytan/DotCircle/internal/models"
)

// Motifs à delta fixe du registre de crédit. Les montants ne se décident
// jamais ailleurs : un appelant fournit un code, le registre applique le delta.

const (
	ReasonDailyHelp       = "DAILY_HELP"
	ReasonStreak7         = "STREAK_7"
	ReasonValidReport     = "VALID_REPORT"
	ReasonContractFulfill = "CONTRACT_FULFILL"
	ReasonRecovery30D     = "RECOVERY_30D"
	ReasonFakeLink        = "FAKE_LINK"
	ReasonNoReward        = "NO_REWARD"
	ReasonSpam            = "SPAM"
	ReasonContractBreach  = "CONTRACT_BREACH"
	ReasonFalseReport     = "FALSE_REPORT"
	ReasonCheating        = "CHEATING"
)

// Rule motif avec son delta et son libellé
type Rule struct {
	Code  string
	Name  string
	Delta int
}

// Rules table des motifs connus
var Rules = map[string]Rule{
	ReasonDailyHelp:       {Code: ReasonDailyHelp, Name: "每日互助奖励", Delta: +1},
	ReasonStreak7:         {Code: ReasonStreak7, Name: "连续7天互助", Delta: +5},
	ReasonValidReport:     {Code: ReasonValidReport, Name: "有效举报", Delta: +3},
	ReasonContractFulfill: {Code: ReasonContractFulfill, Name: "履行契约", Delta: +2},
	ReasonRecovery30D:     {Code: ReasonRecovery30D, Name: "30天自然恢复", Delta: +5},
	ReasonFakeLink:        {Code: ReasonFakeLink, Name: "虚假链接", Delta: -20},
	ReasonNoReward:        {Code: ReasonNoReward, Name: "领取无奖励", Delta: -10},
	ReasonSpam:            {Code: ReasonSpam, Name: "垃圾广告", Delta: -30},
	ReasonContractBreach:  {Code: ReasonContractBreach, Name: "未履行契约", Delta: -5},
	ReasonFalseReport:     {Code: ReasonFalseReport, Name: "恶意举报", Delta: -2},
	ReasonCheating:        {Code: ReasonCheating, Name: "作弊行为", Delta: -50},
}

// RuleFor retourne la règle d'un code, ErrUnknownReason sinon
func RuleFor(code string) (Rule, error) {
	r, ok := Rules[code]
	if !ok {
		return Rule{}, model.ErrUnknownReason
	}
	return r, nil
}

// Direction sens d'écriture pour un delta signé
func (r Rule) Direction() model.CreditDirection {
	if r.Delta < 0 {
		return model.CreditDeduct
	}
	return model.CreditAdd
}

// Amount montant absolu de la règle
func (r Rule) Amount() int {
	if r.Delta < 0 {
		return -r.Delta
	}
	return r.Delta
}
