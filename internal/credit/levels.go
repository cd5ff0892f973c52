package credit

// Niveaux de crédit et règles associées. La dérivation est une fonction totale
// du score : tout entier (même hors [0,100]) tombe dans exactement un niveau.

// Level niveau de crédit d'un utilisateur
type Level string

const (
	LevelExcellent  Level = "EXCELLENT"
	LevelGood       Level = "GOOD"
	LevelNormal     Level = "NORMAL"
	LevelWarning    Level = "WARNING"
	LevelRestricted Level = "RESTRICTED"
	LevelBanned     Level = "BANNED"
)

// LevelConfig règles attachées à un niveau
type LevelConfig struct {
	Name      string  // libellé affiché
	MinScore  int     // borne basse incluse
	Quota     int     // publications autorisées par jour
	AutoAudit bool    // publication directement active, sans modération
	Weight    float64 // poids dans le score d'exposition
}

// levelOrder du meilleur au pire ; la première borne atteinte gagne
var levelOrder = []Level{
	LevelExcellent,
	LevelGood,
	LevelNormal,
	LevelWarning,
	LevelRestricted,
	LevelBanned,
}

// Levels configuration des niveaux de crédit
var Levels = map[Level]LevelConfig{
	LevelExcellent:  {Name: "优秀", MinScore: 90, Quota: 3, AutoAudit: true, Weight: 2.0},
	LevelGood:       {Name: "良好", MinScore: 75, Quota: 2, AutoAudit: true, Weight: 1.5},
	LevelNormal:     {Name: "一般", MinScore: 60, Quota: 2, AutoAudit: false, Weight: 1.0},
	LevelWarning:    {Name: "警告", MinScore: 40, Quota: 1, AutoAudit: false, Weight: 0.5},
	LevelRestricted: {Name: "受限", MinScore: 20, Quota: 0, AutoAudit: false, Weight: 0},
	LevelBanned:     {Name: "封禁", MinScore: 0, Quota: 0, AutoAudit: false, Weight: 0},
}

// LevelForScore dérive le niveau depuis le score. Les scores négatifs restent
// BANNED, au-delà de 100 le niveau reste EXCELLENT.
func LevelForScore(score int) Level {
	for _, lvl := range levelOrder {
		if score >= Levels[lvl].MinScore {
			return lvl
		}
	}
	return LevelBanned
}

// QuotaForScore quota de publication journalier pour un score donné
func QuotaForScore(score int) int {
	return Levels[LevelForScore(score)].Quota
}

// QuotaForLevel quota pour un niveau déjà dérivé ; niveau inconnu = 0
func QuotaForLevel(lvl Level) int {
	return Levels[lvl].Quota
}

// WeightForLevel poids d'exposition ; niveau inconnu = poids neutre
func WeightForLevel(lvl Level) float64 {
	cfg, ok := Levels[lvl]
	if !ok {
		return 1.0
	}
	return cfg.Weight
}

// AutoAudit indique si les publications du niveau passent sans modération
func AutoAudit(lvl Level) bool {
	return Levels[lvl].AutoAudit
}

// MinPublishScore score minimal pour publier
const MinPublishScore = 20

// DefaultScore score attribué à l'inscription
const DefaultScore = 60

// DailyHelpCreditCap nombre maximal d'entraides créditées par jour
const DailyHelpCreditCap = 2
