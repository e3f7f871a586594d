package scoring

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Tier struct {
	MinScore int
	Message  string
	Severity Severity
}

// Tiers is ordered from the highest threshold down; the last entry catches
// everything below 60.
var Tiers = []Tier{
	{90, "🎉 Excellent ! Parfaite maîtrise du chapitre !", SeveritySuccess},
	{80, "👍 Très bien ! Bonne compréhension du chapitre !", SeveritySuccess},
	{70, "👌 Bien ! Quelques révisions conseillées.", SeverityWarning},
	{60, "⚠️ Passable, revoyez certains points.", SeverityWarning},
	{0, "❌ Insuffisant, relisez attentivement le chapitre.", SeverityError},
}

func Encouragement(score int) Tier {
	for _, t := range Tiers {
		if score >= t.MinScore {
			return t
		}
	}
	return Tiers[len(Tiers)-1]
}
