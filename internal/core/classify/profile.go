package classify

// Profile - параметры каскада для конкретного источника.
// Все списки сравниваются после Fold, регистр и умляуты не важны.
type Profile struct {
	CommercialKeywords []string
	// PrivateSentinels - точные значения поля компании, означающие частника
	PrivateSentinels  []string
	CommissionPhrases []string
	// NegatedCommission вырезаются из текста до поиска комиссии ("provisionsfrei")
	NegatedCommission []string
	PrivatePhrases    []string
}

// DefaultProfile - общий набор сигналов для австрийских площадок
func DefaultProfile() Profile {
	return Profile{
		CommercialKeywords: []string{
			"gmbh", "immobilien", "immo", "makler", "realitäten", "realitaeten",
			"real estate", "realestate", "group", "gruppe", "agentur", "agency",
			"company", "bauträger", "projektentwicklung", "wohnbau", "genossenschaft",
			"invest", "consulting", "& co", "kg", "og", "ag", "e.u.",
			"remax", "re/max", "engel & völkers", "s-real", "ehl", "raiffeisen",
			"century 21", "coldwell banker", "sotheby",
		},
		PrivateSentinels: []string{"private", "privat"},
		CommissionPhrases: []string{
			"provision", "maklergebühr", "maklergebuehr", "vermittlungsgebühr",
			"vermittlungshonorar", "courtage", "käuferprovision", "brokerage fee",
			"agent fee", "commission",
		},
		NegatedCommission: []string{
			"provisionsfrei", "keine provision", "ohne provision", "keine maklerprovision",
			"no commission", "commission free", "commission-free",
		},
		PrivatePhrases: []string{
			"privatverkauf", "privat verkauf", "von privat", "privater verkäufer",
			"privatanbieter", "ohne makler", "provisionsfrei", "from private",
			"private seller", "no agent",
		},
	}
}
