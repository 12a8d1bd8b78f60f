package classifier

type table struct {
	name     string
	fallback string
	rules    []Rule
}

// builtinAliases maps topic names to the table serving them
var builtinAliases = map[string]string{
	"finance":       "pt",
	"politics":      "pt",
	"sports":        "pt",
	"entertainment": "pt",
	"technology":    "pt",
}

// builtinTables are the rule tables available without configuration. Order of rules matters.
var builtinTables = []table{
	{
		name: "pt",
		rules: []Rule{
			{Category: "Finance", Triggers: []string{"economia", "mercado", "finanças", "investimento"}},
			{Category: "Politics", Triggers: []string{"lei", "crédito", "proposta", "projeto", "política", "governo",
				"eleições", "congresso"}},
			{Category: "Sports", Triggers: []string{"esporte", "futebol", "basquete", "olimpíadas", "vôlei"}},
			{Category: "Entertainment", Triggers: []string{"entretenimento", "celebridades", "filmes", "música"}},
			{Category: "Technology", Triggers: []string{"tecnologia", "inovação", "startup", "internet", "apple",
				"twitter", "google"}},
		},
	},
	{
		name: "en",
		rules: []Rule{
			{Category: "Finance", Triggers: []string{"stock", "market", "finance", "investment", "economy"}},
			{Category: "Politics", Triggers: []string{"election", "government", "congress", "senate", "parliament",
				"legislation"}},
			{Category: "Sports", Triggers: []string{"sport", "football", "soccer", "basketball", "olympic", "tennis"}},
			{Category: "Entertainment", Triggers: []string{"entertainment", "celebrity", "movie", "film", "music"}},
			{Category: "Technology", Triggers: []string{"technology", "innovation", "startup", "internet", "software",
				"apple", "google"}},
		},
	},
	{
		name:     "legacy",
		fallback: "News",
		rules: []Rule{
			{Category: "Finance", Triggers: []string{"stock", "market", "finance", "investment", "economy"}},
		},
	},
}
