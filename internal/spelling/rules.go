package spelling

// Class identifies which replacement family a rule belongs to. Classes
// exist for test coverage and reporting; the matcher treats all rules
// identically.
type Class string

const (
	ClassArchaic     Class = "archaic"
	ClassCompound    Class = "compound"
	ClassPunctuation Class = "punctuation"
	ClassGeographic  Class = "geographic"
	ClassDiacritic   Class = "diacritic"
	ClassLigature    Class = "ligature"
)

// tableEntry is one source rule before compilation. Pattern is a plain
// word or phrase unless literal is false, in which case it is a regular
// expression fragment used as-is.
type tableEntry struct {
	class         Class
	pattern       string
	replacement   string
	caseSensitive bool
	literal       bool
}

// ruleTable is the fixed modernization table, applied in order. Order
// matters where a longer form must win before a shorter one (e.g.
// "shewn" before "shew").
var ruleTable = []tableEntry{
	// Archaic spellings.
	{class: ClassArchaic, pattern: "shewn", replacement: "shown"},
	{class: ClassArchaic, pattern: "shewed", replacement: "showed"},
	{class: ClassArchaic, pattern: "shewing", replacement: "showing"},
	{class: ClassArchaic, pattern: "shews", replacement: "shows"},
	{class: ClassArchaic, pattern: "shew", replacement: "show"},
	{class: ClassArchaic, pattern: "despatch", replacement: "dispatch"},
	{class: ClassArchaic, pattern: "despatches", replacement: "dispatches"},
	{class: ClassArchaic, pattern: "despatched", replacement: "dispatched"},
	{class: ClassArchaic, pattern: "connexion", replacement: "connection"},
	{class: ClassArchaic, pattern: "connexions", replacement: "connections"},
	{class: ClassArchaic, pattern: "reflexion", replacement: "reflection"},
	{class: ClassArchaic, pattern: "inflexion", replacement: "inflection"},
	{class: ClassArchaic, pattern: "surprize", replacement: "surprise"},
	{class: ClassArchaic, pattern: "surprized", replacement: "surprised"},
	{class: ClassArchaic, pattern: "gayety", replacement: "gaiety"},
	{class: ClassArchaic, pattern: "gayly", replacement: "gaily"},
	{class: ClassArchaic, pattern: "burthen", replacement: "burden"},
	{class: ClassArchaic, pattern: "burthens", replacement: "burdens"},
	{class: ClassArchaic, pattern: "trowsers", replacement: "trousers"},
	{class: ClassArchaic, pattern: "negociate", replacement: "negotiate"},
	{class: ClassArchaic, pattern: "negociation", replacement: "negotiation"},
	{class: ClassArchaic, pattern: "develope", replacement: "develop"},
	{class: ClassArchaic, pattern: "dulness", replacement: "dullness"},
	{class: ClassArchaic, pattern: "fulness", replacement: "fullness"},
	{class: ClassArchaic, pattern: "waggon", replacement: "wagon"},
	{class: ClassArchaic, pattern: "waggons", replacement: "wagons"},
	{class: ClassArchaic, pattern: "clew", replacement: "clue"},
	{class: ClassArchaic, pattern: "clews", replacement: "clues"},
	{class: ClassArchaic, pattern: "cypher", replacement: "cipher"},
	{class: ClassArchaic, pattern: "syren", replacement: "siren"},
	{class: ClassArchaic, pattern: "musquito", replacement: "mosquito"},
	{class: ClassArchaic, pattern: "musquitoes", replacement: "mosquitoes"},
	{class: ClassArchaic, pattern: "chuse", replacement: "choose"},
	{class: ClassArchaic, pattern: "phrenzy", replacement: "frenzy"},
	{class: ClassArchaic, pattern: "ancles", replacement: "ankles"},
	{class: ClassArchaic, pattern: "ancle", replacement: "ankle"},
	{class: ClassArchaic, pattern: "ecstacy", replacement: "ecstasy"},
	{class: ClassArchaic, pattern: "gipsy", replacement: "gypsy"},
	{class: ClassArchaic, pattern: "gipsies", replacement: "gypsies"},
	{class: ClassArchaic, pattern: "visiter", replacement: "visitor"},
	{class: ClassArchaic, pattern: "visiters", replacement: "visitors"},

	// Compound-word closures: two words to one, hyphenated to solid.
	{class: ClassCompound, pattern: "to-day", replacement: "today"},
	{class: ClassCompound, pattern: "to-morrow", replacement: "tomorrow"},
	{class: ClassCompound, pattern: "to-night", replacement: "tonight"},
	{class: ClassCompound, pattern: "any one", replacement: "anyone"},
	{class: ClassCompound, pattern: "some one", replacement: "someone"},
	{class: ClassCompound, pattern: "any thing", replacement: "anything"},
	{class: ClassCompound, pattern: "some thing", replacement: "something"},
	{class: ClassCompound, pattern: "every thing", replacement: "everything"},
	{class: ClassCompound, pattern: "no where", replacement: "nowhere"},
	{class: ClassCompound, pattern: "any where", replacement: "anywhere"},
	{class: ClassCompound, pattern: "some where", replacement: "somewhere"},
	{class: ClassCompound, pattern: "can not", replacement: "cannot"},
	{class: ClassCompound, pattern: "good-bye", replacement: "goodbye"},
	{class: ClassCompound, pattern: "good bye", replacement: "goodbye"},
	{class: ClassCompound, pattern: "down stairs", replacement: "downstairs"},
	{class: ClassCompound, pattern: "up stairs", replacement: "upstairs"},
	{class: ClassCompound, pattern: "birth-day", replacement: "birthday"},
	{class: ClassCompound, pattern: "week-end", replacement: "weekend"},
	{class: ClassCompound, pattern: "note-book", replacement: "notebook"},
	{class: ClassCompound, pattern: "pocket-book", replacement: "pocketbook"},
	{class: ClassCompound, pattern: "sea-side", replacement: "seaside"},
	{class: ClassCompound, pattern: "fire-place", replacement: "fireplace"},
	{class: ClassCompound, pattern: "half-way", replacement: "halfway"},
	{class: ClassCompound, pattern: "mean-time", replacement: "meantime"},
	{class: ClassCompound, pattern: "bed-room", replacement: "bedroom"},
	{class: ClassCompound, pattern: "dining-room", replacement: "dining room"},
	{class: ClassCompound, pattern: "drawing-room", replacement: "drawing room"},
	{class: ClassCompound, pattern: "for ever", replacement: "forever"},
	{class: ClassCompound, pattern: "alright", replacement: "all right"},

	// Punctuation fixes.
	{class: ClassPunctuation, pattern: `&amp;c\.`, replacement: "etc.", literal: true},
	{class: ClassPunctuation, pattern: `&c\.`, replacement: "etc.", literal: true},
	{class: ClassPunctuation, pattern: `\betc\.\.`, replacement: "etc.", literal: true},
	{class: ClassPunctuation, pattern: `M‘`, replacement: "Mc", caseSensitive: true, literal: true},

	// Geographic and cultural modernizations; proper nouns are
	// inherently capitalized.
	{class: ClassGeographic, pattern: "Leipsic", replacement: "Leipzig", caseSensitive: true},
	{class: ClassGeographic, pattern: "Servia", replacement: "Serbia", caseSensitive: true},
	{class: ClassGeographic, pattern: "Servian", replacement: "Serbian", caseSensitive: true},
	{class: ClassGeographic, pattern: "Thibet", replacement: "Tibet", caseSensitive: true},
	{class: ClassGeographic, pattern: "Thibetan", replacement: "Tibetan", caseSensitive: true},
	{class: ClassGeographic, pattern: "Hayti", replacement: "Haiti", caseSensitive: true},
	{class: ClassGeographic, pattern: "Haytian", replacement: "Haitian", caseSensitive: true},
	{class: ClassGeographic, pattern: "Porto Rico", replacement: "Puerto Rico", caseSensitive: true},
	{class: ClassGeographic, pattern: "Teheran", replacement: "Tehran", caseSensitive: true},
	{class: ClassGeographic, pattern: "Bagdad", replacement: "Baghdad", caseSensitive: true},
	{class: ClassGeographic, pattern: "Corea", replacement: "Korea", caseSensitive: true},
	{class: ClassGeographic, pattern: "Corean", replacement: "Korean", caseSensitive: true},
	{class: ClassGeographic, pattern: "Soudan", replacement: "Sudan", caseSensitive: true},
	{class: ClassGeographic, pattern: "Esquimaux", replacement: "Eskimos", caseSensitive: true},
	{class: ClassGeographic, pattern: "Esquimau", replacement: "Eskimo", caseSensitive: true},
	{class: ClassGeographic, pattern: "Cingalese", replacement: "Sinhalese", caseSensitive: true},
	{class: ClassGeographic, pattern: "Hindostan", replacement: "Hindustan", caseSensitive: true},
	{class: ClassGeographic, pattern: "Shakspeare", replacement: "Shakespeare", caseSensitive: true},
	{class: ClassGeographic, pattern: "Shakspere", replacement: "Shakespeare", caseSensitive: true},
	{class: ClassGeographic, pattern: "Mahomet", replacement: "Mohammed", caseSensitive: true},

	// Diacritical-mark corrections: accents English printing has
	// since dropped.
	{class: ClassDiacritic, pattern: "début", replacement: "debut"},
	{class: ClassDiacritic, pattern: "débris", replacement: "debris"},
	{class: ClassDiacritic, pattern: "dépôt", replacement: "depot"},
	{class: ClassDiacritic, pattern: "détour", replacement: "detour"},
	{class: ClassDiacritic, pattern: "élite", replacement: "elite"},
	{class: ClassDiacritic, pattern: "hôtel", replacement: "hotel"},
	{class: ClassDiacritic, pattern: "rôle", replacement: "role"},
	{class: ClassDiacritic, pattern: "fête", replacement: "fete"},
	{class: ClassDiacritic, pattern: "régime", replacement: "regime"},
	{class: ClassDiacritic, pattern: "naïve", replacement: "naive"},

	// Latin ligature expansion. Not word-bounded: the ligature can sit
	// anywhere inside a word.
	{class: ClassLigature, pattern: "æ", replacement: "ae", caseSensitive: true, literal: true},
	{class: ClassLigature, pattern: "Æ", replacement: "Ae", caseSensitive: true, literal: true},
	{class: ClassLigature, pattern: "œ", replacement: "oe", caseSensitive: true, literal: true},
	{class: ClassLigature, pattern: "Œ", replacement: "Oe", caseSensitive: true, literal: true},
}
