package foreign

// entry is one curated dictionary row. Wrap marks phrases unambiguous
// enough to wrap when found in plain text; single words never wrap
// because incidental English text would be caught too often.
type entry struct {
	phrase string
	lang   string
	wrap   bool
}

// dictionary is the curated phrase table. Multi-word phrases carry
// wrap; single words only attribute an existing italic element.
var dictionary = []entry{
	// French.
	{phrase: "madame", lang: "fr"},
	{phrase: "monsieur", lang: "fr"},
	{phrase: "mademoiselle", lang: "fr"},
	{phrase: "messieurs", lang: "fr"},
	{phrase: "bonjour", lang: "fr"},
	{phrase: "adieu", lang: "fr"},
	{phrase: "au revoir", lang: "fr", wrap: true},
	{phrase: "tête-à-tête", lang: "fr", wrap: true},
	{phrase: "coup d'état", lang: "fr", wrap: true},
	{phrase: "coup de grâce", lang: "fr", wrap: true},
	{phrase: "joie de vivre", lang: "fr", wrap: true},
	{phrase: "bon vivant", lang: "fr", wrap: true},
	{phrase: "faux pas", lang: "fr", wrap: true},
	{phrase: "savoir faire", lang: "fr", wrap: true},
	{phrase: "comme il faut", lang: "fr", wrap: true},
	{phrase: "en famille", lang: "fr", wrap: true},
	{phrase: "entre nous", lang: "fr", wrap: true},
	{phrase: "affaire de cœur", lang: "fr", wrap: true},
	{phrase: "bête noire", lang: "fr", wrap: true},
	{phrase: "esprit de corps", lang: "fr", wrap: true},
	{phrase: "hors de combat", lang: "fr", wrap: true},
	{phrase: "nom de plume", lang: "fr", wrap: true},
	{phrase: "raison d'être", lang: "fr", wrap: true},
	{phrase: "tour de force", lang: "fr", wrap: true},

	// Latin.
	{phrase: "ad hoc", lang: "la", wrap: true},
	{phrase: "a priori", lang: "la", wrap: true},
	{phrase: "a posteriori", lang: "la", wrap: true},
	{phrase: "ad infinitum", lang: "la", wrap: true},
	{phrase: "ad nauseam", lang: "la", wrap: true},
	{phrase: "carpe diem", lang: "la", wrap: true},
	{phrase: "deus ex machina", lang: "la", wrap: true},
	{phrase: "habeas corpus", lang: "la", wrap: true},
	{phrase: "in medias res", lang: "la", wrap: true},
	{phrase: "memento mori", lang: "la", wrap: true},
	{phrase: "mirabile dictu", lang: "la", wrap: true},
	{phrase: "ne plus ultra", lang: "la", wrap: true},
	{phrase: "non sequitur", lang: "la", wrap: true},
	{phrase: "sine qua non", lang: "la", wrap: true},
	{phrase: "terra incognita", lang: "la", wrap: true},
	{phrase: "vox populi", lang: "la", wrap: true},
	{phrase: "inter alia", lang: "la", wrap: true},
	{phrase: "sub rosa", lang: "la", wrap: true},
	{phrase: "pro tempore", lang: "la", wrap: true},
	{phrase: "quid pro quo", lang: "la", wrap: true},

	// Italian.
	{phrase: "sotto voce", lang: "it", wrap: true},
	{phrase: "prima donna", lang: "it", wrap: true},
	{phrase: "al fresco", lang: "it", wrap: true},
	{phrase: "dolce far niente", lang: "it", wrap: true},
	{phrase: "con amore", lang: "it", wrap: true},
	{phrase: "da capo", lang: "it", wrap: true},

	// German.
	{phrase: "weltschmerz", lang: "de"},
	{phrase: "zeitgeist", lang: "de"},
	{phrase: "gemütlichkeit", lang: "de"},
	{phrase: "sturm und drang", lang: "de", wrap: true},
	{phrase: "auf wiedersehen", lang: "de", wrap: true},
}

// englishWords is the frequency set used by the statistical fallback.
// It only needs to cover words common enough that their absence from
// an italic span is informative.
var englishWords = func() map[string]struct{} {
	words := []string{
		"the", "be", "to", "of", "and", "a", "in", "that", "have", "i",
		"it", "for", "not", "on", "with", "he", "as", "you", "do", "at",
		"this", "but", "his", "by", "from", "they", "we", "say", "her",
		"she", "or", "an", "will", "my", "one", "all", "would", "there",
		"their", "what", "so", "up", "out", "if", "about", "who", "get",
		"which", "go", "me", "when", "make", "can", "like", "time", "no",
		"just", "him", "know", "take", "people", "into", "year", "your",
		"good", "some", "could", "them", "see", "other", "than", "then",
		"now", "look", "only", "come", "its", "over", "think", "also",
		"back", "after", "use", "two", "how", "our", "work", "first",
		"well", "way", "even", "new", "want", "because", "any", "these",
		"give", "day", "most", "us", "is", "was", "are", "been", "has",
		"had", "were", "said", "did", "having", "may", "am", "shall",
		"upon", "very", "more", "such", "man", "men", "woman", "women",
		"great", "little", "old", "own", "never", "again", "once",
		"must", "much", "before", "too", "here", "where", "why", "same",
		"every", "himself", "herself", "long", "made", "might", "came",
		"went", "without", "through", "nothing", "against", "down",
		"still", "while", "last", "away", "off", "though", "yet",
		"thought", "himself", "house", "eyes", "hand", "head", "night",
		"found", "side", "place", "under", "life", "few", "between",
		"till", "till", "always", "those", "told", "young", "left",
		"moment", "seemed", "heart", "door", "face", "whole", "round",
		"another", "among", "ever", "far", "dear", "quite", "indeed",
		"sir", "lady", "love", "poor", "let", "god", "heard", "room",
		"world", "thing", "things", "nothing", "done", "both", "however",
		"mind", "father", "mother", "soon", "enough", "something",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()
