package intent

import "github.com/skarvik/produktbot/internal/models"

// intentKeywords are the Swedish cue phrases per intent. A query's keyword
// score is the fraction of the list found as substrings.
var intentKeywords = map[models.Intent][]string{
	models.IntentTechnical: {
		"teknisk", "specifikation", "mått", "dimension", "vikt", "material",
		"effekt", "spänning", "ström", "hur ser", "hur stor", "hur tung",
	},
	models.IntentCompatibility: {
		"passar", "kompatibel", "fungerar med", "kan användas med", "passar till",
		"monteringsstolpe", "trycke", "tillsammans med", "går att använda",
	},
	models.IntentSummary: {
		"berätta om", "vad är", "information om", "beskriv", "sammanfatta",
		"översikt", "produktfakta", "vad betyder", "vad innebär",
	},
	models.IntentSearch: {
		"hitta", "sök", "leta", "finns det", "har ni", "jag letar efter",
		"jag behöver en", "alternativ till", "liknande",
	},
}

// intentPrototypes are example queries per intent. Their mean embedding is
// the semantic anchor each incoming query is compared against.
var intentPrototypes = map[models.Intent][]string{
	models.IntentTechnical: {
		"Vad är de tekniska specifikationerna för denna produkt?",
		"Vilka mått har produkten?",
		"Hur mycket väger produkten?",
		"Vilket material är produkten tillverkad av?",
		"Vad är spänningen för produkten?",
	},
	models.IntentCompatibility: {
		"Är denna produkt kompatibel med andra produkter?",
		"Passar produkten till min existerande installation?",
		"Vilka andra produkter fungerar med denna?",
		"Kan jag använda denna med produkt X?",
		"Vilka trycken passar denna produkt?",
	},
	models.IntentSummary: {
		"Berätta om denna produkt",
		"Vad är detta för produkt?",
		"Ge mig en översikt över produkten",
		"Vilken information finns om produkten?",
		"Vad används denna produkt till?",
	},
	models.IntentSearch: {
		"Jag letar efter en produkt som...",
		"Hitta produkter som liknar...",
		"Sök efter produkter som...",
		"Finns det några produkter för...",
		"Jag behöver en produkt som kan...",
	},
}
