// Package dialog tracks conversation state and renders user-facing answers
// in Swedish.
package dialog

import "regexp"

// builtinTemplates are the fixed phrasing templates. Per-intent response
// templates live in the config instead so deployments can adjust them.
var builtinTemplates = map[string]string{
	"generic": `Jag sökte information om "{query}". Här är vad jag hittade.`,

	"error": "Något gick fel: {error}",

	"generic_clarification": `Jag förstod inte riktigt din fråga "{query}". Kan du omformulera den eller vara mer specifik?`,
	"product_clarification": "{question}\n\n{options}",
	"intent_clarification":  "{question}\n\n{options}",

	"low_confidence_disclaimer": "Jag är inte helt säker, men jag tror att du frågar om {intent}.",
	"alternative_intents":       "Du kanske också ville fråga om {alternatives}?",

	"technical_beginner_intro": "Här är de viktigaste tekniska egenskaperna för {product_name} i ett förenklat format:",
	"no_technical_info":        "Jag kunde tyvärr inte hitta någon teknisk information för {product_name}.",

	"compatibility_intro":   "Här är information om vilka produkter som {product_name} fungerar tillsammans med:",
	"no_compatibility_info": "Jag kunde tyvärr inte hitta någon kompatibilitetsinformation för {product_name}.",

	"no_summary_info": "Jag kunde tyvärr inte hitta någon sammanfattande information för {product_name}.",

	"no_search_results": "Jag kunde inte hitta några produkter som matchar din sökning '{query}'.",

	"multiple_products_question":  "Du nämnde flera produkter. Vilken vill du veta mer om?",
	"related_products_suggestion": "Liknande produkter du kanske är intresserad av:",
}

var placeholderRe = regexp.MustCompile(`\{([a-z0-9_]+)\}`)

// Template returns the named builtin template, or empty when unknown.
func Template(key string) string {
	return builtinTemplates[key]
}

// fillTemplate substitutes {key} placeholders from values. Placeholders with
// no value are replaced by the empty string rather than left dangling.
func fillTemplate(template string, values map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		return values[key]
	})
}
