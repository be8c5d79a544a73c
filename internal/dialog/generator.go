package dialog

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/config"
	"github.com/skarvik/produktbot/internal/corpus"
	"github.com/skarvik/produktbot/internal/models"
)

// Expertise levels inferred from the conversation.
const (
	ExpertiseBeginner     = "beginner"
	ExpertiseIntermediate = "intermediate"
	ExpertiseExpert       = "expert"
)

// technicalTerms are the cue words whose presence in the history marks a
// technically versed user.
var technicalTerms = []string{
	"specifikation", "dimensioner", "tolerans", "teknisk", "material",
	"effekt", "spänning", "kompatibilitet", "monteringsanvisning",
}

// simplifications rewrite jargon for beginner users.
var simplifications = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\b[Dd]imensioner\b`), "mått"},
	{regexp.MustCompile(`\b[Kk]ompatibilitet\b`), "passar tillsammans med"},
	{regexp.MustCompile(`\b[Ss]pecifikationer\b`), "egenskaper"},
	{regexp.MustCompile(`\b[Mm]ontering\b`), "installation"},
	{regexp.MustCompile(`\b[Tt]olerans\b`), "tillåten avvikelse"},
	{regexp.MustCompile(`\b[Ee]ffekt\b`), "strömförbrukning"},
}

// ProductNamer resolves product IDs to display names.
type ProductNamer interface {
	ProductName(productID string) string
}

// Generator renders answers from typed data results, adapting detail to the
// user's inferred expertise.
type Generator struct {
	cfg    *config.Config
	names  ProductNamer
	logger *zap.Logger
}

// NewGenerator creates a response generator.
func NewGenerator(cfg *config.Config, names ProductNamer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{cfg: cfg, names: names, logger: logger}
}

func (g *Generator) productName(productID string) string {
	if g.names != nil {
		if name := g.names.ProductName(productID); name != "" {
			return name
		}
	}
	return fmt.Sprintf("Produkt %s", productID)
}

// FormatCommandResponse renders the result of an explicit command. Command
// users asked for the data directly, so no expertise adaptation is applied.
func (g *Generator) FormatCommandResponse(command string, productID string, outcome corpus.Outcome) string {
	result := outcome.Outcome()
	if result.Status != models.StatusSuccess {
		return g.ErrorResponse(result.Message)
	}
	if result.FormattedText != "" {
		return result.FormattedText
	}

	values := map[string]string{
		"product_name": g.productName(productID),
		"product_id":   productID,
	}
	switch command {
	case "t":
		return fillTemplate(g.cfg.ResponseTemplates["technical"], values)
	case "c":
		return fillTemplate(g.cfg.ResponseTemplates["compatibility"], values)
	case "s":
		return fillTemplate(g.cfg.ResponseTemplates["summary"], values)
	}
	return result.Message
}

// GenerateResponse renders a natural-language answer for an executed intent.
func (g *Generator) GenerateResponse(analysis *models.QueryAnalysis, outcome corpus.Outcome, sessionCtx *models.SessionContext) string {
	result := outcome.Outcome()
	if result.Status == models.StatusError {
		return g.ErrorResponse(result.Message)
	}

	expertise := g.InferExpertise(sessionCtx)

	switch res := outcome.(type) {
	case *corpus.SpecsResult:
		return g.technicalResponse(res, expertise)
	case *corpus.CompatResult:
		return g.compatibilityResponse(res, expertise)
	case *corpus.SummaryResult:
		return g.summaryResponse(res)
	case *corpus.FullInfoResult:
		return g.fullInfoResponse(res)
	case *corpus.SearchResult:
		return g.searchResponse(res, expertise)
	}

	if result.FormattedText != "" {
		return result.FormattedText
	}
	return fillTemplate(Template("generic"), map[string]string{"query": analysis.OriginalText})
}

func (g *Generator) technicalResponse(res *corpus.SpecsResult, expertise string) string {
	if res.Status != models.StatusSuccess || res.FormattedText == "" {
		return fillTemplate(Template("no_technical_info"), map[string]string{
			"product_name": g.productName(res.ProductID),
		})
	}
	if expertise == ExpertiseBeginner {
		intro := fillTemplate(Template("technical_beginner_intro"), map[string]string{
			"product_name": g.productName(res.ProductID),
		})
		return intro + "\n\n" + beginnerSpecList(res.Specs)
	}
	return res.FormattedText
}

// priorityCategories lead the simplified spec list shown to beginners.
var priorityCategories = []string{"dimensioner", "mått", "grundläggande", "material", "vikt"}

func isPriorityCategory(category string) bool {
	lower := strings.ToLower(category)
	for _, p := range priorityCategories {
		if p == lower {
			return true
		}
	}
	return false
}

// beginnerSpecList flattens categorized specs into one plain list: priority
// categories come first and in full, every other category contributes at most
// two specs, and jargon in the names is simplified.
func beginnerSpecList(specs []corpus.SpecRecord) string {
	grouped := make(map[string][]corpus.SpecRecord)
	var order []string
	for _, spec := range specs {
		category := spec.Category
		if category == "" {
			category = "Övrigt"
		}
		if _, ok := grouped[category]; !ok {
			order = append(order, category)
		}
		grouped[category] = append(grouped[category], spec)
	}

	var b strings.Builder
	write := func(category string, limit int) {
		for i, spec := range grouped[category] {
			if limit > 0 && i == limit {
				break
			}
			value := spec.RawValue
			if spec.Unit != "" {
				value += " " + spec.Unit
			}
			fmt.Fprintf(&b, "- **%s:** %s\n", SimplifyTechnicalTerms(spec.Name), value)
		}
	}
	for _, category := range order {
		if isPriorityCategory(category) {
			write(category, 0)
		}
	}
	for _, category := range order {
		if !isPriorityCategory(category) {
			write(category, 2)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (g *Generator) compatibilityResponse(res *corpus.CompatResult, expertise string) string {
	if res.Status != models.StatusSuccess || res.FormattedText == "" {
		return fillTemplate(Template("no_compatibility_info"), map[string]string{
			"product_name": g.productName(res.ProductID),
		})
	}
	if expertise == ExpertiseExpert {
		return res.FormattedText
	}

	intro := fillTemplate(Template("compatibility_intro"), map[string]string{
		"product_name": g.productName(res.ProductID),
	})
	text := res.FormattedText
	if expertise == ExpertiseBeginner {
		text = SimplifyTechnicalTerms(text)
	}
	return intro + "\n\n" + text
}

func (g *Generator) summaryResponse(res *corpus.SummaryResult) string {
	if res.Status != models.StatusSuccess || res.FormattedText == "" {
		return fillTemplate(Template("no_summary_info"), map[string]string{
			"product_name": g.productName(res.ProductID),
		})
	}
	return res.FormattedText
}

func (g *Generator) fullInfoResponse(res *corpus.FullInfoResult) string {
	if res.Status != models.StatusSuccess || res.Markdown == "" {
		return fillTemplate(Template("no_summary_info"), map[string]string{
			"product_name": g.productName(res.ProductID),
		})
	}
	return res.Markdown
}

// searchResponse renders matches itself rather than using the preformatted
// list, so experts can get scores.
func (g *Generator) searchResponse(res *corpus.SearchResult, expertise string) string {
	if len(res.Matches) == 0 {
		return fillTemplate(Template("no_search_results"), map[string]string{"query": res.Query})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Sökresultat för '%s'\n\n", res.Query)
	if expertise == ExpertiseExpert {
		b.WriteString("| Produkt | Artikelnummer | Matchningspoäng |\n")
		b.WriteString("|---------|---------------|-----------------|\n")
		for _, m := range res.Matches {
			fmt.Fprintf(&b, "| %s | %s | %.2f |\n", m.Name, m.ProductID, m.Score)
		}
	} else {
		for i, m := range res.Matches {
			fmt.Fprintf(&b, "%d. **%s** (Art.nr: %s)\n", i+1, m.Name, m.ProductID)
		}
	}
	b.WriteString("\nAnvänd kommandot `-s <artikelnr>` för att se mer information om en produkt.")
	return b.String()
}

// ClarificationResponse renders a clarification question with its options.
func (g *Generator) ClarificationResponse(analysis *models.QueryAnalysis, question *models.ClarificationQuestion) string {
	if question == nil {
		return fillTemplate(Template("generic_clarification"), map[string]string{
			"query": analysis.OriginalText,
		})
	}

	switch question.Kind {
	case "product_selection":
		var options []string
		for _, opt := range question.Options {
			options = append(options, fmt.Sprintf("- %s (Art.nr: %s)", opt.Label, opt.ID))
		}
		return fillTemplate(Template("product_clarification"), map[string]string{
			"question": question.Text,
			"options":  strings.Join(options, "\n"),
		})
	case "intent_selection":
		var options []string
		for _, opt := range question.Options {
			options = append(options, "- "+opt.Label)
		}
		return fillTemplate(Template("intent_clarification"), map[string]string{
			"question": question.Text,
			"options":  strings.Join(options, "\n"),
		})
	}
	return fillTemplate(Template("generic_clarification"), map[string]string{
		"query": analysis.OriginalText,
	})
}

// LowConfidenceResponse wraps the normal answer in an uncertainty disclaimer
// and lists the runner-up intents.
func (g *Generator) LowConfidenceResponse(analysis *models.QueryAnalysis, outcome corpus.Outcome, sessionCtx *models.SessionContext) string {
	answer := g.GenerateResponse(analysis, outcome, sessionCtx)

	disclaimer := fillTemplate(Template("low_confidence_disclaimer"), map[string]string{
		"intent": analysis.Intent.Primary.DisplayName(),
	})

	alternatives := ""
	if len(analysis.Intent.Intents) > 1 {
		limit := 3
		if len(analysis.Intent.Intents) < limit {
			limit = len(analysis.Intent.Intents)
		}
		var names []string
		for _, sc := range analysis.Intent.Intents[1:limit] {
			names = append(names, sc.Intent.DisplayName())
		}
		alternatives = fillTemplate(Template("alternative_intents"), map[string]string{
			"alternatives": strings.Join(names, ", "),
		})
	}
	return disclaimer + "\n\n" + answer + "\n\n" + alternatives
}

// ErrorResponse renders an error message.
func (g *Generator) ErrorResponse(message string) string {
	if message == "" {
		message = "Ett fel uppstod"
	}
	return fillTemplate(Template("error"), map[string]string{"error": message})
}

// InferExpertise grades the user from the session: explicit level wins, then
// technical-term hits and history length.
func (g *Generator) InferExpertise(sessionCtx *models.SessionContext) string {
	if sessionCtx == nil {
		return ExpertiseBeginner
	}
	if sessionCtx.ExpertiseLevel != "" {
		return sessionCtx.ExpertiseLevel
	}

	hits := 0
	for _, query := range sessionCtx.QueryHistory {
		queryLower := strings.ToLower(query)
		for _, term := range technicalTerms {
			if strings.Contains(queryLower, term) {
				hits++
			}
		}
	}

	switch {
	case hits >= 3 || len(sessionCtx.QueryHistory) >= 10:
		return ExpertiseExpert
	case hits >= 1 || len(sessionCtx.QueryHistory) >= 3:
		return ExpertiseIntermediate
	default:
		return ExpertiseBeginner
	}
}

// SimplifyTechnicalTerms rewrites jargon into everyday wording.
func SimplifyTechnicalTerms(text string) string {
	for _, s := range simplifications {
		text = s.pattern.ReplaceAllString(text, s.replacement)
	}
	return text
}
