package llm

import (
	"encoding/json"
	"strings"
)

// PromptVersion changes whenever the prompt changes in a way that should
// invalidate cached answers.
const PromptVersion = "v1"

// FewShotExamples are shown to the model as reference answers.
var FewShotExamples = []ArticleFields{
	{
		Document:          "Topic modeling of seawater desalination research",
		AnalyzedFields:    "Title; Abstract; Keywords",
		TermPreprocessing: "Lemmatization; Stop-word removal",
		Clustering:        "Latent Dirichlet Allocation (LDA); Dynamic Topic Modeling (DTM)",
		ClusterAnalysis:   "Topic identification; Trend visualization; Most cited articles",
		PaperCount:        "11,942 (2000–2024)",
		TermCount:         "500 terms",
	},
	{
		Document:          "Exploring themes in circulating tumor cell research",
		AnalyzedFields:    "Keywords",
		TermPreprocessing: "Not specified",
		Clustering:        "BERTopic; Correlation Explanation (CorEx)",
		ClusterAnalysis:   "Topic quality evaluation; Connection analysis",
		PaperCount:        "1,747 (2008–2023)",
		TermCount:         "45 terms",
	},
}

// BuildSystemPrompt composes the instructions: output shape, known methods to
// reuse, few-shot answers and formatting rules.
func BuildSystemPrompt(req ExtractRequest) string {
	known := req.KnownMethods
	if known == nil {
		known = map[string][]string{}
	}

	parts := []string{
		"You extract methodological metadata from scientific articles that apply topic modeling or term clustering to a bibliographic corpus.",
		"Return ONLY a JSON object with these string fields: " +
			"Document (article title), AnalyzedFields (which parts of the records were analyzed), " +
			"TermPreprocessing, Clustering (topic modeling or clustering methods), ClusterAnalysis (how the resulting clusters were analyzed), " +
			"PaperCount (number of papers and period), TermCount (number of terms or topics).",
		"KNOWN_METHODS (reuse these exact labels whenever they match what the article describes):\n" + mustJSON(known),
		"Examples of correct answers:\n" + mustJSON(FewShotExamples),
		"Rules:",
		"- Separate multiple items with semicolons.",
		"- Prefer a label from KNOWN_METHODS over a new wording of the same method.",
		"- Use \"Not specified\" only when the article truly does not mention the information.",
		"- For keywords, state the keyword type (Author Keywords, WoS Keywords, Keywords Plus) when the article says it.",
		"- Never output null and never nest objects or arrays.",
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt packages the article text, cut at maxChars runes when positive.
func BuildUserPrompt(req ExtractRequest, maxChars int) string {
	var b strings.Builder
	if name := strings.TrimSpace(req.FilenameHint); name != "" {
		b.WriteString("Filename: ")
		b.WriteString(name)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(req.Text)
	b.WriteString("\nArticle text:\n")
	if r := []rune(text); maxChars > 0 && len(r) > maxChars {
		b.WriteString(string(r[:maxChars]))
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
