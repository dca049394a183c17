package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// Prompt construction is kept in pure functions so prompt shapes can be tested
// without touching the network.

const baseSummaryPrompt = `Summarize this lecture/interview transcript. Include:
1. Resources mentioned (books/papers/people)
2. Important concepts
3. Key takeaways
4. Chronological overview with timestamp ranges

Structure the summary for readability using markdown.`

// summaryPrompt returns the instruction for a single-shot summary, optionally
// extended with a caller-supplied template.
func summaryPrompt(template string) string {
	if template == "" {
		return baseSummaryPrompt
	}
	return fmt.Sprintf("%s\n\nUse this template:\n%s", baseSummaryPrompt, template)
}

// sectionPrompt returns the instruction for summarizing one chunk of a larger
// transcript. section is 1-based.
func sectionPrompt(section, total int) string {
	return fmt.Sprintf(`This is SECTION %d of %d from a longer lecture/interview transcript. Summarize this section. Include:
1. Resources mentioned (books/papers/people)
2. Important concepts
3. Key takeaways

Structure the summary for readability using markdown.`, section, total)
}

// metaPrompt returns the instruction for synthesizing section summaries into a
// cross-section overview.
func metaPrompt(total int) string {
	return fmt.Sprintf(`The following are summaries of %d consecutive sections of one lecture/interview transcript. Synthesize them into a single overview covering:
1. Resources mentioned across all sections
2. The most important concepts
3. Overall key takeaways

Structure the overview for readability using markdown.`, total)
}

// keywordsPrompt returns the instruction for extracting at most count keywords.
func keywordsPrompt(count int) string {
	return fmt.Sprintf("Extract at most %d keywords or key phrases that best describe this transcript. "+
		"Reply with only the keywords, comma-separated, without commentary or numbering.", count)
}

// parseKeywords splits a model reply into individual keywords. Replies are
// expected comma-separated but bullet lists and newlines show up in practice.
func parseKeywords(reply string) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	var keywords []string
	for _, f := range fields {
		kw := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(f), "-* "))
		kw = numberedBulletRe.ReplaceAllString(kw, "")
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// numberedBulletRe strips "1. " style numbering without eating keywords that
// legitimately start with a digit.
var numberedBulletRe = regexp.MustCompile(`^\d+\.\s+`)
