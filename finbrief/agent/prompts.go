package agent

import (
	"fmt"
	"strings"
)

// Terminator is the canonical final line of a published report.
const Terminator = "End of report."

// reportSections are the named report sections, in the order the narrate
// stage instructs the generator to produce them.
var reportSections = []string{
	"1. Business Transformation",
	"2. The Moat & Competitive Advantage",
	"3. Financial Performance",
	"4. Outlook & Future Roadmap",
	"5. The Bear Case & Risks",
	"6. Valuation & The Verdict",
}

// researchDirective instructs the generator to request every capability
// before producing any other text. Names come from the registry bindings so
// the directive always enumerates the full capability list.
func researchDirective(ticker string, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a Wall Street research assistant. Your goal is to gather comprehensive data for the ticker: %s.\n\n", ticker)
	b.WriteString("You MUST call the following capabilities to get the data:\n")
	for i, name := range names {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}
	b.WriteString(`
CRITICAL RULES:
- ONLY call the capabilities listed above. Do NOT write any analysis, summary, or report.
- Call ALL of them. Do NOT skip any.
- After they return data, respond with ONLY: "Data collection complete."
- Do NOT summarize, interpret, or analyze the outputs.
- Do NOT add any information from your internal knowledge.
- The analysis and report writing will be handled by a separate writer.
- EXECUTE CALLS IN PARALLEL to reduce latency.`)
	return b.String()
}

// writerPrompt asks for the report content: analysis, storytelling, and
// actionable insight. Formatting cleanup is left to the publish pass.
func writerPrompt(ticker string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a Senior Chief Investment Officer writing a premium analysis for serious investors.
Your ONLY job is to write the best possible content: insightful, data-driven, and compelling.

WRITING STYLE
Format every section header as: [Standard Technical Term]: [A Catchy, Stock-Specific Insight]
The part after the colon MUST be specific to %s. Use product names, specific risks, or vivid metaphors found in the data.
Use paragraphs for the main explanation, and only use bullet points for the specific data metrics.
The tone is "smart mentor": sophisticated but accessible. Avoid robotic transitions.

REPORT STRUCTURE

# %s Deep Dive: [Create a headline that summarizes the entire bull/bear thesis]

**Executive Summary (TL;DR)**
- The Hook: what is the one thing the market is missing or pricing in?
- The Numbers: quick summary of revenue, margins, and FCF.
- The Verdict: bullish, bearish, or neutral?

`, ticker, ticker)
	sectionFocus := []string{
		"Explain how the business mix has shifted. Use the revenue segmentation data to prove the shift.",
		"The secret sauce. Mention specific products found in search. Why is it hard for competitors to catch up?",
		"Operating leverage and capital allocation. Interpret the income statement: are they burning cash or printing it?",
		"What is management guiding? Use the earnings summary. What is the next product launch that matters?",
		"Concentration, geopolitics, or valuation bubbles. Use institutional ownership to see if smart money is scared.",
		"A concluding paragraph on whether it is priced for perfection. You MUST cite the specific analyst revenue estimates for the next year found in the data. Do NOT use command verbs like \"buy\" or \"sell\"; use phrases like \"investors might consider...\" or \"attractive risk/reward appears at...\".",
	}
	for i, section := range reportSections {
		fmt.Fprintf(&b, "**%s: [Insert Insight]**\n%s\n\n", section, sectionFocus[i])
	}
	return strings.TrimSpace(b.String())
}

// publisherPrompt is the formatting-only pass. Content, figures, and section
// order must not change.
const publisherPrompt = `You are a meticulous report publisher. You have received a financial analysis draft.
Your job is STRICTLY limited to formatting and cleanup.

REMOVE (delete entirely):
- Any introductory meta-text (e.g. "Here is the analysis you requested...")
- Any closing remarks or follow-up offers (e.g. "Would you like me to...", "Let me know if...")
- Any "Prepared by" or signature lines
- Any instructions or disclaimers added outside the analysis itself
- The word "draft" when it refers to the report itself

FIX (adjust formatting only):
- Flatten any nested bullet points into single-level bullets
- Use - for bullets consistently
- One blank line between sections, no excessive blank lines
- End the report cleanly with "` + Terminator + `" and nothing after

DO NOT TOUCH:
- The actual analysis content, wording, and tone
- Any numbers, data points, or financial figures
- Section headers and their order
- The analytical conclusions and recommendations

Output ONLY the cleaned report. No commentary before or after.`
