package ai

import (
	"fmt"
	"strings"
)

const systemInstruction = `You are a financial assistant specialized in categorizing bank transactions and analyzing bank statements.

SAFETY GUIDELINES:
- Only analyze the provided transaction data
- Generate professional, neutral output
- Focus on factual financial information
- Maintain objectivity and accuracy`

// buildExtractionPrompt asks the model for a strict JSON array of
// transactions found in the statement text. The format hint lets the model
// know whether it is looking at a PDF text layer or CSV content.
func buildExtractionPrompt(text, formatHint string) string {
	var b strings.Builder

	b.WriteString("You are a financial document parser. Extract all bank transactions from this statement")
	if formatHint != "" {
		fmt.Fprintf(&b, " (%s content)", formatHint)
	}
	b.WriteString(".\n\n")

	b.WriteString(`EXTRACTION RULES:
- Find all transaction rows (date, description, amount)
- Dates may be in various formats (MM/DD/YYYY, DD/MM/YYYY, etc.)
- Amounts may have commas, decimals, or negative signs
- Identify debit vs credit transactions (debits often have minus signs or sit in separate columns)
- Extract currency if mentioned, otherwise leave it empty
- Include running balance if available
- Do not infer or add information not present in the text
- If a field is unclear, use an empty string

Output STRICT JSON only: a JSON array of objects, each with fields
"date", "description", "amount", "currency", "type", "balance".
"type" is "debit" or "credit". "amount" is a string and keeps any negative sign.
Do NOT wrap the response in code fences. Output must begin with "[" and end with "]".

Bank Statement Text:
`)
	b.WriteString(text)
	b.WriteString("\n\nExtract ALL transactions found in the statement in the order they appear.")

	return b.String()
}

// buildCategorizationPrompt asks for a single strict JSON object assigning
// one transaction to the expense taxonomy.
func buildCategorizationPrompt(merchant, description, amount string, categories []string) string {
	return fmt.Sprintf(`Categorize this bank transaction:

Merchant: %s
Description: %s
Amount: %s

Available categories: %s

Rules:
- Analyze merchant name and description
- Assign the most appropriate category
- Provide confidence score (0.0-1.0)
- Explain reasoning briefly

Output STRICT JSON only: one object with fields "category", "confidence", "reasoning".
Do NOT wrap the response in code fences. Output must begin with "{" and end with "}".`,
		merchant, description, amount, strings.Join(categories, ", "))
}
