package service

import (
	"fmt"
	"strings"

	"carvalue/internal/model"
)

const valuationPromptTemplate = `Provide a concise car valuation in %s for:

Make: %s
Model: %s
Year: %s
Mileage: %s miles
Condition: %s
Additional Info: %s

Include:
1. Value range in %s (minimum and maximum)
2. 2-3 key factors affecting valuation
3. Brief market trend
4. 1-2 tips for maximizing value

Keep it under 200 words. Format with markdown headings and bullet points for readability.`

// BuildValuationPrompt renders the prompt sent to the generative model
func BuildValuationPrompt(v model.VehicleAttributes, currency string) string {
	info := strings.TrimSpace(v.AdditionalInfo)
	if info == "" {
		info = "None provided"
	}
	return fmt.Sprintf(valuationPromptTemplate,
		currency,
		v.Make,
		v.Model,
		v.Year,
		v.Mileage,
		v.Condition,
		info,
		currencySymbol(currency),
	)
}

// currencySymbol picks "₹" out of "Indian Rupees (₹)"
func currencySymbol(currency string) string {
	open := strings.LastIndex(currency, "(")
	end := strings.LastIndex(currency, ")")
	if open >= 0 && end > open+1 {
		return currency[open+1 : end]
	}
	return currency
}

const extractionPrompt = `You extract car details from a customer's chat message.
Return ONLY a JSON object with any of these keys you can find: %s.
- make: manufacturer name, e.g. "Toyota"
- model: model name, e.g. "Innova"
- year: 4-digit model year as a string
- mileage: distance driven, digits only, as a string
- condition: one of "excellent", "good", "fair", "poor"
Omit keys that are not mentioned. Do not guess.

Message: %s`

// BuildExtractionPrompt asks the model for the listed fields only
func BuildExtractionPrompt(utterance string, fields []string) string {
	return fmt.Sprintf(extractionPrompt, strings.Join(fields, ", "), utterance)
}
