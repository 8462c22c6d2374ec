package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildValuationPrompt(t *testing.T) {
	prompt := BuildValuationPrompt(innova, "Indian Rupees (₹)")

	assert.Contains(t, prompt, "Provide a concise car valuation in Indian Rupees (₹) for:")
	assert.Contains(t, prompt, "Make: Toyota\nModel: Innova\nYear: 2020\nMileage: 50000 miles\nCondition: good")
	assert.Contains(t, prompt, "Additional Info: None provided")
	assert.Contains(t, prompt, "1. Value range in ₹ (minimum and maximum)")
	assert.Contains(t, prompt, "Keep it under 200 words.")

	withInfo := innova
	withInfo.AdditionalInfo = "new tyres"
	assert.Contains(t, BuildValuationPrompt(withInfo, "Indian Rupees (₹)"), "Additional Info: new tyres")
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "₹", currencySymbol("Indian Rupees (₹)"))
	assert.Equal(t, "$", currencySymbol("US Dollars ($)"))
	assert.Equal(t, "EUR", currencySymbol("EUR"))
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt("my old ertiga", []string{"make", "year"})
	assert.Contains(t, prompt, "keys you can find: make, year.")
	assert.Contains(t, prompt, "Message: my old ertiga")
}
