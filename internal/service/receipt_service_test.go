package service

import (
	"testing"

	"glassops/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction(t *testing.T) {
	raw := `{"total_amount": 142.50, "vendor_name": "CR Laurence", "date": "2025-03-08", "suggested_category": "hardware"}`

	got, err := parseExtraction(raw)
	require.NoError(t, err)

	require.NotNil(t, got.Amount)
	assert.InDelta(t, 142.50, *got.Amount, 0.001)
	require.NotNil(t, got.Vendor)
	assert.Equal(t, "CR Laurence", *got.Vendor)
	require.NotNil(t, got.Date)
	assert.Equal(t, "2025-03-08", *got.Date)
	assert.Equal(t, model.CategoryHardware, got.Category)
}

func TestParseExtractionStripsFences(t *testing.T) {
	raw := "```json\n{\"total_amount\": 20, \"vendor_name\": \"Shell\", \"date\": null, \"suggested_category\": \"gas_fuel\"}\n```"

	got, err := parseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryGasFuel, got.Category)
	assert.Nil(t, got.Date)
}

func TestParseExtractionUnknownCategoryFallsBack(t *testing.T) {
	raw := `{"total_amount": null, "vendor_name": null, "date": null, "suggested_category": "groceries"}`

	got, err := parseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryOther, got.Category)
	assert.Nil(t, got.Amount)
}

func TestParseExtractionRejectsGarbage(t *testing.T) {
	_, err := parseExtraction("sorry, I cannot read this image")
	assert.Error(t, err)
}
