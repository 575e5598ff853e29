package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
)

func intp(v int) *int { return &v }

func TestBuildVariantsInclusionRule(t *testing.T) {
	inputs := []domain.VariantInput{
		{Color: "Black", Dimensions: "40x40", Stock: intp(10), RealPrice: "100", Price: "80"},
		{Color: "", Stock: intp(5), Price: "50"},            // no color
		{Color: "White", Price: "50"},                       // no stock
		{Color: "Red", Stock: intp(-1), Price: "50"},        // negative stock
		{Color: "Blue", Stock: intp(3), Price: "not-a-num"}, // bad price
		{Color: "Green", Stock: intp(0), Price: "25"},       // zero stock is fine
	}

	variants := buildVariants(inputs, nil)
	require.Len(t, variants, 2)

	assert.Equal(t, "Black", variants[0].Color)
	assert.Equal(t, "40x40", variants[0].Dimensions)
	assert.Equal(t, 10, variants[0].Stock)
	assert.Equal(t, 80.0, variants[0].Price)
	assert.Equal(t, 100.0, variants[0].RealPrice)
	assert.Equal(t, 20.0, variants[0].Discount)
	assert.NotEmpty(t, variants[0].VariantID)

	assert.Equal(t, "Green", variants[1].Color)
	assert.Equal(t, 0, variants[1].Stock)
}

func TestBuildVariantsPreservesExistingIDs(t *testing.T) {
	existing := []domain.Variant{
		{VariantID: "v-black", Color: "Black", Dimensions: "40x40", Stock: 4, Price: 80},
		{VariantID: "v-white", Color: "White", Stock: 2, Price: 60},
	}
	inputs := []domain.VariantInput{
		{Color: "Black", Dimensions: "40x40", Stock: intp(7), Price: "85"},
		{Color: "White", Stock: intp(2), Price: "60"},
		{Color: "Red", Stock: intp(1), Price: "90"},
	}

	variants := buildVariants(inputs, existing)
	require.Len(t, variants, 3)

	// Surviving variants keep their ids so stock adjustments keyed on
	// variant id stay valid across edits.
	assert.Equal(t, "v-black", variants[0].VariantID)
	assert.Equal(t, 7, variants[0].Stock)
	assert.Equal(t, "v-white", variants[1].VariantID)

	// The new color gets a fresh id.
	assert.NotEmpty(t, variants[2].VariantID)
	assert.NotEqual(t, "v-black", variants[2].VariantID)
	assert.NotEqual(t, "v-white", variants[2].VariantID)
}

func TestNormalizeImages(t *testing.T) {
	_, err := normalizeImages(nil)
	assert.ErrorIs(t, err, ErrPrimaryImageRequired)

	_, err = normalizeImages([]string{"", "", ""})
	assert.ErrorIs(t, err, ErrPrimaryImageRequired)

	imgs, err := normalizeImages([]string{"a.jpg", "", "b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, imgs)

	tooMany := make([]string, domain.MaxProductImages+1)
	for i := range tooMany {
		tooMany[i] = "img.jpg"
	}
	_, err = normalizeImages(tooMany)
	assert.ErrorIs(t, err, ErrTooManyImages)
}
