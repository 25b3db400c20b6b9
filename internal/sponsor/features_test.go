package sponsor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFeatures_ExactNameHighJW(t *testing.T) {
	candidate := Company{ID: 1, Name: "Acme Therapeutics, Inc.", Domain: "acme.com", Ticker: "ACME"}
	f := ExtractFeatures("Acme Therapeutics", candidate, nil)
	assert.Greater(t, f.JWPrimary, 0.9)
	assert.Equal(t, 1.0, f.StrongTokenOverlap)
}

func TestExtractFeatures_AcronymMatch(t *testing.T) {
	candidate := Company{ID: 1, Name: "Bristol Myers Squibb"}
	f := ExtractFeatures("BMS", candidate, nil)
	assert.Equal(t, 1.0, f.AcronymExact)
}

func TestExtractFeatures_DomainRootMatch(t *testing.T) {
	candidate := Company{ID: 1, Name: "Example Biosciences", Domain: "examplebio.com"}
	f := ExtractFeatures("ExampleBio Clinical Operations", candidate, nil)
	assert.Equal(t, 1.0, f.DomainRootMatch)
}

func TestExtractFeatures_TickerHit(t *testing.T) {
	candidate := Company{ID: 1, Name: "Example Biosciences", Ticker: "EXBI"}
	f := ExtractFeatures("Example Biosciences (NASDAQ: EXBI)", candidate, nil)
	assert.Equal(t, 1.0, f.TickerStringHit)
}

func TestExtractFeatures_AcademicPenalty(t *testing.T) {
	candidate := Company{ID: 1, Name: "Acme Therapeutics"}
	f := ExtractFeatures("University of Somewhere Medical Center", candidate, nil)
	assert.Equal(t, 1.0, f.AcademicKeywordPenalty)
}

func TestExtractFeatures_AliasBoostsJW(t *testing.T) {
	candidate := Company{ID: 1, Name: "Acme Therapeutics"}
	aliases := []CompanyAlias{{CompanyID: 1, Alias: "ACM Bio"}}
	withoutAlias := ExtractFeatures("ACM Bio", Company{ID: 1, Name: "Acme Therapeutics"}, nil)
	withAlias := ExtractFeatures("ACM Bio", candidate, aliases)
	assert.GreaterOrEqual(t, withAlias.JWPrimary, withoutAlias.JWPrimary)
}

func TestIsAcademicOrGovernment(t *testing.T) {
	assert.True(t, IsAcademicOrGovernment("Memorial Sloan Kettering Cancer Center"))
	assert.True(t, IsAcademicOrGovernment("National Institutes of Health"))
	assert.False(t, IsAcademicOrGovernment("Acme Therapeutics, Inc."))
}
