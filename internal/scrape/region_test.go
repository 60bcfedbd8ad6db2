package scrape

import (
	"testing"

	"esports-oracle/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		tournament string
		want       domain.Region
	}{
		{"VCT 2026: Americas Stage 1", domain.RegionAmericas},
		{"Challengers League 2026 North America", domain.RegionAmericas},
		{"VCT 2026: EMEA Stage 2", domain.RegionEMEA},
		{"VCT 2026: Pacific Stage 1", domain.RegionPacific},
		{"Masters Madrid 2026", domain.RegionInternational},
		{"Valorant Champions 2026", domain.RegionInternational},
		{"BLAST Premier World Final", domain.RegionOther},
		{"Tipsport Cup Winter", domain.RegionOther},
		{"", domain.RegionUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectRegion(tt.tournament), "tournament %q", tt.tournament)
	}
}

func TestDetectRegionIsDeterministic(t *testing.T) {
	name := "VCT 2026: EMEA Stage 2 Playoffs"
	first := DetectRegion(name)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DetectRegion(name))
	}
}

func TestImportanceScore(t *testing.T) {
	assert.Equal(t, 0, ImportanceScore("Weekly Community Cup"))
	assert.Equal(t, 5, ImportanceScore("Challengers Open Qualifier")-ImportanceScore("Challengers"))
	assert.Greater(t, ImportanceScore("Champions Grand Final"), ImportanceScore("Champions"))
	assert.LessOrEqual(t, ImportanceScore("Champions Masters Major International Grand Final Playoffs"), MaxImportance)
}

func TestImportanceScoreCountsOneKeywordPerTable(t *testing.T) {
	// "Grand Final" contains "final"; it must score once, not twice.
	assert.Equal(t, 30, ImportanceScore("Grand Final"))
}

func TestParseScore(t *testing.T) {
	assert.Nil(t, ParseScore(""))
	assert.Nil(t, ParseScore(" - "))
	assert.Nil(t, ParseScore("vs"))
	assert.Nil(t, ParseScore("abc"))
	if got := ParseScore(" 2 "); assert.NotNil(t, got) {
		assert.Equal(t, 2, *got)
	}
	if got := ParseScore("0"); assert.NotNil(t, got) {
		assert.Equal(t, 0, *got)
	}
}

func TestParseBestOf(t *testing.T) {
	assert.Equal(t, 3, ParseBestOf("Bo3"))
	assert.Equal(t, 5, ParseBestOf("Best of 5"))
	assert.Equal(t, 0, ParseBestOf("whatever"))
}
