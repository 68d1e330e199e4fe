package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveWith(t *testing.T, lines []string, strategies ...PricingStrategy) PricingSummary {
	t.Helper()
	p, err := New(WithPricingStrategies(strategies...))
	require.NoError(t, err)
	return p.resolvePricing(lines)
}

func TestTotalInvestmentRow(t *testing.T) {
	lines := []string{
		"Investment Summary",
		"One-Time Cost Initial Svc Cost Avg Monthly Cost",
		"Total investment $500.00 $120.00 $89.99",
	}

	ps := resolveWith(t, lines, TotalInvestmentRow{})

	assert.Equal(t, 500.0, val(t, ps.OneTimeCost))
	assert.Equal(t, 120.0, val(t, ps.InitialServiceCost))
	assert.Equal(t, 89.99, val(t, ps.AverageMonthlyCost))
}

func TestTotalInvestmentRow_NeedsThreeAmounts(t *testing.T) {
	ps := resolveWith(t, []string{"Investment Summary", "Total investment $500.00 $120.00"}, TotalInvestmentRow{})
	assert.Equal(t, PricingSummary{}, ps)
}

func TestLabelledColumns(t *testing.T) {
	t.Run("one amount per row", func(t *testing.T) {
		ps := resolveWith(t, []string{
			"Investment Summary",
			"One-Time Cost Initial Svc Cost Avg Monthly Cost",
			"$1,250.00",
			"$150.00",
			"$95.50",
		}, LabelledColumns{})
		assert.Equal(t, 1250.0, val(t, ps.OneTimeCost))
		assert.Equal(t, 150.0, val(t, ps.InitialServiceCost))
		assert.Equal(t, 95.5, val(t, ps.AverageMonthlyCost))
	})
	t.Run("pair then single", func(t *testing.T) {
		ps := resolveWith(t, []string{
			"Investment Summary",
			"One-Time Cost Initial Service Cost Average Monthly Cost",
			"$500.00 $100.00",
			"$75.00",
		}, LabelledColumns{})
		assert.Equal(t, 500.0, val(t, ps.OneTimeCost))
		assert.Equal(t, 100.0, val(t, ps.InitialServiceCost))
		assert.Equal(t, 75.0, val(t, ps.AverageMonthlyCost))
	})
	t.Run("address rows skipped", func(t *testing.T) {
		ps := resolveWith(t, []string{
			"Investment Summary",
			"One-Time Cost Initial Svc Cost Avg Monthly Cost",
			"123 Main Street $999.00",
			"$10.00 $20.00 $30.00",
		}, LabelledColumns{})
		assert.Equal(t, 10.0, val(t, ps.OneTimeCost))
		assert.Equal(t, 20.0, val(t, ps.InitialServiceCost))
		assert.Equal(t, 30.0, val(t, ps.AverageMonthlyCost))
	})
}

func TestLabelProximity(t *testing.T) {
	ps := resolveWith(t, []string{
		"Investment Summary",
		"One-Time Cost: $300.00",
		"Initial Service Cost",
		"123 Main Street $999.00",
		"$45.00",
		"Average Monthly Cost $60.00",
	}, LabelProximity{})

	assert.Equal(t, 300.0, val(t, ps.OneTimeCost))
	assert.Equal(t, 45.0, val(t, ps.InitialServiceCost))
	assert.Equal(t, 60.0, val(t, ps.AverageMonthlyCost))
}

func TestLabelProximity_StopsAtNextLabel(t *testing.T) {
	ps := resolveWith(t, []string{
		"Investment Summary",
		"Initial Service Cost",
		"Monthly cost to be determined",
		"$45.00",
	}, LabelProximity{})
	assert.Nil(t, ps.InitialServiceCost)
}

func TestPricingTiersRunInOrder(t *testing.T) {
	lines := []string{
		"Investment Summary",
		"One-Time Cost Initial Svc Cost Avg Monthly Cost",
		"$1.00",
		"$2.00",
		"$3.00",
		"Total investment $500.00 $120.00 $89.99",
	}

	ps := resolveWith(t, lines, DefaultPricingStrategies()...)
	assert.Equal(t, 500.0, val(t, ps.OneTimeCost))
	assert.Equal(t, 89.99, val(t, ps.AverageMonthlyCost))

	ps = resolveWith(t, lines, LabelledColumns{}, TotalInvestmentRow{})
	assert.Equal(t, 1.0, val(t, ps.OneTimeCost))
	assert.Equal(t, 2.0, val(t, ps.InitialServiceCost))
	assert.Equal(t, 3.0, val(t, ps.AverageMonthlyCost))
}

func TestPricingTiersFillGaps(t *testing.T) {
	lines := []string{
		"Investment Summary",
		"One-Time Cost $250.00",
		"Avg Monthly Cost $80.00",
		"Initial Svc Cost $0.00",
	}

	ps := resolveWith(t, lines, DefaultPricingStrategies()...)

	assert.Equal(t, 250.0, val(t, ps.OneTimeCost))
	assert.Equal(t, 0.0, val(t, ps.InitialServiceCost), "a zero amount still counts as found")
	assert.Equal(t, 80.0, val(t, ps.AverageMonthlyCost))
}

func TestPricingSection(t *testing.T) {
	m := newMatchers(t)

	t.Run("numbered contents entry is not the anchor", func(t *testing.T) {
		lines := []string{"3 Investment Summary", "Covered Pests", "Investment Summary", "Avg Monthly Cost $80.00", "x", "Scope of Service"}
		s := m.pricingSection(lines)
		assert.True(t, s.Bounded)
		assert.Equal(t, []string{"Investment Summary", "Avg Monthly Cost $80.00", "x", "Scope of Service"}, s.Lines,
			"stop words within the grace window are kept until a total row is seen")
	})
	t.Run("stops after total row", func(t *testing.T) {
		lines := []string{"Investment Summary", "header", "Total investment $1.00 $2.00 $3.00", "Scope of Service", "$9.00"}
		s := m.pricingSection(lines)
		assert.Equal(t, lines[:3], s.Lines)
	})
	t.Run("no anchor uses whole document", func(t *testing.T) {
		lines := []string{"Some text", "Avg Monthly Cost", "$80.00"}
		s := m.pricingSection(lines)
		assert.False(t, s.Bounded)
		assert.Equal(t, lines, s.Lines)
	})
}

func TestPricingNoise(t *testing.T) {
	m := newMatchers(t)
	assert.True(t, m.isPricingNoise("Houston, TX 77002"))
	assert.True(t, m.isPricingNoise("12 Rodent Bait Stations $240.00"))
	assert.False(t, m.isPricingNoise("$240.00"))
	assert.False(t, m.isPricingNoise("Average Monthly Cost $80.00"))
}
