package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/startpacket/internal/entity"
)

func TestExtractCoveredPests(t *testing.T) {
	m := newMatchers(t)

	got := m.ExtractCoveredPests([]string{
		"Covered Pests",
		"• Ants, Roaches (German, American)",
		"• Spiders",
		"- ants",
		"Scope of Service",
		"• Termites",
	})
	assert.Equal(t, []string{"Ants", "Roaches (German, American)", "Spiders"}, got)

	assert.Nil(t, m.ExtractCoveredPests([]string{"no pests here"}))
}

func TestExtractCoveredPests_StopsAtNumberedService(t *testing.T) {
	m := newMatchers(t)
	got := m.ExtractCoveredPests([]string{"Covered Pests", "Spiders", "Service 2", "Flies"})
	assert.Equal(t, []string{"Spiders"}, got)
}

func TestDerivePests(t *testing.T) {
	m := newMatchers(t)

	t.Run("equipment implies rodents", func(t *testing.T) {
		got := m.derivePests(nil, Signals{GPC: true}, entity.EquipmentSummary{MultiCatchTrapQty: 2})
		assert.Equal(t, []string{"Pavement Ants", "Common Rodents", "Common Roaches"}, got)
	})
	t.Run("explicit first and deduplicated", func(t *testing.T) {
		got := m.derivePests([]string{"common roaches", "Spiders"}, Signals{GPC: true, ILT: true}, entity.EquipmentSummary{})
		assert.Equal(t, []string{"common roaches", "Spiders", "Pavement Ants", "Common House Fly"}, got)
	})
	t.Run("no signals", func(t *testing.T) {
		got := m.derivePests(nil, Signals{}, entity.EquipmentSummary{})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
