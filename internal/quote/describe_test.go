package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/startpacket/internal/entity"
)

func TestInitialDescription(t *testing.T) {
	tests := []struct {
		name string
		eq   entity.EquipmentSummary
		cost *float64
		want string
	}{
		{"three kinds", entity.EquipmentSummary{MultiCatchTrapQty: 2, RodentBaitStationQty: 12, InsectLightTrapQty: 1}, nil,
			"Initial service and install 2 MRT, 12 RBS, & 1 ILT"},
		{"two kinds", entity.EquipmentSummary{MultiCatchTrapQty: 4, RodentBaitStationQty: 12}, nil,
			"Initial service and install 4 MRT, & 12 RBS"},
		{"one kind", entity.EquipmentSummary{RodentBaitStationQty: 4}, nil, "Initial service and install 4 RBS"},
		{"no equipment with cost", entity.EquipmentSummary{}, ptr(120.0), "Initial service"},
		{"no equipment zero cost", entity.EquipmentSummary{}, ptr(0.0), "Standard Initial Setup"},
		{"nothing", entity.EquipmentSummary{}, nil, "Standard Initial Setup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialDescription(tt.eq, tt.cost))
		})
	}
}

func svc(code, label string, perYear int) entity.Service {
	return entity.Service{ServiceCode: code, FrequencyLabel: strPtr(label), ServicesPerYear: ptr(perYear)}
}

func TestMaintenanceDescription(t *testing.T) {
	t.Run("ordered by service code", func(t *testing.T) {
		ilt := svc("ILT", "Monthly", 24)
		ilt.AfterHours = ptr(true)
		got := MaintenanceDescription([]entity.Service{
			ilt,
			svc("RBS", "Monthly", 12),
			svc("GPC", "Monthly", 12),
			svc("MRT", "Semi-Monthly", 24),
		})
		assert.Equal(t, "Monthly GPC, Semi-Monthly Interior Rodent Monitoring, Monthly Exterior Rodent Monitoring"+
			" & Semi-Monthly ILT Maintenance (Includes After Hours Service)", got)
	})
	t.Run("combined rodent uses exterior label", func(t *testing.T) {
		got := MaintenanceDescription([]entity.Service{svc("GPC", "Monthly", 12), svc("RODENT", "Monthly", 12)})
		assert.Equal(t, "Monthly GPC & Monthly Exterior Rodent Monitoring", got)
	})
	t.Run("duplicates collapse", func(t *testing.T) {
		got := MaintenanceDescription([]entity.Service{svc("RBS", "Monthly", 12), svc("RODENT", "Monthly", 12)})
		assert.Equal(t, "Monthly Exterior Rodent Monitoring", got)
	})
	t.Run("missing label falls back on count", func(t *testing.T) {
		got := MaintenanceDescription([]entity.Service{{ServiceCode: "mrt", ServicesPerYear: ptr(24)}})
		assert.Equal(t, "Semi-Monthly Interior Rodent Monitoring", got)
	})
	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, "Monthly GPC", MaintenanceDescription(nil))
		assert.Equal(t, "Monthly GPC", MaintenanceDescription([]entity.Service{svc("TERMITE", "Annual", 1)}))
	})
}
