package quote

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/entity"
)

const (
	afterHoursSuffix   = " (Includes After Hours Service)"
	defaultMaintenance = "Monthly GPC"
)

// InitialDescription renders the one-off visit, e.g.
// "Initial service and install 2 MRT, 12 RBS, & 1 ILT".
func InitialDescription(eq entity.EquipmentSummary, initialCost *float64) string {
	var parts []string
	if eq.MultiCatchTrapQty > 0 {
		parts = append(parts, formatQuantity(eq.MultiCatchTrapQty)+" MRT")
	}
	if eq.RodentBaitStationQty > 0 {
		parts = append(parts, formatQuantity(eq.RodentBaitStationQty)+" RBS")
	}
	if eq.InsectLightTrapQty > 0 {
		parts = append(parts, formatQuantity(eq.InsectLightTrapQty)+" ILT")
	}
	switch {
	case len(parts) == 0 && initialCost != nil && *initialCost > 0:
		return "Initial service"
	case len(parts) == 0:
		return "Standard Initial Setup"
	case len(parts) == 1:
		return "Initial service and install " + parts[0]
	}
	return "Initial service and install " + strings.Join(parts[:len(parts)-1], ", ") + ", & " + parts[len(parts)-1]
}

var maintenanceLabels = map[constants.ServiceCode]string{
	constants.ServiceGPC:    "GPC",
	constants.ServiceRBS:    "Exterior Rodent Monitoring",
	constants.ServiceRodent: "Exterior Rodent Monitoring",
	constants.ServiceMRT:    "Interior Rodent Monitoring",
	constants.ServiceILT:    "ILT Maintenance",
}

type maintenanceEntry struct {
	code  constants.ServiceCode
	label string
	text  string
}

// MaintenanceDescription renders the recurring scope, e.g.
// "Monthly GPC, Semi-Monthly Interior Rodent Monitoring & Semi-Monthly ILT Maintenance".
// Combined rodent monitoring is described with the exterior label.
func MaintenanceDescription(services []entity.Service) string {
	var (
		entries    []maintenanceEntry
		afterHours bool
	)
	for _, svc := range services {
		if svc.AfterHours != nil && *svc.AfterHours {
			afterHours = true
		}
		code := constants.ServiceCode(strings.ToUpper(svc.ServiceCode))
		label, ok := maintenanceLabels[code]
		if !ok {
			continue
		}
		if code == constants.ServiceRodent {
			code = constants.ServiceRBS
		}
		freq := maintenanceFrequency(code, svc)
		entries = append(entries, maintenanceEntry{code: code, label: label, text: freq + " " + label})
	}
	if len(entries) == 0 {
		return defaultMaintenance
	}

	slices.SortStableFunc(entries, func(a, b maintenanceEntry) int {
		if d := constants.ServiceOrder(a.code) - constants.ServiceOrder(b.code); d != 0 {
			return d
		}
		return strings.Compare(a.text, b.text)
	})
	entries = slices.CompactFunc(entries, func(a, b maintenanceEntry) bool {
		return a.code == b.code && a.label == b.label
	})

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.text
	}
	out := texts[0]
	if len(texts) > 1 {
		out = strings.Join(texts[:len(texts)-1], ", ") + " & " + texts[len(texts)-1]
	}
	if afterHours {
		out += afterHoursSuffix
	}
	return out
}

func maintenanceFrequency(code constants.ServiceCode, svc entity.Service) string {
	perYear := 0
	if svc.ServicesPerYear != nil {
		perYear = *svc.ServicesPerYear
	}
	if code == constants.ServiceILT && perYear >= 24 {
		return string(constants.FrequencySemiMonthly)
	}
	if svc.FrequencyLabel != nil && *svc.FrequencyLabel != "" {
		return *svc.FrequencyLabel
	}
	if perYear >= 24 {
		return string(constants.FrequencySemiMonthly)
	}
	return string(constants.FrequencyMonthly)
}
