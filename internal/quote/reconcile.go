package quote

import (
	"slices"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/entity"
)

// extraction gathers the independent extractor outputs for one document.
type extraction struct {
	header    HeaderInfo
	preparer  PreparerInfo
	equipment EquipmentResult
	pricing   PricingSummary
	schedule  ScheduleInfo
	services  ServiceResult
	pests     []string
}

// reconcile merges extractor outputs into a Draft: pricing fallbacks and
// derived totals, the synthesized service list and inferred pests.
func (p *Parser) reconcile(x extraction) *entity.Draft {
	oneTime := x.pricing.OneTimeCost
	if oneTime == nil {
		oneTime = x.equipment.TotalCost
	}
	initial := x.pricing.InitialServiceCost
	monthly := x.pricing.AverageMonthlyCost

	var annual, combinedInitial *float64
	if monthly != nil {
		annual = ptr(roundCents(*monthly * 12))
	}
	if oneTime != nil || initial != nil {
		combinedInitial = ptr(roundCents(deref(oneTime) + deref(initial)))
	}

	services, signals := p.resolveServices(x.services, x.equipment.Summary)
	equipment := x.equipment.Summary
	equipment.Summary = EquipmentSignature(equipment)
	if equipment.OtherEquipment == nil {
		equipment.OtherEquipment = []entity.EquipmentItem{}
	}

	d := &entity.Draft{
		AccountName:         x.header.AccountName,
		ContactName:         x.header.ContactName,
		ContactEmail:        x.header.ContactEmail,
		ServiceAddressLine1: x.header.ServiceAddressLine1,
		ServiceCity:         x.header.ServiceCity,
		ServiceState:        x.header.ServiceState,
		ServiceZip:          x.header.ServiceZip,
		AEName:              x.preparer.AEName,
		AEEmail:             x.preparer.AEEmail,
		BranchID:            p.branchID,

		Services:  services,
		Equipment: equipment,
		Pricing: entity.Pricing{
			OneTimeCost:        oneTime,
			InitialServiceCost: initial,
			AverageMonthlyCost: monthly,
		},

		EquipmentOneTimeTotal: oneTime,
		ServicesInitialTotal:  initial,
		CombinedInitialTotal:  combinedInitial,
		ServicesMonthlyTotal:  monthly,
		CombinedMonthlyTotal:  monthly,
		ServicesAnnualTotal:   annual,
		CombinedAnnualTotal:   annual,
		MonthlyCost:           monthly,
		AnnualCost:            annual,

		RequestedStartDate: x.schedule.RequestedStartDate,
		StartMonth:         x.schedule.StartMonth,
		CoveredPests:       p.m.derivePests(x.pests, signals, x.equipment.Summary),

		LeadType:                    string(p.leadType),
		InitialServiceDescription:   InitialDescription(x.equipment.Summary, initial),
		MaintenanceScopeDescription: MaintenanceDescription(services),
		LogBookNeeded:               true,
	}
	if monthly != nil && *monthly > 0 {
		d.JobType = ptr(string(constants.JobContract))
	}
	return d
}

// resolveServices substitutes the equipment-driven default list when the
// routine services table produced nothing, and otherwise guarantees GPC.
func (p *Parser) resolveServices(res ServiceResult, eq entity.EquipmentSummary) ([]entity.Service, Signals) {
	if !res.Found {
		services, signals := fallbackServices(eq)
		sortServices(services)
		return services, signals
	}

	services := slices.Clone(res.Services)
	signals := res.Signals
	hasGPC := slices.ContainsFunc(services, func(s entity.Service) bool {
		return s.ServiceCode == string(constants.ServiceGPC)
	})
	if !hasGPC {
		services = append(services, p.gpcService())
		signals.GPC = true
	}
	sortServices(services)
	return services, signals
}

func (p *Parser) gpcService() entity.Service {
	for _, tpl := range p.m.vocab.ServiceTemplates {
		if tpl.Code == constants.ServiceGPC {
			return newService(tpl)
		}
	}
	return serviceFrom("General Pest Control", constants.ServiceGPC, "GPC", "General Pest Control", constants.FrequencyMonthly)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
