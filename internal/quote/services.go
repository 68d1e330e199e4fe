package quote

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/entity"
)

const serviceDescriptionText = "Imported from Routine Management Services"

// Signals records which service families the quote covers.
type Signals struct {
	GPC    bool
	Rodent bool
	ILT    bool
}

func (s Signals) Has(sig Signal) bool {
	switch sig {
	case SignalGPC:
		return s.GPC
	case SignalRodent:
		return s.Rodent
	case SignalILT:
		return s.ILT
	}
	return false
}

func (s *Signals) set(sig Signal) {
	switch sig {
	case SignalGPC:
		s.GPC = true
	case SignalRodent:
		s.Rodent = true
	case SignalILT:
		s.ILT = true
	}
}

// ServiceResult is what the routine services table stated explicitly.
// Found is false when the table is missing or named no known service.
type ServiceResult struct {
	Services []entity.Service
	Signals  Signals
	Found    bool
	// Block is the table body, kept for overrides.
	Block []string
}

// ServiceOverride adjusts the collected services after the table is read.
type ServiceOverride interface {
	Name() string
	Apply(block []string, services []entity.Service)
}

var (
	perYearRe    = regexp.MustCompile(`(?i)\((\d+)\s*x\)`)
	dashRunRe    = regexp.MustCompile(`[-–]+`)
	afterHoursRe = regexp.MustCompile(`(?i)after\s+hours(?:\s+service)?\??\s*[-:]?\s*yes\b`)
	iltMentionRe = regexp.MustCompile(`(?i)insect\s+light|ilt`)
	semiRe       = regexp.MustCompile(`(?i)semi`)
)

// ILTSemiMonthly forces every insect light trap service to Semi-Monthly when
// the table mentions insect light traps together with "semi" on any line.
type ILTSemiMonthly struct{}

func (ILTSemiMonthly) Name() string { return "ilt_semi_monthly" }

func (ILTSemiMonthly) Apply(block []string, services []entity.Service) {
	fire := slices.ContainsFunc(block, func(line string) bool {
		return iltMentionRe.MatchString(line) && semiRe.MatchString(line)
	})
	if !fire {
		return
	}
	for i := range services {
		if services[i].ServiceCode == string(constants.ServiceILT) {
			setFrequency(&services[i], constants.FrequencySemiMonthly, 0)
		}
	}
}

// DefaultServiceOverrides returns the overrides applied after collection.
func DefaultServiceOverrides() []ServiceOverride {
	return []ServiceOverride{ILTSemiMonthly{}}
}

// ExtractServices reads the "Routine Management Services" table. Services
// are instantiated lazily when a template keyword appears; a later "service
// frequency" line updates the most recently seen service.
func (m *matchers) ExtractServices(lines []string, overrides []ServiceOverride) ServiceResult {
	var res ServiceResult

	idx := FindAnchor(lines, 0, routineHeadingRe.MatchString)
	if idx < 0 {
		return res
	}
	end := FindAnchor(lines, idx+1, m.isRoutineStop)
	if end < 0 {
		end = len(lines)
	}
	res.Block = lines[idx+1 : end]

	byCode := map[constants.ServiceCode]int{}
	current := -1
	for _, line := range res.Block {
		lower := strings.ToLower(line)
		if tpl, ok := m.matchTemplate(lower); ok {
			pos, seen := byCode[tpl.Code]
			if !seen {
				res.Services = append(res.Services, newService(tpl))
				pos = len(res.Services) - 1
				byCode[tpl.Code] = pos
			}
			res.Signals.set(tpl.Signal)
			current = pos
		}
		if current < 0 {
			continue
		}
		if serviceFrequencyRe.MatchString(line) {
			label := frequencyLabelFrom(line)
			perYear := 0
			if sm := perYearRe.FindStringSubmatch(line); sm != nil {
				perYear, _ = strconv.Atoi(sm[1])
			}
			setFrequency(&res.Services[current], label, perYear)
		}
		annotateService(&res.Services[current], line)
	}

	for _, o := range overrides {
		o.Apply(res.Block, res.Services)
	}
	res.Found = len(res.Services) > 0
	return res
}

func (m *matchers) matchTemplate(lower string) (ServiceTemplate, bool) {
	for _, tpl := range m.vocab.ServiceTemplates {
		for _, kw := range tpl.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return tpl, true
			}
		}
	}
	return ServiceTemplate{}, false
}

// annotateService picks up the after-hours flag and a per-service price.
func annotateService(svc *entity.Service, line string) {
	if afterHoursRe.MatchString(line) {
		svc.AfterHours = ptr(true)
	}
	if svc.PricePerService == nil {
		svc.PricePerService = firstCurrency(line)
	}
}

// frequencyLabelFrom reads the label from a line such as
// "Service Frequency: Semi-Monthly (24x)". Text after "(" is ignored and
// unrecognized labels are kept title-cased.
func frequencyLabelFrom(line string) constants.Frequency {
	text := line
	if i := strings.Index(text, "("); i >= 0 {
		text = text[:i]
	}
	text = serviceFrequencyRe.ReplaceAllString(text, "")
	text = strings.Trim(dashRunRe.ReplaceAllString(text, " "), " :")
	if text == "" {
		return ""
	}
	if f, ok := constants.InferFrequency(text); ok {
		return f
	}
	return constants.Frequency(titleCase(text))
}

func newService(tpl ServiceTemplate) entity.Service {
	return serviceFrom(tpl.ServiceName, tpl.Code, tpl.Category, tpl.ProgramType, tpl.DefaultFrequency)
}

// setFrequency is the single place frequencyLabel and servicesPerYear are
// written. An explicit per-year count wins and renames the label when the
// count is a standard one; otherwise the count is derived from the label.
func setFrequency(svc *entity.Service, label constants.Frequency, perYear int) {
	if label == "" && perYear <= 0 {
		return
	}
	if perYear <= 0 {
		if n, ok := label.PerYear(); ok {
			perYear = n
		} else if f, ok := constants.InferFrequency(string(label)); ok {
			perYear, _ = f.PerYear()
		}
	}
	if f, ok := constants.FrequencyForPerYear(perYear); ok {
		label = f
	}
	svc.FrequencyLabel = strPtr(string(label))
	svc.ServicesPerYear = nil
	if perYear > 0 {
		svc.ServicesPerYear = ptr(perYear)
	}
}

// fallbackServices synthesizes a service list from the equipment tally when
// the quote has no usable routine services table.
func fallbackServices(eq entity.EquipmentSummary) ([]entity.Service, Signals) {
	sig := Signals{GPC: true}
	services := []entity.Service{
		serviceFrom("General Pest Control", constants.ServiceGPC, "GPC", "General Pest Control", constants.FrequencyMonthly),
	}
	if eq.HasTraps() {
		services = append(services, serviceFrom("Interior/Exterior Rodent Monitoring", constants.ServiceRodent,
			"Rodent Monitoring", "Rodent Monitoring", constants.FrequencyMonthly))
		sig.Rodent = true
	}
	if eq.InsectLightTrapQty > 0 {
		services = append(services, serviceFrom("Insect Light Trap Maintenance", constants.ServiceILT,
			"Fly / ILT", "Insect Light Trap Maintenance", constants.FrequencySemiMonthly))
		sig.ILT = true
	}
	return services, sig
}

func serviceFrom(name string, code constants.ServiceCode, category, program string, freq constants.Frequency) entity.Service {
	svc := entity.Service{
		ServiceName:     name,
		ServiceCode:     string(code),
		Category:        category,
		ProgramType:     program,
		DescriptionText: serviceDescriptionText,
	}
	setFrequency(&svc, freq, 0)
	return svc
}

func sortServices(services []entity.Service) {
	slices.SortStableFunc(services, func(a, b entity.Service) int {
		return constants.ServiceOrder(constants.ServiceCode(a.ServiceCode)) -
			constants.ServiceOrder(constants.ServiceCode(b.ServiceCode))
	})
}
