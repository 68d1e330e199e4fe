package quote

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/joseph-ayodele/startpacket/constants"
)

// Signal names a service family that drives pest inference.
type Signal string

const (
	SignalGPC    Signal = "gpc"
	SignalRodent Signal = "rodent"
	SignalILT    Signal = "ilt"
)

// EquipmentBucket is the classification target for an equipment row.
type EquipmentBucket string

const (
	BucketRodentBaitStation EquipmentBucket = "rbs"
	BucketMultiCatchTrap    EquipmentBucket = "multi_catch"
	BucketInsectLightTrap   EquipmentBucket = "ilt"
)

// EquipmentRule maps row names to a bucket. Patterns are case-insensitive regular expressions.
type EquipmentRule struct {
	Bucket   EquipmentBucket `toml:"bucket" validate:"required,oneof=rbs multi_catch ilt"`
	Patterns []string        `toml:"patterns" validate:"required,min=1,dive,required"`
}

// ServiceTemplate is instantiated when one of its keywords appears in the routine services table.
type ServiceTemplate struct {
	Code             constants.ServiceCode `toml:"code" validate:"required"`
	Keywords         []string              `toml:"keywords" validate:"required,min=1,dive,required"`
	ServiceName      string                `toml:"service_name" validate:"required"`
	Category         string                `toml:"category" validate:"required"`
	ProgramType      string                `toml:"program_type" validate:"required"`
	DefaultFrequency constants.Frequency   `toml:"default_frequency" validate:"required"`
	Signal           Signal                `toml:"signal" validate:"required,oneof=gpc rodent ilt"`
}

// PestRule adds Pest to the covered list when Signal is active.
type PestRule struct {
	Pest   string `toml:"pest" validate:"required"`
	Signal Signal `toml:"signal" validate:"required,oneof=gpc rodent ilt"`
}

// Limits bounds every section scan.
type Limits struct {
	HeaderBlock       int `toml:"header_block" validate:"gt=0"`
	PreparerBlock     int `toml:"preparer_block" validate:"gt=0"`
	EquipmentLookback int `toml:"equipment_lookback" validate:"gt=0"`
	SummaryLines      int `toml:"summary_lines" validate:"gt=0"`
	SummaryGrace      int `toml:"summary_grace" validate:"gt=0"`
	ColumnLookahead   int `toml:"column_lookahead" validate:"gt=0"`
	LabelLookahead    int `toml:"label_lookahead" validate:"gt=0"`
	ScheduleLookahead int `toml:"schedule_lookahead" validate:"gte=0"`
	SplitLength       int `toml:"split_length" validate:"gt=0"`
	AccountNameMax    int `toml:"account_name_max" validate:"gt=0"`
}

// Vocabulary holds every phrase list and rule table the extractors consult.
// Parsers compile it once; the value itself is never mutated by extraction.
type Vocabulary struct {
	HeaderTerminators  []string          `toml:"header_terminators" validate:"required,min=1,dive,required"`
	RoutineTerminators []string          `toml:"routine_terminators" validate:"required,min=1,dive,required"`
	HeaderAnchors      []string          `toml:"header_anchors" validate:"required,min=1,dive,required"`
	MergedLineAnchors  []string          `toml:"merged_line_anchors" validate:"dive,required"`
	AddressSuffixes    []string          `toml:"address_suffixes" validate:"required,min=1,dive,required"`
	StreetSuffixes     []string          `toml:"street_suffixes" validate:"required,min=1,dive,required"`
	CompanyWords       []string          `toml:"company_words" validate:"dive,required"`
	PricingNoiseWords  []string          `toml:"pricing_noise_words" validate:"dive,required"`
	SummaryStopWords   []string          `toml:"summary_stop_words" validate:"dive,required"`
	MonthNames         []string          `toml:"month_names" validate:"len=12,dive,required"`
	EquipmentRules     []EquipmentRule   `toml:"equipment_rules" validate:"required,min=1,dive"`
	ServiceTemplates   []ServiceTemplate `toml:"service_templates" validate:"required,min=1,dive"`
	PestRules          []PestRule        `toml:"pest_rules" validate:"dive"`
	Limits             Limits            `toml:"limits"`
}

// DefaultVocabulary returns a fresh copy of the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		HeaderTerminators: []string{
			"prepared by",
			"equipment",
			"total cost of equipment",
			"investment summary",
			"covered pests",
			"scope of service",
			"service specifications",
			"service frequency",
			"plan limitations",
			"documentation",
			"terms & conditions",
			"about presto-x",
			"experienced service personnel",
			"technical leadership",
			"corporate responsibility",
			"innovation & technology",
			"table of contents",
		},
		RoutineTerminators: []string{
			"investment summary",
			"plan limitations",
			"scope of service",
			"equipment summary",
			"covered pests",
			"timeline",
			"requested start date",
			"about presto-x",
			"innovation & technology",
		},
		HeaderAnchors:     []string{"tailoredfor", "tailorfor", "taylorfor", "preparedfor", "accountname", "customername"},
		MergedLineAnchors: []string{"prepared by:", "tailored for:"},
		AddressSuffixes: []string{
			"st", "street", "rd", "road", "dr", "drive", "ln", "lane", "blvd", "boulevard",
			"ave", "avenue", "hwy", "highway", "way", "trail", "trl", "terrace", "ter",
			"pkwy", "parkway", "court", "ct", "cir", "circle", "loop", "suite", "ste", "unit",
		},
		StreetSuffixes: []string{
			"Road", "Rd", "Street", "St", "Drive", "Dr", "Lane", "Ln", "Boulevard", "Blvd",
			"Avenue", "Ave", "Way", "Court", "Ct", "Trail", "Trl", "Parkway", "Pkwy", "Circle", "Cir",
		},
		CompanyWords: []string{
			"inc", "llc", "corp", "corporation", "co", "company", "ltd", "lp", "llp",
			"group", "holdings", "partners", "associates", "enterprises", "industries",
			"international", "services", "restaurant", "foods", "bank", "hotel", "church",
			"school", "center", "centre", "hospital", "clinic", "the", "of", "and", "&",
		},
		PricingNoiseWords: []string{
			"road", "street", "avenue", "blvd", "boulevard", "drive", "lane", "way",
			"court", "circle", "houston", "tx", "texas", "us",
		},
		SummaryStopWords: []string{
			"scope", "equipment", "routine", "covered", "timeline", "requested", "about",
			"innovation", "table", "documentation", "additional", "terms",
		},
		MonthNames: []string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		EquipmentRules: []EquipmentRule{
			{Bucket: BucketRodentBaitStation, Patterns: []string{`bait\s+station`, `rodent\s+bait`, `\brbs\b`, `rodent\s+station`, `eradico`}},
			{Bucket: BucketMultiCatchTrap, Patterns: []string{`multicatch`, `multi-catch`, `\bmrt\b`, `mouse\s+trap`}},
			{Bucket: BucketInsectLightTrap, Patterns: []string{`lumnia`, `insect\s+light\s+trap`, `\bilt\b`, `fly\s+light`}},
		},
		ServiceTemplates: []ServiceTemplate{
			{
				Code:             constants.ServiceGPC,
				Keywords:         []string{"general pest"},
				ServiceName:      "General Pest Control",
				Category:         "GPC",
				ProgramType:      "General Pest Control",
				DefaultFrequency: constants.FrequencyMonthly,
				Signal:           SignalGPC,
			},
			{
				Code:             constants.ServiceMRT,
				Keywords:         []string{"interior monitoring"},
				ServiceName:      "Interior Rodent Monitoring",
				Category:         "Rodent Monitoring",
				ProgramType:      "Interior Monitoring",
				DefaultFrequency: constants.FrequencySemiMonthly,
				Signal:           SignalRodent,
			},
			{
				Code:             constants.ServiceRBS,
				Keywords:         []string{"exterior monitoring"},
				ServiceName:      "Exterior Rodent Monitoring",
				Category:         "Rodent Monitoring",
				ProgramType:      "Exterior Monitoring",
				DefaultFrequency: constants.FrequencyMonthly,
				Signal:           SignalRodent,
			},
			{
				Code:             constants.ServiceILT,
				Keywords:         []string{"insect light trap", "ilt maintenance", "light trap maintenance"},
				ServiceName:      "Insect Light Trap Maintenance",
				Category:         "Fly / ILT",
				ProgramType:      "Insect Light Trap Maintenance",
				DefaultFrequency: constants.FrequencySemiMonthly,
				Signal:           SignalILT,
			},
		},
		PestRules: []PestRule{
			{Pest: "Pavement Ants", Signal: SignalGPC},
			{Pest: "Common Rodents", Signal: SignalRodent},
			{Pest: "Common Roaches", Signal: SignalGPC},
			{Pest: "Common House Fly", Signal: SignalILT},
		},
		Limits: Limits{
			HeaderBlock:       15,
			PreparerBlock:     8,
			EquipmentLookback: 30,
			SummaryLines:      30,
			SummaryGrace:      15,
			ColumnLookahead:   10,
			LabelLookahead:    5,
			ScheduleLookahead: 3,
			SplitLength:       140,
			AccountNameMax:    80,
		},
	}
}

// LoadVocabulary overlays a TOML file onto DefaultVocabulary. Keys absent from
// the file keep their defaults; lists present in the file replace the default list.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("decode vocabulary %s: %w", path, err)
	}
	if err := v.Validate(); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the vocabulary's shape and that every pattern compiles.
func (v Vocabulary) Validate() error {
	_, err := v.validate()
	return err
}

func (v Vocabulary) validate() (*matchers, error) {
	if err := structValidator.Struct(v); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}
	for _, tpl := range v.ServiceTemplates {
		if _, ok := tpl.DefaultFrequency.PerYear(); !ok {
			return nil, fmt.Errorf("invalid vocabulary: service %s has unknown frequency %q", tpl.Code, tpl.DefaultFrequency)
		}
	}
	return v.compile()
}

// matchers is the compiled form of a Vocabulary.
type matchers struct {
	vocab Vocabulary

	addressLine  *regexp.Regexp
	streetSuffix *regexp.Regexp
	pricingNoise *regexp.Regexp
	summaryStop  *regexp.Regexp
	mergedAnchor *regexp.Regexp
	monthName    *regexp.Regexp
	equipment    []compiledEquipmentRule
	companyWords map[string]struct{}
}

type compiledEquipmentRule struct {
	bucket  EquipmentBucket
	pattern *regexp.Regexp
}

func wordAlternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(strings.TrimSpace(w)))
	}
	return strings.Join(quoted, "|")
}

func (v Vocabulary) compile() (*matchers, error) {
	m := &matchers{vocab: v, companyWords: make(map[string]struct{}, len(v.CompanyWords))}

	var err error
	if m.addressLine, err = regexp.Compile(`(?i)^[0-9].*\b(?:` + wordAlternation(v.AddressSuffixes) + `)\b`); err != nil {
		return nil, fmt.Errorf("compile address suffixes: %w", err)
	}
	if m.streetSuffix, err = regexp.Compile(`(?i)\b(?:` + wordAlternation(v.StreetSuffixes) + `)\b`); err != nil {
		return nil, fmt.Errorf("compile street suffixes: %w", err)
	}
	if len(v.PricingNoiseWords) > 0 {
		if m.pricingNoise, err = regexp.Compile(`(?i)\b(?:` + wordAlternation(v.PricingNoiseWords) + `)\b`); err != nil {
			return nil, fmt.Errorf("compile pricing noise words: %w", err)
		}
	}
	if len(v.SummaryStopWords) > 0 {
		if m.summaryStop, err = regexp.Compile(`(?i)^(?:` + wordAlternation(v.SummaryStopWords) + `)`); err != nil {
			return nil, fmt.Errorf("compile summary stop words: %w", err)
		}
	}
	if len(v.MergedLineAnchors) > 0 {
		parts := make([]string, 0, len(v.MergedLineAnchors))
		for _, a := range v.MergedLineAnchors {
			// tolerate any whitespace run between the anchor's words
			words := strings.Fields(a)
			for i := range words {
				words[i] = regexp.QuoteMeta(words[i])
			}
			parts = append(parts, strings.Join(words, `\s+`))
		}
		if m.mergedAnchor, err = regexp.Compile(`(?i)(?:` + strings.Join(parts, "|") + `)`); err != nil {
			return nil, fmt.Errorf("compile merged line anchors: %w", err)
		}
	}
	if m.monthName, err = regexp.Compile(`(?i)\b(` + wordAlternation(v.MonthNames) + `)\s+([0-9]{1,2})\b(?:,?\s+([0-9]{4}))?`); err != nil {
		return nil, fmt.Errorf("compile month names: %w", err)
	}
	for _, rule := range v.EquipmentRules {
		for _, p := range rule.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("compile equipment pattern %q: %w", p, err)
			}
			m.equipment = append(m.equipment, compiledEquipmentRule{bucket: rule.Bucket, pattern: re})
		}
	}
	for _, w := range v.CompanyWords {
		m.companyWords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return m, nil
}

// isHeaderStop reports whether line starts with a header-block terminator.
func (m *matchers) isHeaderStop(line string) bool {
	return hasPrefixFold(line, m.vocab.HeaderTerminators)
}

func (m *matchers) isRoutineStop(line string) bool {
	return hasPrefixFold(line, m.vocab.RoutineTerminators)
}
