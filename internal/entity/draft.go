package entity

import (
	"time"

	"github.com/google/uuid"
)

// EquipmentItem is an equipment row that matched no known bucket.
type EquipmentItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// EquipmentSummary tallies quoted equipment. Summary is derived from the
// other fields and is rebuilt whenever they change.
type EquipmentSummary struct {
	RodentBaitStationQty float64         `json:"rodentBaitStationQty"`
	MultiCatchTrapQty    float64         `json:"multiCatchTrapQty"`
	InsectLightTrapQty   float64         `json:"insectLightTrapQty"`
	OtherEquipment       []EquipmentItem `json:"otherEquipment"`
	Summary              string          `json:"summary"`
}

// HasTraps reports whether any rodent monitoring equipment was quoted.
func (e EquipmentSummary) HasTraps() bool {
	return e.RodentBaitStationQty > 0 || e.MultiCatchTrapQty > 0
}

// Service is one recurring service line.
type Service struct {
	ServiceName     string   `json:"serviceName"`
	ServiceCode     string   `json:"serviceCode"`
	Category        string   `json:"category"`
	ProgramType     string   `json:"programType"`
	DescriptionText string   `json:"descriptionText"`
	FrequencyLabel  *string  `json:"frequencyLabel"`
	ServicesPerYear *int     `json:"servicesPerYear"`
	AfterHours      *bool    `json:"afterHours"`
	InitialAmount   *float64 `json:"initialAmount"`
	PricePerService *float64 `json:"pricePerService"`
}

// Pricing is the investment summary as quoted.
type Pricing struct {
	OneTimeCost        *float64 `json:"oneTimeCost"`
	InitialServiceCost *float64 `json:"initialServiceCost"`
	AverageMonthlyCost *float64 `json:"averageMonthlyCost"`
}

// Draft is the structured start packet built from one quote document.
// Every pointer field is nullable.
type Draft struct {
	AccountName         *string `json:"accountName"`
	ContactName         *string `json:"contactName"`
	ContactEmail        *string `json:"contactEmail"`
	ServiceAddressLine1 *string `json:"serviceAddressLine1"`
	ServiceCity         *string `json:"serviceCity"`
	ServiceState        *string `json:"serviceState"`
	ServiceZip          *string `json:"serviceZip"`
	AEName              *string `json:"aeName"`
	AEEmail             *string `json:"aeEmail"`
	BranchID            string  `json:"branchId"`
	JobType             *string `json:"jobType"`

	Services  []Service        `json:"services"`
	Equipment EquipmentSummary `json:"equipment"`
	Pricing   Pricing          `json:"pricing"`

	EquipmentOneTimeTotal *float64 `json:"equipmentOneTimeTotal"`
	ServicesInitialTotal  *float64 `json:"servicesInitialTotal"`
	CombinedInitialTotal  *float64 `json:"combinedInitialTotal"`
	ServicesMonthlyTotal  *float64 `json:"servicesMonthlyTotal"`
	CombinedMonthlyTotal  *float64 `json:"combinedMonthlyTotal"`
	ServicesAnnualTotal   *float64 `json:"servicesAnnualTotal"`
	CombinedAnnualTotal   *float64 `json:"combinedAnnualTotal"`
	MonthlyCost           *float64 `json:"monthlyCost"`
	AnnualCost            *float64 `json:"annualCost"`

	RequestedStartDate *string  `json:"requestedStartDate"`
	StartMonth         *string  `json:"startMonth"`
	CoveredPests       []string `json:"coveredPests"`

	LeadType                    string  `json:"leadType"`
	ServiceType                 *string `json:"serviceType"`
	InitialServiceDescription   string  `json:"initialServiceDescription"`
	MaintenanceScopeDescription string  `json:"maintenanceScopeDescription"`
	LogBookNeeded               bool    `json:"logBookNeeded"`
}

// StoredDraft is a persisted draft with its provenance.
type StoredDraft struct {
	ID         uuid.UUID  `json:"id"`
	JobID      *uuid.UUID `json:"job_id,omitempty"`
	SourcePath string     `json:"source_path"`
	Draft      Draft      `json:"draft"`
	CreatedAt  time.Time  `json:"created_at"`
}
