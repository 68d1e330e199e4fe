package constants

// LeadType classifies where a sales opportunity came from.
type LeadType string

const (
	LeadInbound  LeadType = "Inbound"
	LeadCreative LeadType = "Creative"
	LeadTAP      LeadType = "TAP"
)

// JobType classifies the commercial arrangement.
type JobType string

const (
	JobContract JobType = "Contract"
	JobWork     JobType = "Job Work"
)

var LeadTypes = []LeadType{LeadInbound, LeadCreative, LeadTAP}

var JobTypes = []JobType{JobContract, JobWork}

// ServiceTypes is the picklist offered downstream for the draft's serviceType field.
var ServiceTypes = []string{
	"Bioremediation",
	"Green Drains",
	"Wildlife Trapping",
	"TAP Insulation",
	"Bee Removal",
	"Misc.",
	"Bed Bug Conventional",
	"Bed Bug Heat",
	"Bed Bug K9",
	"GPC (Comm)",
	"GPC (Res)",
	"Termite (Res)",
	"Termite (Comm)",
	"Fumigation (Termite)",
	"Fumigation (Commodity)",
	"Roach Cleanout",
	"Exclusion",
	"Mass Trapping (Rodent)",
	"Rodent Control",
	"Mosquito (Bucket)",
	"Mosquito (Barrier)",
	"Bird",
	"Bat",
	"Genie Max (Odor Control)",
	"Vegetation Management",
}

// DefaultBranchID is stamped on drafts when no territory assigns one.
const DefaultBranchID = "BRN-001"

func IsLeadType(s string) bool {
	for _, l := range LeadTypes {
		if string(l) == s {
			return true
		}
	}
	return false
}
