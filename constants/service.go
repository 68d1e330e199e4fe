package constants

import (
	"strings"
)

// ServiceCode tags a recurring service on a draft.
type ServiceCode string

const (
	ServiceGPC    ServiceCode = "GPC"
	ServiceMRT    ServiceCode = "MRT"
	ServiceRBS    ServiceCode = "RBS"
	ServiceRodent ServiceCode = "RODENT"
	ServiceILT    ServiceCode = "ILT"
)

var allServiceCodes = []ServiceCode{
	ServiceGPC,
	ServiceMRT,
	ServiceRBS,
	ServiceRodent,
	ServiceILT,
}

// serviceOrder is the display order used when sorting service lists.
var serviceOrder = map[ServiceCode]int{
	ServiceGPC:    0,
	ServiceMRT:    1,
	ServiceRBS:    2,
	ServiceRodent: 3,
	ServiceILT:    4,
}

// ServiceOrder returns the sort rank of a code; unknown codes sort last.
func ServiceOrder(code ServiceCode) int {
	if rank, ok := serviceOrder[code]; ok {
		return rank
	}
	return 10
}

func ServiceCodes() []string {
	result := make([]string, len(allServiceCodes))
	for i, c := range allServiceCodes {
		result[i] = string(c)
	}
	return result
}

// CanonicalServiceCode maps loose input ("gpc", "Insect Light Trap") onto a known code.
func CanonicalServiceCode(input string) (ServiceCode, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]ServiceCode{
		"general pest":                  ServiceGPC,
		"general pest control":          ServiceGPC,
		"interior rodent monitoring":    ServiceMRT,
		"exterior rodent monitoring":    ServiceRBS,
		"rodent monitoring":             ServiceRodent,
		"insect light trap":             ServiceILT,
		"insect light trap maintenance": ServiceILT,
		"ilt maintenance":               ServiceILT,
	}
	if code, ok := synonyms[normalized]; ok {
		return code, true
	}

	for _, c := range allServiceCodes {
		if normalized == strings.ToLower(string(c)) {
			return c, true
		}
	}
	return ServiceCode(strings.ToUpper(normalized)), false
}
