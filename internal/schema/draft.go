package schema

import "github.com/joseph-ayodele/startpacket/constants"

// BuildDraftJSONSchema returns the output contract for a Draft as a generic map
// (draft 2020-12 subset). Nullable fields accept null alongside their type.
func BuildDraftJSONSchema() map[string]any {
	service := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"serviceName":     map[string]any{"type": "string", "minLength": 1},
			"serviceCode": map[string]any{"anyOf": []any{
				map[string]any{"type": "string", "enum": constants.ServiceCodes()},
				map[string]any{"type": "string", "minLength": 1},
			}},
			"category":        map[string]any{"type": "string"},
			"programType":     map[string]any{"type": "string"},
			"descriptionText": map[string]any{"type": "string"},
			"frequencyLabel":  nullable(map[string]any{"type": "string", "minLength": 1}),
			"servicesPerYear": nullable(map[string]any{"type": "integer", "minimum": 1}),
			"afterHours":      nullable(map[string]any{"type": "boolean"}),
			"initialAmount":   amountProp(),
			"pricePerService": amountProp(),
		},
		"required": []string{"serviceName", "serviceCode"},
	}

	equipment := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"rodentBaitStationQty": quantityProp(),
			"multiCatchTrapQty":    quantityProp(),
			"insectLightTrapQty":   quantityProp(),
			"otherEquipment": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":     map[string]any{"type": "string"},
						"quantity": quantityProp(),
					},
					"required": []string{"name", "quantity"},
				},
			},
			"summary": map[string]any{"type": "string"},
		},
		"required": []string{"rodentBaitStationQty", "multiCatchTrapQty", "insectLightTrapQty", "otherEquipment"},
	}

	pricing := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"oneTimeCost":        amountProp(),
			"initialServiceCost": amountProp(),
			"averageMonthlyCost": amountProp(),
		},
	}

	props := map[string]any{
		"accountName":         nullableString(),
		"contactName":         nullableString(),
		"contactEmail":        nullable(map[string]any{"type": "string", "pattern": `^[^@\s]+@[^@\s]+\.[A-Za-z]{2,}$`}),
		"serviceAddressLine1": nullableString(),
		"serviceCity":         nullableString(),
		"serviceState":        nullable(map[string]any{"type": "string", "pattern": `^[A-Z]{2}$`}),
		"serviceZip":          nullable(map[string]any{"type": "string", "pattern": `^\d{5}$`}),
		"aeName":              nullableString(),
		"aeEmail":             nullable(map[string]any{"type": "string", "pattern": `^[^@\s]+@[^@\s]+$`}),
		"branchId":            map[string]any{"type": "string", "minLength": 1},
		"jobType":             nullable(map[string]any{"type": "string", "enum": jobTypes()}),

		"services":  map[string]any{"type": "array", "items": service, "minItems": 1},
		"equipment": equipment,
		"pricing":   pricing,

		"equipmentOneTimeTotal": amountProp(),
		"servicesInitialTotal":  amountProp(),
		"combinedInitialTotal":  amountProp(),
		"servicesMonthlyTotal":  amountProp(),
		"combinedMonthlyTotal":  amountProp(),
		"servicesAnnualTotal":   amountProp(),
		"combinedAnnualTotal":   amountProp(),
		"monthlyCost":           amountProp(),
		"annualCost":            amountProp(),

		"requestedStartDate": nullable(map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}),
		"startMonth":         nullableString(),
		"coveredPests":       map[string]any{"type": "array", "items": map[string]any{"type": "string", "minLength": 1}},

		"leadType":                    map[string]any{"type": "string", "enum": leadTypes()},
		"serviceType":                 nullableString(),
		"initialServiceDescription":   map[string]any{"type": "string", "minLength": 1},
		"maintenanceScopeDescription": map[string]any{"type": "string", "minLength": 1},
		"logBookNeeded":               map[string]any{"type": "boolean"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required": []string{
			"branchId", "services", "equipment", "pricing", "coveredPests", "leadType",
			"initialServiceDescription", "maintenanceScopeDescription", "logBookNeeded",
		},
	}
}

func nullable(prop map[string]any) map[string]any {
	return map[string]any{"anyOf": []any{prop, map[string]any{"type": "null"}}}
}

func nullableString() map[string]any {
	return nullable(map[string]any{"type": "string"})
}

func amountProp() map[string]any {
	return nullable(map[string]any{"type": "number", "minimum": 0})
}

func quantityProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}

func leadTypes() []string {
	out := make([]string, len(constants.LeadTypes))
	for i, l := range constants.LeadTypes {
		out[i] = string(l)
	}
	return out
}

func jobTypes() []string {
	out := make([]string, len(constants.JobTypes))
	for i, j := range constants.JobTypes {
		out[i] = string(j)
	}
	return out
}
