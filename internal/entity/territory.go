package entity

import "time"

// Territory assigns one zip code to an account executive.
type Territory struct {
	ZipCode       string    `json:"zipCode"`
	AEEmail       string    `json:"aeEmail"`
	BranchID      string    `json:"branchId"`
	TerritoryName string    `json:"territoryName"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TerritoryGroup collects the zips owned by one AE under one territory name.
type TerritoryGroup struct {
	AEEmail       string   `json:"aeEmail"`
	BranchID      string   `json:"branchId"`
	TerritoryName string   `json:"territoryName"`
	ZipCodes      []string `json:"zipCodes"`
	ZipCount      int      `json:"zipCount"`
}

type TerritoryStats struct {
	TotalAEs           int     `json:"totalAEs"`
	TotalZipCodes      int     `json:"totalZipCodes"`
	AverageCoverage    float64 `json:"averageCoverage"`
	CurrentEnvironment string  `json:"currentEnvironment"`
}
