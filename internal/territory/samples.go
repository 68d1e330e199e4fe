package territory

import (
	"context"

	"github.com/joseph-ayodele/startpacket/constants"
)

type sampleTerritory struct {
	name     string
	aeEmail  string
	branchID string
	zips     []string
}

var samples = []sampleTerritory{
	{"Southwest Houston", "southwest.ae@test.branch360.com", "BRN-001", []string{"77001", "77002", "77003", "77004"}},
	{"Northwest Houston", "northwest.ae@test.branch360.com", "BRN-001", []string{"77005", "77006", "77007", "77008"}},
	{"Southeast Houston", "southeast.ae@test.branch360.com", "BRN-002", []string{"77009", "77010", "77011", "77012"}},
	{"Northeast Houston", "northeast.ae@test.branch360.com", "BRN-002", []string{"77013", "77014", "77015", "77016"}},
}

// SampleResult reports a sample load.
type SampleResult struct {
	Message         string `json:"message"`
	TotalSampleZips int    `json:"totalSampleZips"`
}

// LoadSamples seeds four Houston territories. Only allowed in TEST.
func (s *Service) LoadSamples(ctx context.Context) (SampleResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.env != constants.EnvironmentTest {
		return SampleResult{}, ErrSamplesTestOnly
	}

	total := 0
	for _, st := range samples {
		for _, zip := range st.zips {
			_, _, err := s.upsertLocked(ctx, UpsertRequest{
				ZipCode:       zip,
				AEEmail:       st.aeEmail,
				BranchID:      st.branchID,
				TerritoryName: st.name,
			})
			if err != nil {
				return SampleResult{}, err
			}
			total++
		}
	}
	s.logger.Info("sample territories loaded", "zips", total)
	return SampleResult{Message: "Loaded sample territories.", TotalSampleZips: total}, nil
}
