package territory

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
	"github.com/joseph-ayodele/startpacket/internal/repository"
)

// TestPrefix marks territory names while the TEST environment is active.
const TestPrefix = "TEST_"

const (
	msgBadZip      = "Zip must be 5 digits."
	msgBadEmail    = "AE email must include @ and cannot be empty."
	msgNoBranch    = "Branch ID is required."
	msgNoTerritory = "Territory name is required."
	msgUnassigned  = "Zip not assigned."
)

var (
	ErrSamplesTestOnly = common.NewAppError("TEST_ONLY", "Sample data is only available in TEST mode.", common.ErrForbidden)
	ErrClearTestOnly   = common.NewAppError("TEST_ONLY", "Clearing data is only allowed in TEST mode.", common.ErrForbidden)
)

// Service manages the zip code to account executive assignments.
type Service struct {
	repo   repository.TerritoryRepository
	logger *slog.Logger

	// mu guards env; writers also hold it while names are re-prefixed
	mu  sync.RWMutex
	env constants.Environment
}

// NewService loads the persisted environment, falling back to defaultEnv
// when none was stored yet.
func NewService(ctx context.Context, repo repository.TerritoryRepository, defaultEnv constants.Environment, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !defaultEnv.Valid() {
		defaultEnv = constants.EnvironmentTest
	}
	env, ok, err := repo.Environment(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		env = defaultEnv
		if err := repo.SetEnvironment(ctx, env); err != nil {
			return nil, err
		}
	}
	logger.Info("territory service ready", "environment", env)
	return &Service{repo: repo, logger: logger, env: env}, nil
}

// Environment returns the active environment.
func (s *Service) Environment() constants.Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env
}

// UpsertRequest is one assignment as submitted by a user or CSV row.
type UpsertRequest struct {
	ZipCode       string `json:"zipCode" validate:"zip5"`
	AEEmail       string `json:"aeEmail" validate:"required,contains=@"`
	BranchID      string `json:"branchId" validate:"required"`
	TerritoryName string `json:"territoryName" validate:"required"`
}

// normalize trims every field, lower-cases the email and applies the
// environment prefix to the territory name.
func (r UpsertRequest) normalize(env constants.Environment) UpsertRequest {
	out := UpsertRequest{
		ZipCode:       strings.TrimSpace(r.ZipCode),
		AEEmail:       strings.ToLower(strings.TrimSpace(r.AEEmail)),
		BranchID:      strings.TrimSpace(r.BranchID),
		TerritoryName: strings.TrimSpace(r.TerritoryName),
	}
	if out.TerritoryName != "" {
		out.TerritoryName = FormatName(out.TerritoryName, env)
	}
	return out
}

// fieldMessages are reported for the first invalid field, in field order.
var fieldMessages = map[string]string{
	"zipCode":       msgBadZip,
	"aeEmail":       msgBadEmail,
	"branchId":      msgNoBranch,
	"territoryName": msgNoTerritory,
}

func (r UpsertRequest) validate() error {
	err := common.ValidateStruct(r)
	if err == nil {
		return nil
	}
	var verrs common.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := fieldMessages[verrs[0].Field]; ok {
			return common.NewAppError("INVALID_TERRITORY", msg, err)
		}
	}
	return common.NewAppError("INVALID_TERRITORY", err.Error(), common.ErrValidation)
}

// FormatName adds the TEST_ prefix in TEST and strips it otherwise.
func FormatName(name string, env constants.Environment) string {
	name = strings.TrimSpace(name)
	if env == constants.EnvironmentTest {
		if strings.HasPrefix(name, TestPrefix) {
			return name
		}
		return TestPrefix + name
	}
	return strings.TrimPrefix(name, TestPrefix)
}

// Upsert validates and stores one assignment. The bool reports whether the
// zip code was already assigned.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (*entity.Territory, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.upsertLocked(ctx, req)
}

func (s *Service) upsertLocked(ctx context.Context, req UpsertRequest) (*entity.Territory, bool, error) {
	req = req.normalize(s.env)
	if err := req.validate(); err != nil {
		return nil, false, err
	}
	t := entity.Territory{
		ZipCode:       req.ZipCode,
		AEEmail:       req.AEEmail,
		BranchID:      req.BranchID,
		TerritoryName: req.TerritoryName,
	}
	updated, err := s.repo.Upsert(ctx, t)
	if err != nil {
		return nil, false, err
	}
	return &t, updated, nil
}

// Remove deletes the assignment for zip.
func (s *Service) Remove(ctx context.Context, zip string) (string, error) {
	zip, err := normalizeZip(zip)
	if err != nil {
		return "", err
	}
	if err := s.repo.Delete(ctx, zip); err != nil {
		return "", err
	}
	return zip, nil
}

// Search returns the assignment for zip.
func (s *Service) Search(ctx context.Context, zip string) (*entity.Territory, error) {
	zip, err := normalizeZip(zip)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, zip)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewAppError("TERRITORY_NOT_FOUND", msgUnassigned, common.ErrNotFound)
	}
	return t, err
}

// ResolveBranch looks up the assignment for a draft's service zip. Missing
// or malformed zips resolve to nothing rather than an error.
func (s *Service) ResolveBranch(ctx context.Context, zip string) (*entity.Territory, bool, error) {
	zip, err := normalizeZip(zip)
	if err != nil {
		return nil, false, nil
	}
	t, err := s.repo.Get(ctx, zip)
	if errors.Is(err, common.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// Groups collects zips by AE email and territory name, ordered by territory
// name then email.
func (s *Service) Groups(ctx context.Context) ([]entity.TerritoryGroup, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return buildGroups(all), nil
}

func buildGroups(all []entity.Territory) []entity.TerritoryGroup {
	index := map[string]int{}
	groups := []entity.TerritoryGroup{}
	for _, t := range all {
		key := t.AEEmail + "::" + t.TerritoryName
		i, ok := index[key]
		if !ok {
			groups = append(groups, entity.TerritoryGroup{
				AEEmail:       t.AEEmail,
				BranchID:      t.BranchID,
				TerritoryName: t.TerritoryName,
			})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].ZipCodes = append(groups[i].ZipCodes, t.ZipCode)
	}
	for i := range groups {
		slices.Sort(groups[i].ZipCodes)
		groups[i].ZipCount = len(groups[i].ZipCodes)
	}
	slices.SortFunc(groups, func(a, b entity.TerritoryGroup) int {
		if c := strings.Compare(a.TerritoryName, b.TerritoryName); c != 0 {
			return c
		}
		return strings.Compare(a.AEEmail, b.AEEmail)
	})
	return groups
}

// Stats summarizes coverage per account executive.
func (s *Service) Stats(ctx context.Context) (entity.TerritoryStats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return entity.TerritoryStats{}, err
	}
	return buildStats(buildGroups(all), len(all), s.Environment()), nil
}

func buildStats(groups []entity.TerritoryGroup, zips int, env constants.Environment) entity.TerritoryStats {
	aes := map[string]struct{}{}
	for _, g := range groups {
		aes[g.AEEmail] = struct{}{}
	}
	stats := entity.TerritoryStats{
		TotalAEs:           len(aes),
		TotalZipCodes:      zips,
		CurrentEnvironment: string(env),
	}
	if stats.TotalAEs > 0 {
		stats.AverageCoverage = math.Round(float64(zips)/float64(stats.TotalAEs)*100) / 100
	}
	return stats
}

// Overview is the grouped listing together with its stats.
type Overview struct {
	Environment string                  `json:"environment"`
	Stats       entity.TerritoryStats   `json:"stats"`
	Territories []entity.TerritoryGroup `json:"territories"`
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return Overview{}, err
	}
	env := s.Environment()
	groups := buildGroups(all)
	return Overview{
		Environment: string(env),
		Stats:       buildStats(groups, len(all), env),
		Territories: groups,
	}, nil
}

// SwitchResult describes an environment switch.
type SwitchResult struct {
	Environment constants.Environment `json:"environment"`
	Message     string                `json:"message"`
	Changed     bool                  `json:"-"`
}

// SwitchEnvironment moves to desired when it names an environment, and
// toggles otherwise. Every territory name is re-prefixed for the target.
func (s *Service) SwitchEnvironment(ctx context.Context, desired string) (SwitchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := constants.Environment(strings.ToUpper(strings.TrimSpace(desired)))
	if !target.Valid() {
		target = constants.EnvironmentTest
		if s.env == constants.EnvironmentTest {
			target = constants.EnvironmentProduction
		}
	}
	if target == s.env {
		return SwitchResult{Environment: s.env, Message: "Already in " + string(s.env) + "."}, nil
	}

	if _, err := s.repo.RenameAll(ctx, func(name string) string { return FormatName(name, target) }); err != nil {
		return SwitchResult{}, err
	}
	if err := s.repo.SetEnvironment(ctx, target); err != nil {
		return SwitchResult{}, err
	}
	s.logger.Info("territory environment switched", "from", s.env, "to", target)
	s.env = target
	return SwitchResult{Environment: target, Message: "Switched to " + string(target) + ".", Changed: true}, nil
}

// ClearAll removes every assignment. Only allowed in TEST.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.env != constants.EnvironmentTest {
		return 0, ErrClearTestOnly
	}
	return s.repo.Clear(ctx)
}

func normalizeZip(zip string) (string, error) {
	zip = strings.TrimSpace(zip)
	if err := common.ValidateVar(zip, "zip5"); err != nil {
		return "", common.NewAppError("INVALID_ZIP", msgBadZip, err)
	}
	return zip, nil
}
