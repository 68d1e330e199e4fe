package territory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
	"github.com/joseph-ayodele/startpacket/internal/repository"
)

var dbSeq atomic.Int64

func newTestService(t *testing.T, env constants.Environment) (*Service, repository.TerritoryRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.Open(context.Background(), repository.Config{
		Driver: repository.DriverSQLite,
		DSN:    fmt.Sprintf("file:territory_%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1)),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(context.Background()))

	repo := repository.NewTerritoryRepository(db, logger)
	svc, err := NewService(context.Background(), repo, env, logger)
	require.NoError(t, err)
	return svc, repo
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "TEST_West", FormatName("West", constants.EnvironmentTest))
	assert.Equal(t, "TEST_West", FormatName(" TEST_West ", constants.EnvironmentTest))
	assert.Equal(t, "West", FormatName("TEST_West", constants.EnvironmentProduction))
	assert.Equal(t, "West", FormatName("West", constants.EnvironmentProduction))
}

func TestUpsertValidation(t *testing.T) {
	svc, _ := newTestService(t, constants.EnvironmentTest)
	ctx := context.Background()

	tests := []struct {
		name string
		req  UpsertRequest
		msg  string
	}{
		{"short zip", UpsertRequest{"7700", "a@x.com", "BRN-001", "West"}, "Zip must be 5 digits."},
		{"zip plus four", UpsertRequest{"77001-1234", "a@x.com", "BRN-001", "West"}, "Zip must be 5 digits."},
		{"email without at", UpsertRequest{"77001", "ax.com", "BRN-001", "West"}, "AE email must include @ and cannot be empty."},
		{"empty email", UpsertRequest{"77001", "  ", "BRN-001", "West"}, "AE email must include @ and cannot be empty."},
		{"no branch", UpsertRequest{"77001", "a@x.com", " ", "West"}, "Branch ID is required."},
		{"no territory", UpsertRequest{"77001", "a@x.com", "BRN-001", ""}, "Territory name is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Upsert(ctx, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)
			var appErr *common.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

func TestUpsertNormalizesAndReportsUpdates(t *testing.T) {
	svc, _ := newTestService(t, constants.EnvironmentTest)
	ctx := context.Background()

	rec, updated, err := svc.Upsert(ctx, UpsertRequest{" 77002 ", " AE@Branch.COM ", " BRN-001 ", " Downtown "})
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, "77002", rec.ZipCode)
	assert.Equal(t, "ae@branch.com", rec.AEEmail)
	assert.Equal(t, "BRN-001", rec.BranchID)
	assert.Equal(t, "TEST_Downtown", rec.TerritoryName)

	_, updated, err = svc.Upsert(ctx, UpsertRequest{"77002", "other@branch.com", "BRN-002", "Downtown"})
	require.NoError(t, err)
	assert.True(t, updated)

	found, err := svc.Search(ctx, "77002")
	require.NoError(t, err)
	assert.Equal(t, "other@branch.com", found.AEEmail)
}

func TestSearchAndRemove(t *testing.T) {
	svc, _ := newTestService(t, constants.EnvironmentTest)
	ctx := context.Background()

	_, err := svc.Search(ctx, "abc")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Search(ctx, "77099")
	assert.ErrorIs(t, err, common.ErrNotFound)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Zip not assigned.", appErr.Message)

	_, err = svc.Remove(ctx, "77099")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Zip not found.", appErr.Message)

	_, _, err = svc.Upsert(ctx, UpsertRequest{"77099", "a@x.com", "BRN-001", "South"})
	require.NoError(t, err)
	zip, err := svc.Remove(ctx, " 77099")
	require.NoError(t, err)
	assert.Equal(t, "77099", zip)
}

func TestGroupsAndStats(t *testing.T) {
	svc, _ := newTestService(t, constants.EnvironmentProduction)
	ctx := context.Background()

	for _, req := range []UpsertRequest{
		{"77003", "b@x.com", "BRN-002", "East"},
		{"77001", "a@x.com", "BRN-001", "West"},
		{"77002", "a@x.com", "BRN-001", "West"},
		{"77004", "a@x.com", "BRN-001", "North"},
	} {
		_, _, err := svc.Upsert(ctx, req)
		require.NoError(t, err)
	}

	groups, err := svc.Groups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "East", groups[0].TerritoryName)
	assert.Equal(t, "North", groups[1].TerritoryName)
	assert.Equal(t, "West", groups[2].TerritoryName)
	assert.Equal(t, []string{"77001", "77002"}, groups[2].ZipCodes)
	assert.Equal(t, 2, groups[2].ZipCount)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalAEs)
	assert.Equal(t, 4, stats.TotalZipCodes)
	assert.Equal(t, 2.0, stats.AverageCoverage)
	assert.Equal(t, "PRODUCTION", stats.CurrentEnvironment)

	assert.Equal(t, 1.33, buildStats([]entity.TerritoryGroup{{AEEmail: "a"}, {AEEmail: "b"}, {AEEmail: "c"}}, 4, constants.EnvironmentTest).AverageCoverage)
	assert.Zero(t, buildStats(nil, 0, constants.EnvironmentTest).AverageCoverage)
}

func TestSwitchEnvironmentRenames(t *testing.T) {
	svc, repo := newTestService(t, constants.EnvironmentTest)
	ctx := context.Background()

	_, _, err := svc.Upsert(ctx, UpsertRequest{"77001", "a@x.com", "BRN-001", "West"})
	require.NoError(t, err)

	res, err := svc.SwitchEnvironment(ctx, "test")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "Already in TEST.", res.Message)

	res, err = svc.SwitchEnvironment(ctx, "")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, constants.EnvironmentProduction, res.Environment)
	assert.Equal(t, "Switched to PRODUCTION.", res.Message)
	assert.Equal(t, constants.EnvironmentProduction, svc.Environment())

	rec, err := svc.Search(ctx, "77001")
	require.NoError(t, err)
	assert.Equal(t, "West", rec.TerritoryName)

	stored, ok, err := repo.Environment(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, constants.EnvironmentProduction, stored)

	res, err = svc.SwitchEnvironment(ctx, "bogus")
	require.NoError(t, err)
	assert.Equal(t, constants.EnvironmentTest, res.Environment)
	rec, err = svc.Search(ctx, "77001")
	require.NoError(t, err)
	assert.Equal(t, "TEST_West", rec.TerritoryName)
}

func TestNewServiceUsesStoredEnvironment(t *testing.T) {
	svc, repo := newTestService(t, constants.EnvironmentProduction)
	assert.Equal(t, constants.EnvironmentProduction, svc.Environment())

	again, err := NewService(context.Background(), repo, constants.EnvironmentTest, nil)
	require.NoError(t, err)
	assert.Equal(t, constants.EnvironmentProduction, again.Environment())
}

func TestImportCSV(t *testing.T) {
	svc, _ := newTestService(t, constants.EnvironmentTest)
	ctx := context.Background()

	payload := strings.Join([]string{
		"ZipCode,AE_Email,BranchID,TerritoryName",
		"# comment",
		"",
		"77001,a@x.com,BRN-001,West",
		"77002,a@x.com,BRN-001,West, Inner Loop",
		"7700,a@x.com,BRN-001,West",
		"77003,a@x.com",
		"77001,b@x.com,BRN-002,\"West\"",
	}, "\r\n")

	summary, err := svc.ImportCSV(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 2, summary.Added)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, []string{
		"Line 6: Zip must be 5 digits.",
		"Line 7: Expected 4 columns.",
	}, summary.Errors)
	assert.False(t, summary.Failed())
	assert.Equal(t, "Processed 5 rows. Added 2, updated 1.", summary.Message())

	rec, err := svc.Search(ctx, "77002")
	require.NoError(t, err)
	assert.Equal(t, "TEST_West,Inner Loop", rec.TerritoryName)
	rec, err = svc.Search(ctx, "77001")
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", rec.AEEmail)
	assert.Equal(t, "TEST_West", rec.TerritoryName)
}

func TestImportCSVFailures(t *testing.T) {
	svc, _ := newTestService(t, constants.EnvironmentTest)
	ctx := context.Background()

	summary, err := svc.ImportCSV(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, []string{"CSV payload missing."}, summary.Errors)
	assert.True(t, summary.Failed())

	summary, err = svc.ImportCSV(ctx, "1,a@x.com,B,T\n2,bad,B,T")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.True(t, summary.Failed())
}

func TestExportCSVRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, constants.EnvironmentProduction)
	ctx := context.Background()

	_, _, err := svc.Upsert(ctx, UpsertRequest{"77005", "a@x.com", "BRN-001", `The "Loop"`})
	require.NoError(t, err)
	_, _, err = svc.Upsert(ctx, UpsertRequest{"77001", "b@x.com", "BRN-002", "East, Outer"})
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, svc.ExportCSV(ctx, &out))
	assert.Equal(t,
		"ZipCode,AE_Email,BranchID,TerritoryName\n"+
			"77001,b@x.com,BRN-002,\"East, Outer\"\n"+
			"77005,a@x.com,BRN-001,\"The ''Loop''\"",
		out.String())

	again, _ := newTestService(t, constants.EnvironmentProduction)
	summary, err := again.ImportCSV(ctx, out.String())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Added)
	rec, err := again.Search(ctx, "77001")
	require.NoError(t, err)
	assert.Equal(t, "East, Outer", rec.TerritoryName)
}

func TestSamplesAndClearAreTestOnly(t *testing.T) {
	svc, _ := newTestService(t, constants.EnvironmentTest)
	ctx := context.Background()

	res, err := svc.LoadSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16, res.TotalSampleZips)

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, overview.Stats.TotalAEs)
	assert.Equal(t, 16, overview.Stats.TotalZipCodes)
	assert.Equal(t, 4.0, overview.Stats.AverageCoverage)
	assert.Equal(t, "TEST_Northeast Houston", overview.Territories[0].TerritoryName)

	rec, ok, err := svc.ResolveBranch(ctx, "77010")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "BRN-002", rec.BranchID)
	assert.Equal(t, "southeast.ae@test.branch360.com", rec.AEEmail)

	_, ok, err = svc.ResolveBranch(ctx, "99999")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = svc.ResolveBranch(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := svc.ClearAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 16, n)

	_, err = svc.SwitchEnvironment(ctx, "PRODUCTION")
	require.NoError(t, err)
	_, err = svc.LoadSamples(ctx)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = svc.ClearAll(ctx)
	assert.ErrorIs(t, err, common.ErrForbidden)
}
