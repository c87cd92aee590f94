package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"air-demand-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulateRoutesCSV(t *testing.T) {
	est := newTestEstimator(testIndicators())

	var buf bytes.Buffer
	sum, err := PopulateRoutesCSV(context.Background(), est, "aaaa", []string{"AAAA", "BBBB", "CCCC", "EEEE"}, &buf, 0)
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Written: 2, Skipped: 1}, sum)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "hub_id,destination_id,distance,first_class_demand,business_class_demand,economy_class_demand", lines[0])
	assert.Equal(t, "AAAA,BBBB,890.55,74,396,7650", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "AAAA,EEEE,890.55,"))
}

func TestPopulateRoutesCSV_Limit(t *testing.T) {
	est := newTestEstimator(testIndicators())

	var buf bytes.Buffer
	sum, err := PopulateRoutesCSV(context.Background(), est, "AAAA", []string{"AAAA", "BBBB", "EEEE"}, &buf, 1)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Written: 1}, sum)
	assert.NotContains(t, buf.String(), "EEEE")
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPopulateDemandsCSV(t *testing.T) {
	path := writeTemp(t, "routes.csv", "hub_id,destination_id,distance\nAAAA,BBBB,890.55\nAAAA,CCCC,890.55\nBBBB,AAAA,890.55,1,2,3\n")
	est := newTestEstimator(testIndicators())

	sum, err := PopulateDemandsCSV(context.Background(), est, path)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Written: 2, Skipped: 1}, sum)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"hub_id,destination_id,distance,first_class_demand,business_class_demand,economy_class_demand\n"+
			"AAAA,BBBB,890.55,74,396,7650\n"+
			"AAAA,CCCC,890.55,,,\n"+
			"BBBB,AAAA,890.55,273,807,10200\n",
		string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is renamed away")
}

func TestPopulateDemandsCSV_Malformed(t *testing.T) {
	original := "hub_id,destination_id,distance\nAAAA,BBBB\n"
	path := writeTemp(t, "routes.csv", original)

	_, err := PopulateDemandsCSV(context.Background(), newTestEstimator(testIndicators()), path)
	require.Error(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(b))
}

func TestPopulateDemandsCSV_KeepsInputHeader(t *testing.T) {
	path := writeTemp(t, "routes.csv", "hub,destination,distance,first,business,economy\nAAAA,BBBB,890.55,0,0,0\n")

	sum, err := PopulateDemandsCSV(context.Background(), newTestEstimator(testIndicators()), path)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Written: 1}, sum)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"hub,destination,distance,first_class_demand,business_class_demand,economy_class_demand\n"+
			"AAAA,BBBB,890.55,74,396,7650\n",
		string(b))
}

func TestPopulateDemandsCSV_EmptyFile(t *testing.T) {
	path := writeTemp(t, "routes.csv", "")

	_, err := PopulateDemandsCSV(context.Background(), newTestEstimator(testIndicators()), path)
	assert.ErrorContains(t, err, "empty file")
}

func TestPopulateDistancesThenDemands(t *testing.T) {
	path := writeTemp(t, "routes.csv", "hub,destination\nAAAA,BBBB\n")
	ctx := context.Background()

	n, err := PopulateDistancesCSV(ctx, testAirports(), path)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	sum, err := PopulateDemandsCSV(ctx, newTestEstimator(testIndicators()), path)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Written: 1}, sum)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"hub,destination,distance,first_class_demand,business_class_demand,economy_class_demand\n"+
			"AAAA,BBBB,890.55,74,396,7650\n",
		string(b))
}

func TestPopulateDistancesCSV(t *testing.T) {
	path := writeTemp(t, "routes.csv", "hub_id,destination_id\nAAAA,BBBB\nAAAA, EEEE\n")

	n, err := PopulateDistancesCSV(context.Background(), testAirports(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hub_id,destination_id,distance\nAAAA,BBBB,890.55\nAAAA,EEEE,890.55\n", string(b))
}

func TestPopulateDistancesCSV_Unresolved(t *testing.T) {
	path := writeTemp(t, "routes.csv", "hub_id,destination_id\nAAAA,DDDD\n")

	_, err := PopulateDistancesCSV(context.Background(), testAirports(), path)
	assert.True(t, errors.Is(err, domain.ErrUnresolvedAirport))
}
