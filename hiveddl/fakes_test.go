package hiveddl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	otelgo "github.com/GoogleCloudPlatform/dataproc-templates/go/otel"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	databases map[string][]types.TableDescriptor
	err       error
}

func (f *fakeCatalog) DatabaseExists(_ context.Context, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.databases[name]
	return ok, nil
}

func (f *fakeCatalog) ListTables(_ context.Context, database string) ([]types.TableDescriptor, error) {
	return f.databases[database], nil
}

// fakeExecutor answers statements from a fixed map and records every statement it was asked to run
type fakeExecutor struct {
	results    map[string]*types.ResultSet
	errs       map[string]error
	statements []string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{results: map[string]*types.ResultSet{}, errs: map[string]error{}}
}

func (f *fakeExecutor) Query(_ context.Context, statement string) (*types.ResultSet, error) {
	f.statements = append(f.statements, statement)
	if err, ok := f.errs[statement]; ok {
		return nil, err
	}
	rs, ok := f.results[statement]
	if !ok {
		return nil, fmt.Errorf("unexpected statement: %s", statement)
	}
	return rs, nil
}

// addTable registers the three results the extractor asks for
func (f *fakeExecutor) addTable(table types.TableDescriptor, createStmt string, describe []types.DescribeRow, extendedInfo string) {
	f.results[ShowCreateTableQuery(table)] = types.NewResultSet([]string{"createtab_stmt"}, []string{createStmt})
	rows := make([][]string, 0, len(describe))
	for _, r := range describe {
		rows = append(rows, []string{r.ColName, r.DataType, ""})
	}
	f.results[DescribeFormattedQuery(table)] = types.NewResultSet([]string{"col_name", "data_type", "comment"}, rows...)
	f.results[ShowTableExtendedQuery(table)] = types.NewResultSet(
		[]string{"namespace", "tableName", "isTemporary", "information"},
		[]string{table.Database, table.Name, "false", extendedInfo})
}

type objectWrite struct {
	bucket  string
	path    string
	content string
}

type fakeObjectWriter struct {
	writes []objectWrite
	err    error
}

func (f *fakeObjectWriter) WriteObject(_ context.Context, bucket string, path string, content string) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, objectWrite{bucket: bucket, path: path, content: content})
	return nil
}

type manifestAppend struct {
	dataset       string
	table         string
	stagingBucket string
	records       []types.ManifestRecord
}

type fakeTableWriter struct {
	appends []manifestAppend
	err     error
}

func (f *fakeTableWriter) AppendManifest(_ context.Context, dataset string, table string, stagingBucket string, records []types.ManifestRecord) error {
	if f.err != nil {
		return f.err
	}
	f.appends = append(f.appends, manifestAppend{dataset: dataset, table: table, stagingBucket: stagingBucket, records: records})
	return nil
}

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func disabledOtel(t *testing.T) *otelgo.OpenTelemetry {
	t.Helper()
	otelInst, _, err := otelgo.NewOpenTelemetry(context.Background(), &otelgo.OTelConfig{OTELEnabled: false}, zap.NewNop())
	require.NoError(t, err)
	return otelInst
}

var empDescribe = []types.DescribeRow{
	{ColName: "id", DataType: "int"},
	{ColName: "name", DataType: "string"},
	{ColName: "salary", DataType: "double"},
	{ColName: "", DataType: ""},
	{ColName: "# Detailed Table Information", DataType: ""},
	{ColName: "Database", DataType: "default"},
	{ColName: "Table", DataType: "emp"},
	{ColName: "Owner", DataType: "hive"},
	{ColName: "Type", DataType: "MANAGED"},
	{ColName: "Provider", DataType: "parquet"},
	{ColName: "Location", DataType: "hdfs://namenode:8020/user/hive/warehouse/emp"},
}

var eventsDescribe = []types.DescribeRow{
	{ColName: "event_id", DataType: "string"},
	{ColName: "payload", DataType: "string"},
	{ColName: "dt", DataType: "date"},
	{ColName: "country", DataType: "string"},
	{ColName: "# Partition Information", DataType: ""},
	{ColName: "# col_name", DataType: "data_type"},
	{ColName: "dt", DataType: "date"},
	{ColName: "country", DataType: "string"},
	{ColName: "", DataType: ""},
	{ColName: "# Detailed Table Information", DataType: ""},
	{ColName: "Database", DataType: "web"},
	{ColName: "Table", DataType: "events"},
	{ColName: "Type", DataType: "EXTERNAL"},
	{ColName: "Provider", DataType: "orc"},
}
