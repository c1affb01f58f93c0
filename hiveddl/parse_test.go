package hiveddl

import (
	"errors"
	"testing"

	"github.com/GoogleCloudPlatform/dataproc-templates/go/global/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersCreate = "CREATE TABLE `sales`.`orders` (\n  `order_id` BIGINT,\n  `amount` DECIMAL(10,2),\n  `customer` STRING,\n  `region` STRING)\nUSING parquet\nPARTITIONED BY (region)\nLOCATION 'hdfs://namenode:8020/user/hive/warehouse/sales.db/orders'\n"

const empCreate = "CREATE TABLE `default`.`emp` (\n  `id` INT,\n  `name` STRING,\n  `salary` DOUBLE)\nUSING parquet\nLOCATION 'hdfs://namenode:8020/user/hive/warehouse/emp'\n"

var ordersDescribe = []types.DescribeRow{
	{ColName: "order_id", DataType: "bigint"},
	{ColName: "amount", DataType: "decimal(10,2)"},
	{ColName: "customer", DataType: "string"},
	{ColName: "region", DataType: "string"},
	{ColName: "# Partition Information", DataType: ""},
	{ColName: "# col_name", DataType: "data_type"},
	{ColName: "region", DataType: "string"},
	{ColName: "", DataType: ""},
	{ColName: "# Detailed Table Information", DataType: ""},
	{ColName: "Database", DataType: "sales"},
	{ColName: "Table", DataType: "orders"},
	{ColName: "Owner", DataType: "hive"},
	{ColName: "Provider", DataType: "parquet"},
}

func TestHasPartitions(t *testing.T) {
	assert.True(t, HasPartitions(ordersCreate))
	assert.False(t, HasPartitions(empCreate))
}

func TestParsePartitionColumnNames(t *testing.T) {
	tests := []struct {
		name    string
		stmt    string
		want    []string
		wantErr string
	}{
		{
			name: "single column",
			stmt: ordersCreate,
			want: []string{"region"},
		},
		{
			name: "names keep the space after each comma",
			stmt: "CREATE TABLE `web`.`events` (\n  `id` STRING)\nUSING orc\nPARTITIONED BY (dt, country)\n",
			want: []string{"dt", " country"},
		},
		{
			name:    "marker without a column list",
			stmt:    "CREATE TABLE `t` (`a` INT)\nUSING orc\nPARTITIONED_TABLE\n",
			wantErr: "PARTITIONED BY (",
		},
		{
			name:    "unterminated list",
			stmt:    "CREATE TABLE `t` (`a` INT)\nUSING orc\nPARTITIONED BY (a",
			wantErr: "marker not found ')'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePartitionColumnNames(tt.stmt)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMarkerNotFound)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupDescribeValue(t *testing.T) {
	got, err := LookupDescribeValue(ordersDescribe, "Database")
	require.NoError(t, err)
	assert.Equal(t, "sales", got)

	got, err = LookupDescribeValue(ordersDescribe, "amount")
	require.NoError(t, err)
	assert.Equal(t, "decimal(10,2)", got)

	_, err = LookupDescribeValue(ordersDescribe, "Region")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDescribeRowNotFound)
}

func TestBuildPartitionSpec(t *testing.T) {
	rows := []types.DescribeRow{
		{ColName: "dt", DataType: "date"},
		{ColName: "country", DataType: "string"},
	}
	spec, err := BuildPartitionSpec([]string{"dt", " country"}, rows)
	require.NoError(t, err)
	assert.Equal(t, types.PartitionSpec{
		{Name: "dt", Type: "date"},
		{Name: "country", Type: "string"},
	}, spec)
	assert.Equal(t, " dt date,  country string", spec.ColumnList())

	_, err = BuildPartitionSpec([]string{"missing"}, rows)
	assert.ErrorIs(t, err, ErrDescribeRowNotFound)
}

func TestParseColumnsClause(t *testing.T) {
	tests := []struct {
		name       string
		stmt       string
		table      string
		partitions types.PartitionSpec
		want       string
		wantErr    string
	}{
		{
			name:  "unpartitioned",
			stmt:  empCreate,
			table: "emp",
			want:  " (\n  `id` INT,\n  `name` STRING,\n  `salary` DOUBLE)\n",
		},
		{
			name:  "unpartitioned with nested parentheses",
			stmt:  "CREATE TABLE `default`.`prices` (\n  `sku` STRING,\n  `price` DECIMAL(12,4))\nUSING parquet\n",
			table: "prices",
			want:  " (\n  `sku` STRING,\n  `price` DECIMAL(12,4))\n",
		},
		{
			name:       "partitioned drops the partition columns",
			stmt:       ordersCreate,
			table:      "orders",
			partitions: types.PartitionSpec{{Name: "region", Type: "string"}},
			want:       " (\n  `order_id` BIGINT,\n  `amount` DECIMAL(10,2),\n  `customer` STRING)\n",
		},
		{
			name:    "table name not quoted",
			stmt:    "CREATE TABLE emp (id INT)\nUSING parquet\n",
			table:   "emp",
			wantErr: "'`emp`'",
		},
		{
			name:  "database name ends with the table name",
			stmt:  "CREATE TABLE `hr_emp`.`emp` (\n  `id` INT,\n  `name` STRING)\nUSING parquet\n",
			table: "emp",
			want:  " (\n  `id` INT,\n  `name` STRING)\n",
		},
		{
			name:  "database named like the table",
			stmt:  "CREATE TABLE `emp`.`emp` (\n  `id` INT)\nUSING parquet\n",
			table: "emp",
			want:  " (\n  `id` INT)\n",
		},
		{
			name:       "partitioned, database name ends with the table name",
			stmt:       "CREATE TABLE `eu_orders`.`orders` (\n  `id` INT,\n  `region` STRING)\nUSING parquet\nPARTITIONED BY (region)\n",
			table:      "orders",
			partitions: types.PartitionSpec{{Name: "region", Type: "string"}},
			want:       " (\n  `id` INT)\n",
		},
		{
			name:       "partitioned, database named like the table",
			stmt:       "CREATE TABLE `orders`.`orders` (\n  `id` INT,\n  `region` STRING)\nUSING parquet\nPARTITIONED BY (region)\n",
			table:      "orders",
			partitions: types.PartitionSpec{{Name: "region", Type: "string"}},
			want:       " (\n  `id` INT)\n",
		},
		{
			name:    "unbalanced parentheses",
			stmt:    "CREATE TABLE `emp` (\n  `id` INT\nUSING parquet\n",
			table:   "emp",
			wantErr: "marker not found ')'",
		},
		{
			name:       "partition column missing from statement",
			stmt:       empCreate,
			table:      "emp",
			partitions: types.PartitionSpec{{Name: "region", Type: "string"}},
			wantErr:    "marker not found 'region'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColumnsClause(tt.stmt, tt.table, tt.partitions)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMarkerNotFound)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	got, err := ParseFormat(ordersCreate)
	require.NoError(t, err)
	assert.Equal(t, "parquet", got)

	// no space before the data source name
	_, err = ParseFormat("CREATE TABLE `t` (`a` INT)\nUSING\tparquet\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "format", pe.Field)
	assert.Equal(t, "USING ", pe.Marker)
}

func TestParseLocation(t *testing.T) {
	got, err := ParseLocation("Database: sales\nTable: orders\nLocation: hdfs://nn/user/hive/warehouse/sales.db/orders\nProvider: parquet\n")
	require.NoError(t, err)
	assert.Equal(t, "hdfs://nn/user/hive/warehouse/sales.db/orders", got)

	got, err = ParseLocation("Location: /user/hive/warehouse/emp")
	require.NoError(t, err)
	assert.Equal(t, "/user/hive/warehouse/emp", got)

	_, err = ParseLocation("Database: sales\nTable: view_only\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMarkerNotFound)
	assert.Contains(t, err.Error(), "location")
}

func TestRewriteLocation(t *testing.T) {
	prefix := StagingPrefix("migration-bucket")
	assert.Equal(t, "gs://migration-bucket/RawZone/", prefix)

	tests := []struct {
		name     string
		source   string
		database string
		resolved string
		want     string
		wantErr  bool
	}{
		{
			name:     "default database keeps the path after the warehouse root",
			source:   "/user/hive/warehouse/emp",
			database: "default",
			resolved: "default",
			want:     "gs://migration-bucket/RawZone/default/emp",
		},
		{
			name:     "named database keeps the path after the database name",
			source:   "/user/hive/warehouse/sales.db/orders",
			database: "sales",
			resolved: "sales",
			want:     "gs://migration-bucket/RawZone/sales.db/orders",
		},
		{
			name:     "repeated database name splits on the first occurrence",
			source:   "hdfs://nn/user/hive/warehouse/sales.db/sales_daily",
			database: "sales",
			resolved: "sales",
			want:     "gs://migration-bucket/RawZone/sales.db/sales_daily",
		},
		{
			name:     "resolved database name is used for the split",
			source:   "/data/warehouse/Sales.db/orders",
			database: "sales",
			resolved: "Sales",
			want:     "gs://migration-bucket/RawZone/Sales.db/orders",
		},
		{
			name:     "location outside the database directory",
			source:   "gs://legacy-bucket/exports/orders",
			database: "sales",
			resolved: "sales",
			wantErr:  true,
		},
		{
			name:     "default table outside the warehouse",
			source:   "/tmp/emp",
			database: "default",
			resolved: "default",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RewriteLocation(tt.source, tt.database, tt.resolved, prefix)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMarkerNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildDDL(t *testing.T) {
	assert.Equal(t,
		types.RewrittenDDL("CREATE TABLE IF NOT EXISTS emp (`id` INT)\n;\n"),
		BuildDDL("emp", " (`id` INT)\n", nil))
	assert.Equal(t,
		types.RewrittenDDL("CREATE TABLE IF NOT EXISTS orders (`id` INT)\nPARTITIONED BY ( region string)\n;\n"),
		BuildDDL("orders", " (`id` INT)\n", types.PartitionSpec{{Name: "region", Type: "string"}}))
	assert.Equal(t,
		types.RewrittenDDL("CREATE TABLE IF NOT EXISTS events (`id` INT)\nPARTITIONED BY ( dt date,  country string)\n;\n"),
		BuildDDL("events", " (`id` INT)\n", types.PartitionSpec{{Name: "dt", Type: "date"}, {Name: "country", Type: "string"}}))
	assert.Equal(t, "", PartitionClause(types.PartitionSpec{}))
}

func TestDescribeRowsFromResult(t *testing.T) {
	rs := types.NewResultSet([]string{"col_name", "data_type", "comment"},
		[]string{"id                  ", "int                 ", ""},
		[]string{"Database", "default", ""},
		[]string{"short"},
	)
	rows, err := DescribeRowsFromResult(rs)
	require.NoError(t, err)
	assert.Equal(t, []types.DescribeRow{
		{ColName: "id", DataType: "int"},
		{ColName: "Database", DataType: "default"},
	}, rows)

	_, err = DescribeRowsFromResult(types.NewResultSet([]string{"name"}))
	assert.Error(t, err)
}

func TestStatementText(t *testing.T) {
	got, err := StatementText(types.NewResultSet([]string{"createtab_stmt"}, []string{empCreate}))
	require.NoError(t, err)
	assert.Equal(t, empCreate, got)

	got, err = StatementText(types.NewResultSet([]string{"createtab_stmt"},
		[]string{"CREATE TABLE `emp`("}, []string{"  `id` int)"}))
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `emp`(\n  `id` int)", got)

	_, err = StatementText(types.NewResultSet([]string{"createtab_stmt"}))
	assert.ErrorIs(t, err, types.ErrEmptyResult)
}
