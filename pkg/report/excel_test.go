// pkg/report/excel_test.go

package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/runctx"
	"github.com/infraops/invreporter/pkg/tower"
	"github.com/infraops/invreporter/pkg/xerr"
)

func testContext(t *testing.T) *runctx.RuntimeContext {
	t.Helper()
	return runctx.New(context.Background(), zap.NewNop(), "test")
}

func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	rows := []tower.HostRow{
		{Inventory: "billing", Group: "web", HostFQDN: "web01.internal", Enabled: true, InventoryID: 7},
		{Inventory: "billing", Group: "db", HostFQDN: "db01.internal", Enabled: false, InventoryID: 7},
	}

	path, err := Write(testContext(t), "billing api", rows, dir)
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.Regexp(t, `^ansible_inventory_billing_api_\d{8}_\d{6}\.xlsx$`, name)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	cells, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, headers, cells[0])
	assert.Equal(t, []string{"billing", "web", "web01.internal", "TRUE", "7"}, cells[1])
	assert.Equal(t, "db01.internal", cells[2][2])
}

func TestWriteRejectsEmptyRows(t *testing.T) {
	_, err := Write(testContext(t), "billing", nil, t.TempDir())
	require.Error(t, err)
	kind, ok := xerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, xerr.KindValidation, kind)
}
