package fetcher

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Licensees")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestHeaderKey(t *testing.T) {
	assert.Equal(t, "firstname", HeaderKey("First Name"))
	assert.Equal(t, "firstname", HeaderKey("first_name"))
	assert.Equal(t, "firstname", HeaderKey("\ufeffFIRSTNAME"))
	assert.Equal(t, "license", HeaderKey(" License # "))
}

func TestRecord_GetAliases(t *testing.T) {
	rec := toRecord([]string{"Last Name", "Lic No", "Status"}, []string{"Smith ", "V-1"})
	assert.Equal(t, "Smith", rec.Get("last_name"))
	assert.Equal(t, "V-1", rec.Get("license_number", "lic_no"))
	assert.Equal(t, "", rec.Get("status"))
	assert.Equal(t, "", rec.Get("missing"))
}

func TestReadCSVRecords(t *testing.T) {
	data := "First Name,Last Name,License\nJohn,Smith,V100\n,,\nJane,Doe,V200\n"
	recs, err := ReadCSVRecords(context.Background(), strings.NewReader(data), CSVOptions{TrimSpace: true})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "John", recs[0].Get("first name"))
	assert.Equal(t, "V200", recs[1].Get("license"))
}

func TestReadCSVRecords_PipeDelimited(t *testing.T) {
	data := "name|status\nJOHN SMITH|ACTIVE\n"
	recs, err := ReadCSVRecords(context.Background(), strings.NewReader(data), CSVOptions{Delimiter: '|'})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ACTIVE", recs[0].Get("status"))
}

func TestReadCSVRecords_Empty(t *testing.T) {
	_, err := ReadCSVRecords(context.Background(), strings.NewReader(""), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header")
}

func TestReadCSVRecords_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadCSVRecords(ctx, strings.NewReader("a,b\n1,2\n"), CSVOptions{})
	require.Error(t, err)
}

func TestReadXLSXRecords(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Credential", "First Name", "Last Name", "Status"},
		{"VT60001", "Ann", "Lee", "ACTIVE"},
		{"", "", "", ""},
		{"VT60002", "Bo", "Park", "EXPIRED"},
	})

	recs, err := ReadXLSXRecords(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "VT60001", recs[0].Get("credential"))
	assert.Equal(t, "EXPIRED", recs[1].Get("status"))
}

func TestReadXLSX_SheetErrors(t *testing.T) {
	path := createTestXLSX(t, [][]string{{"a"}})

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestExtractZIPSingle(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{"roster.csv": "a,b\n"})
	dest := t.TempDir()

	path, err := ExtractZIPSingle(zipPath, dest)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestExtractZIPSingle_MultipleFiles(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{"a.csv": "1", "b.csv": "2"})
	_, err := ExtractZIPSingle(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected exactly 1 file")
}

func TestExtractZIPByExt(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"README.txt":        "about",
		"data/Licenses.CSV": "name\nx\n",
	})

	path, err := ExtractZIPByExt(zipPath, ".csv", t.TempDir())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "Licenses.CSV"))

	_, err = ExtractZIPByExt(zipPath, ".xlsx", t.TempDir())
	require.Error(t, err)
}

func TestExtractZIP_SlipRejected(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{"../evil.csv": "x"})
	_, err := ExtractZIPSingle(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip slip")
}

type xmlLicensee struct {
	Name   string `xml:"Name"`
	Status string `xml:"Status"`
}

func TestDecodeXMLElements(t *testing.T) {
	doc := `<?xml version="1.0" encoding="windows-1252"?>
<Roster><Licensee><Name>Jos` + "\xe9" + ` Ruiz</Name><Status>Active</Status></Licensee><Licensee><Name>Ann Lee</Name><Status>Inactive</Status></Licensee></Roster>`

	items, err := DecodeXMLElements[xmlLicensee](context.Background(), strings.NewReader(doc), "Licensee")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "José Ruiz", items[0].Name)
	assert.Equal(t, "Inactive", items[1].Status)
}

func TestDecodeXMLElements_Malformed(t *testing.T) {
	_, err := DecodeXMLElements[xmlLicensee](context.Background(), strings.NewReader("<Roster><Licensee>"), "Licensee")
	require.Error(t, err)
}

func TestDecodeJSONObject(t *testing.T) {
	type payload struct {
		Count int `json:"count"`
	}
	got, err := DecodeJSONObject[payload](strings.NewReader(`{"count":3}`))
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)

	_, err = DecodeJSONObject[payload](strings.NewReader(`{`))
	require.Error(t, err)
}

func TestReadHTML_Charsets(t *testing.T) {
	plain, err := ReadHTML(strings.NewReader("<html><body>café</body></html>"))
	require.NoError(t, err)
	assert.Contains(t, plain, "café")

	latin := "<html><head><meta charset=\"windows-1252\"></head><body>Pe\xf1a</body></html>"
	decoded, err := ReadHTML(strings.NewReader(latin))
	require.NoError(t, err)
	assert.Contains(t, decoded, "Peña")

	_, err = ReadHTML(strings.NewReader(`<meta charset="klingon-8">`))
	require.Error(t, err)
}
