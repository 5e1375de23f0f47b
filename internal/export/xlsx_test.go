package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWorkbookRoundTrip(t *testing.T) {
	subs, points := fixture(t)

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, subs, points); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != sheetSubscriptions || sheets[1] != sheetSeries {
		t.Fatalf("sheets = %v", sheets)
	}
	if v, _ := f.GetCellValue(sheetSeries, "C3"); v != "30.98" {
		t.Fatalf("Series!C3 = %q, want 30.98", v)
	}
	f.Close()

	got, err := ReadWorkbook(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(got) != len(subs) {
		t.Fatalf("read %d records, want %d", len(got), len(subs))
	}
	for i := range got {
		if !got[i].Equal(subs[i].Record) {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], subs[i].Record)
		}
	}
}

func TestReadWorkbookRejectsInvalidRows(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetSheetName(f.GetSheetName(0), sheetSubscriptions)
	_ = f.SetSheetRow(sheetSubscriptions, "A1", &subscriptionHeader)
	_ = f.SetSheetRow(sheetSubscriptions, "A2", &[]any{"Netflix", "0", "USD", "monthly", "2024-01-01"})
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	_, err := ReadWorkbook(&buf)
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("ReadWorkbook err = %v, want row 2 validation error", err)
	}
}

func TestReadWorkbookMissingColumn(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetSheetName(f.GetSheetName(0), sheetSubscriptions)
	_ = f.SetSheetRow(sheetSubscriptions, "A1", &[]any{"Name", "Price"})
	_ = f.SetSheetRow(sheetSubscriptions, "A2", &[]any{"Netflix", "1"})
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadWorkbook(&buf); err == nil || !strings.Contains(err.Error(), "Currency") {
		t.Fatalf("ReadWorkbook err = %v, want missing Currency column", err)
	}
}
