// Package export writes FPU time series as CSV or XLSX tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/water-atlas/internal/model"
	"github.com/sells-group/water-atlas/internal/state"
)

// Header is the fixed column order of every export.
var Header = []string{
	"time",
	"featureId",
	"blueWaterShortage",
	"blueWaterStress",
	"population",
	"availability",
	"consumptionIrrigation",
	"consumptionDomestic",
	"consumptionElectric",
	"consumptionLivestock",
	"consumptionManufacturing",
}

// SheetName is the worksheet the XLSX export writes to.
const SheetName = "data"

// cell is one table value. Absent numbers have ok == false.
type cell struct {
	text   string
	number float64
	ok     bool
	isText bool
}

func textCell(s string) cell { return cell{text: s, ok: true, isText: true} }
func numberCell(v float64) cell { return cell{number: v, ok: true} }

func optionalCell(v *float64) cell {
	if v == nil {
		return cell{}
	}
	return numberCell(*v)
}

func (c cell) String() string {
	switch {
	case !c.ok:
		return ""
	case c.isText:
		return c.text
	default:
		return strconv.FormatFloat(c.number, 'f', -1, 64)
	}
}

// rows flattens the series: buckets in time order, regions by ascending id.
func rows(series *model.Series[model.RegionDatum]) [][]cell {
	var out [][]cell
	if series == nil {
		return out
	}
	for _, b := range series.Buckets {
		label := b.Years().Label()
		for _, id := range b.RegionIDs() {
			d := b.Data[id]
			out = append(out, []cell{
				textCell(label),
				numberCell(float64(id)),
				optionalCell(d.Shortage),
				optionalCell(d.Stress),
				numberCell(d.Population),
				numberCell(d.Availability),
				numberCell(d.ConsumptionIrrigation),
				numberCell(d.ConsumptionDomestic),
				numberCell(d.ConsumptionElectric),
				numberCell(d.ConsumptionLivestock),
				numberCell(d.ConsumptionManufacturing),
			})
		}
	}
	return out
}

// WriteCSV writes the header and one row per bucket and region.
func WriteCSV(w io.Writer, series *model.Series[model.RegionDatum]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	record := make([]string, len(Header))
	for _, row := range rows(series) {
		for i, c := range row {
			record[i] = c.String()
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes the same table as WriteCSV into a single worksheet.
func WriteXLSX(w io.Writer, series *model.Series[model.RegionDatum]) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}
	for _, row := range rows(series) {
		r := sheet.AddRow()
		for _, c := range row {
			xc := r.AddCell()
			switch {
			case !c.ok:
			case c.isText:
				xc.SetString(c.text)
			default:
				xc.SetFloat(c.number)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

// Filename names an export after the model selection and the UTC time of the
// download, e.g. water-atlas_watch_h08_decadal_20240102T030405Z.csv.
func Filename(sel state.Selections, now time.Time, ext string) string {
	return fmt.Sprintf("water-atlas_%s_%s_%s_%s.%s",
		sel.ClimateModel, sel.ImpactModel, sel.TimeScale,
		now.UTC().Format("20060102T150405Z"), ext)
}
