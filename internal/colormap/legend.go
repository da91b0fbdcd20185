package colormap

import "strconv"

// LegendSlots is the number of gradient swatches in a legend.
const LegendSlots = 40

// LegendHeading is the fixed heading rendered above the legend rows.
const LegendHeading = "Legend"

// NoDataLabel labels the sentinel swatch.
const NoDataLabel = "no data"

// RowKind identifies the role of a legend row.
type RowKind string

const (
	RowMax    RowKind = "max"
	RowSwatch RowKind = "swatch"
	RowMin    RowKind = "min"
	RowNoData RowKind = "nodata"
)

// LegendRow is one legend line: a colour swatch, a label, or both.
type LegendRow struct {
	Kind  RowKind `json:"kind" enum:"max,swatch,min,nodata" doc:"Row role"`
	Color string  `json:"color,omitempty" doc:"Swatch colour (#rrggbb)" example:"#ff0000"`
	Label string  `json:"label,omitempty" doc:"Row label" example:"40 ppm"`
}

// BuildLegend returns the legend for the [min, max] scale: a max label,
// LegendSlots swatches from max down to min, a min label and the no-data
// swatch. It always returns LegendSlots+3 rows.
func BuildLegend(min, max float64, unit string) []LegendRow {
	rows := make([]LegendRow, 0, LegendSlots+3)
	rows = append(rows, LegendRow{Kind: RowMax, Label: FormatValue(max, unit)})

	step := (max - min) / (LegendSlots - 1)
	for i := LegendSlots; i > 0; i-- {
		sample := step*float64(i) + min
		rows = append(rows, LegendRow{Kind: RowSwatch, Color: ColorOf(sample, min, max)})
	}

	rows = append(rows,
		LegendRow{Kind: RowMin, Label: FormatValue(min, unit)},
		LegendRow{Kind: RowNoData, Color: NoData, Label: NoDataLabel},
	)
	return rows
}

// FormatValue renders v in its shortest form followed by unit, e.g. "0.2 ppm".
func FormatValue(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if unit == "" {
		return s
	}
	return s + " " + unit
}
