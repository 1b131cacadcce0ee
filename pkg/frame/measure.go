package frame

import "fmt"

// Measurement is a single named scalar from a computed layout.
type Measurement struct {
	Name  string  `json:"name" bson:"name"`
	Value float64 `json:"value" bson:"value"`
	Unit  string  `json:"unit" bson:"unit"`
}

// Measurements projects the comparison scalars out of a layout. It is purely
// a view over already-computed data; no new derivation happens here.
func Measurements(l *Layout) []Measurement {
	return []Measurement{
		{Name: "wheelbase", Value: l.Wheelbase, Unit: "mm"},
		{Name: "chainstay", Value: l.ChainstayLength, Unit: "mm"},
		{Name: "top tube", Value: l.TopTubeLength, Unit: "mm"},
		{Name: "down tube", Value: l.DownTubeLength, Unit: "mm"},
		{Name: "seat tube", Value: l.SeatTube.Length(), Unit: "mm"},
		{Name: "head tube angle", Value: l.HeadTubeAngle, Unit: "deg"},
		{Name: "seat tube angle", Value: l.SeatTubeAngle, Unit: "deg"},
	}
}

// CompareRow is one row of a side-by-side comparison table: a measurement
// name plus one formatted value per layout.
type CompareRow struct {
	Name   string
	Values []string
}

// CompareRows builds side-by-side comparison rows for any number of layouts.
// Row order follows Measurements; column order follows the input order.
func CompareRows(layouts []*Layout) []CompareRow {
	if len(layouts) == 0 {
		return nil
	}

	base := Measurements(layouts[0])
	rows := make([]CompareRow, len(base))
	for i, m := range base {
		rows[i] = CompareRow{Name: m.Name, Values: make([]string, len(layouts))}
	}

	for col, l := range layouts {
		for i, m := range Measurements(l) {
			rows[i].Values[col] = formatMeasurement(m)
		}
	}
	return rows
}

func formatMeasurement(m Measurement) string {
	switch m.Unit {
	case "deg":
		return fmt.Sprintf("%.1f°", m.Value)
	default:
		return fmt.Sprintf("%.1f %s", m.Value, m.Unit)
	}
}
