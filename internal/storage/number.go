package storage

import (
	"encoding/json"
	"math"
	"strconv"
)

// Number is a float64 that survives JSON when it is NaN or infinite. Finite
// values encode as plain numbers, the rest as the strings "NaN", "+Inf" and
// "-Inf".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(formatFloat(v))
	}
	return json.Marshal(v)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*n = Number(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatRow(vals ...float64) []string {
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = formatFloat(v)
	}
	return row
}

func parseRow(record []string) ([]float64, error) {
	vals := make([]float64, len(record))
	for i, s := range record {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
