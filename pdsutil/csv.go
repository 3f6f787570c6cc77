package pdsutil

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteTimestampsCSV writes one row per frame: index, timestamp in
// seconds and the interval since the previous frame.
func WriteTimestampsCSV(w io.Writer, ts []float32) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"frame", "timestamp", "interval"}); err != nil {
		return err
	}
	for i, v := range ts {
		interval := ""
		if i > 0 {
			interval = formatFloat(v - ts[i-1])
		}
		if err := cw.Write([]string{strconv.Itoa(i), formatFloat(v), interval}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
