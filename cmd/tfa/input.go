package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// readColumn reads one numeric column from a delimited text file. A first
// line that does not parse is treated as a header. Later rows whose value is
// empty, NaN or not a number at all (NA, n/a, ...) count as missing and are
// dropped, the analysis requires finite samples.
func readColumn(r io.Reader, column int, sep string) (values []float64, dropped int, err error) {
	if column < 0 {
		return nil, 0, fmt.Errorf("column index must be non-negative, got %d", column)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	first := true
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var fields []string
		if sep == "" {
			fields = strings.Fields(text)
		} else {
			fields = strings.Split(text, sep)
		}
		if column >= len(fields) {
			return nil, 0, fmt.Errorf("line %d has %d columns, need column %d", line, len(fields), column)
		}

		header := first
		first = false

		v, perr := strconv.ParseFloat(strings.TrimSpace(fields[column]), 64)
		if perr != nil && header {
			continue
		}
		if perr != nil || math.IsNaN(v) {
			dropped++
			continue
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return values, dropped, nil
}

func readColumnFile(path string, column int, sep string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return readColumn(f, column, sep)
}

// writeColumn writes values one per line with an optional header
func writeColumn(w io.Writer, header string, values []float64) error {
	bw := bufio.NewWriter(w)
	if header != "" {
		if _, err := fmt.Fprintln(bw, header); err != nil {
			return err
		}
	}
	for _, v := range values {
		if _, err := fmt.Fprintln(bw, strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
