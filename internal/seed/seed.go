// Package seed loads name datasets from YAML or XLSX files into the store
// behind the stand-in API.
package seed

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/nomes/internal/model"
)

// Sheet names used by XLSX datasets.
const (
	RankingSheet = "ranking"
	HistorySheet = "historico"
)

// Dataset is the content of a seed file.
type Dataset struct {
	Ranking []model.NameRecord            `yaml:"ranking"`
	History map[string][]model.NameRecord `yaml:"historico"`
}

// Writer receives imported records.
type Writer interface {
	ReplaceRanking(ctx context.Context, records []model.NameRecord) error
	ReplaceHistory(ctx context.Context, name string, records []model.NameRecord) error
}

// Summary reports what Apply wrote.
type Summary struct {
	RankingEntries int
	Names          int
	Periods        int
}

// Load reads a dataset, choosing the format from the file extension.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, errors.Wrap(err, "read dataset")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return LoadYAML(bytes.NewReader(data))
	case ".xlsx":
		return LoadXLSX(bytes.NewReader(data))
	default:
		return Dataset{}, errors.WithHint(
			errors.Newf("unsupported dataset format %q", ext),
			"use a .yaml, .yml or .xlsx file")
	}
}

// LoadYAML decodes a YAML dataset.
func LoadYAML(r io.Reader) (Dataset, error) {
	var ds Dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, nil
		}
		return Dataset{}, errors.Wrap(err, "decode yaml dataset")
	}
	return ds, nil
}

// LoadXLSX reads the ranking and historico sheets of a workbook. Column
// order is taken from the header row; missing sheets are skipped.
func LoadXLSX(r io.Reader) (ds Dataset, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Dataset{}, errors.Wrap(err, "open workbook")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close workbook")
		}
	}()

	sheets := map[string]string{}
	for _, name := range f.GetSheetList() {
		sheets[strings.ToLower(strings.TrimSpace(name))] = name
	}

	if sheet, ok := sheets[RankingSheet]; ok {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return Dataset{}, errors.Wrapf(err, "read sheet %q", sheet)
		}
		err = eachRow(rows, []string{"nome", "frequencia"}, func(cells map[string]string, line int) error {
			freq, err := parseFrequency(cells["frequencia"])
			if err != nil {
				return errors.Wrapf(err, "sheet %q row %d", sheet, line)
			}
			ds.Ranking = append(ds.Ranking, model.NameRecord{Nome: cells["nome"], Frequencia: freq})
			return nil
		})
		if err != nil {
			return Dataset{}, err
		}
	}

	if sheet, ok := sheets[HistorySheet]; ok {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return Dataset{}, errors.Wrapf(err, "read sheet %q", sheet)
		}
		ds.History = map[string][]model.NameRecord{}
		err = eachRow(rows, []string{"nome", "periodo", "frequencia"}, func(cells map[string]string, line int) error {
			freq, err := parseFrequency(cells["frequencia"])
			if err != nil {
				return errors.Wrapf(err, "sheet %q row %d", sheet, line)
			}
			key := strings.ToLower(cells["nome"])
			ds.History[key] = append(ds.History[key], model.NameRecord{Periodo: cells["periodo"], Frequencia: freq})
			return nil
		})
		if err != nil {
			return Dataset{}, err
		}
	}
	return ds, nil
}

func eachRow(rows [][]string, required []string, fn func(cells map[string]string, line int) error) error {
	if len(rows) == 0 {
		return nil
	}
	index := map[string]int{}
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return errors.Newf("missing column %q", col)
		}
	}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cells := make(map[string]string, len(required))
		for _, col := range required {
			if idx := index[col]; idx < len(row) {
				cells[col] = strings.TrimSpace(row[idx])
			}
		}
		if err := fn(cells, i+2); err != nil {
			return err
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseFrequency accepts a non-negative integer. Spreadsheet cells may hold
// it in float notation ("120.0", "1.2e3") as long as the value is whole.
func parseFrequency(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty frequencia")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, errors.Newf("negative frequencia %q", s)
		}
		return v, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid frequencia %q", s)
	}
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, errors.Newf("invalid frequencia %q", s)
	case v < 0:
		return 0, errors.Newf("negative frequencia %q", s)
	case v >= math.MaxInt64:
		return 0, errors.Newf("frequencia %q out of range", s)
	case v != math.Trunc(v):
		return 0, errors.Newf("frequencia %q is not a whole number", s)
	}
	return int64(v), nil
}

// Apply writes ds into w. The ranking is replaced only when ds has one.
func Apply(ctx context.Context, w Writer, ds Dataset) (Summary, error) {
	var sum Summary
	if len(ds.Ranking) > 0 {
		if err := w.ReplaceRanking(ctx, ds.Ranking); err != nil {
			return sum, errors.Wrap(err, "import ranking")
		}
		sum.RankingEntries = len(ds.Ranking)
	}
	names := make([]string, 0, len(ds.History))
	for name := range ds.History {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		records := ds.History[name]
		if err := w.ReplaceHistory(ctx, name, records); err != nil {
			return sum, errors.Wrapf(err, "import history of %q", name)
		}
		sum.Names++
		sum.Periods += len(records)
	}
	return sum, nil
}
