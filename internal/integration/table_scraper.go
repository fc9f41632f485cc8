// Package integration handles external service interactions
package integration

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/ansel1/merry"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "scraper")

// TableScraper reads calibration tables published as HTML. The expected
// layout is one row per decade: the decade in the first cell followed by the
// volumes for digits 0..9, with Brazilian number formatting ("1.234,5").
type TableScraper struct {
	client *http.Client
}

// NewTableScraper creates a new calibration table scraper
func NewTableScraper() *TableScraper {
	return &TableScraper{client: &http.Client{Timeout: 30 * time.Second}}
}

// FetchTable reads the table at source, an http(s) URL or a local file
func (ts *TableScraper) FetchTable(ctx context.Context, source string) (entities.VolumetricTable, error) {
	body, err := ts.open(ctx, source)
	if err != nil {
		return entities.VolumetricTable{}, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return entities.VolumetricTable{}, merry.Appendf(err, "failed to parse %s", source)
	}
	table, err := ts.ParseTable(doc)
	if err != nil {
		return entities.VolumetricTable{}, merry.Appendf(err, "calibration table at %s", source)
	}
	return table, nil
}

func (ts *TableScraper) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, merry.Append(err, "failed to open calibration file")
		}
		return f, nil
	}

	log.Info("sending HTTP request", "url", source)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	res, err := ts.client.Do(req)
	if err != nil {
		return nil, merry.Append(err, "failed to fetch the webpage")
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, merry.Errorf("unexpected status code: %d %s", res.StatusCode, res.Status)
	}
	return res.Body, nil
}

// ParseTable extracts a calibration table from an HTML document. Rows whose
// first cell is not a decade (headers, notes) are skipped. A row ends at its
// first blank or "-" cell, which is how the last, partial decade is written.
func (ts *TableScraper) ParseTable(doc *goquery.Document) (entities.VolumetricTable, error) {
	rows := map[int][]entities.Liters{}
	processedRows, skippedRows := 0, 0
	var parseErr error

	doc.Find("table tr").EachWithBreak(func(index int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return true
		}
		processedRows++

		decade, ok := parseDecade(cells.Eq(0).Text())
		if !ok {
			skippedRows++
			return true
		}
		if _, dup := rows[decade]; dup {
			parseErr = merry.Errorf("decade %d appears twice", decade)
			return false
		}

		var values []entities.Liters
		for i := 1; i < cells.Length() && len(values) < entities.DigitsPerDecade; i++ {
			text := strings.TrimSpace(cells.Eq(i).Text())
			if text == "" || text == "-" {
				break
			}
			v, err := ParseBrazilianNumber(text)
			if err != nil {
				parseErr = merry.Appendf(err, "decade %d, digit %d", decade, i-1)
				return false
			}
			values = append(values, entities.Liters(v))
		}
		if len(values) == 0 {
			skippedRows++
			return true
		}
		rows[decade] = values
		return true
	})
	if parseErr != nil {
		return entities.VolumetricTable{}, parseErr
	}

	log.Info("parsed calibration table", "rows", processedRows, "decades", len(rows), "skipped", skippedRows)

	table, err := entities.NewVolumetricTable(rows)
	if err != nil {
		return entities.VolumetricTable{}, merry.Wrap(err)
	}
	if heights := table.NonMonotonic(); len(heights) > 0 {
		log.Warn("calibration table is not monotonic", "heights", heights)
	}
	return table, nil
}

// parseDecade reads "120" or "120 cm" as a decade key
func parseDecade(text string) (int, bool) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.ToLower(text)), "cm"))
	decade, err := strconv.Atoi(text)
	if err != nil || decade < entities.MinHeight || decade > entities.MaxHeight || decade%entities.DigitsPerDecade != 0 {
		return 0, false
	}
	return decade, true
}

// ParseBrazilianNumber parses numbers written as "12.345,67", "12345" or "0,5"
func ParseBrazilianNumber(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, merry.Errorf("invalid number %q", text)
	}
	return v, nil
}
