// Package extractor reads saved "Sort Your Music" pages into raw rows.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trackmerge/internal/database"
	"trackmerge/internal/services"
)

// ProcessedDateLayout formats the Processed_Date column.
const ProcessedDateLayout = "2006-01-02 15:04:05"

// headerRenames maps the page's abbreviated column headings to database
// column names.
var headerRenames = map[string]string{
	"#":     "Order",
	"Pop.":  "Popularity",
	"A.Sep": "Artist_Separation",
	"Rnd":   "Random",
}

// Result is everything extracted from one page.
type Result struct {
	Source      string
	Headers     []string
	Rows        []*database.Row
	PlaylistRef string
}

// ExtractFile opens path and extracts it. The Source_HTML column records the
// file's base name.
func ExtractFile(path string, now time.Time) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrInput, "extract", "open", fmt.Sprintf("html file not found: %s", path), err)
		}
		return nil, services.Wrap(services.ErrInput, "extract", "open", path, err)
	}
	defer f.Close()
	return Extract(f, filepath.Base(path), now)
}

// Extract parses the song table from r. Body rows with fewer cells than
// there are headers are skipped; extra cells are ignored. Each row gains
// Source_HTML and Processed_Date columns. A page without table#song-table is
// an input error.
func Extract(r io.Reader, source string, now time.Time) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, services.Wrap(services.ErrInput, "extract", "parse", source, err)
	}

	result := &Result{Source: source}
	if href, ok := doc.Find("a#playlist-title").First().Attr("href"); ok {
		result.PlaylistRef = strings.TrimSpace(href)
	}

	table := doc.Find("table#song-table").First()
	if table.Length() == 0 {
		return nil, services.Wrap(services.ErrInput, "extract", "parse", "could not find song-table in "+source, nil)
	}

	table.Find("thead tr").First().Find("th").Each(func(_ int, th *goquery.Selection) {
		result.Headers = append(result.Headers, columnName(th.Text()))
	})

	processed := now.Format(ProcessedDateLayout)
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < len(result.Headers) {
			return
		}
		row := database.NewRow()
		cells.Slice(0, len(result.Headers)).Each(func(i int, td *goquery.Selection) {
			row.Set(result.Headers[i], strings.TrimSpace(td.Text()))
		})
		row.Set(database.ColumnSourceHTML, source)
		row.Set(database.ColumnProcessedDate, processed)
		result.Rows = append(result.Rows, row)
	})
	return result, nil
}

func columnName(heading string) string {
	heading = strings.TrimSpace(heading)
	if renamed, ok := headerRenames[heading]; ok {
		return renamed
	}
	return heading
}
