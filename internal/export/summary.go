package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"excursion-catalog/internal/domain"
)

var summaryHeader = []string{"URL", "Название", "Цена", "Продолжительность", "Изображений", "Категория"}

// WriteSummary writes a tab separated overview of an extracted catalog
// document. Tabs and line breaks inside values are replaced with spaces.
func WriteSummary(w io.Writer, doc domain.CatalogDocument) error {
	bw := bufio.NewWriter(w)
	writeLine := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(oneLine(f))
		}
		bw.WriteByte('\n')
	}

	writeLine(summaryHeader)
	for _, r := range doc.Excursions {
		writeLine([]string{
			r.URL.String(),
			r.Title.String(),
			r.Price.String(),
			r.Duration.String(),
			itoa(r.ImageCount),
			r.SourceCategory,
		})
	}
	return bw.Flush()
}

// WriteURLs writes one URL per line.
func WriteURLs(w io.Writer, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(urls, "\n")+"\n")
	return err
}

func itoa(n int) string { return strconv.Itoa(n) }
