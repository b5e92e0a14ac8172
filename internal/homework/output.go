package homework

import (
	"errors"
	"os"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const outputExt = ".jpeg"

// unsafeNameReplacer maps characters that cannot appear in a sheet file name.
var unsafeNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// OutputName is the sheet file name for student on day, for example
// "2026-03-07_Mina.jpeg".
func OutputName(day time.Time, student string) string {
	return day.Format("2006-01-02") + "_" + sheetName(student) + outputExt
}

func sheetName(student string) string {
	return strings.TrimSpace(unsafeNameReplacer.Replace(norm.NFC.String(strings.TrimSpace(student))))
}

// existingSheets lists the NFC-normalized .jpeg names in dir. A missing
// directory has no sheets.
func existingSheets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), outputExt) {
			continue
		}
		names = append(names, norm.NFC.String(entry.Name()))
	}
	return names, nil
}

// findSheet reports the first existing sheet whose name contains the student.
func findSheet(existing []string, student string) (string, bool) {
	name := sheetName(student)
	for _, sheet := range existing {
		if strings.Contains(sheet, name) {
			return sheet, true
		}
	}
	return "", false
}
