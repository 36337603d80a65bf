package sheets

import (
	"fmt"
	"regexp"
	"strings"
)

// Range is a worksheet name plus an A1-notation cell span, e.g. 'Mauzo!A1:J'.
type Range struct {
	Sheet string
	From  string
	To    string
}

var rangeRegex = regexp.MustCompile(`^(.+?)!([a-zA-Z]+[0-9]*|[0-9]+)(?::([a-zA-Z]+[0-9]*|[0-9]+))?$`)

// ParseRange validates a spreadsheet range of the form <sheet>!<from>[:<to>].
func ParseRange(area string) (Range, error) {
	match := rangeRegex.FindStringSubmatch(strings.TrimSpace(area))
	if len(match) < 4 {
		return Range{}, fmt.Errorf("invalid range '%s' - expected something like 'Mauzo!A1:J'", area)
	}

	sheet := strings.TrimSpace(match[1])
	if len(sheet) > 1 && strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}

	if sheet == "" {
		return Range{}, fmt.Errorf("invalid range '%s' - missing sheet name", area)
	}

	return Range{
		Sheet: sheet,
		From:  strings.ToUpper(match[2]),
		To:    strings.ToUpper(match[3]),
	}, nil
}

func (r Range) String() string {
	sheet := r.Sheet
	if strings.ContainsAny(sheet, " '!") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}

	if r.To == "" {
		return fmt.Sprintf("%s!%s", sheet, r.From)
	}

	return fmt.Sprintf("%s!%s:%s", sheet, r.From, r.To)
}
