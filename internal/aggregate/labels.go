package aggregate

import (
	"strconv"
	"time"

	"golang.org/x/text/language"
)

var (
	supportedLanguages = []language.Tag{language.English, language.Thai}
	languageMatcher    = language.NewMatcher(supportedLanguages)
)

var shortMonths = map[language.Tag][12]string{
	language.English: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	language.Thai:    {"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.", "ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค."},
}

var longMonths = map[language.Tag][12]string{
	language.English: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	language.Thai: {"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
		"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม"},
}

// buddhistEraOffset converts a Gregorian year to the Thai solar calendar year.
const buddhistEraOffset = 543

// MatchLanguage picks the supported label language for an Accept-Language
// style string. Unknown or empty input falls back to English.
func MatchLanguage(accept string) language.Tag {
	_, idx := language.MatchStrings(languageMatcher, accept)
	return supportedLanguages[idx]
}

func supported(lang language.Tag) language.Tag {
	_, idx, _ := languageMatcher.Match(lang)
	return supportedLanguages[idx]
}

// MonthLabel is the abbreviated month name, e.g. "Oct" or "ต.ค.".
func MonthLabel(m time.Month, lang language.Tag) string {
	return shortMonths[supported(lang)][m-1]
}

// MonthTitle is the calendar header, e.g. "October 2023" or "ตุลาคม 2566".
func MonthTitle(year int, m time.Month, lang language.Tag) string {
	lang = supported(lang)
	if lang == language.Thai {
		year += buddhistEraOffset
	}
	return longMonths[lang][m-1] + " " + strconv.Itoa(year)
}
