package analytics

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"golang.org/x/text/language"
)

// MonthLabels are the month names of one locale.
type MonthLabels struct {
	short        [12]string
	long         [12]string
	currentMonth string
	ofPeriod     string
	overall      string
}

var portugueseLabels = MonthLabels{
	short:        [12]string{"jan.", "fev.", "mar.", "abr.", "mai.", "jun.", "jul.", "ago.", "set.", "out.", "nov.", "dez."},
	long:         [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	currentMonth: "do mês",
	ofPeriod:     "de %s",
	overall:      "geral",
}

var englishLabels = MonthLabels{
	short:        [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	long:         [12]string{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"},
	currentMonth: "this month",
	ofPeriod:     "for %s",
	overall:      "overall",
}

// LabelsFor returns the labels for tag. Anything that is not Portuguese gets English.
func LabelsFor(tag language.Tag) MonthLabels {
	base, _ := tag.Base()
	if ptBase, _ := language.Portuguese.Base(); base == ptBase {
		return portugueseLabels
	}
	return englishLabels
}

// Short returns the abbreviated name of month 1-12.
func (l MonthLabels) Short(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return l.short[month-1]
}

// Long returns the capitalized full name of month 1-12.
func (l MonthLabels) Long(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	name := l.long[month-1]
	_, size := utf8.DecodeRuneInString(name)
	return strings.ToUpper(name[:size]) + name[size:]
}

// PeriodLabel describes the filtered period for the summary cards.
func PeriodLabel(f domain.Filter, now time.Time, labels MonthLabels) string {
	if f.Month != nil && f.Year != nil && *f.Month == int(now.Month()) && *f.Year == now.Year() {
		return labels.currentMonth
	}
	if f.Month != nil {
		period := labels.Long(*f.Month)
		if f.Year != nil {
			period = fmt.Sprintf("%s/%d", period, *f.Year)
		}
		return fmt.Sprintf(labels.ofPeriod, period)
	}
	if f.Year != nil {
		return fmt.Sprintf(labels.ofPeriod, fmt.Sprint(*f.Year))
	}
	return labels.overall
}
