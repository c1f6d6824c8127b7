// Package renderer formats portfolio analytics as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"money":    Money,
	"optional": optional,
	"percent":  percent,
}

// Money formats amount in currency, using the currency symbol when the
// code is known.
func Money(amount decimal.Decimal, currency string) string {
	if money.GetCurrency(currency) == nil {
		return strings.TrimSpace(amount.StringFixed(2) + " " + currency)
	}
	return money.NewFromFloat(amount.InexactFloat64(), currency).Display()
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// percent formats a rate, 0.1 is 10%.
func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", 100**v)
}

// renderTemplate renders mainFile with the given partials, keyed by the
// name they are invoked with.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
