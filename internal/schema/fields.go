// Package schema owns the canonical import template, header aliases, and
// the synchronizer that keeps the reporting table's physical columns in
// lockstep with the field registry.
package schema

import (
	"time"

	"github.com/pr0100noob/elta-import/internal/registry"
)

// ImportColumns23 is the canonical 23-column partner export template, used
// positionally when an incoming sheet carries no recognizable header row.
var ImportColumns23 = []string{
	"Год", "Месяц", "Код_клиента", "Наименование_товара_клиента",
	"Поставщик", "Поставщик_общий", "Сеть", "Юр_лицо", "Адрес_аптеки",
	"Регион", "Федеральный_округ",
	"Закупки_колво", "Закупки_сумма",
	"Продажи_колво", "Продажи_сумма",
	"Остатки_колво",
	"Артикул_Элта", "Полное_наименование_Элта",
	"Глюкометры", "Тест_полоски_50", "Тест_полоски_25",
	"Региональный_менеджер", "Медицинский_представитель",
}

// seedFields31 is the full default registry, in registration order.
var seedFields31 = []string{
	"Год", "Месяц", "Код_клиента", "Наименование_товара_клиента", "Поставщик", "Поставщик_общий",
	"Сеть", "Юр_лицо", "Адрес_аптеки", "Регион", "Федеральный_округ",
	"Закупки_колво", "Закупки_сумма", "Продажи_колво", "Продажи_сумма", "Остатки_колво",
	"Артикул_Элта", "Полное_наименование_Элта",
	"Глюкометры",
	"Глюкометр_Сателлит", "Глюкометр_Плюс", "Глюкометр_Экспресс",
	"Тест_полоски_50",
	"ТП_Сателлит_50", "ТП_Плюс_50", "ТП_Экспресс_50",
	"Тест_полоски_25",
	"ТП_Сателлит_25", "ТП_Плюс_25", "ТП_Экспресс_25",
	"Итого",
}

// numericFields is the name convention for quantity/amount columns. Ad-hoc
// fields met during ingestion default to REAL when listed here, else TEXT.
var numericFields = map[string]bool{
	"Закупки_колво": true, "Закупки_сумма": true, "Продажи_колво": true,
	"Продажи_сумма": true, "Остатки_колво": true,
	"Глюкометры": true, "Глюкометр_Сателлит": true, "Глюкометр_Плюс": true,
	"Глюкометр_Экспресс": true,
	"Тест_полоски_50": true, "ТП_Сателлит_50": true, "ТП_Плюс_50": true,
	"ТП_Экспресс_50": true,
	"Тест_полоски_25": true, "ТП_Сателлит_25": true, "ТП_Плюс_25": true,
	"ТП_Экспресс_25": true,
}

// identityIntFields are identity columns coerced to integers with a
// null-preserving policy: "missing" stays distinct from zero.
var identityIntFields = map[string]bool{
	"Год":          true,
	"Месяц":        true,
	"Код_клиента":  true,
	"Артикул_Элта": true,
}

// HeaderAliases maps human-readable header variants seen in partner exports
// to canonical field names.
var HeaderAliases = map[string]string{
	"Код клиента":                  "Код_клиента",
	"Наименование товара клиента":  "Наименование_товара_клиента",
	"Поставщик общий":              "Поставщик_общий",
	"Юридическое лицо":             "Юр_лицо",
	"Адрес аптеки":                 "Адрес_аптеки",
	"Федеральный округ":            "Федеральный_округ",
	"Артикул Элта":                 "Артикул_Элта",
	"Полное наименование Элта":     "Полное_наименование_Элта",
	"Региональный менеджер":        "Региональный_менеджер",
	"Медицинский представитель":    "Медицинский_представитель",
	"Закупки Кол-во упаковок":      "Закупки_колво",
	"Закупки кол-во упаковок":      "Закупки_колво",
	"Закупки сумма в закупочных ценах": "Закупки_сумма",
	"Продажи кол-во упаковок":          "Продажи_колво",
	"Продажи сумма в закупочных ценах": "Продажи_сумма",
	"Продажи сумма в закупочных ценах/ценах реализации": "Продажи_сумма",
	"Остатки кол-во упаковок":                           "Остатки_колво",
	"Тест-полоски 50":                                   "Тест_полоски_50",
	"Тест-полоски 25":                                   "Тест_полоски_25",
}

// DefaultFilterFields is the report-path default filter set.
var DefaultFilterFields = []string{"Год", "Месяц", "Регион", "Поставщик", "Сеть"}

// NumericField reports whether name follows the numeric-field convention.
func NumericField(name string) bool { return numericFields[name] }

// IdentityIntField reports whether name is an integer identity column.
func IdentityIntField(name string) bool { return identityIntFields[name] }

// DefaultType returns the declared type an unseen field receives: REAL for
// names matching the numeric convention, TEXT otherwise.
func DefaultType(name string) string {
	if numericFields[name] {
		return registry.TypeReal
	}
	return registry.TypeText
}

// SeedFields returns the default registry contents stamped with now.
func SeedFields(now time.Time) []registry.Field {
	fields := make([]registry.Field, 0, len(seedFields31))
	for _, name := range seedFields31 {
		typ := DefaultType(name)
		if identityIntFields[name] {
			typ = registry.TypeInteger
		}
		fields = append(fields, registry.Field{
			Name:      name,
			Type:      typ,
			CreatedAt: now,
		})
	}
	return fields
}

// NumericFieldNames returns, from the given registry fields, the names
// declared REAL plus any matching the numeric convention, in field order.
func NumericFieldNames(fields []registry.Field) []string {
	var out []string
	for _, f := range fields {
		if f.Type == registry.TypeReal || numericFields[f.Name] {
			out = append(out, f.Name)
		}
	}
	return out
}
