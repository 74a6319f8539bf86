package counterpart

import (
	"strings"
	"unicode"
)

var (
	financialTerms = []string{"cac", "ltv", "هزینه", "درآمد", "سود", "بازگشت سرمایه", "roi"}

	innovationTerms = []string{"نوآوری", "جدید", "متفاوت", "انقلاب", "تغییر", "آینده", "هوش مصنوعی"}
	visionTerms     = []string{"چشم‌انداز", "جهانی", "رشد", "توسعه", "بازار", "میلیون", "میلیارد"}

	defensiveTerms = []string{"اما", "ولی", "شاید", "فکر می‌کنم", "احتمالا"}
	strongTerms    = []string{"قطعا", "مطمئن", "ثابت شده", "داده‌ها نشان", "تجربه کرده‌ایم"}
)

// containsAny reports whether any term occurs in msg, ignoring case.
func containsAny(msg string, terms []string) bool {
	lower := strings.ToLower(msg)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func hasDigit(msg string) bool {
	return strings.IndexFunc(msg, unicode.IsDigit) >= 0
}
