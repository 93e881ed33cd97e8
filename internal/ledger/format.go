package ledger

import "fmt"

// badgeThreshold is the amount above which badges abbreviate to thousands.
const badgeThreshold = 9999

// FormatAmount renders an amount with a currency prefix and no decimals.
func FormatAmount(currency string, amount float64) string {
	if currency == "" {
		return fmt.Sprintf("%.0f", amount)
	}
	return fmt.Sprintf("%s %.0f", currency, amount)
}

// FormatShare renders a per-person share with two decimals.
func FormatShare(currency string, amount float64) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%s %.2f", currency, amount)
}

// FormatBadge renders an owed total compactly, e.g. "12K" for 12000.
func FormatBadge(amount float64) string {
	if amount > badgeThreshold {
		return fmt.Sprintf("%.0fK", amount/1000)
	}
	return fmt.Sprintf("%.0f", amount)
}
