package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRupee renders an integer amount with Indian digit grouping, e.g. ₹1,25,000.
func FormatRupee(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s₹%s", sign, groupIndian(amount))
}

// FormatRs is the ASCII variant used where the rupee sign cannot be rendered (PDF core fonts).
func FormatRs(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%sRs. %s", sign, groupIndian(amount))
}

// ParseRupeeToInt parses "₹ 7,000" or "Rs 7000" into whole rupees.
func ParseRupeeToInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(strings.ToLower(s), "rs.")
	s = strings.TrimPrefix(s, "rs")
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(",", "", " ", "")
	s = replacer.Replace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid rupee amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

// groupIndian groups the last three digits, then pairs (12,34,567).
func groupIndian(n int64) string {
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 {
		return str
	}
	head, tail := str[:len(str)-3], str[len(str)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
