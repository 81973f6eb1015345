package utils

import "strings"

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NilIfBlank turns an empty or whitespace-only string into nil.
func NilIfBlank(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func PtrInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
