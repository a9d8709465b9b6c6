package utils

// ClaimStrings normalises a multi-valued claim. Providers send roles and
// groups either as a single string or as a JSON array; non-string array
// members are skipped. Returns nil when the claim carries no strings.
func ClaimStrings(claim any) []string {
	switch v := claim.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		if len(v) == 0 {
			return nil
		}
		return v
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
