package job

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Legal suffixes stripped from company names before fingerprinting, so that
// "Acme Inc." and "Acme" collapse to the same listing.
var companySuffixes = []string{
	"incorporated", "inc", "llc", "llp", "ltd", "limited",
	"corporation", "corp", "company", "co", "gmbh", "plc", "group",
}

// NormalizeSpace lowercases s and collapses all runs of whitespace to a
// single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeCompany canonicalizes a company name for fingerprinting:
// lowercase, whitespace collapse, punctuation removal and trailing legal
// suffix stripping.
func NormalizeCompany(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '&':
			return ' '
		}
		return r
	}, name)

	words := strings.Fields(strings.ToLower(cleaned))

	for len(words) > 1 {
		last := words[len(words)-1]
		stripped := false
		for _, suffix := range companySuffixes {
			if last == suffix {
				words = words[:len(words)-1]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}

	return strings.Join(words, " ")
}

// ParseLocation splits a raw location string like "Chicago, IL (Remote)" into
// city, state and a remote flag. Parenthesized qualifiers ("Remote",
// "Hybrid") are recognized, as is a bare "Remote" location.
func ParseLocation(raw string) (city, state string, remote bool) {
	loc := strings.TrimSpace(raw)

	if open := strings.Index(loc, "("); open != -1 {
		qualifier := loc[open:]
		if strings.Contains(strings.ToLower(qualifier), "remote") {
			remote = true
		}
		loc = strings.TrimSpace(loc[:open])
	}

	if strings.EqualFold(loc, "remote") || strings.HasPrefix(strings.ToLower(loc), "remote ") {
		return "", "", true
	}

	parts := strings.SplitN(loc, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		state = strings.TrimSpace(parts[1])
	}

	return city, state, remote
}

// Fingerprint derives the stable dedup identity from normalized title,
// company and city. Two postings with the same fingerprint are the same
// listing no matter which provider returned them.
func Fingerprint(title, company, location string) string {
	city, _, _ := ParseLocation(location)
	raw := fmt.Sprintf("%s|%s|%s",
		NormalizeSpace(title),
		NormalizeCompany(company),
		NormalizeSpace(city),
	)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", sum)[:16]
}
