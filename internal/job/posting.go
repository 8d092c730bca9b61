package job

import (
	"encoding/json"
	"os"
	"time"
)

// Posting is the canonical job listing shape every provider is normalized
// into. Fingerprint identifies the listing across providers and reruns.
type Posting struct {
	Fingerprint    string     `json:"fingerprint,omitempty"`
	Title          string     `json:"title,omitempty"`
	Company        string     `json:"company,omitempty"`
	Location       string     `json:"location,omitempty"`
	City           string     `json:"city,omitempty"`
	State          string     `json:"state,omitempty"`
	Remote         bool       `json:"remote,omitempty"`
	SalaryText     string     `json:"salary,omitempty"`
	SalaryEstimate *int       `json:"salary_estimate,omitempty"`
	URL            string     `json:"url,omitempty"`
	Via            string     `json:"via,omitempty"`
	Source         string     `json:"source,omitempty"`
	Posted         string     `json:"posted,omitempty"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	Description    string     `json:"description,omitempty"`
	Industry       string     `json:"industry,omitempty"`
}

type Postings struct {
	Items []*Posting
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) Append(items ...*Posting) {
	p.Items = append(p.Items, items...)
}

func (p *Postings) FindByFingerprint(fp string) *Posting {
	for _, posting := range p.Items {
		if posting.Fingerprint == fp {
			return posting
		}
	}
	return nil
}

func (p *Postings) Fingerprints() []string {
	fps := make([]string, 0, len(p.Items))
	for _, posting := range p.Items {
		fps = append(fps, posting.Fingerprint)
	}
	return fps
}

// Dedup collapses postings that share a fingerprint, keeping the first
// occurrence. Input order is preserved. Returns the fingerprints of dropped
// duplicates.
func (p *Postings) Dedup() []string {
	var dropped []string
	seen := make(map[string]struct{}, len(p.Items))
	kept := make([]*Posting, 0, len(p.Items))

	for _, posting := range p.Items {
		if _, ok := seen[posting.Fingerprint]; ok {
			dropped = append(dropped, posting.Fingerprint)
			continue
		}
		seen[posting.Fingerprint] = struct{}{}
		kept = append(kept, posting)
	}

	p.Items = kept
	return dropped
}

// Keep retains only postings for which pred returns true, preserving order.
// Returns the fingerprints of removed postings.
func (p *Postings) Keep(pred func(*Posting) bool) []string {
	var removed []string
	kept := make([]*Posting, 0, len(p.Items))
	for _, posting := range p.Items {
		if pred(posting) {
			kept = append(kept, posting)
			continue
		}
		removed = append(removed, posting.Fingerprint)
	}
	p.Items = kept
	return removed
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups postings per company for quick inspection.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		report[posting.Company] = append(report[posting.Company], map[string]string{
			"title":    posting.Title,
			"location": posting.Location,
			"salary":   posting.SalaryText,
			"url":      posting.URL,
			"via":      posting.Via,
		})
	}
	return report
}
