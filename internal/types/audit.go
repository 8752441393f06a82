package types

import "time"

// CombinationAttempt records the outcome of one combination in the cascade.
type CombinationAttempt struct {
	Role      string `json:"role"`
	Location  string `json:"location"`
	Postings  int    `json:"postings"`
	Attempts  int    `json:"attempts"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// RunMetadata is the audit trail for one run: which combinations were tried,
// how many postings each yielded, and any errors absorbed along the way.
type RunMetadata struct {
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   time.Time            `json:"finished_at"`
	Request      SearchRequest        `json:"request"`
	Combinations []CombinationAttempt `json:"combinations"`
	Errors       []string             `json:"errors,omitempty"`
	Deduplicated int                  `json:"deduplicated"`
}

// RecordSuccess appends a successful combination attempt.
func (m *RunMetadata) RecordSuccess(role, location string, postings, attempts int) {
	m.Combinations = append(m.Combinations, CombinationAttempt{
		Role:      role,
		Location:  location,
		Postings:  postings,
		Attempts:  attempts,
		Succeeded: true,
	})
}

// RecordFailure appends a failed combination attempt and logs its error.
func (m *RunMetadata) RecordFailure(role, location string, attempts int, err error) {
	attempt := CombinationAttempt{
		Role:     role,
		Location: location,
		Attempts: attempts,
	}
	if err != nil {
		attempt.Error = err.Error()
		m.Errors = append(m.Errors, err.Error())
	}
	m.Combinations = append(m.Combinations, attempt)
}

// Succeeded counts combinations that yielded postings.
func (m *RunMetadata) Succeeded() int {
	n := 0
	for _, c := range m.Combinations {
		if c.Succeeded {
			n++
		}
	}
	return n
}
