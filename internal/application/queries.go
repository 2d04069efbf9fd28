package application

import "github.com/bnema/copytrade-cli/internal/domain"

// Summary counts the outcomes of one batch by terminal status.
type Summary struct {
	Total     int `json:"total"`
	Copying   int `json:"copying"`
	Stopped   int `json:"stopped"`
	Failed    int `json:"failed"`
	Simulated int `json:"simulated"`
}

func Summarize(outcomes []domain.Outcome) Summary {
	summary := Summary{Total: len(outcomes)}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case domain.CopierStatusCopying:
			summary.Copying++
		case domain.CopierStatusIdle:
			summary.Stopped++
		case domain.CopierStatusError:
			summary.Failed++
		}
		if outcome.Simulated {
			summary.Simulated++
		}
	}

	return summary
}
