package stats

import (
	"context"

	"github.com/verte-zerg/adaptype/internal/model"
)

// ResultSource is the storage view needed for reports.
type ResultSource interface {
	ListResults(ctx context.Context, cfg model.ResultsConfig) ([]model.ResultRecord, error)
}

// Report contains precomputed data for results rendering.
type Report struct {
	Results []model.ResultRecord
	Summary Summary
	TopKeys []KeyCount
}

// BuildReport loads and prepares data for results rendering.
func BuildReport(ctx context.Context, src ResultSource, cfg model.ResultsConfig) (Report, error) {
	results, err := src.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Results: results,
		Summary: Summarize(results),
		TopKeys: TopKeys(MergeKeyErrors(results), cfg.Top),
	}, nil
}
