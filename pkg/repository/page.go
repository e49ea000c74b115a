package repository

import (
	"context"
	"fmt"

	"github.com/JaimeStill/outreach/pkg/pagination"
	"github.com/JaimeStill/outreach/pkg/query"
)

// QueryPage counts every row qb matches, then fetches the requested page.
// page must already be normalized. A non-empty page.Sort replaces the
// builder's default order.
func QueryPage[T any](
	ctx context.Context,
	q Querier,
	qb *query.Builder,
	page pagination.PageRequest,
	scan ScanFunc[T],
) (*pagination.PageResult[T], error) {
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := QueryScalar[int](ctx, q, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := QueryMany(ctx, q, pageSQL, pageArgs, scan)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.Page, err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}
