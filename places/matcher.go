package places

import (
	"context"
	"database/sql"
)

// SearchParams selects autocomplete matches.
type SearchParams struct {
	SearchString string `json:"search_string"`
	Limit        uint32 `json:"limit"`
}

// SearchResult is one frecency-ranked match, in the shape it crosses the
// boundary.
type SearchResult struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Frecency int64  `json:"frecency"`
}

// SearchFrecent returns pages whose url or title contain the search
// string, highest frecency first. An empty search string matches nothing.
func (d *DB) SearchFrecent(ctx context.Context, params SearchParams) ([]SearchResult, error) {
	if params.SearchString == "" {
		return []SearchResult{}, nil
	}
	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	pattern := "%" + params.SearchString + "%"
	rows, err := d.db.QueryContext(ctx, `
	SELECT url, COALESCE(title, ''), frecency
	FROM moz_places
	WHERE visit_count > 0 AND (url LIKE ? OR title LIKE ?)
	ORDER BY frecency DESC, last_visit_date DESC
	LIMIT ?`,
		pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.URL, &r.Title, &r.Frecency); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// VisitCount reports the recorded visit total for a url, zero when the
// page is unknown.
func (d *DB) VisitCount(ctx context.Context, pageURL string) (int64, error) {
	var n int64
	err := d.db.QueryRowContext(ctx,
		`SELECT visit_count FROM moz_places WHERE url = ?`, pageURL).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}
