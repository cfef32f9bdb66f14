package places

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/rep-nop/application-services/guid"
)

// Visit transition types, matching the desktop history values.
const (
	VisitLink              = 1
	VisitTyped             = 2
	VisitBookmark          = 3
	VisitEmbed             = 4
	VisitRedirectPermanent = 5
	VisitRedirectTemporary = 6
	VisitDownload          = 7
	VisitFramedLink        = 8
	VisitReload            = 9
)

// VisitObservation is one observed page visit, as delivered across the
// boundary in its interchange JSON form. Absent optional fields keep
// whatever the page row already has.
type VisitObservation struct {
	URL       string  `json:"url"`
	Title     *string `json:"title,omitempty"`
	VisitType *int    `json:"visit_type,omitempty"`
	IsError   bool    `json:"is_error,omitempty"`
	IsRemote  bool    `json:"is_remote,omitempty"`
	// At is the visit time in milliseconds since the epoch; zero or
	// absent means now.
	At *int64 `json:"at,omitempty"`
}

// ApplyObservation records one visit: the page row is created or updated
// and a visit row is inserted. Frecency is recomputed from the new visit
// count.
func (d *DB) ApplyObservation(ctx context.Context, obs VisitObservation) error {
	parsed, err := url.Parse(obs.URL)
	if err != nil || !parsed.IsAbs() {
		return fmt.Errorf("%w: %q", ErrInvalidURL, obs.URL)
	}

	visitType := VisitLink
	if obs.VisitType != nil {
		visitType = *obs.VisitType
	}
	at := time.Now().UnixMilli()
	if obs.At != nil && *obs.At > 0 {
		at = *obs.At
	}

	return d.withTx(ctx, func(tx *sql.Tx) error {
		placeID, err := upsertPlace(ctx, tx, obs)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO moz_historyvisits(place_id, visit_type, visit_date, is_local, is_error)
		VALUES(?, ?, ?, ?, ?)`,
			placeID, visitType, at, boolAsInt(!obs.IsRemote), boolAsInt(obs.IsError))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
		UPDATE moz_places
		SET visit_count = visit_count + 1,
		    frecency = frecency + ?,
		    last_visit_date = MAX(COALESCE(last_visit_date, 0), ?)
		WHERE id = ?`,
			frecencyPerVisit(visitType, obs.IsError), at, placeID)
		return err
	})
}

func upsertPlace(ctx context.Context, tx *sql.Tx, obs VisitObservation) (int64, error) {
	var (
		id    int64
		title sql.NullString
	)
	err := tx.QueryRowContext(ctx,
		`SELECT id, title FROM moz_places WHERE url = ?`, obs.URL).Scan(&id, &title)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx,
			`INSERT INTO moz_places(guid, url, title) VALUES(?, ?, ?)`,
			guid.New(), obs.URL, obs.Title)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	case err != nil:
		return 0, err
	}

	if obs.Title != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE moz_places SET title = ? WHERE id = ?`, *obs.Title, id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// frecencyPerVisit is a heavily simplified take on desktop's frecency
// weighting: typed and bookmarked visits count more, embeds and errors
// essentially not at all.
func frecencyPerVisit(visitType int, isError bool) int {
	if isError {
		return 0
	}
	switch visitType {
	case VisitTyped:
		return 200
	case VisitBookmark:
		return 150
	case VisitEmbed, VisitFramedLink:
		return 0
	default:
		return 100
	}
}

func boolAsInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
