package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/sync/errgroup"

	"boqrevisions/metrics"
	"boqrevisions/services"
)

// resolveCompareVersions picks the two versions to compare. An empty
// current means the latest; an empty previous means the version stored
// just before current.
func resolveCompareVersions(versions []int, currentParam, previousParam string) (current, previous int, ok bool) {
	if len(versions) < 2 {
		return 0, 0, false
	}

	idx := len(versions) - 1
	if currentParam != "" {
		v, err := strconv.Atoi(currentParam)
		if err != nil {
			return 0, 0, false
		}
		idx = -1
		for i, have := range versions {
			if have == v {
				idx = i
				break
			}
		}
		if idx < 0 {
			return 0, 0, false
		}
	}
	current = versions[idx]

	if previousParam != "" {
		v, err := strconv.Atoi(previousParam)
		if err != nil {
			return 0, 0, false
		}
		return current, v, true
	}
	if idx == 0 {
		return 0, 0, false
	}
	return current, versions[idx-1], true
}

// HandleRevisionCompare returns a handler that diffs two revisions of a BOQ
// and reports both totals and their deltas.
func HandleRevisionCompare(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, ok, err := findBOQ(app, e)
		if !ok {
			return err
		}

		versions, err := services.ListVersions(app, boq.Id)
		if err != nil {
			log.Printf("revision_compare: %v", err)
			return serviceError(e, err)
		}
		q := e.Request.URL.Query()
		curVersion, prevVersion, ok := resolveCompareVersions(versions, q.Get("current"), q.Get("previous"))
		if !ok {
			return jsonError(e, http.StatusNotFound, "no revisions to compare")
		}

		var current, previous services.Revision
		g, _ := errgroup.WithContext(e.Request.Context())
		g.Go(func() error {
			var err error
			current, err = services.LoadRevision(app, boq.Id, curVersion)
			return err
		})
		g.Go(func() error {
			var err error
			previous, err = services.LoadRevision(app, boq.Id, prevVersion)
			return err
		})
		if err := g.Wait(); err != nil {
			log.Printf("revision_compare: BOQ %s: %v", boq.Id, err)
			return serviceError(e, err)
		}

		cmp := services.CompareRevisions(current.Snapshot, previous.Snapshot)
		metrics.RevisionDiffs.Inc()
		metrics.TotalsComputed.Add(2)

		return e.JSON(http.StatusOK, map[string]any{
			"current_version":  curVersion,
			"previous_version": prevVersion,
			"current_status":   current.Status,
			"comparison":       cmp,
		})
	}
}
