// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	"github.com/dalemusser/mathmastery/internal/app/system/normalize"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

const dateLayout = "2006-01-02"

// listQuery is the parsed query string of GET /audit.
type listQuery struct {
	Category  string
	EventType string
	StartDate string
	EndDate   string
	Page      int
}

func parseQuery(q url.Values) listQuery {
	lq := listQuery{
		Category:  normalize.QueryParam(q.Get("category")),
		EventType: normalize.QueryParam(q.Get("event_type")),
		StartDate: normalize.QueryParam(q.Get("start_date")),
		EndDate:   normalize.QueryParam(q.Get("end_date")),
		Page:      1,
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		lq.Page = p
	}
	return lq
}

// filter turns the query into a store filter. Unparseable dates are
// ignored; the end date covers the whole day.
func (lq listQuery) filter() audit.QueryFilter {
	f := audit.QueryFilter{
		Category:  lq.Category,
		EventType: lq.EventType,
		Limit:     pageSize,
		Offset:    int64((lq.Page - 1) * pageSize),
	}
	if t, err := time.Parse(dateLayout, lq.StartDate); err == nil {
		f.Since = &t
	}
	if t, err := time.Parse(dateLayout, lq.EndDate); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.Until = &end
	}
	return f
}

// buildList loads one page of the journal and resolves account emails.
func (h *Handler) buildList(ctx context.Context, base viewdata.BaseVM, lq listQuery) (listData, error) {
	f := lq.filter()

	total, err := h.Events.CountByFilter(ctx, f)
	if err != nil {
		return listData{}, err
	}
	events, err := h.Events.Query(ctx, f)
	if err != nil {
		return listData{}, err
	}

	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	emails, err := h.Users.EmailsByIDs(ctx, ids)
	if err != nil {
		// Rows still render with raw ids.
		h.Log.Warn("resolve audit emails failed", zap.Error(err))
		emails = nil
	}
	name := func(id *primitive.ObjectID) string {
		if id == nil {
			return ""
		}
		if email, ok := emails[*id]; ok {
			return email
		}
		return id.Hex()
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			Label:     eventLabel(e.EventType),
			Actor:     name(e.ActorID),
			Target:    name(e.UserID),
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		})
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	data := listData{
		BaseVM:     base,
		Items:      items,
		Category:   lq.Category,
		EventType:  lq.EventType,
		StartDate:  lq.StartDate,
		EndDate:    lq.EndDate,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(lq.Category),
		Page:       lq.Page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    lq.Page > 1,
		HasNext:    lq.Page < totalPages,
		PrevPage:   lq.Page - 1,
		NextPage:   lq.Page + 1,
	}
	if len(items) > 0 {
		data.RangeStart = int(f.Offset) + 1
		data.RangeEnd = int(f.Offset) + len(items)
	}
	return data, nil
}

// ServeList handles GET /audit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit journal")
	defer cancel()

	base := viewdata.NewBaseVM(w, r, h.SessionMgr, "Journal d'audit", "/admin")
	data, err := h.buildList(ctx, base, parseQuery(r.URL.Query()))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit journal query failed", err)
		return
	}
	templates.Render(w, r, "audit_list", data)
}
