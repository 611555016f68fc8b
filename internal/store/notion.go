package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"taskdigest/internal/dates"
	"taskdigest/internal/store/notion"
)

var _ Store = (*Notion)(nil)

const (
	notionBaseURL = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"
	queryPageSize = 100
)

// Schema names the database properties the client reads and writes. It is
// fixed at construction; there is no reflection over the remote schema.
type Schema struct {
	Title    string
	Status   string
	Category string
	Priority string
	Date     string
	Link     string
}

func DefaultSchema() Schema {
	return Schema{
		Title:    "name",
		Status:   "states",
		Category: "label",
		Priority: "priority",
		Date:     "date",
		Link:     "gcal_event_id",
	}
}

// statusShape is the wire encoding of the status property. Depending on how
// the database was set up the property is either a native status field or a
// plain select; the client probes by retrying a failed write once with the
// alternate shape and keeps whichever worked.
type statusShape int

const (
	shapeStatus statusShape = iota
	shapeSelect
)

func (s statusShape) alternate() statusShape {
	if s == shapeStatus {
		return shapeSelect
	}
	return shapeStatus
}

var databaseIDPattern = regexp.MustCompile(`[0-9a-fA-F]{32}`)

// NormalizeDatabaseID reduces a raw or hyphenated database identifier (or a
// URL containing one) to its canonical 32-character hex form. Unrecognized
// input is returned as-is.
func NormalizeDatabaseID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if m := databaseIDPattern.FindString(strings.ReplaceAll(raw, "-", "")); m != "" {
		return m
	}
	return raw
}

// Notion is a task database client backed by the Notion HTTP API.
type Notion struct {
	rc       *resty.Client
	database string
	schema   Schema
	shape    statusShape
}

func NewNotion(token, databaseID string, schema Schema) *Notion {
	return &Notion{
		rc: resty.New().
			SetBaseURL(notionBaseURL).
			SetAuthToken(token).
			SetHeader("Notion-Version", notionVersion),
		database: NormalizeDatabaseID(databaseID),
		schema:   schema,
	}
}

func (n *Notion) Query(ctx context.Context, f Filter) ([]Record, error) {
	var out []Record
	cursor := ""
	for {
		req := notion.QueryRequest{PageSize: queryPageSize, StartCursor: cursor}
		if filter := n.filterPayload(f); filter != nil {
			req.Filter = filter
		}
		var res notion.QueryResponse
		resp, err := n.rc.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&res).
			Post("/databases/" + n.database + "/query")
		if err != nil {
			return nil, errors.Wrap(err, "error querying database")
		}
		if resp.IsError() {
			return nil, errors.New(fmt.Sprintf("error querying database: %s", resp.Status()))
		}
		for _, pg := range res.Results {
			rec, ok := n.decodePage(pg)
			if !ok {
				log.Warn().Str("pageID", pg.ID).Msg("skipping page with malformed properties")
				continue
			}
			out = append(out, rec)
		}
		if !res.HasMore {
			break
		}
		cursor = res.NextCursor
	}
	return out, nil
}

func (n *Notion) Create(ctx context.Context, r Record) (Record, error) {
	pg, err := n.writeWithShapeRetry(ctx, r, func(props map[string]notion.Property) (*resty.Response, *notion.Page, error) {
		var out notion.Page
		resp, err := n.rc.R().
			SetContext(ctx).
			SetHeader("X-Request-Id", uuid.NewString()).
			SetBody(notion.CreateRequest{Parent: notion.Parent{DatabaseID: n.database}, Properties: props}).
			SetResult(&out).
			Post("/pages")
		return resp, &out, err
	})
	if err != nil {
		return Record{}, errors.Wrap(err, "error creating record")
	}
	return n.decodeCreated(*pg, r), nil
}

func (n *Notion) Update(ctx context.Context, id string, r Record) (Record, error) {
	pg, err := n.writeWithShapeRetry(ctx, r, func(props map[string]notion.Property) (*resty.Response, *notion.Page, error) {
		var out notion.Page
		resp, err := n.rc.R().
			SetContext(ctx).
			SetHeader("X-Request-Id", uuid.NewString()).
			SetBody(notion.UpdateRequest{Properties: props}).
			SetResult(&out).
			Patch("/pages/" + id)
		return resp, &out, err
	})
	if err != nil {
		return Record{}, errors.Wrap(err, "error updating record")
	}
	return n.decodeCreated(*pg, r), nil
}

func (n *Notion) Archive(ctx context.Context, id string) error {
	archived := true
	resp, err := n.rc.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", uuid.NewString()).
		SetBody(notion.UpdateRequest{Archived: &archived}).
		Patch("/pages/" + id)
	if err != nil {
		return errors.Wrap(err, "error archiving record")
	}
	if resp.IsError() {
		return errors.New(fmt.Sprintf("error archiving record: %s", resp.Status()))
	}
	return nil
}

// writeWithShapeRetry performs a mutation with the preferred status encoding
// and retries exactly once with the alternate on a non-2xx response. A retry
// that succeeds flips the preferred shape for the rest of the run.
func (n *Notion) writeWithShapeRetry(ctx context.Context, r Record, do func(map[string]notion.Property) (*resty.Response, *notion.Page, error)) (*notion.Page, error) {
	resp, pg, err := do(n.encodeProps(r, n.shape))
	if err != nil {
		return nil, err
	}
	if !resp.IsError() {
		return pg, nil
	}
	alt := n.shape.alternate()
	resp, pg, err = do(n.encodeProps(r, alt))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, errors.New(fmt.Sprintf("unexpected response: %s", resp.Status()))
	}
	log.Debug().Msg("status property shape switched after retry")
	n.shape = alt
	return pg, nil
}

func (n *Notion) filterPayload(f Filter) map[string]any {
	var conds []map[string]any
	if f.Category != "" {
		conds = append(conds, map[string]any{
			"property": n.schema.Category,
			"select":   map[string]any{"equals": string(f.Category)},
		})
	}
	if f.LinkedOnly {
		conds = append(conds, map[string]any{
			"property":  n.schema.Link,
			"rich_text": map[string]any{"is_not_empty": true},
		})
	}
	if f.Link != "" {
		conds = append(conds, map[string]any{
			"property":  n.schema.Link,
			"rich_text": map[string]any{"equals": f.Link},
		})
	}
	if f.DatedOnly {
		conds = append(conds, map[string]any{
			"property": n.schema.Date,
			"date":     map[string]any{"is_not_empty": true},
		})
	}
	if !f.From.IsZero() {
		conds = append(conds, map[string]any{
			"property": n.schema.Date,
			"date":     map[string]any{"on_or_after": f.From.Format(dates.DayFormat)},
		})
	}
	if !f.To.IsZero() {
		conds = append(conds, map[string]any{
			"property": n.schema.Date,
			"date":     map[string]any{"on_or_before": f.To.Format(dates.DayFormat)},
		})
	}
	switch len(conds) {
	case 0:
		return nil
	case 1:
		return conds[0]
	default:
		return map[string]any{"and": conds}
	}
}

func (n *Notion) encodeProps(r Record, shape statusShape) map[string]notion.Property {
	props := map[string]notion.Property{
		n.schema.Title: {Title: []notion.RichText{{Text: &notion.TextValue{Content: r.Title}}}},
	}
	if r.Category != "" {
		props[n.schema.Category] = notion.Property{Select: &notion.SelectValue{Name: string(r.Category)}}
	}
	if r.Priority != "" {
		props[n.schema.Priority] = notion.Property{Select: &notion.SelectValue{Name: string(r.Priority)}}
	}
	if r.ExternalLink != "" {
		props[n.schema.Link] = notion.Property{RichText: []notion.RichText{{Text: &notion.TextValue{Content: r.ExternalLink}}}}
	}
	if !r.StartAt.IsZero() {
		date := &notion.DateValue{}
		if r.AllDay {
			date.Start = r.StartAt.In(dates.Zone).Format(dates.DayFormat)
		} else {
			date.Start = r.StartAt.Format(time.RFC3339)
			if !r.EndAt.IsZero() {
				date.End = r.EndAt.Format(time.RFC3339)
			}
		}
		props[n.schema.Date] = notion.Property{Date: date}
	}
	if r.Status != "" {
		value := &notion.SelectValue{Name: string(r.Status)}
		if shape == shapeStatus {
			props[n.schema.Status] = notion.Property{Status: value}
		} else {
			props[n.schema.Status] = notion.Property{Select: value}
		}
	}
	return props
}

func (n *Notion) decodePage(pg notion.Page) (Record, bool) {
	rec := Record{ID: pg.ID}
	if pg.ID == "" {
		return Record{}, false
	}
	if t, err := time.Parse(time.RFC3339, pg.CreatedTime); err == nil {
		rec.CreatedAt = t
	}

	rec.Title = plainText(pg.Properties[n.schema.Title].Title)
	rec.ExternalLink = plainText(pg.Properties[n.schema.Link].RichText)
	rec.Category = CategoryOrDefault(selectName(pg.Properties[n.schema.Category].Select))
	rec.Priority = Priority(selectName(pg.Properties[n.schema.Priority].Select))

	status := pg.Properties[n.schema.Status]
	if status.Status != nil {
		rec.Status = Status(status.Status.Name)
	} else if status.Select != nil {
		rec.Status = Status(status.Select.Name)
	}

	if date := pg.Properties[n.schema.Date].Date; date != nil && date.Start != "" {
		var ok bool
		rec.StartAt, rec.AllDay, ok = parseNotionDate(date.Start)
		if !ok {
			return Record{}, false
		}
		if date.End != "" {
			rec.EndAt, _, _ = parseNotionDate(date.End)
		}
	}
	return rec, true
}

// decodeCreated prefers the API's echo of the page but falls back to the
// record we sent, so callers always see at least the id.
func (n *Notion) decodeCreated(pg notion.Page, sent Record) Record {
	if rec, ok := n.decodePage(pg); ok && rec.Title != "" {
		return rec
	}
	sent.ID = pg.ID
	return sent
}

func parseNotionDate(s string) (t time.Time, allDay, ok bool) {
	if len(s) <= len(dates.DayFormat) {
		t, err := time.ParseInLocation(dates.DayFormat, s, dates.Zone)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, false
	}
	return t.In(dates.Zone), false, true
}

func plainText(rts []notion.RichText) string {
	sb := strings.Builder{}
	for _, rt := range rts {
		if rt.PlainText != "" {
			sb.WriteString(rt.PlainText)
		} else if rt.Text != nil {
			sb.WriteString(rt.Text.Content)
		}
	}
	return sb.String()
}

func selectName(v *notion.SelectValue) string {
	if v == nil {
		return ""
	}
	return v.Name
}
