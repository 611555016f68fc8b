package notion

type QueryRequest struct {
	Filter      map[string]any `json:"filter,omitempty"`
	StartCursor string         `json:"start_cursor,omitempty"`
	PageSize    int            `json:"page_size,omitempty"`
}

type QueryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type CreateRequest struct {
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties"`
}

type UpdateRequest struct {
	Properties map[string]Property `json:"properties,omitempty"`
	Archived   *bool               `json:"archived,omitempty"`
}

type Parent struct {
	DatabaseID string `json:"database_id"`
}

type Page struct {
	ID          string              `json:"id"`
	CreatedTime string              `json:"created_time,omitempty"`
	Archived    bool                `json:"archived,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
}

type Property struct {
	Type     string       `json:"type,omitempty"`
	Title    []RichText   `json:"title,omitempty"`
	RichText []RichText   `json:"rich_text,omitempty"`
	Select   *SelectValue `json:"select,omitempty"`
	Status   *SelectValue `json:"status,omitempty"`
	Date     *DateValue   `json:"date,omitempty"`
}

type RichText struct {
	Text      *TextValue `json:"text,omitempty"`
	PlainText string     `json:"plain_text,omitempty"`
}

type TextValue struct {
	Content string `json:"content"`
}

type SelectValue struct {
	Name string `json:"name"`
}

type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}
