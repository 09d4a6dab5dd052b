// Package view renders the lead search page.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"leadsearch/internal/domain"
	"leadsearch/internal/leads"
	"leadsearch/internal/pagination"
	"leadsearch/internal/phone"
	"leadsearch/web"
)

// Title is the page title.
const Title = "Search Leads"

// DateLayout is how lead dates are shown.
const DateLayout = "01/02/2006"

// DetailPath is the lead detail page each name links to.
const DetailPath = "/leads/lead_details"

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl   *template.Template
	action string
}

// New parses the embedded templates. action is the path the search form
// and pagination links point at.
func New(action string) (*Renderer, error) {
	tmpl, err := template.New("leadsearch").ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, action: action}, nil
}

// Option is one entry of the criterion select.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Row is one lead as displayed.
type Row struct {
	Date        string
	Name        string
	DetailURL   string
	MainPhone   string
	SecondPhone string
	Gender      string
	Email       string
	City        string
	State       string
	Office      string
	Status      string
}

// Link is one entry of the pagination control.
type Link struct {
	Label   string
	URL     string
	Rel     string
	Current bool
}

// Pager is the pagination control shown above and below the table.
type Pager struct {
	Visible bool
	Links   []Link
}

type pageData struct {
	Title   string
	Action  string
	Options []Option
	Text    string
	Error   string
	Result  bool
	Rows    []Row
	Pager   Pager
}

// Page renders the full page. A nil result shows just the form.
func (r *Renderer) Page(w io.Writer, criterion domain.Criterion, text string, res *leads.Result) error {
	data := pageData{
		Title:   Title,
		Action:  r.action,
		Options: Options(criterion),
		Text:    text,
	}
	if res != nil {
		data.Result = true
		data.Rows = Rows(res.Leads)
		data.Pager = r.Pager(res.Window, res.Criterion, res.Text)
	}
	return r.execute(w, "page", data)
}

// Error renders the page with msg in place of the form and results.
func (r *Renderer) Error(w io.Writer, msg string) error {
	return r.execute(w, "page", pageData{Title: Title, Action: r.action, Error: msg})
}

// execute buffers so a template failure never leaves a half-written page.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Options lists every criterion with the selected one marked.
func Options(selected domain.Criterion) []Option {
	selected = domain.ParseCriterion(string(selected))
	out := make([]Option, 0, len(domain.Criteria))
	for _, c := range domain.Criteria {
		out = append(out, Option{Value: string(c), Label: c.Label(), Selected: c == selected})
	}
	return out
}

// Rows converts leads to display rows.
func Rows(ls []domain.Lead) []Row {
	rows := make([]Row, 0, len(ls))
	for _, l := range ls {
		row := Row{
			Name:      l.DisplayName(),
			DetailURL: DetailPath + "?crm_lead_id=" + strconv.FormatInt(l.ID, 10),
			MainPhone: phone.Pretty(l.MainPhoneArea, l.MainPhone),
			Gender:    l.Sex,
			Email:     l.Email,
			City:      l.City,
			State:     l.State,
			Office:    l.Office,
			Status:    l.CurrentStatus,
		}
		if !l.RealDate.IsZero() {
			row.Date = l.RealDate.Format(DateLayout)
		}
		if l.HasSecondPhone() {
			row.SecondPhone = phone.Pretty(l.SecondPhoneArea, l.SecondPhone)
		}
		rows = append(rows, row)
	}
	return rows
}

// Pager builds the pagination control for w. Every link carries the
// criterion and text so following it repeats the same search.
func (r *Renderer) Pager(w pagination.Window, criterion domain.Criterion, text string) Pager {
	if w.TotalPages <= 1 {
		return Pager{}
	}
	link := func(label string, page int, rel string) Link {
		q := url.Values{}
		q.Set("current_page", strconv.Itoa(page))
		q.Set("searchValue", string(criterion))
		q.Set("searchText", text)
		return Link{Label: label, URL: r.action + "?" + q.Encode(), Rel: rel}
	}
	show := func(page int) bool {
		return page >= 1 && page <= w.TotalPages && page != w.CurrentPage
	}

	var links []Link
	if show(1) {
		links = append(links, link("First", 1, "first"))
	}
	if w.HasPrevious() && show(w.PreviousPage) {
		links = append(links, link("Prev", w.PreviousPage, "prev"))
	}
	for _, p := range w.Pages() {
		l := link(strconv.Itoa(p), p, "")
		l.Current = p == w.CurrentPage
		links = append(links, l)
	}
	if w.HasNext() && show(w.NextPage) {
		links = append(links, link("Next", w.NextPage, "next"))
	}
	if show(w.TotalPages) {
		links = append(links, link("Last", w.TotalPages, "last"))
	}
	return Pager{Visible: true, Links: links}
}
