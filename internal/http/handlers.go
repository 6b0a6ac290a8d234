package http

import (
	"bytes"
	"errors"
	"net/http"

	"acessorios/internal/app"
	"acessorios/internal/core"
	"acessorios/internal/export"
	"acessorios/internal/form"
	applog "acessorios/internal/log"
	"acessorios/internal/remote"
)

const (
	msgRemoteUnavailable = "Não foi possível contatar o servidor de registros. Tente novamente."
	msgRecordNotFound    = "Registro não encontrado."
	msgIncomplete        = "Preencha produto, setor e quantidade."
)

type formView struct {
	ID        string
	Editing   bool
	ProductID int
	Sector    string
	Quantity  string
	Month     int
	Year      int
	Preview   form.Preview
	Products  []core.CatalogEntry
	Sectors   []string
	Months    []monthOption
}

func newFormView(f *form.Form) formView {
	v := formView{
		ProductID: f.ProductID,
		Sector:    f.Sector,
		Quantity:  f.Quantity,
		Month:     f.Month,
		Year:      f.Year,
		Preview:   f.Preview(),
		Products:  core.Products(),
		Sectors:   core.Sectors,
		Months:    monthOptions(),
	}
	if rec, ok := f.Editing(); ok {
		v.ID = rec.ID
		v.Editing = true
	}
	return v
}

type filterView struct {
	Month  int
	Year   int
	Months []monthOption
	Years  []int
}

type recordsView struct {
	Overview core.Overview
	Chart    []chartBar
}

func newRecordsView(ov core.Overview) recordsView {
	return recordsView{Overview: ov, Chart: chartBars(ov.Sectors)}
}

type pageView struct {
	Error   string
	Form    formView
	Filter  filterView
	Records recordsView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var page pageView

	if !s.state.Ready() {
		if err := s.state.Refresh(ctx); err != nil {
			page.Error = msgRemoteUnavailable
		}
	}

	now := s.now()
	filter := ParseFilter(r.URL.Query())
	page.Form = newFormView(form.New(now))
	page.Filter = filterView{
		Month:  filter.Month,
		Year:   filter.Year,
		Months: monthOptions(),
		Years:  yearOptions(s.state.Records(), now),
	}
	page.Records = newRecordsView(s.state.Overview(filter))

	s.render(w, r, NewHTMXResponse(), "index.html", page)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	filter := ParseFilter(r.URL.Query())
	s.render(w, r, NewHTMXResponse(), "records", newRecordsView(s.state.Overview(filter)))
}

// handleForm returns an empty form; it doubles as "cancel edit".
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, NewHTMXResponse(), "form", newFormView(form.New(s.now())))
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	rec, err := s.state.Find(r.PathValue("id"))
	if err != nil {
		NotFoundError(msgRecordNotFound).TriggerWarningNotification(msgRecordNotFound).Write(w)
		return
	}
	now := s.now()
	f := form.New(now)
	f.BeginEdit(rec, now)
	s.render(w, r, NewHTMXResponse(), "form", newFormView(f))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	f := form.New(s.now())
	ParseRecordInput(r.URL.Query()).Apply(f)
	s.render(w, r, NewHTMXResponse(), "preview", f.Preview())
}

// handleSubmit creates a record, or updates one when the form carries an id.
// An incomplete form is rejected with 422, which HTMX does not swap, so
// nothing on the page changes. Either success returns an empty form.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	in := ParseRecordInput(r.PostForm)

	now := s.now()
	f := form.New(now)
	if in.ID != "" {
		rec, err := s.state.Find(in.ID)
		if err != nil {
			NotFoundError(msgRecordNotFound).TriggerWarningNotification(msgRecordNotFound).Write(w)
			return
		}
		f.BeginEdit(rec, now)
	}
	in.Apply(f)

	intent, err := f.Submit(now)
	if err != nil {
		logger.DebugContext(ctx, "Form rejected", applog.FieldError, err)
		UnprocessableEntityError(msgIncomplete).Write(w)
		return
	}

	var message string
	switch intent.Kind {
	case form.Create:
		_, err = s.state.Create(ctx, intent.Draft)
		message = "Registro adicionado."
	case form.Update:
		_, err = s.state.Update(ctx, intent.Record)
		message = "Registro atualizado."
	}
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	// Create already reset the form; a finished edit leaves edit mode.
	if intent.Kind == form.Update {
		f.CancelEdit(now)
	}
	b := NewHTMXResponse().
		TriggerRecordsChanged().
		TriggerSuccessNotification(message).
		TriggerFormReset()
	s.render(w, r, b, "form", newFormView(f))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.state.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	NewHTMXResponse().
		TriggerRecordsChanged().
		TriggerSuccessNotification("Registro excluído.").
		Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		NotFoundError("Formato de exportação desconhecido.").Write(w)
		return
	}

	records := s.state.Overview(ParseFilter(r.URL.Query())).Records
	var buf bytes.Buffer
	err = export.Write(&buf, format, records, s.now())
	switch {
	case errors.Is(err, export.ErrEmptyExport):
		NewHTMXResponse().
			Status(http.StatusNotFound).
			Header("Content-Type", "text/plain; charset=utf-8").
			BodyString(export.EmptyNotice).
			TriggerWarningNotification(export.EmptyNotice).
			Write(w)
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Export failed",
			applog.FieldFormat, format,
			applog.FieldError, err)
		InternalServerError("Falha ao gerar o relatório.").Write(w)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// writeStoreError maps remote store failures to 502 with a notification.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		nerr *remote.NetworkError
		serr *remote.SchemaError
	)
	switch {
	case errors.As(err, &nerr), errors.As(err, &serr):
		BadGatewayError(msgRemoteUnavailable).Write(w)
	case errors.Is(err, app.ErrRecordNotFound):
		NotFoundError(msgRecordNotFound).TriggerWarningNotification(msgRecordNotFound).Write(w)
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Record operation failed", applog.FieldError, err)
		InternalServerError("Erro inesperado.").TriggerErrorNotification("Erro inesperado.").Write(w)
	}
}
