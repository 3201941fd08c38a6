package usecase

import (
	"context"
	"errors"
	"sync"

	exportdto "mailsort/internal/modules/export/dto"
	exportin "mailsort/internal/modules/export/port/in"
	ingestdto "mailsort/internal/modules/ingest/dto"
	ingestin "mailsort/internal/modules/ingest/port/in"
	"mailsort/internal/modules/session/domain"
	sessiondto "mailsort/internal/modules/session/dto"
	sessionin "mailsort/internal/modules/session/port/in"
	"mailsort/internal/modules/session/service"
	apperrors "mailsort/internal/platform/errors"
)

// Interactor serializes every call: the terminal UI runs commands on their
// own goroutines.
type Interactor struct {
	mu     sync.Mutex
	svc    *service.SessionService
	ingest ingestin.Usecase
	export exportin.Usecase
}

func NewInteractor(svc *service.SessionService, ingest ingestin.Usecase, export exportin.Usecase) sessionin.Usecase {
	return &Interactor{svc: svc, ingest: ingest, export: export}
}

func (i *Interactor) LoadText(ctx context.Context, input sessiondto.LoadTextInput) (sessiondto.LoadOutput, error) {
	tag, err := domain.ParseSourceTag(input.Tag)
	if err != nil {
		return sessiondto.LoadOutput{}, err
	}
	parsed, err := i.ingest.ParseText(ctx, ingestdto.ParseTextInput{Text: input.Text, Tag: string(tag), Name: input.Name})
	if err != nil {
		return sessiondto.LoadOutput{}, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	out := sessiondto.LoadOutput{Added: len(parsed)}
	if err := i.svc.Load(ctx, toRecords(parsed)); err != nil {
		if !errors.Is(err, apperrors.ErrNotPersisted) {
			return sessiondto.LoadOutput{}, err
		}
		out.Warning = err.Error()
	}
	out.Total = i.svc.Stats().Total
	return out, nil
}

// LoadFiles parses all files before taking the session lock, then appends
// every successful file in input order.
func (i *Interactor) LoadFiles(ctx context.Context, input sessiondto.LoadFilesInput) (sessiondto.LoadFilesOutput, error) {
	if len(input.Files) == 0 {
		return sessiondto.LoadFilesOutput{}, apperrors.ErrInvalidInput
	}
	inputs := make([]ingestdto.FileInput, 0, len(input.Files))
	for _, f := range input.Files {
		tag, err := domain.ParseSourceTag(f.Tag)
		if err != nil {
			return sessiondto.LoadFilesOutput{}, err
		}
		inputs = append(inputs, ingestdto.FileInput{Path: f.Path, Tag: string(tag)})
	}
	results, err := i.ingest.ParseFiles(ctx, inputs)
	if err != nil {
		return sessiondto.LoadFilesOutput{}, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	batch := i.svc.NewBatch(len(results))
	out := sessiondto.LoadFilesOutput{BatchID: batch.ID, Files: make([]sessiondto.FileLoad, 0, len(results))}
	var records []domain.Record
	for _, res := range results {
		load := sessiondto.FileLoad{Path: res.Path, Tag: res.Tag, Format: res.Format, Compression: res.Compression, Err: res.Err}
		if res.Err == nil {
			load.Records = len(res.Records)
			records = append(records, toRecords(res.Records)...)
		}
		batch.Done(res.Path, load.Records, res.Err)
		out.Files = append(out.Files, load)
	}
	out.Loaded = batch.Loaded
	out.Failed = len(batch.Failed)
	out.Added = batch.Records
	if batch.Loaded > 0 {
		if err := i.svc.Load(ctx, records); err != nil {
			if !errors.Is(err, apperrors.ErrNotPersisted) {
				return sessiondto.LoadFilesOutput{}, err
			}
			out.Warning = err.Error()
		}
	}
	out.Total = i.svc.Stats().Total
	return out, nil
}

func (i *Interactor) Current(_ context.Context) (sessiondto.CurrentOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	rec, idx, err := i.svc.Current()
	if err != nil {
		return sessiondto.CurrentOutput{Position: idx, Total: i.svc.Stats().Total}, err
	}
	return sessiondto.CurrentOutput{Record: toRecordDTO(rec), Position: idx, Total: i.svc.Stats().Total}, nil
}

func (i *Interactor) Classify(ctx context.Context, input sessiondto.ClassifyInput) (sessiondto.ClassifyOutput, error) {
	label, err := domain.ParseLabel(input.Label)
	if err != nil {
		return sessiondto.ClassifyOutput{}, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	labeled, err := i.svc.Classify(ctx, label)
	out := sessiondto.ClassifyOutput{}
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotPersisted) {
			return sessiondto.ClassifyOutput{}, err
		}
		out.Warning = err.Error()
	}
	stats := i.svc.Stats()
	out.Labeled = toLabeledDTO(labeled)
	out.Cursor = stats.Cursor
	out.Total = stats.Total
	out.Exhausted = stats.Cursor >= stats.Total
	return out, nil
}

func (i *Interactor) Labeled(_ context.Context) ([]sessiondto.LabeledRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	labeled := i.svc.Labeled()
	out := make([]sessiondto.LabeledRecord, 0, len(labeled))
	for _, l := range labeled {
		out = append(out, toLabeledDTO(l))
	}
	return out, nil
}

func (i *Interactor) ExportText(ctx context.Context) (string, error) {
	rows := i.exportRows()
	if len(rows) == 0 {
		return "", apperrors.ErrNothingToExport
	}
	return i.export.Render(ctx, rows)
}

func (i *Interactor) Export(ctx context.Context, input sessiondto.ExportInput) (sessiondto.ExportOutput, error) {
	rows := i.exportRows()
	if len(rows) == 0 {
		return sessiondto.ExportOutput{}, apperrors.ErrNothingToExport
	}
	out, err := i.export.Export(ctx, exportdto.ExportInput{Rows: rows, Format: input.Format})
	if err != nil {
		return sessiondto.ExportOutput{}, err
	}
	return sessiondto.ExportOutput{ID: out.ID, Path: out.Path, Format: out.Format, Rows: out.Rows}, nil
}

func (i *Interactor) Reset(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.svc.Reset(ctx)
}

func (i *Interactor) Persist(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.svc.Persist(ctx)
}

func (i *Interactor) Restore(ctx context.Context) (sessiondto.StatusOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.svc.Restore(ctx); err != nil {
		return sessiondto.StatusOutput{}, err
	}
	return toStatus(i.svc.Stats()), nil
}

func (i *Interactor) Status(_ context.Context) (sessiondto.StatusOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return toStatus(i.svc.Stats()), nil
}

func (i *Interactor) exportRows() []exportdto.Row {
	i.mu.Lock()
	labeled := i.svc.Labeled()
	i.mu.Unlock()
	rows := make([]exportdto.Row, 0, len(labeled))
	for _, l := range labeled {
		rows = append(rows, exportdto.Row{
			Subject:            l.Subject,
			Sender:             l.Sender,
			Body:               l.Body,
			Date:               l.Date,
			OriginalCategory:   string(l.OriginalCategory),
			UserClassification: string(l.UserClassification),
		})
	}
	return rows
}

func toRecords(parsed []ingestdto.RecordOutput) []domain.Record {
	out := make([]domain.Record, 0, len(parsed))
	for _, p := range parsed {
		out = append(out, domain.Record{
			Subject:          p.Subject,
			Sender:           p.Sender,
			Body:             p.Body,
			Date:             p.Date,
			OriginalCategory: domain.Category(p.OriginalCategory),
		})
	}
	return out
}

func toRecordDTO(r domain.Record) sessiondto.Record {
	return sessiondto.Record{
		Subject:            r.Subject,
		Sender:             r.Sender,
		Body:               r.Body,
		Date:               r.Date,
		OriginalCategory:   string(r.OriginalCategory),
		UserClassification: string(r.UserClassification),
	}
}

func toLabeledDTO(l domain.LabeledRecord) sessiondto.LabeledRecord {
	return sessiondto.LabeledRecord{
		Record: sessiondto.Record{
			Subject:            l.Subject,
			Sender:             l.Sender,
			Body:               l.Body,
			Date:               l.Date,
			OriginalCategory:   string(l.OriginalCategory),
			UserClassification: string(l.UserClassification),
		},
		ClassifiedAt: l.ClassifiedAt,
	}
}

func toStatus(st domain.Stats) sessiondto.StatusOutput {
	out := sessiondto.StatusOutput{
		Total:      st.Total,
		Labeled:    st.Labeled,
		Remaining:  st.Remaining,
		Cursor:     st.Cursor,
		Percent:    st.Percent,
		Exhausted:  st.Cursor >= st.Total,
		ByLabel:    make(map[string]int, len(st.ByLabel)),
		BySource:   make(map[string]int, len(st.BySource)),
		Agreements: st.Agreements,
	}
	for k, v := range st.ByLabel {
		out.ByLabel[string(k)] = v
	}
	for k, v := range st.BySource {
		out.BySource[string(k)] = v
	}
	return out
}
