package invoice

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
)

// State is the gating state of a session.
type State string

const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateBlocked    State = "blocked"
	StateReady      State = "ready"
	StateFinalized  State = "finalized"
)

// Recorder receives validation and finalisation outcomes.
type Recorder interface {
	ObserveValidation(passed bool)
	ObserveFinalization()
}

// SessionOptions configures a Session. Zero values get defaults.
type SessionOptions struct {
	Catalog   Catalog
	Validator *Validator
	Notifier  Notifier
	Recorder  Recorder
	Logger    *slog.Logger
	Now       func() time.Time
	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State)
}

// Session owns one invoice draft and its error report for an editing
// session. All methods are serialised: an edit runs its recompute and
// validation to completion before the next edit or submit starts.
type Session struct {
	mu sync.Mutex

	draft  InvoiceDraft
	lines  *LineStore
	report ErrorReport
	state  State

	validator    *Validator
	notifier     Notifier
	recorder     Recorder
	logger       *slog.Logger
	now          func() time.Time
	onTransition func(from, to State)
	lastStamp    time.Time
}

// NewSession starts a session on a blank draft and validates it once.
func NewSession(opts SessionOptions) *Session {
	if opts.Validator == nil {
		opts.Validator = NewValidator()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		lines:        NewLineStore(opts.Catalog),
		state:        StateEditing,
		validator:    opts.Validator,
		notifier:     opts.Notifier,
		recorder:     opts.Recorder,
		logger:       opts.Logger,
		now:          opts.Now,
		onTransition: opts.OnTransition,
	}
	s.load(NewDraft(s.now()))
	s.revalidate()
	return s
}

// State returns the current gating state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Report returns a copy of the latest error report.
func (s *Session) Report() ErrorReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyReport()
}

// Draft returns a copy of the draft with the current lines.
func (s *Session) Draft() InvoiceDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// Snapshot is a consistent read of a session taken under one lock.
type Snapshot struct {
	State  State
	Draft  InvoiceDraft
	Report ErrorReport
}

// View returns state, draft and report as of the same instant.
func (s *Session) View() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Draft: s.current(), Report: s.copyReport()}
}

// Total is the running invoice total.
func (s *Session) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AggregateTotal(s.lines.Snapshot())
}

// SetField edits a draft field addressed by dotted path. Line fields use
// "products.<i>.<field>".
func (s *Session) SetField(path string, value any) error {
	return s.edit(func() error {
		return s.setField(path, value)
	})
}

// AddLine appends a product line and returns its index.
func (s *Session) AddLine(initial ProductLine) int {
	var index int
	_ = s.edit(func() error {
		index = s.lines.Insert(initial)
		return nil
	})
	return index
}

// RemoveLine deletes the line at index.
func (s *Session) RemoveLine(index int) error {
	return s.edit(func() error {
		return s.lines.Remove(index)
	})
}

// UpdateLine edits one field of the line at index.
func (s *Session) UpdateLine(index int, field LineField, value any) error {
	return s.edit(func() error {
		return s.lines.UpdateField(index, field, value)
	})
}

// SelectCatalogItem fills name and HSN code of a line from the catalog.
func (s *Session) SelectCatalogItem(index int, name string) error {
	return s.edit(func() error {
		return s.lines.SelectCatalogItem(index, name)
	})
}

// Reset replaces the whole draft, rescanning every line.
func (s *Session) Reset(draft InvoiceDraft) {
	_ = s.edit(func() error {
		s.load(draft)
		return nil
	})
}

// Submit validates the draft afresh and, when it passes, returns the
// finalised record. A blocked submission notifies the Notifier once with
// all messages combined and returns a *ValidationError.
func (s *Session) Submit() (InvoiceRecord, error) {
	return s.SubmitWith(nil)
}

// SubmitWith is Submit with a delivery step. deliver runs on the record
// before the session commits to finalized; when it fails the session is
// left ready, nothing is counted as finalized and its error is returned.
func (s *Session) SubmitWith(deliver func(InvoiceRecord) error) (InvoiceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transition(StateValidating)
	draft := s.current()
	s.report = s.validator.Validate(draft)
	s.observeValidation()

	if !s.report.IsEmpty() {
		s.transition(StateBlocked)
		notice := combinedNotice(s.report)
		if s.notifier != nil {
			s.notifier.Notify(notice)
		}
		s.logger.Info("invoice submission blocked",
			slog.String("invoice_no", draft.InvoiceNo),
			slog.Int("errors", len(s.report)))
		return InvoiceRecord{}, &ValidationError{Report: s.copyReport(), Notice: notice}
	}

	record := Finalize(draft, s.stamp())
	if deliver != nil {
		if err := deliver(record); err != nil {
			s.transition(StateReady)
			s.logger.Warn("invoice delivery failed",
				slog.String("invoice_no", record.InvoiceNo),
				slog.Any("error", err))
			return InvoiceRecord{}, err
		}
	}
	s.transition(StateFinalized)
	if s.recorder != nil {
		s.recorder.ObserveFinalization()
	}
	s.logger.Info("invoice finalized",
		slog.String("invoice_no", record.InvoiceNo),
		slog.Float64("total", record.TotalInvoiceValue),
		slog.Time("generated_at", record.GenerationTimestamp))
	return record, nil
}

func (s *Session) copyReport() ErrorReport {
	out := make(ErrorReport, len(s.report))
	for k, v := range s.report {
		out[k] = v
	}
	return out
}

func (s *Session) edit(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	s.transition(StateEditing)
	s.revalidate()
	return nil
}

func (s *Session) revalidate() {
	s.transition(StateValidating)
	s.report = s.validator.Validate(s.current())
	s.observeValidation()
	if s.report.IsEmpty() {
		s.transition(StateReady)
		return
	}
	s.transition(StateBlocked)
}

func (s *Session) observeValidation() {
	if s.recorder != nil {
		s.recorder.ObserveValidation(s.report.IsEmpty())
	}
}

func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

func (s *Session) load(draft InvoiceDraft) {
	s.lines.Replace(draft.Products)
	draft.Products = nil
	s.draft = draft
}

func (s *Session) current() InvoiceDraft {
	draft := s.draft
	draft.Products = s.lines.Snapshot()
	return draft
}

// stamp returns a strictly increasing generation time for this session.
func (s *Session) stamp() time.Time {
	t := s.now().UTC()
	if !s.lastStamp.IsZero() && !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = t
	return t
}

func (s *Session) setField(path string, value any) error {
	switch path {
	case "invoiceNo":
		s.draft.InvoiceNo = cast.ToString(value)
	case "invoiceDate":
		s.draft.InvoiceDate = ParseDate(value)
	case "invoiceTime":
		s.draft.InvoiceTime = cast.ToString(value)
	case "customer.name":
		s.draft.Customer.Name = cast.ToString(value)
	case "customer.address":
		s.draft.Customer.Address = cast.ToString(value)
	case "customer.phone":
		s.draft.Customer.Phone = cast.ToString(value)
	case "customer.email":
		s.draft.Customer.Email = cast.ToString(value)
	case "customer.gstin":
		s.draft.Customer.GSTIN = cast.ToString(value)
	case "paymentMethod":
		s.draft.PaymentMethod = ParsePaymentMethod(cast.ToString(value))
	case "transactionId":
		s.draft.TransactionID = cast.ToString(value)
	case "narration":
		s.draft.Narration = cast.ToString(value)
	default:
		parts := strings.SplitN(path, ".", 3)
		if len(parts) == 3 && parts[0] == "products" {
			index, err := strconv.Atoi(parts[1])
			if err != nil {
				return fmt.Errorf("%w: %q", ErrUnknownField, path)
			}
			return s.lines.UpdateField(index, LineField(parts[2]), value)
		}
		return fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	return nil
}

// ParseDate coerces value to a calendar date; unparseable input yields the zero
// time, which validation reports as missing.
func ParseDate(value any) time.Time {
	t, err := cast.ToTimeE(value)
	if err != nil || t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
