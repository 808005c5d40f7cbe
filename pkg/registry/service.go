package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formkit/pkg/data"
	"github.com/goliatone/go-formkit/pkg/store"
)

// DefaultOptionName is the option the document is stored under.
const DefaultOptionName = "tr_registered"

const (
	messageSaved            = "Saved settings. Post types and taxonomies registered and permalinks flushed."
	messageSavedWithErrors  = "Changes saved with errors:"
	messageNothingSubmitted = "No registrations submitted."
)

// ErrDisabled is returned by Update when the registry is switched off.
var ErrDisabled = errors.New("registry: disabled")

// Option configures a Service.
type Option func(*Service)

// WithOptionName overrides the option the document is stored under.
func WithOptionName(name string) Option {
	return func(s *Service) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.optionName = trimmed
		}
	}
}

// WithEnabled toggles the registry. A disabled registry loads nothing.
func WithEnabled(enabled bool) Option {
	return func(s *Service) {
		s.enabled = enabled
	}
}

// WithMenu places the admin page under the parent menu slug. Empty keeps it
// as a top level page.
func WithMenu(menu string) Option {
	return func(s *Service) {
		s.menu = strings.TrimSpace(menu)
	}
}

// WithLogger sets the service logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBuildOptions forwards opts to every Build call made by Load.
func WithBuildOptions(opts ...BuildOption) Option {
	return func(s *Service) {
		s.buildOpts = append(s.buildOpts, opts...)
	}
}

// Service loads and saves the registration document.
type Service struct {
	store      store.Store
	optionName string
	enabled    bool
	menu       string
	logger     logrus.FieldLogger
	buildOpts  []BuildOption
}

// New returns a Service backed by st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		optionName: DefaultOptionName,
		enabled:    true,
		logger:     discardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Enabled reports whether the registry is active.
func (s *Service) Enabled() bool { return s.enabled }

// Menu returns the parent menu slug, or "" for a top level page.
func (s *Service) Menu() string { return s.menu }

// OptionName returns the option the document is stored under.
func (s *Service) OptionName() string { return s.optionName }

// Document reads the stored document. A missing option yields an empty
// document.
func (s *Service) Document(ctx context.Context) (Document, error) {
	if s.store == nil {
		return Document{}, errors.New("registry: store not configured")
	}
	raw, err := s.store.Get(ctx, s.optionName)
	if errors.Is(err, store.ErrNotFound) {
		return NewDocument(nil), nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("registry: load %s: %w", s.optionName, err)
	}
	doc, err := Decode(raw)
	if err != nil {
		return Document{}, fmt.Errorf("registry: option %s: %w", s.optionName, err)
	}
	return doc, nil
}

// Load reads the stored document and builds its registrations.
func (s *Service) Load(ctx context.Context) (Registrations, error) {
	if !s.enabled {
		s.logger.Debug("registry: disabled, nothing registered")
		return Registrations{}, nil
	}
	doc, err := s.Document(ctx)
	if err != nil {
		return Registrations{}, err
	}
	regs := Build(doc, append([]BuildOption{WithBuildLogger(s.logger)}, s.buildOpts...)...)
	s.logger.WithFields(logrus.Fields{
		"post_types": len(regs.PostTypes),
		"taxonomies": len(regs.Taxonomies),
		"meta_boxes": len(regs.MetaBoxes),
	}).Info("registry: loaded registrations")
	return regs, nil
}

// UpdateResult reports the outcome of Update.
type UpdateResult struct {
	Saved    bool             `json:"saved"`
	Revision string           `json:"revision,omitempty"`
	Message  string           `json:"message"`
	Errors   ValidationErrors `json:"errors,omitempty"`
}

// Failed reports whether validation failed.
func (r UpdateResult) Failed() bool { return r.Errors.Failed() }

// Update persists fields[OptionName()] as JSON when it holds a value, then
// validates it. Invalid documents are still saved; the result carries the
// validation errors.
func (s *Service) Update(ctx context.Context, fields map[string]any) (UpdateResult, error) {
	if !s.enabled {
		return UpdateResult{}, ErrDisabled
	}
	if s.store == nil {
		return UpdateResult{}, errors.New("registry: store not configured")
	}

	payload := data.Walk(s.optionName, fields, nil)
	result := UpdateResult{Message: messageNothingSubmitted}
	if !truthy(payload) {
		return result, nil
	}

	doc, err := DocumentFrom(payload)
	if err != nil {
		return UpdateResult{}, err
	}
	encoded, err := doc.MarshalJSON()
	if err != nil {
		return UpdateResult{}, fmt.Errorf("registry: encode document: %w", err)
	}
	if err := s.store.Set(ctx, s.optionName, encoded); err != nil {
		return UpdateResult{}, fmt.Errorf("registry: save %s: %w", s.optionName, err)
	}

	result.Saved = true
	result.Revision = newRevision()
	result.Message = messageSaved
	logger := s.logger.WithFields(logrus.Fields{
		"option":   s.optionName,
		"revision": result.Revision,
	})

	if errs := Validate(doc); errs.Failed() {
		result.Errors = errs
		result.Message = messageSavedWithErrors + " " + strings.Join(errs.Messages(), "; ")
		logger.WithField("errors", len(errs)).Warn("registry: saved with validation errors")
		return result, nil
	}
	logger.Info("registry: saved registrations")
	return result, nil
}

func newRevision() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
