// Package alertrules turns a single audit event into zero or more alerts.
//
// Rules are independent: every rule sees every event and an event may trip
// several of them. Evaluation has no side effects; the caller decides what to
// persist.
package alertrules

import (
	"time"

	"github.com/google/uuid"
	"github.com/traceops/backend/internal/models"
	"go.uber.org/zap"
)

// Finding is what a rule reports when it fires.
type Finding struct {
	Severity string
	Title    string
	Details  string
}

type Rule interface {
	// Type is the alert type written for this rule, e.g. EXPORT_TOO_LARGE.
	Type() string
	Evaluate(ev *models.AuditEvent) (Finding, bool)
}

type Engine struct {
	rules []Rule
	log   *zap.Logger
	now   func() time.Time
	newID func() uuid.UUID
}

// NewEngine builds an engine over rules, or over DefaultRules when none are given.
func NewEngine(log *zap.Logger, rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		rules: rules,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
}

func DefaultRules() []Rule {
	return []Rule{
		LargeExportRule{Threshold: DefaultLargeExportRows},
		FailedActionRule{},
	}
}

// Evaluate runs every rule against ev. Alerts carry ev's tenant and id.
func (e *Engine) Evaluate(ev *models.AuditEvent) []models.Alert {
	var alerts []models.Alert
	for _, r := range e.rules {
		f, ok := e.evaluate(r, ev)
		if !ok {
			continue
		}

		eventID := ev.ID
		a := models.Alert{
			ID:        e.newID(),
			TenantID:  ev.TenantID,
			EventID:   &eventID,
			Type:      r.Type(),
			Severity:  f.Severity,
			Title:     f.Title,
			CreatedAt: e.now(),
		}
		if f.Details != "" {
			details := f.Details
			a.Details = &details
		}
		alerts = append(alerts, a)
	}
	return alerts
}

// evaluate shields ingestion from a misbehaving rule: a panic counts as "did not fire".
func (e *Engine) evaluate(r Rule, ev *models.AuditEvent) (f Finding, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			e.log.Warn("alert rule panicked",
				zap.String("rule", r.Type()),
				zap.String("event_id", ev.ID.String()),
				zap.Any("panic", p),
			)
			f, ok = Finding{}, false
		}
	}()
	return r.Evaluate(ev)
}
