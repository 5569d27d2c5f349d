package repositories

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventFilter struct {
	From       *time.Time
	To         *time.Time
	Actor      string
	Action     string
	Resource   string
	ResourceID string
	Result     string
	IP         string
	Query      string // case-sensitive substring over actor/action/resource/resource_id/result/ip
	Limit      int
	Offset     int
}

// searchColumns are OR'd together for the free-text query.
var searchColumns = []string{"actor", "action", "resource", "resource_id", "result", "ip"}

// where renders the tenant-scoped WHERE clause for f. Placeholders start at $1,
// which is always the tenant id.
func (f EventFilter) where(tenantID uuid.UUID) (string, []any) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.From != nil {
		add("occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("occurred_at <= $%d", *f.To)
	}

	exact := []struct {
		column string
		value  string
	}{
		{"actor", f.Actor},
		{"action", f.Action},
		{"resource", f.Resource},
		{"resource_id", f.ResourceID},
		{"result", f.Result},
		{"ip", f.IP},
	}
	for _, e := range exact {
		if strings.TrimSpace(e.value) != "" {
			add(e.column+" = $%d", e.value)
		}
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, q)
		n := len(args)
		parts := make([]string, len(searchColumns))
		for i, col := range searchColumns {
			parts[i] = fmt.Sprintf("strpos(%s, $%d) > 0", col, n)
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	return strings.Join(conds, " AND "), args
}

type AlertFilter struct {
	Resolved *bool
	Limit    int
	Offset   int
}

func (f AlertFilter) where(tenantID uuid.UUID) (string, []any) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}
	if f.Resolved != nil {
		args = append(args, *f.Resolved)
		conds = append(conds, fmt.Sprintf("is_resolved = $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}
