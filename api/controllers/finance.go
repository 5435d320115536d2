package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/api/responses"
	"github.com/riverbend-alliance/portal-backend/api/validators"
	"github.com/riverbend-alliance/portal-backend/internal/finance"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

func parseUUIDQuery(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return &id, nil
}

// FinanceListLedger returns ledger entries filtered by cycle, member, and type.
func FinanceListLedger(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "finance service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		var query finance.ListEntriesQuery
		cycleID, err := parseUUIDQuery(r, "cycle_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query.CycleID = cycleID
		memberID, err := parseUUIDQuery(r, "member_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query.MemberID = memberID
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			entryType, err := enums.ParseLedgerEntryType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown ledger entry type"))
				return
			}
			query.Type = &entryType
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query.Limit = limit

		entries, err := svc.ListLedger(r.Context(), actor, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// FinanceRecordAdjustment writes a manual ledger correction.
func FinanceRecordAdjustment(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "finance service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		var body finance.AdjustmentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.RecordAdjustment(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// FinanceCycleSummary aggregates revenue for one cycle by entry type.
func FinanceCycleSummary(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "finance service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}
		cycleID, err := parseUUIDParam(r, "cycleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.CycleSummary(r.Context(), actor, cycleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
