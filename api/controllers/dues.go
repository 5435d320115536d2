package controllers

import (
	"net/http"

	"github.com/riverbend-alliance/portal-backend/api/responses"
	"github.com/riverbend-alliance/portal-backend/api/validators"
	"github.com/riverbend-alliance/portal-backend/internal/dues"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

// DuesListCycles returns all billing cycles, active first.
func DuesListCycles(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		cycles, err := svc.ListCycles(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cycles)
	}
}

// DuesMyRecords returns the caller's dues history across cycles.
func DuesMyRecords(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		records, err := svc.MyRecords(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// DuesInitiate starts a hosted checkout for the caller's dues in a cycle.
// The member always pays their own record; member_id in the body is ignored.
func DuesInitiate(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		var body dues.InitiateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.MemberID = actor.MemberID

		result, err := svc.Initiate(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DuesCreateCycle creates a billing cycle, optionally activating it in the
// same call.
func DuesCreateCycle(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		var body dues.CreateCycleInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cycle, err := svc.CreateCycle(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cycle)
	}
}

// DuesActivateCycle makes the given cycle the single active one.
func DuesActivateCycle(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
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

		cycle, err := svc.ActivateCycle(r.Context(), actor, cycleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cycle)
	}
}

// DuesListCycleRecords returns every dues record in a cycle for admins.
func DuesListCycleRecords(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
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
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListCycleRecords(r.Context(), actor, cycleID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// DuesMarkOffline records a cash or check settlement outside the gateway.
func DuesMarkOffline(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		var body dues.OverrideInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.MarkOffline(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// DuesWaive forgives a member's dues for a cycle.
func DuesWaive(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		var body dues.OverrideInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Waive(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// DuesListReconciliation lists callbacks parked for manual review.
func DuesListReconciliation(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListReconciliation(r.Context(), actor, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// DuesResolveReconciliation closes out a parked callback with a note.
func DuesResolveReconciliation(svc dues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dues service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		var body dues.ResolveReconciliationInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ResolveReconciliation(r.Context(), actor, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"resolved": true})
	}
}
