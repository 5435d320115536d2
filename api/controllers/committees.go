package controllers

import (
	"net/http"

	"github.com/riverbend-alliance/portal-backend/api/responses"
	"github.com/riverbend-alliance/portal-backend/api/validators"
	"github.com/riverbend-alliance/portal-backend/internal/committees"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

// CommitteesList returns every committee.
func CommitteesList(svc committees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "committees service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CommitteesCreate creates a committee. Board role and up.
func CommitteesCreate(svc committees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "committees service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}

		var body committees.CreateCommitteeInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		committee, err := svc.Create(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, committee)
	}
}

// CommitteesJoin claims a roster seat, or a waitlist seat when full.
// Joining twice returns the existing seat.
func CommitteesJoin(svc committees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "committees service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}
		committeeID, err := parseUUIDParam(r, "committeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Join(r.Context(), actor, committeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CommitteesLeave gives up the caller's seat.
func CommitteesLeave(svc committees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "committees service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}
		committeeID, err := parseUUIDParam(r, "committeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Leave(r.Context(), actor, committeeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"left": true})
	}
}

// CommitteesRemoveMember drops another member's seat. Board role and up.
func CommitteesRemoveMember(svc committees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "committees service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}
		committeeID, err := parseUUIDParam(r, "committeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := parseUUIDParam(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveMember(r.Context(), actor, committeeID, memberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"removed": true})
	}
}

// CommitteesRoster lists seats in join order, roster before waitlist.
func CommitteesRoster(svc committees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "committees service unavailable"))
			return
		}
		actor, ok := callerIdentity(w, r, logg)
		if !ok {
			return
		}
		committeeID, err := parseUUIDParam(r, "committeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seats, err := svc.Roster(r.Context(), actor, committeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, seats)
	}
}
