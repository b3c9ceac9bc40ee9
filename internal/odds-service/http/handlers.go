package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/odds-cache-service/internal/odds-service/dto"
	"github.com/radieske/odds-cache-service/internal/odds-service/model"
)

// HeaderUserID identifica o usuário autenticado (setado pelo gateway)
const HeaderUserID = "X-User-ID"

// getOdds retorna uma odd, preferencialmente do cache
func (a *API) getOdds(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	get := a.Service.GetByID
	if withMargin, _ := strconv.ParseBool(r.URL.Query().Get("margin")); withMargin {
		get = a.Service.GetByIDWithMargin
	}

	v, err := get(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// listOdds retorna odds filtradas, com criador resolvido numa única query
func (a *API) listOdds(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := a.Service.ListWithCreators(r.Context(), f)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) createOdds(w http.ResponseWriter, r *http.Request) {
	userID, ok := headerUserID(w, r)
	if !ok {
		return
	}

	var req dto.CreateOddsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	v, err := a.Service.Create(r.Context(), model.CreateInput{
		Sport:     req.Sport,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		HomeOdds:  req.HomeOdds,
		DrawOdds:  req.DrawOdds,
		AwayOdds:  req.AwayOdds,
		MatchDate: req.MatchDate,
		CreatedBy: userID,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (a *API) updateOdds(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateOddsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	v, err := a.Service.Update(r.Context(), id, model.UpdateInput{
		Sport:     req.Sport,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		HomeOdds:  req.HomeOdds,
		DrawOdds:  req.DrawOdds,
		AwayOdds:  req.AwayOdds,
		MatchDate: req.MatchDate,
		Active:    req.Active,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) deactivateOdds(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := a.Service.Deactivate(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) deleteOdds(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := a.Service.Delete(r.Context(), id); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID lê {id}; escreve 400 e retorna false se inválido
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// headerUserID lê o criador do header; ausente vira 0 (criador desconhecido)
func headerUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(HeaderUserID)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+HeaderUserID)
		return 0, false
	}
	return id, true
}

func parseFilter(r *http.Request) (model.Filter, error) {
	q := r.URL.Query()
	f := model.Filter{Sport: q.Get("sport")}

	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errBadQuery("active")
		}
		f.Active = &active
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, errBadQuery("from")
		}
		f.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, errBadQuery("to")
		}
		f.To = &t
	}
	return f, nil
}

type errBadQuery string

func (e errBadQuery) Error() string { return "invalid query parameter " + string(e) }
