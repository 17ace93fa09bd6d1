package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/Raisondetr3/tasktango/internal/errors"
	"github.com/Raisondetr3/tasktango/internal/model"
	"github.com/Raisondetr3/tasktango/internal/service"
	"github.com/Raisondetr3/tasktango/internal/transport/http/middleware"
	"github.com/Raisondetr3/tasktango/pkg/dto"
	"github.com/Raisondetr3/tasktango/pkg/logger"
)

const maxBodyBytes = 1 << 20

func (h *HTTPHandlers) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	var tasks []model.Task

	switch r.URL.Query().Get("status") {
	case "", "all":
		tasks = h.tasks.Tasks()
	case "incomplete":
		tasks = h.tasks.Incomplete()
	case "completed":
		tasks = h.tasks.Completed()
	default:
		writeServiceError(w, r, apperrors.ErrInvalidFilter)
		return
	}

	resp := dto.NewTaskListResponse(tasks)
	resp.TotalPoints = h.tasks.TotalPoints()
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *HTTPHandlers) HandleAddTask(w http.ResponseWriter, r *http.Request) {
	var req dto.AddTaskRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, dto.NewCodedErr("InvalidArgument", "invalid JSON body"))
		return
	}

	res, err := h.tasks.AddWithTime(r.Context(), req.Text, req.Time)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, newMutationResponse(res))
}

func (h *HTTPHandlers) HandleToggleTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	res, err := h.tasks.ToggleComplete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.Task == nil {
		writeServiceError(w, r, apperrors.ErrTaskNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, newMutationResponse(res))
}

func (h *HTTPHandlers) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	res, err := h.tasks.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.Task == nil {
		writeServiceError(w, r, apperrors.ErrTaskNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, newMutationResponse(res))
}

func (h *HTTPHandlers) HandleClearCompleted(w http.ResponseWriter, r *http.Request) {
	res, err := h.tasks.ClearCompleted(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, newMutationResponse(res))
}

func (h *HTTPHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	st := h.tasks.Stats()
	writeJSON(w, r, http.StatusOK, dto.StatsResponse{
		Total:       st.Total,
		Incomplete:  st.Incomplete,
		Completed:   st.Completed,
		TotalPoints: st.Points,
	})
}

func newMutationResponse(res service.Result) dto.MutationResponse {
	list := dto.NewTaskListResponse(res.Tasks)
	resp := dto.MutationResponse{
		Tasks:       list.Tasks,
		TotalPoints: list.TotalPoints,
		Event:       NewEventResponse(res.Event),
	}
	if res.Task != nil {
		t := dto.NewTaskResponse(*res.Task)
		resp.Task = &t
	}
	return resp
}

// NewEventResponse renders a store event for clients, nil for EventNone.
func NewEventResponse(ev service.Event) *dto.EventResponse {
	switch ev.Kind {
	case service.EventOnTimeBonusAwarded:
		return dto.OnTimeBonusEvent(ev.TaskID, ev.Points)
	case service.EventCompletedCleared:
		return dto.CompletedClearedEvent(ev.Count)
	default:
		return nil
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	se := apperrors.AsServiceError(err)
	if errors.Is(se, apperrors.ErrInternalError) {
		logger.WithRequestID(middleware.RequestID(r.Context())).ErrorContext(r.Context(), "Request Failed",
			"path", r.URL.Path,
			"error", err.Error(),
		)
	}
	writeJSON(w, r, se.HTTPStatus(), dto.NewCodedErr(se.Code.String(), se.Message))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.LogError(r.Context(), err, "encode_response")
	}
}
