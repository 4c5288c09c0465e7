package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"financeiro/internal/tasks"
)

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.taskStore.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "erro ao listar tarefas")
			return
		}
		if list == nil {
			list = []tasks.Task{}
		}
		writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var body struct {
			Title string `json:"title"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
			return
		}
		title := strings.TrimSpace(body.Title)
		if title == "" {
			writeError(w, http.StatusBadRequest, "título obrigatório")
			return
		}

		task, err := s.taskStore.Create(r.Context(), title)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "erro ao criar tarefa")
			return
		}
		writeJSON(w, http.StatusCreated, task)

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if raw == "" || err != nil {
		writeError(w, http.StatusBadRequest, "ID inválido.")
		return
	}

	switch r.Method {
	case http.MethodGet:
		task, err := s.taskStore.Get(r.Context(), id)
		if errors.Is(err, tasks.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Tarefa não encontrada.")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "erro ao buscar tarefa")
			return
		}
		writeJSON(w, http.StatusOK, task)

	case http.MethodPut:
		var body struct {
			Title *string `json:"title"`
			Done  *bool   `json:"done"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
			return
		}

		task, err := s.taskStore.Update(r.Context(), id, tasks.Patch{Title: body.Title, Done: body.Done})
		if errors.Is(err, tasks.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Tarefa não encontrada.")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "erro ao atualizar tarefa")
			return
		}
		writeJSON(w, http.StatusOK, task)

	case http.MethodDelete:
		err := s.taskStore.Delete(r.Context(), id)
		if errors.Is(err, tasks.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Tarefa não encontrada.")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "erro ao apagar tarefa")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
