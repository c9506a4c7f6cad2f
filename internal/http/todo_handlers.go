package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-calendar/internal/auth"
	"todo-calendar/internal/domain"
)

func (h *Handler) createTodo(c *gin.Context, who auth.Identity) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindError(err))
		return
	}

	todo, err := h.todos.Create(c.Request.Context(), who.UserID, req.input())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTodoResponse(todo))
}

func (h *Handler) listTodos(c *gin.Context, who auth.Identity) {
	todos, err := h.todos.ListByOwner(c.Request.Context(), who.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]todoResponse, 0, len(todos))
	for i := range todos {
		resp = append(resp, newTodoResponse(&todos[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTodo(c *gin.Context, who auth.Identity) {
	id, err := todoID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	todo, err := h.todos.Get(c.Request.Context(), id, who.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTodoResponse(todo))
}

func (h *Handler) updateTodo(c *gin.Context, who auth.Identity) {
	id, err := todoID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindError(err))
		return
	}

	todo, err := h.todos.Update(c.Request.Context(), id, who.UserID, req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTodoResponse(todo))
}

func (h *Handler) deleteTodo(c *gin.Context, who auth.Identity) {
	id, err := todoID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.todos.Delete(c.Request.Context(), id, who.UserID); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// todoID parses the path id. Malformed ids cannot name an owned todo, so they are not found.
func todoID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("todo %q: %w", raw, domain.ErrNotFound)
	}
	return id, nil
}
