package web

import (
	"errors"
	"net/http"

	"finance_tracker/internal/client"
	"finance_tracker/internal/form"

	"github.com/gin-gonic/gin"
)

// FormView is a form ready for the "form" partial
type FormView struct {
	Name   string // Definition name, used for on-blur validation
	Action string
	Submit string
	Fields []form.Input
	Hidden map[string]string
	Cancel string // Optional link shown next to the submit button

	Submitting bool
}

func newFormView(name, action, submit string, f *form.Form) FormView {
	return FormView{
		Name:       name,
		Action:     action,
		Submit:     submit,
		Fields:     f.Fields(),
		Hidden:     map[string]string{},
		Submitting: f.Submitting(),
	}
}

// postedValues returns the first value of every posted field
func postedValues(c *gin.Context) map[string]string {
	values := map[string]string{}
	if err := c.Request.ParseForm(); err != nil {
		return values
	}
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			values[k] = v[0]
		}
	}
	return values
}

// submitFailure maps a failed Submit to a status and toast. Field errors
// sent by the API are copied onto the form.
func submitFailure(f *form.Form, err error) (int, *Toast) {
	if errors.Is(err, form.ErrInvalid) {
		return http.StatusUnprocessableEntity, nil
	}
	if errors.Is(err, form.ErrSubmitting) {
		return http.StatusConflict, &Toast{Kind: toastError, Message: "Please wait, still submitting"}
	}
	toast := &Toast{Kind: toastError, Message: client.UserMessage(err)}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		for field, msg := range apiErr.Fields {
			f.SetError(field, msg)
		}
		return apiErr.Status, toast
	}
	return http.StatusBadGateway, toast
}

// validateField runs one field's validator for on-blur feedback
func (s *Server) validateField(c *gin.Context) {
	def, ok := form.Lookup(c.Param("form"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Unknown form"})
		return
	}
	f := def.New()
	f.Fill(postedValues(c))
	msg, err := f.Blur(c.Param("field"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Unknown field"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "field": c.Param("field"), "error": msg})
}
