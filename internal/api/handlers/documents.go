package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/handy-terminal/internal/application/incoming"
	"github.com/wms-platform/handy-terminal/internal/domain"
	"github.com/wms-platform/handy-terminal/pkg/contracts/schema"
	"github.com/wms-platform/handy-terminal/pkg/logging"
)

// Input modes
const (
	InputModeNew  = "new"
	InputModeEdit = "edit"
)

// IncomingDocument is the incoming state as sent to the front-end
type IncomingDocument struct {
	incoming.State
	Input *InputDocument `json:"input"`
}

// InputDocument describes what the input buffers will be submitted against
type InputDocument struct {
	Mode         string                 `json:"mode"`
	Schedule     *domain.Schedule       `json:"schedule,omitempty"`
	WorkItem     *domain.WorkItem       `json:"workItem,omitempty"`
	EditSchedule *domain.ScheduleDetail `json:"editSchedule,omitempty"`
}

// NewIncomingDocument renders a state snapshot
func NewIncomingDocument(st incoming.State) IncomingDocument {
	doc := IncomingDocument{State: st}

	switch target := st.Target.(type) {
	case incoming.NewWork:
		schedule := target.Schedule
		doc.Input = &InputDocument{Mode: InputModeNew, Schedule: &schedule}
	case incoming.EditWork:
		item := target.WorkItem
		doc.Input = &InputDocument{Mode: InputModeEdit, WorkItem: &item, EditSchedule: target.Schedule}
	}
	return doc
}

// documentWriter renders response documents, optionally checking each one
// against its published schema first.
type documentWriter struct {
	validator *schema.DocumentValidator
	logger    *logging.Logger
}

func (w documentWriter) write(c *gin.Context, name string, document interface{}) {
	if w.validator != nil {
		if err := w.validator.Validate(name, document); err != nil {
			w.logger.WithContext(c.Request.Context()).WithError(err).Warn("Response document violates schema",
				"document", name,
				"path", c.Request.URL.Path,
			)
		}
	}
	c.JSON(http.StatusOK, document)
}
