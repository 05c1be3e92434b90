package handlers

import (
	"net/http"

	"github.com/upb/content-governance/models"
	"github.com/upb/content-governance/utils"
)

// WorkflowStatesResponse lists the fixed state enumeration
type WorkflowStatesResponse struct {
	States []models.ContentState `json:"states"`
}

// HandleWorkflowStates handles GET /workflow/states. The enumeration is
// fixed, so this needs no tenant and no storage.
func HandleWorkflowStates(w http.ResponseWriter, _ *http.Request) {
	_ = utils.WriteOK(w, WorkflowStatesResponse{States: models.ContentStates()})
}
