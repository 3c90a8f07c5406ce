// Package panel implements the control panel: syncing with the controller,
// holding the timing form and pushing updates back.
package panel

import (
	"encoding/json"

	"github.com/aristath/trafficpanel/internal/domain"
	"github.com/aristath/trafficpanel/internal/modules/connectivity"
	"github.com/aristath/trafficpanel/internal/modules/notifications"
)

// State is a snapshot of everything the panel view renders
type State struct {
	Form         domain.Form           `json:"form"`
	On           bool                  `json:"on"`
	Connectivity connectivity.Snapshot `json:"connectivity"`
	LatestToast  *notifications.Toast  `json:"latest_toast,omitempty"`
}

// UpdateRequest is the body of POST /api/panel/config
type UpdateRequest struct {
	domain.Form
	On bool `json:"on"`
}

// UnmarshalJSON decodes the form fields and the switch. It is needed because
// the method promoted from domain.Form would leave On unset.
func (r *UpdateRequest) UnmarshalJSON(data []byte) error {
	if err := r.Form.UnmarshalJSON(data); err != nil {
		return err
	}

	var rest struct {
		On bool `json:"on"`
	}
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	r.On = rest.On
	return nil
}
