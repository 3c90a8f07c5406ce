package domain

// Message is a fixed, human readable string shown to the operator.
// Failure messages double as errors so they can be returned and matched with errors.Is.
type Message string

func (m Message) Error() string {
	return string(m)
}

// Failure messages
const (
	MsgUpdateFailed        Message = "Updating the traffic lights configuration failed."
	MsgOnOffFailed         Message = "Turning the traffic lights on or off failed."
	MsgNoConnection        Message = "Cannot connect to the traffic lights controller."
	MsgControllerDown      Message = "The traffic light controller does not react."
	MsgUnexpectedStartStop Message = "An unexpected error occurred while starting or stopping the traffic lights controller."
	MsgUnexpectedUpdate    Message = "An unexpected error occurred while updating the traffic lights configuration."
)

// Hints and confirmations
const (
	MsgNoCurrentConfig   Message = "There is no configuration which can be loaded. Please enter your own one."
	MsgConfigLoaded      Message = "Loaded current traffic lights configuration."
	MsgConfigUpdated     Message = "Successfully updated the traffic lights configuration."
	MsgUpdatedAndStarted Message = "Successfully updated the configuration and started the traffic lights."
	MsgUpdatedAndStopped Message = "Successfully updated the configuration and stopped the traffic lights."
	MsgStarted           Message = "Started the traffic lights."
	MsgStopped           Message = "Stopped the traffic lights."
)
