package domain

import "context"

// Ack is the controller's answer to a start or stop request
type Ack struct {
	// Silent is set when the controller answered 204 No Content
	Silent bool
}

// ControllerClient is the HTTP contract of the remote traffic light controller
type ControllerClient interface {
	Heartbeat(ctx context.Context) error
	GetConfig(ctx context.Context) (*TimingConfig, error)
	SaveConfig(ctx context.Context, cfg TimingConfig) error
	Running(ctx context.Context) (bool, error)
	Start(ctx context.Context) (Ack, error)
	Stop(ctx context.Context) (Ack, error)
}
